package template

import (
	"regexp"
	"strings"
	"time"

	"github.com/leapstack-labs/sqlforge/pkg/core"
)

// Context supplies values for the placeholder forms.
type Context struct {
	// DS overrides the {{ ds }} date partition. Empty means today (UTC).
	DS string

	// Refs resolves {{ ref('name') }} lookups.
	Refs map[string]string

	// Vars resolves {{ var('name') }} lookups.
	Vars map[string]string
}

// callPattern matches the two call forms: ref('name') and
// var('name'[, 'default']).
var callPattern = regexp.MustCompile(`^(ref|var)\(\s*'([^']*)'\s*(?:,\s*'([^']*)'\s*)?\)$`)

// Render substitutes all placeholders in the input. Any failure aborts the
// render; the caller never sees partially substituted SQL.
func Render(input string, ctx Context) (string, error) {
	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		return "", err
	}

	var out strings.Builder
	out.Grow(len(input))

	for _, tok := range tokens {
		switch tok.Type {
		case TokenText:
			out.WriteString(tok.Value)

		case TokenExpr:
			value, err := resolve(tok, ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(value)
		}
	}

	return out.String(), nil
}

func resolve(tok Token, ctx Context) (string, error) {
	expr := tok.Value

	if expr == "ds" {
		if ctx.DS != "" {
			return ctx.DS, nil
		}
		return time.Now().UTC().Format("2006-01-02"), nil
	}

	// Submatch indexes distinguish an absent second argument from an empty
	// one; the name itself may contain a comma.
	m := callPattern.FindStringSubmatchIndex(expr)
	if m == nil {
		return "", errorAt(tok, "unsupported placeholder", expr)
	}

	fn := expr[m[2]:m[3]]
	name := expr[m[4]:m[5]]
	hasSecondArg := m[6] >= 0

	if name == "" {
		return "", errorAt(tok, fn+"() requires a non-empty name", expr)
	}

	switch fn {
	case "ref":
		if hasSecondArg {
			return "", errorAt(tok, "ref() takes a single argument", expr)
		}
		value, ok := ctx.Refs[name]
		if !ok {
			return "", errorAt(tok, "unresolved ref", name)
		}
		return value, nil

	case "var":
		if value, ok := ctx.Vars[name]; ok {
			return value, nil
		}
		if hasSecondArg {
			return expr[m[6]:m[7]], nil
		}
		return "", errorAt(tok, "unresolved var", name)
	}

	return "", errorAt(tok, "unsupported placeholder", expr)
}

func errorAt(tok Token, message, detail string) *core.Error {
	return &core.Error{
		Kind:    core.ErrTemplate,
		Message: message + " at " + tok.Pos.String(),
		Detail:  detail,
	}
}
