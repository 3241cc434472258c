package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlforge/pkg/core"
)

func TestRender_DS(t *testing.T) {
	got, err := Render("SELECT * FROM t WHERE dt = '{{ ds }}'", Context{DS: "2024-03-15"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE dt = '2024-03-15'", got)

	// No override falls back to today in UTC.
	got, err = Render("{{ ds }}", Context{})
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), got)
}

func TestRender_Ref(t *testing.T) {
	ctx := Context{Refs: map[string]string{"orders": "analytics.orders_v3"}}

	got, err := Render("SELECT * FROM {{ ref('orders') }}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM analytics.orders_v3", got)

	_, err = Render("SELECT * FROM {{ ref('unknown') }}", ctx)
	require.Error(t, err)
	assert.Equal(t, core.ErrTemplate, core.KindOf(err))

	// ref takes exactly one argument.
	_, err = Render("{{ ref('orders', 'extra') }}", ctx)
	require.Error(t, err)
	assert.Equal(t, core.ErrTemplate, core.KindOf(err))
}

func TestRender_Var(t *testing.T) {
	ctx := Context{Vars: map[string]string{"region": "eu"}}

	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"bound var", "{{ var('region') }}", "eu", false},
		{"bound var ignores default", "{{ var('region', 'us') }}", "eu", false},
		{"default used when unbound", "{{ var('tier', 'gold') }}", "gold", false},
		{"empty default is valid", "{{ var('tier', '') }}", "", false},
		{"unbound without default", "{{ var('tier') }}", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.input, ctx)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, core.ErrTemplate, core.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRender_CommaInName(t *testing.T) {
	// A comma inside the quoted name is part of the name, not an argument
	// separator.
	ctx := Context{
		Refs: map[string]string{"a,b": "analytics.split"},
		Vars: map[string]string{"x,y": "both"},
	}

	got, err := Render("{{ ref('a,b') }}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "analytics.split", got)

	got, err = Render("{{ var('x,y') }}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "both", got)

	// Unbound and no default supplied: an error, not a silent empty value.
	_, err = Render("{{ var('p,q') }}", Context{})
	require.Error(t, err)
	assert.Equal(t, core.ErrTemplate, core.KindOf(err))
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed placeholder", "SELECT {{ ds FROM t"},
		{"unknown placeholder", "{{ macro('x') }}"},
		{"bare identifier", "{{ region }}"},
		{"empty name", "{{ var('') }}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.input, Context{})
			require.Error(t, err)
			assert.Equal(t, core.ErrTemplate, core.KindOf(err))
		})
	}
}

func TestRender_AllOrNothing(t *testing.T) {
	// A failure anywhere means no output at all, even if earlier
	// placeholders resolved.
	got, err := Render("{{ ds }} {{ var('missing') }}", Context{DS: "2024-01-01"})
	require.Error(t, err)
	assert.Empty(t, got)
}

func TestRender_PassthroughText(t *testing.T) {
	input := "SELECT '{a}' AS x, '}}' AS y FROM t -- no placeholders"
	got, err := Render(input, Context{})
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestRender_Whitespace(t *testing.T) {
	// Placeholder content is trimmed; surrounding SQL is untouched.
	got, err := Render("a {{   ds   }} b", Context{DS: "2024-06-01"})
	require.NoError(t, err)
	assert.Equal(t, "a 2024-06-01 b", got)
}

func TestLexer_Positions(t *testing.T) {
	tokens, err := NewLexer("line one\n{{ ds }}").Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	assert.Equal(t, TokenText, tokens[0].Type)
	assert.Equal(t, TokenExpr, tokens[1].Type)
	assert.Equal(t, 2, tokens[1].Pos.Line)
	assert.Equal(t, 1, tokens[1].Pos.Column)
}
