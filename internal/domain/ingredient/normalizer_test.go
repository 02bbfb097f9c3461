package ingredient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "lowercases and trims", raw: "  Chicken Breast  ", expected: "chicken breast"},
		{name: "strips parenthesised text", raw: "tomatoes (canned, whole)", expected: "tomato"},
		{name: "drops units", raw: "200 g flour", expected: "flour"},
		{name: "drops descriptors", raw: "fresh chopped parsley", expected: "parsley"},
		{name: "singularizes ies", raw: "berries", expected: "berry"},
		{name: "keeps double s", raw: "watercress", expected: "watercress"},
		{name: "keeps short words", raw: "gas", expected: "gas"},
		{name: "strips trailing s", raw: "carrots", expected: "carrot"},
		{name: "collapses scallion", raw: "Scallions", expected: "green onion"},
		{name: "collapses bell pepper", raw: "red bell peppers", expected: "red pepper"},
		{name: "collapses cilantro", raw: "cilantro", expected: "coriander"},
		{name: "empty input", raw: "", expected: ""},
		{name: "only units and numbers", raw: "2 tbsp", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.raw))
		})
	}
}

func TestNormalizeTruncates(t *testing.T) {
	long := strings.Repeat("x", 50) + " " + strings.Repeat("y", 100)
	got := Normalize(long)
	assert.LessOrEqual(t, len(got), 120)
	assert.NotEmpty(t, got)
}

func TestNormalizeMemoized(t *testing.T) {
	first := Normalize("Fresh Basil Leaves")
	second := Normalize("Fresh Basil Leaves")
	assert.Equal(t, first, second)
}

func TestExpandTokens(t *testing.T) {
	t.Run("synonym family expands to all members", func(t *testing.T) {
		tokens := ExpandTokens("scallions")
		assert.Contains(t, tokens, "green onion")
		assert.Contains(t, tokens, "scallion")
		assert.Contains(t, tokens, "spring onion")
	})

	t.Run("plain ingredient yields single token", func(t *testing.T) {
		tokens := ExpandTokens("rice")
		assert.Equal(t, []string{"rice"}, tokens)
	})

	t.Run("empty input yields nothing", func(t *testing.T) {
		assert.Empty(t, ExpandTokens("  (whole) "))
	})
}

func TestBaseForm(t *testing.T) {
	assert.Equal(t, "coriander", BaseForm("cilantro"))
	assert.Equal(t, "green onion", BaseForm("spring onions"))
	assert.Equal(t, "rice", BaseForm("Rice"))
}
