package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseRecipes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		titles  []string
	}{
		{
			name:    "plain array",
			content: `[{"title":"Fried Rice","ingredients":["rice","egg"],"instructions":"Fry."}]`,
			titles:  []string{"Fried Rice"},
		},
		{
			name: "fenced json",
			content: "Here you go:\n```json\n[{\"title\":\"Omelette\",\"ingredients\":[\"egg\"]}]\n```",
			titles:  []string{"Omelette"},
		},
		{
			name:    "recipes envelope",
			content: `{"recipes":[{"title":"Soup","ingredients":["carrot"]}]}`,
			titles:  []string{"Soup"},
		},
		{
			name:    "single object",
			content: `{"title":"Salad","ingredients":["lettuce"]}`,
			titles:  []string{"Salad"},
		},
		{
			name:    "trailing commas",
			content: `[{"title":"Stew","ingredients":["beef","onion",],},]`,
			titles:  []string{"Stew"},
		},
		{
			name:    "prose around the array",
			content: `Sure! Here are two ideas: [{"title":"Tacos","ingredients":["tortilla"]}] Enjoy!`,
			titles:  []string{"Tacos"},
		},
		{
			name: "truncated array salvaged by object pattern",
			content: `[{"title":"Curry","ingredients":["chicken","onion"],"instructions":"Simmer."},{"title":"Brok`,
			titles:  []string{"Curry"},
		},
		{
			name:    "garbage",
			content: "I cannot help with that.",
			titles:  []string{},
		},
		{
			name:    "empty",
			content: "",
			titles:  []string{},
		},
		{
			name:    "entries without titles are dropped",
			content: `[{"title":"","ingredients":["x"]},{"title":"Keeper","ingredients":["y"]}]`,
			titles:  []string{"Keeper"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes := ParseRecipes(tt.content)
			titles := make([]string, 0, len(recipes))
			for _, r := range recipes {
				titles = append(titles, r.Title)
			}
			assert.Equal(t, tt.titles, titles)
		})
	}
}

func TestGenerateRecipes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":
			"[{\"title\":\"Egg Fried Rice\",\"ingredients\":[\"rice\",\"egg\"],\"instructions\":\"Fry.\"}]"}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 2 * time.Second}, zap.NewNop())

	recipes, err := client.GenerateRecipes(context.Background(), []string{"rice", "eggs"}, 3)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Egg Fried Rice", recipes[0].Title)
	assert.Equal(t, []string{"rice", "egg"}, recipes[0].Ingredients)
}

func TestGenerateRecipesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 2 * time.Second}, zap.NewNop())

	_, err := client.GenerateRecipes(context.Background(), []string{"rice"}, 3)
	assert.Error(t, err)
}

func TestGenerateRecipesUnparseableContentIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"no recipes today"}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 2 * time.Second}, zap.NewNop())

	recipes, err := client.GenerateRecipes(context.Background(), []string{"rice"}, 3)
	require.NoError(t, err)
	assert.Empty(t, recipes)
}
