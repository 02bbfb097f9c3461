// Package openai generates recipe candidates through an OpenAI-compatible
// chat completion API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/greenbite/engine/internal/ports/outbound"
)

// Config holds the generation client settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client implements the GenerationService port against an OpenAI-compatible
// endpoint.
type Client struct {
	cfg    Config
	http   *resty.Client
	logger *zap.Logger
}

// NewClient builds a generation client. Missing settings fall back to
// OpenAI defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger.Named("openai-client"),
	}
}

var _ outbound.GenerationService = (*Client)(nil)

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const systemPrompt = "You are a recipe assistant. Respond with a JSON array of recipes. " +
	"Each recipe is an object with fields: title (string), ingredients (array of strings), instructions (string). " +
	"Use only the ingredients the user lists, plus pantry staples. Respond with JSON only, no prose."

// GenerateRecipes asks the model for recipe candidates built from the given
// ingredients. Transport and API errors are returned; malformed model
// output is salvaged as far as possible and never becomes an error.
func (c *Client) GenerateRecipes(ctx context.Context, ingredients []string, count int) ([]outbound.GeneratedRecipe, error) {
	prompt := fmt.Sprintf("Available ingredients: %s. Propose %d recipes.", strings.Join(ingredients, ", "), count)

	var result chatCompletionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatCompletionRequest{
			Model:       c.cfg.Model,
			Messages:    []chatMessage{{Role: "system", Content: systemPrompt}, {Role: "user", Content: prompt}},
			Temperature: c.cfg.Temperature,
			MaxTokens:   c.cfg.MaxTokens,
		}).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("chat completion status %d", resp.StatusCode())
	}
	if result.Error != nil {
		return nil, fmt.Errorf("chat completion: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty response")
	}

	recipes := ParseRecipes(result.Choices[0].Message.Content)
	if len(recipes) == 0 {
		c.logger.Warn("model output yielded no parseable recipes",
			zap.Int("content_length", len(result.Choices[0].Message.Content)))
	}
	return recipes, nil
}

var (
	fenceRe    = regexp.MustCompile("(?s)```(?:json)?(.*?)```")
	trailingRe = regexp.MustCompile(`,\s*([\]}])`)
	objectRe   = regexp.MustCompile(`(?s)\{[^{}]*"title"\s*:\s*"[^"]+"[^{}]*"ingredients"\s*:\s*\[[^\]]*\][^{}]*\}`)
)

// ParseRecipes extracts recipes from model output that may be fenced,
// wrapped, truncated or otherwise mangled. Recovery is layered: strip code
// fences, isolate the outermost JSON value, repair trailing commas, unwrap
// a {"recipes": [...]} envelope, and as a last resort pull out individual
// recipe objects by pattern. Total failure yields an empty slice.
func ParseRecipes(content string) []outbound.GeneratedRecipe {
	cleaned := strings.TrimSpace(content)
	if m := fenceRe.FindStringSubmatch(cleaned); m != nil {
		cleaned = strings.TrimSpace(m[1])
	}
	cleaned = extractJSON(cleaned)
	cleaned = trailingRe.ReplaceAllString(cleaned, "$1")

	if recipes := decodeRecipes(cleaned); recipes != nil {
		return recipes
	}

	// Last resort: pick out whole recipe objects individually.
	var salvaged []outbound.GeneratedRecipe
	for _, raw := range objectRe.FindAllString(cleaned, -1) {
		var r generatedRecipeJSON
		if err := json.Unmarshal([]byte(trailingRe.ReplaceAllString(raw, "$1")), &r); err != nil {
			continue
		}
		if r.Title == "" || len(r.Ingredients) == 0 {
			continue
		}
		salvaged = append(salvaged, r.toPort())
	}
	if salvaged == nil {
		return []outbound.GeneratedRecipe{}
	}
	return salvaged
}

type generatedRecipeJSON struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Cuisine      string   `json:"cuisine"`
}

func (r generatedRecipeJSON) toPort() outbound.GeneratedRecipe {
	return outbound.GeneratedRecipe{
		Title:        r.Title,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		Cuisine:      r.Cuisine,
	}
}

func decodeRecipes(cleaned string) []outbound.GeneratedRecipe {
	var list []generatedRecipeJSON
	if err := json.Unmarshal([]byte(cleaned), &list); err == nil {
		return portRecipes(list)
	}

	var envelope struct {
		Recipes []generatedRecipeJSON `json:"recipes"`
	}
	if err := json.Unmarshal([]byte(cleaned), &envelope); err == nil && envelope.Recipes != nil {
		return portRecipes(envelope.Recipes)
	}

	var single generatedRecipeJSON
	if err := json.Unmarshal([]byte(cleaned), &single); err == nil && single.Title != "" {
		return portRecipes([]generatedRecipeJSON{single})
	}
	return nil
}

func portRecipes(list []generatedRecipeJSON) []outbound.GeneratedRecipe {
	out := make([]outbound.GeneratedRecipe, 0, len(list))
	for _, r := range list {
		if r.Title == "" || len(r.Ingredients) == 0 {
			continue
		}
		out = append(out, r.toPort())
	}
	return out
}

// extractJSON isolates the outermost array or object in free text.
func extractJSON(s string) string {
	arrStart := strings.Index(s, "[")
	objStart := strings.Index(s, "{")

	start, opener, closer := -1, byte('['), byte(']')
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		start = arrStart
	} else if objStart >= 0 {
		start, opener, closer = objStart, '{', '}'
	}
	if start < 0 {
		return s
	}

	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	// Unbalanced: return from the opening bracket and let repair layers try.
	return s[start:]
}
