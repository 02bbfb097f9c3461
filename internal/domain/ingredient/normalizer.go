// Package ingredient provides canonicalization of free-text ingredient names.
// All matching between recipes and inventory happens on the canonical tokens
// produced here.
package ingredient

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

var units = map[string]struct{}{
	"g": {}, "kg": {}, "mg": {}, "ml": {}, "l": {}, "oz": {}, "lb": {}, "lbs": {},
	"gram": {}, "grams": {}, "kilogram": {}, "kilograms": {},
	"milliliter": {}, "milliliters": {}, "liter": {}, "liters": {},
	"ounce": {}, "ounces": {}, "pound": {}, "pounds": {},
	"cup": {}, "cups": {}, "tbsp": {}, "tablespoon": {}, "tablespoons": {},
	"tsp": {}, "teaspoon": {}, "teaspoons": {},
	"pinch": {}, "dash": {}, "slice": {}, "slices": {}, "clove": {}, "cloves": {},
	"can": {}, "cans": {}, "package": {}, "packages": {},
}

var descriptors = map[string]struct{}{
	"fresh": {}, "chopped": {}, "diced": {}, "minced": {}, "sliced": {}, "grated": {}, "ground": {},
	"large": {}, "small": {}, "medium": {}, "extra": {}, "lean": {},
	"boneless": {}, "skinless": {}, "seedless": {}, "peeled": {},
	"optional": {}, "to": {}, "taste": {}, "and": {}, "or": {},
}

// Phrase-level synonym collapses applied after token cleanup. Ordered so
// multi-word phrases rewrite before their single-word members could.
var phraseSynonyms = []struct{ from, to string }{
	{"spring onion", "green onion"},
	{"scallion", "green onion"},
	{"bell pepper", "pepper"},
	{"capsicum", "pepper"},
	{"cilantro", "coriander"},
}

var (
	parenRe = regexp.MustCompile(`\([^)]*\)`)
	wordRe  = regexp.MustCompile(`[a-zA-Z]+`)
)

const maxTokenLen = 120

// cache memoizes Normalize results. Normalization runs on every ingredient
// of every candidate, so repeated lookups dominate.
var cache sync.Map // string -> string

// Normalize canonicalizes a raw ingredient name into a matching token:
// lowercase, parenthesised text removed, units and descriptors stripped,
// naive singularization, known synonyms collapsed to a base form. Returns
// the empty string when nothing meaningful remains.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	if v, ok := cache.Load(raw); ok {
		return v.(string)
	}
	norm := normalize(raw)
	cache.Store(raw, norm)
	return norm
}

func normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = parenRe.ReplaceAllString(s, " ")

	var cleaned []string
	for _, t := range wordRe.FindAllString(s, -1) {
		if _, ok := units[t]; ok {
			continue
		}
		if _, ok := descriptors[t]; ok {
			continue
		}
		cleaned = append(cleaned, singularize(t))
	}

	norm := strings.Join(cleaned, " ")
	if norm == "" {
		return ""
	}
	for _, syn := range phraseSynonyms {
		if strings.Contains(norm, syn.from) {
			norm = strings.TrimSpace(strings.ReplaceAll(norm, syn.from, syn.to))
		}
	}
	if len(norm) > maxTokenLen {
		norm = norm[:maxTokenLen]
	}
	return norm
}

// singularize folds simple English plurals. Deliberately naive: it only has
// to be consistent between recipe and inventory sides, not correct.
func singularize(token string) string {
	if len(token) <= 3 {
		return token
	}
	if strings.HasSuffix(token, "ies") && len(token) > 4 {
		return token[:len(token)-3] + "y"
	}
	if strings.HasSuffix(token, "sses") || strings.HasSuffix(token, "ss") {
		return token
	}
	if strings.HasSuffix(token, "s") {
		return token[:len(token)-1]
	}
	return token
}

// ExpandTokens returns the normalized form of an ingredient plus, when the
// ingredient belongs to a known synonym family, the family's base form and
// every synonym of it. The richer set drives inventory-side matching.
func ExpandTokens(raw string) []string {
	norm := Normalize(raw)
	if norm == "" {
		return nil
	}

	set := map[string]struct{}{norm: {}}
	if family, ok := familyOf(norm); ok {
		set[family.base] = struct{}{}
		for _, syn := range family.synonyms {
			set[syn] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(set))
	for t := range set {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// BaseForm returns the synonym-family base of an ingredient, or its plain
// normalized form when it belongs to no family.
func BaseForm(raw string) string {
	norm := Normalize(raw)
	if norm == "" {
		return ""
	}
	if family, ok := familyOf(norm); ok {
		return family.base
	}
	return norm
}
