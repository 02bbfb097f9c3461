package ingredient

// synonymFamily groups interchangeable ingredient names under one base form.
type synonymFamily struct {
	base     string
	synonyms []string
}

// families is keyed by base form. Members are stored normalized.
var families = []synonymFamily{
	{base: "green onion", synonyms: []string{"scallion", "spring onion"}},
	{base: "pepper", synonyms: []string{"bell pepper", "capsicum"}},
	{base: "coriander", synonyms: []string{"cilantro"}},
	{base: "chickpea", synonyms: []string{"garbanzo bean", "garbanzo"}},
	{base: "zucchini", synonyms: []string{"courgette"}},
	{base: "eggplant", synonyms: []string{"aubergine"}},
	{base: "shrimp", synonyms: []string{"prawn"}},
	{base: "beet", synonyms: []string{"beetroot"}},
	{base: "arugula", synonyms: []string{"rocket"}},
}

// memberIndex maps every member token (base and synonyms) to its family.
var memberIndex = buildMemberIndex()

func buildMemberIndex() map[string]*synonymFamily {
	idx := make(map[string]*synonymFamily)
	for i := range families {
		f := &families[i]
		idx[f.base] = f
		for _, syn := range f.synonyms {
			idx[syn] = f
		}
	}
	return idx
}

func familyOf(norm string) (*synonymFamily, bool) {
	f, ok := memberIndex[norm]
	return f, ok
}
