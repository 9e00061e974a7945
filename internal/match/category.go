package match

// Category identifies one dimension of biased language in a posting.
type Category string

const (
	CategoryExclusionary Category = "exclusionary_language"
	CategoryDisability   Category = "disability_biased"
	CategoryAge          Category = "age_biased"
	CategoryMasculine    Category = "masculine_coded"
	CategoryFeminine     Category = "feminine_coded"
	CategoryCulturalFit  Category = "cultural_fit"
	CategoryAppearance   Category = "appearance_biased"
)

// PriorityOrder lists categories from highest to lowest claim priority.
// When two categories hit overlapping spans, the earlier category keeps
// the span and the later one never reports it.
var PriorityOrder = []Category{
	CategoryExclusionary,
	CategoryDisability,
	CategoryAge,
	CategoryMasculine,
	CategoryFeminine,
	CategoryCulturalFit,
	CategoryAppearance,
}

var priorityRank = buildPriorityRank()

func buildPriorityRank() map[Category]int {
	rank := make(map[Category]int, len(PriorityOrder))
	for i, c := range PriorityOrder {
		rank[c] = i
	}
	return rank
}

// Known reports whether the category is one of the fixed set.
func Known(c Category) bool {
	_, ok := priorityRank[c]
	return ok
}
