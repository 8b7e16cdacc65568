package prompt

// Purpose selects which system prompt the assembler builds.
type Purpose string

const (
	IntentAnalysis Purpose = "intent_analysis"
	FollowUp       Purpose = "follow_up_question"
	SearchResponse Purpose = "search_response"
	SmartAnalysis  Purpose = "smart_restaurant_analysis"
	GeneralChat    Purpose = "general_chat"
)

// Template holds the static parts of a system prompt. Knowledge sections are
// flags into the shared domain constants rather than free-form maps so that
// rendering stays deterministic.
type Template struct {
	Role         string
	Task         string
	OutputFormat string
	Rules        []string
	Constraints  []string
	Examples     []string
	Knowledge    KnowledgeSections
}

// KnowledgeSections selects which domain-knowledge blocks the template
// renders, in the fixed order: distance conversion, cuisine mapping,
// required fields, optional fields.
type KnowledgeSections struct {
	DistanceConversion bool
	CuisineMapping     bool
	CuisineOptions     bool
	RequiredFields     bool
	OptionalFields     bool
}

func (k KnowledgeSections) any() bool {
	return k.DistanceConversion || k.CuisineMapping || k.CuisineOptions || k.RequiredFields || k.OptionalFields
}
