package rules

// Rule is one maintenance item the catalog can flag.
// Bands are tried in order and at most one fires per evaluation.
type Rule struct {
	ID       string `yaml:"id"`
	Category string `yaml:"category"`
	Weight   int    `yaml:"weight"`
	// Fallback rules fire only when no other rule fired
	Fallback bool   `yaml:"fallback,omitempty"`
	Bands    []Band `yaml:"bands"`
}

// Band is one confidence level of a rule, e.g. "likely due" or "due soon"
type Band struct {
	When         string   `yaml:"when"` // CEL expression; empty means always
	Label        string   `yaml:"label"`
	Status       string   `yaml:"status"`
	BaseLow      float64  `yaml:"base_low"`
	BaseHigh     float64  `yaml:"base_high"`
	Multiplier   float64  `yaml:"multiplier"`
	WhyFlagged   string   `yaml:"why_flagged"`
	WhyItMatters string   `yaml:"why_it_matters"`
	Questions    []string `yaml:"questions"`
	RedFlags     []string `yaml:"red_flags,omitempty"`
}

// CandidateItem is the output of one fired rule before brand pricing
type CandidateItem struct {
	ID           string
	Label        string
	Category     string
	Status       string
	BaseLow      float64
	BaseHigh     float64
	Multiplier   float64
	WhyFlagged   string
	WhyItMatters string
	Questions    []string
	RedFlags     []string
	Weight       int
}

// PricedItem is a CandidateItem with brand-scaled cost bounds
type PricedItem struct {
	ID           string   `json:"item_id"`
	Label        string   `json:"label"`
	Category     string   `json:"category"`
	Status       string   `json:"status"`
	CostLow      int      `json:"cost_low"`
	CostHigh     int      `json:"cost_high"`
	WhyFlagged   string   `json:"why_flagged"`
	WhyItMatters string   `json:"why_it_matters"`
	Questions    []string `json:"questions_to_ask"`
	RedFlags     []string `json:"red_flags,omitempty"`
	Weight       int      `json:"-"`
}

// EvaluationResult records how a single rule evaluated
type EvaluationResult struct {
	RuleID  string `json:"rule_id"`
	Matched bool   `json:"matched"`
	// Band is the index of the band that fired, -1 when nothing matched
	Band   int    `json:"band"`
	Status string `json:"status,omitempty"`
	Error  error  `json:"-"`
}
