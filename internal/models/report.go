package models

// RiskItem is a single risk called out by the analysis.
type RiskItem struct {
	Title        string   `json:"title"`
	WhyItMatters string   `json:"why_it_matters"`
	WhereFound   string   `json:"where_found,omitempty"`
	Mitigations  []string `json:"mitigations"`
}

// DecisionAssist is the closing pros/cons verdict of a report.
type DecisionAssist struct {
	Pros        []string `json:"pros"`
	Cons        []string `json:"cons"`
	OverallTake string   `json:"overall_take"`
}

// AnalysisReport is the structured result of analyzing one document.
// Every field is optional in the model output; a report is always
// constructible, worst case with everything empty.
type AnalysisReport struct {
	Summary                []string            `json:"summary"`
	KeyTerms               []string            `json:"key_terms"`
	Obligations            map[string][]string `json:"obligations"`
	CostsAndPayments       []string            `json:"costs_and_payments"`
	Risks                  []RiskItem          `json:"risks"`
	RedFlags               []string            `json:"red_flags"`
	QuestionsToAsk         []string            `json:"questions_to_ask"`
	NegotiationSuggestions []string            `json:"negotiation_suggestions"`
	DecisionAssist         DecisionAssist      `json:"decision_assist"`
}

// NewAnalysisReport returns a report with every field set to its empty
// default, so it marshals to empty lists rather than nulls.
func NewAnalysisReport() *AnalysisReport {
	return &AnalysisReport{
		Summary:                []string{},
		KeyTerms:               []string{},
		Obligations:            map[string][]string{},
		CostsAndPayments:       []string{},
		Risks:                  []RiskItem{},
		RedFlags:               []string{},
		QuestionsToAsk:         []string{},
		NegotiationSuggestions: []string{},
		DecisionAssist: DecisionAssist{
			Pros: []string{},
			Cons: []string{},
		},
	}
}
