package knowledge

// Disease is a diagnosable condition in the knowledge base.
// Lower Priority values are considered first when hypotheses tie.
type Disease struct {
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Priority    int    `json:"priority" yaml:"priority"`
}

// Symptom is a single yes/no question shown to the user.
type Symptom struct {
	Code     string `json:"code" yaml:"code"`
	Question string `json:"question" yaml:"question"`
}
