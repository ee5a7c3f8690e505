package diagnosis

import (
	"math"

	"symptom-checker/internal/knowledge"
)

const inconclusiveNote = "The recorded answers do not support any disease in the knowledge base. " +
	"This system only checks conditions it knows about; if the complaints persist or worsen, consult a healthcare professional."

// Resolve scores every surviving candidate disease against the collected
// answers and returns the ranked outcome. It is a pure function: the same
// snapshot and answers always produce the same result.
//
// Score is the percentage of a disease's rule symptoms answered "yes",
// rounded to an integer. Ties break by lower priority, then by code; the
// candidate walk already yields that order, so the first strictly better
// score wins.
func Resolve(kb *knowledge.Snapshot, answers []Answer) Result {
	answered := answerMap(answers)

	var winner *knowledge.Disease
	var winnerRules []string
	best := 0

	for _, d := range kb.Candidates() {
		rules := kb.Rules(d.Code)
		if RuledOut(rules, answered) {
			continue
		}
		yes := 0
		for _, sc := range rules {
			if answered[sc] {
				yes++
			}
		}
		score := int(math.Round(float64(yes) / float64(len(rules)) * 100))
		if score > best {
			d := d
			winner, winnerRules, best = &d, rules, score
		}
	}

	if winner == nil || best == 0 {
		return Result{MatchedSymptoms: []knowledge.Symptom{}, Note: inconclusiveNote}
	}

	// Matched symptoms follow the rule registration order, not answer order.
	matched := make([]knowledge.Symptom, 0, len(winnerRules))
	for _, sc := range winnerRules {
		if answered[sc] {
			if sym, ok := kb.Symptom(sc); ok {
				matched = append(matched, sym)
			}
		}
	}

	confidence := best
	return Result{
		Disease: &DiagnosedDisease{
			Code:        winner.Code,
			Name:        winner.Name,
			Description: winner.Description,
			Priority:    winner.Priority,
			Symptoms:    winnerRules,
		},
		Confidence:      &confidence,
		MatchedSymptoms: matched,
	}
}
