package diagnosis

import "symptom-checker/internal/knowledge"

// RuledOut reports whether a disease has been eliminated: under the
// closed-world assumption, a single "no" to any symptom in its rule set rules
// the disease out for the rest of the session. Both the question selector and
// the resolver apply this same rule.
func RuledOut(ruleSymptoms []string, answers map[string]bool) bool {
	for _, sc := range ruleSymptoms {
		if value, answered := answers[sc]; answered && !value {
			return true
		}
	}
	return false
}

// NextQuestion picks the next symptom to ask about, or reports that the
// session is ready for conclusion. It is a pure function of the snapshot and
// the answers so far.
//
// The walk is deterministic: candidate diseases in (priority, code) order,
// each rule set in registration order, first unanswered symptom of the first
// surviving hypothesis wins. Answered codes are always skipped, so a symptom
// is never asked twice. Conclusion is signalled when a surviving hypothesis
// has every rule symptom answered "yes" (it is proven, nothing more to ask)
// or when every disease has been ruled out.
func NextQuestion(kb *knowledge.Snapshot, answers []Answer) (knowledge.Symptom, bool) {
	answered := answerMap(answers)

	for _, d := range kb.Candidates() {
		rules := kb.Rules(d.Code)
		if RuledOut(rules, answered) {
			continue
		}

		next := ""
		for _, sc := range rules {
			if _, done := answered[sc]; !done {
				next = sc
				break
			}
		}
		if next == "" {
			// Every rule symptom answered "yes": hypothesis proven.
			return knowledge.Symptom{}, false
		}
		if sym, ok := kb.Symptom(next); ok {
			return sym, true
		}
	}
	return knowledge.Symptom{}, false
}
