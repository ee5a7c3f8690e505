package knowledge

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Snapshot is an immutable in-memory view of the knowledge base. A diagnosis
// session captures one at start so that administrative writes are never
// observed mid-session.
type Snapshot struct {
	diseases []Disease
	symptoms []Symptom

	symptomByCode map[string]Symptom
	rules         map[string][]string

	// candidates are the diseases usable for inference: non-empty rule set
	// with every referenced symptom present, ordered by (priority, code).
	candidates []Disease
	integrity  *multierror.Error
}

// NewSnapshot builds a snapshot from raw knowledge-base rows. Rule entries
// that reference unknown symptoms or diseases are recorded as integrity
// violations and the affected disease is excluded from inference; the
// snapshot itself stays usable.
func NewSnapshot(diseases []Disease, symptoms []Symptom, rules map[string][]string) *Snapshot {
	s := &Snapshot{
		diseases:      append([]Disease(nil), diseases...),
		symptoms:      append([]Symptom(nil), symptoms...),
		symptomByCode: make(map[string]Symptom, len(symptoms)),
		rules:         make(map[string][]string, len(rules)),
	}

	sort.SliceStable(s.diseases, func(i, j int) bool {
		if s.diseases[i].Priority != s.diseases[j].Priority {
			return s.diseases[i].Priority < s.diseases[j].Priority
		}
		return s.diseases[i].Code < s.diseases[j].Code
	})
	sort.SliceStable(s.symptoms, func(i, j int) bool {
		return s.symptoms[i].Code < s.symptoms[j].Code
	})

	for _, sym := range s.symptoms {
		s.symptomByCode[sym.Code] = sym
	}

	diseaseCodes := make(map[string]bool, len(s.diseases))
	for _, d := range s.diseases {
		diseaseCodes[d.Code] = true
	}

	for code, set := range rules {
		s.rules[code] = append([]string(nil), set...)
		if !diseaseCodes[code] {
			s.integrity = multierror.Append(s.integrity,
				fmt.Errorf("rule references unknown disease %q", code))
		}
	}

	for _, d := range s.diseases {
		set := s.rules[d.Code]
		if len(set) == 0 {
			continue
		}
		ok := true
		for _, sc := range set {
			if _, found := s.symptomByCode[sc]; !found {
				s.integrity = multierror.Append(s.integrity,
					fmt.Errorf("disease %q rule references unknown symptom %q", d.Code, sc))
				ok = false
			}
		}
		if ok {
			s.candidates = append(s.candidates, d)
		}
	}

	return s
}

// Diseases returns all diseases ordered by (priority, code).
func (s *Snapshot) Diseases() []Disease {
	return append([]Disease(nil), s.diseases...)
}

// Symptoms returns all symptoms ordered by code.
func (s *Snapshot) Symptoms() []Symptom {
	return append([]Symptom(nil), s.symptoms...)
}

// Symptom looks up one symptom by code.
func (s *Snapshot) Symptom(code string) (Symptom, bool) {
	sym, ok := s.symptomByCode[code]
	return sym, ok
}

// Rules returns the rule symptom codes for a disease in registration order.
func (s *Snapshot) Rules(diseaseCode string) []string {
	return append([]string(nil), s.rules[diseaseCode]...)
}

// Candidates returns the diseases eligible for inference, ordered by
// (priority, code). Diseases with empty or broken rule sets are not included.
func (s *Snapshot) Candidates() []Disease {
	return append([]Disease(nil), s.candidates...)
}

// Integrity reports accumulated referential violations, or nil if the
// knowledge base is consistent.
func (s *Snapshot) Integrity() error {
	return s.integrity.ErrorOrNil()
}
