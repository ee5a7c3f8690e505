package diagnosis

import (
	"reflect"
	"testing"

	"symptom-checker/internal/knowledge"
)

func TestResolve_FullMatchWins(t *testing.T) {
	kb := twoDiseaseSnapshot()

	res := Resolve(kb, []Answer{
		{SymptomCode: "G01", Value: true},
		{SymptomCode: "G02", Value: true},
	})

	if res.Disease == nil {
		t.Fatal("expected a diagnosis")
	}
	if res.Disease.Code != "P01" {
		t.Errorf("expected P01 (100%% match) over P02 (50%%), got %s", res.Disease.Code)
	}
	if res.Confidence == nil || *res.Confidence != 100 {
		t.Errorf("expected confidence 100, got %v", res.Confidence)
	}
	if res.Note != "" {
		t.Errorf("conclusive result must not carry a note, got %q", res.Note)
	}
}

func TestResolve_PartialMatch(t *testing.T) {
	kb := twoDiseaseSnapshot()

	// P01 ruled out by G02=no; P02 keeps G01=yes of its two symptoms.
	res := Resolve(kb, []Answer{
		{SymptomCode: "G01", Value: true},
		{SymptomCode: "G02", Value: false},
	})

	if res.Disease == nil || res.Disease.Code != "P02" {
		t.Fatalf("expected P02, got %+v", res.Disease)
	}
	if res.Confidence == nil || *res.Confidence != 50 {
		t.Errorf("expected confidence 50, got %v", res.Confidence)
	}
}

func TestResolve_AllRuledOutIsInconclusive(t *testing.T) {
	kb := twoDiseaseSnapshot()

	res := Resolve(kb, []Answer{{SymptomCode: "G01", Value: false}})

	if res.Disease != nil {
		t.Errorf("expected no diagnosis, got %s", res.Disease.Code)
	}
	if res.Confidence != nil {
		t.Errorf("confidence must be nil when disease is nil, got %d", *res.Confidence)
	}
	if res.Note == "" {
		t.Error("inconclusive result must carry an explanatory note")
	}
	if len(res.MatchedSymptoms) != 0 {
		t.Errorf("expected no matched symptoms, got %d", len(res.MatchedSymptoms))
	}
}

func TestResolve_ZeroScoreIsInconclusive(t *testing.T) {
	kb := twoDiseaseSnapshot()

	// No answers at all: every survivor scores zero.
	res := Resolve(kb, nil)

	if res.Disease != nil || res.Confidence != nil {
		t.Errorf("expected inconclusive result with no answers, got %+v", res)
	}
}

func TestResolve_RuledOutNeverWins(t *testing.T) {
	kb := twoDiseaseSnapshot()

	// P01 has one yes but also one no: it must lose to P02 despite equal
	// yes counts, because the no eliminates it entirely.
	res := Resolve(kb, []Answer{
		{SymptomCode: "G01", Value: true},
		{SymptomCode: "G02", Value: false},
		{SymptomCode: "G03", Value: true},
	})

	if res.Disease == nil || res.Disease.Code != "P02" {
		t.Fatalf("expected P02, got %+v", res.Disease)
	}
	if *res.Confidence != 100 {
		t.Errorf("expected confidence 100, got %d", *res.Confidence)
	}
}

func TestResolve_TieBreakByPriorityThenCode(t *testing.T) {
	kb := knowledge.NewSnapshot(
		[]knowledge.Disease{
			{Code: "P03", Priority: 20},
			{Code: "P02", Priority: 10},
			{Code: "P01", Priority: 10},
		},
		[]knowledge.Symptom{
			{Code: "G01"}, {Code: "G02"}, {Code: "G03"},
		},
		map[string][]string{
			"P01": {"G01"},
			"P02": {"G02"},
			"P03": {"G03"},
		},
	)
	answers := []Answer{
		{SymptomCode: "G01", Value: true},
		{SymptomCode: "G02", Value: true},
		{SymptomCode: "G03", Value: true},
	}

	res := Resolve(kb, answers)
	if res.Disease == nil || res.Disease.Code != "P01" {
		t.Fatalf("expected P01 to win the tie (priority 10, lowest code), got %+v", res.Disease)
	}
}

func TestResolve_MatchedSymptomsFollowRuleOrder(t *testing.T) {
	kb := twoDiseaseSnapshot()

	// Answered in reverse order; matched list must still be rule order.
	res := Resolve(kb, []Answer{
		{SymptomCode: "G02", Value: true},
		{SymptomCode: "G01", Value: true},
	})

	if res.Disease == nil || res.Disease.Code != "P01" {
		t.Fatalf("expected P01, got %+v", res.Disease)
	}
	codes := make([]string, len(res.MatchedSymptoms))
	for i, s := range res.MatchedSymptoms {
		codes[i] = s.Code
	}
	want := []string{"G01", "G02"}
	if !reflect.DeepEqual(codes, want) {
		t.Errorf("expected matched symptoms %v, got %v", want, codes)
	}
}

func TestResolve_ConfidenceBounds(t *testing.T) {
	kb := twoDiseaseSnapshot()

	cases := [][]Answer{
		nil,
		{{SymptomCode: "G01", Value: true}},
		{{SymptomCode: "G01", Value: false}},
		{{SymptomCode: "G01", Value: true}, {SymptomCode: "G02", Value: true}},
		{{SymptomCode: "G01", Value: true}, {SymptomCode: "G02", Value: false}, {SymptomCode: "G03", Value: false}},
	}
	for i, answers := range cases {
		res := Resolve(kb, answers)
		if (res.Disease == nil) != (res.Confidence == nil) {
			t.Errorf("case %d: disease and confidence must be nil together", i)
		}
		if res.Confidence != nil && (*res.Confidence < 0 || *res.Confidence > 100) {
			t.Errorf("case %d: confidence %d out of range", i, *res.Confidence)
		}
	}
}

func TestResolve_Deterministic(t *testing.T) {
	kb := twoDiseaseSnapshot()
	answers := []Answer{
		{SymptomCode: "G01", Value: true},
		{SymptomCode: "G02", Value: false},
	}

	first := Resolve(kb, answers)
	for i := 0; i < 5; i++ {
		if got := Resolve(kb, answers); !reflect.DeepEqual(first, got) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, got)
		}
	}
}

func TestResolve_BrokenRuleSetExcluded(t *testing.T) {
	kb := knowledge.NewSnapshot(
		[]knowledge.Disease{
			{Code: "P01", Priority: 10},
			{Code: "P02", Priority: 20},
		},
		[]knowledge.Symptom{{Code: "G01"}},
		map[string][]string{
			"P01": {"G01", "G99"}, // G99 does not exist
			"P02": {"G01"},
		},
	)
	if kb.Integrity() == nil {
		t.Fatal("expected an integrity violation to be reported")
	}

	res := Resolve(kb, []Answer{{SymptomCode: "G01", Value: true}})
	if res.Disease == nil || res.Disease.Code != "P02" {
		t.Errorf("expected the broken P01 to be excluded from scoring, got %+v", res.Disease)
	}
}
