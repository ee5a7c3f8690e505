package diagnosis

import (
	"errors"
	"fmt"
	"time"

	"symptom-checker/internal/knowledge"
)

var (
	// ErrSessionNotFound is returned for unknown or expired sessions. The
	// caller recovers by starting a fresh session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidState is returned when an answer is submitted out of order,
	// as a duplicate, or to a concluded session.
	ErrInvalidState = errors.New("invalid session state")
)

type Status string

const (
	StatusAsking    Status = "asking"
	StatusConcluded Status = "concluded"
)

// Answer is one recorded yes/no response. Answers keep insertion order, which
// is the order questions were asked.
type Answer struct {
	SymptomCode string `json:"symptom_code"`
	Value       bool   `json:"answer"`
}

// Session is one user's diagnosis run. It holds the knowledge-base snapshot
// captured at start so administrative writes are never observed mid-session.
type Session struct {
	ID        string
	Status    Status
	Answers   []Answer
	Pending   string // symptom code of the question currently awaiting an answer
	CreatedAt time.Time
	KB        *knowledge.Snapshot
}

// RecordAnswer appends one answer. Re-answering an already answered symptom
// is rejected rather than overwritten, so every recorded answer is final.
func (s *Session) RecordAnswer(symptomCode string, value bool) error {
	if s.Status != StatusAsking {
		return fmt.Errorf("session %s is concluded: %w", s.ID, ErrInvalidState)
	}
	for _, a := range s.Answers {
		if a.SymptomCode == symptomCode {
			return fmt.Errorf("symptom %s already answered: %w", symptomCode, ErrInvalidState)
		}
	}
	s.Answers = append(s.Answers, Answer{SymptomCode: symptomCode, Value: value})
	return nil
}

// Conclude moves the session to its terminal state.
func (s *Session) Conclude() {
	s.Status = StatusConcluded
	s.Pending = ""
}

func answerMap(answers []Answer) map[string]bool {
	m := make(map[string]bool, len(answers))
	for _, a := range answers {
		m[a.SymptomCode] = a.Value
	}
	return m
}

// DiagnosedDisease is the winning disease as reported to the caller.
type DiagnosedDisease struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	Symptoms    []string `json:"symptoms"`
}

// Result is the outcome of a concluded session. Disease and Confidence are
// nil together: an inconclusive run always carries an explanatory note.
type Result struct {
	Disease         *DiagnosedDisease   `json:"disease"`
	Confidence      *int                `json:"confidence"`
	MatchedSymptoms []knowledge.Symptom `json:"matched_symptoms"`
	Note            string              `json:"note,omitempty"`
}
