package diagnosis

import (
	"context"
	"fmt"
	"log"
	"time"

	"symptom-checker/internal/knowledge"
)

// KnowledgeSource supplies the consistent knowledge-base view a session holds
// for its whole lifetime.
type KnowledgeSource interface {
	Snapshot(ctx context.Context) (*knowledge.Snapshot, error)
}

// HistoryRecord is the persisted trace of a concluded session.
type HistoryRecord struct {
	SessionID   string
	DiseaseCode *string
	Confidence  *int
	Note        string
	ConcludedAt time.Time
}

// HistoryRecorder persists concluded diagnoses. Recording is best-effort:
// failures are logged, never surfaced to the user.
type HistoryRecorder interface {
	Record(ctx context.Context, rec HistoryRecord) error
}

// Step is what one start/answer call hands back: either the next question
// (status asking) or the final result (status concluded).
type Step struct {
	SessionID string             `json:"session_id"`
	Status    Status             `json:"status"`
	Question  *knowledge.Symptom `json:"question,omitempty"`
	Result    *Result            `json:"result,omitempty"`
}

// SessionView is a read-only description of a session's progress.
type SessionView struct {
	SessionID string             `json:"session_id"`
	Status    Status             `json:"status"`
	Answered  int                `json:"answered"`
	Question  *knowledge.Symptom `json:"question,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

type Service interface {
	Start(ctx context.Context) (*Step, error)
	Answer(ctx context.Context, sessionID, symptomCode string, value bool) (*Step, error)
	Inspect(ctx context.Context, sessionID string) (*SessionView, error)
	Result(ctx context.Context, sessionID string) (*Result, error)
}

type service struct {
	kb      KnowledgeSource
	store   *Store
	history HistoryRecorder
}

// NewService wires the session controller. history may be nil.
func NewService(kb KnowledgeSource, store *Store, history HistoryRecorder) Service {
	return &service{kb: kb, store: store, history: history}
}

// Start creates a session and asks the first question. A knowledge base with
// nothing to ask (no diseases or no rules) concludes immediately.
func (s *service) Start(ctx context.Context) (*Step, error) {
	snap, err := s.kb.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	if integrity := snap.Integrity(); integrity != nil {
		// Affected diseases are already excluded from inference; the session
		// proceeds on the rest.
		log.Printf("knowledge base integrity: %v", integrity)
	}

	sess := s.store.Create(snap)

	var step *Step
	err = s.store.Update(sess.ID, func(sess *Session) error {
		step = s.advance(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

// Answer records one response. The submitted symptom must be the question
// most recently handed out for this session; anything else is rejected and
// the session is left unchanged.
func (s *service) Answer(ctx context.Context, sessionID, symptomCode string, value bool) (*Step, error) {
	var step *Step
	err := s.store.Update(sessionID, func(sess *Session) error {
		if sess.Status != StatusAsking {
			return fmt.Errorf("session %s is concluded: %w", sessionID, ErrInvalidState)
		}
		if symptomCode != sess.Pending {
			return fmt.Errorf("symptom %s is not the pending question: %w", symptomCode, ErrInvalidState)
		}
		if err := sess.RecordAnswer(symptomCode, value); err != nil {
			return err
		}
		step = s.advance(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

// advance re-runs the question selector and either stays in asking with the
// next question or concludes and resolves. Caller holds the session lock.
func (s *service) advance(sess *Session) *Step {
	if q, ok := NextQuestion(sess.KB, sess.Answers); ok {
		sess.Pending = q.Code
		question := q
		return &Step{SessionID: sess.ID, Status: StatusAsking, Question: &question}
	}

	sess.Conclude()
	result := Resolve(sess.KB, sess.Answers)
	s.recordHistory(sess.ID, result)
	return &Step{SessionID: sess.ID, Status: StatusConcluded, Result: &result}
}

func (s *service) recordHistory(sessionID string, result Result) {
	if s.history == nil {
		return
	}
	rec := HistoryRecord{
		SessionID:   sessionID,
		Note:        result.Note,
		ConcludedAt: time.Now(),
	}
	if result.Disease != nil {
		code := result.Disease.Code
		rec.DiseaseCode = &code
	}
	if result.Confidence != nil {
		confidence := *result.Confidence
		rec.Confidence = &confidence
	}
	go func() {
		if err := s.history.Record(context.Background(), rec); err != nil {
			log.Printf("record diagnosis history for %s: %v", sessionID, err)
		}
	}()
}

func (s *service) Inspect(ctx context.Context, sessionID string) (*SessionView, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	view := &SessionView{
		SessionID: sess.ID,
		Status:    sess.Status,
		Answered:  len(sess.Answers),
		CreatedAt: sess.CreatedAt,
	}
	if sess.Status == StatusAsking && sess.Pending != "" {
		if sym, ok := sess.KB.Symptom(sess.Pending); ok {
			view.Question = &sym
		}
	}
	return view, nil
}

// Result recomputes the outcome of a concluded session. Resolution is pure,
// so repeated calls always agree with the Step returned at conclusion.
func (s *service) Result(ctx context.Context, sessionID string) (*Result, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusConcluded {
		return nil, fmt.Errorf("session %s has not concluded: %w", sessionID, ErrInvalidState)
	}
	result := Resolve(sess.KB, sess.Answers)
	return &result, nil
}
