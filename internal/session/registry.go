package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"peerprep/avatar/internal/models"
)

// Registry holds interview sessions in memory for the lifetime of the
// process. Every mutation goes through the registry so concurrent requests
// for different sessions never serialize on anything but this lock, and a
// session is only ever written by one request at a time.
//
// Mutating operations on unknown ids are no-ops reporting absence; callers
// decide whether that is a NotFound for their client.
type Registry struct {
	sessions map[string]*models.InterviewSession
	mu       sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*models.InterviewSession),
	}
}

// Create registers a new session in the created state.
func (r *Registry) Create() models.InterviewSession {
	now := time.Now().UTC()
	s := &models.InterviewSession{
		SessionID: uuid.New().String(),
		State:     models.StateCreated,
		CreatedAt: now,
		UpdatedAt: now,
		Answers:   []models.AnswerRecord{},
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.SessionID] = s
	return snapshot(s)
}

// Get returns a snapshot copy of the session.
func (r *Registry) Get(sessionID string) (models.InterviewSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return models.InterviewSession{}, false
	}
	return snapshot(s), true
}

// UpdateState moves the session to the given lifecycle state.
func (r *Registry) UpdateState(sessionID string, state models.SessionState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	s.State = state
	s.UpdatedAt = time.Now().UTC()
	return true
}

// SetCurrentQuestion stores the question being asked and advances the
// asked counter. The full question is kept so the current question can be
// re-delivered without another provider round trip.
func (r *Registry) SetCurrentQuestion(sessionID string, q models.Question) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	q.Index = s.QuestionsAsked + 1
	s.CurrentQuestion = &q
	s.QuestionsAsked++
	s.UpdatedAt = time.Now().UTC()
	return true
}

// RecordAnswer appends an answer. Answers are append-only and keep call
// order; the registry does not check the question id against anything.
func (r *Registry) RecordAnswer(sessionID string, questionID int, answerText string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	now := time.Now().UTC()
	s.Answers = append(s.Answers, models.AnswerRecord{
		QuestionID: questionID,
		AnswerText: answerText,
		Timestamp:  now,
	})
	s.UpdatedAt = now
	return true
}

// AnswerOutcome reports how BeginAnswer disposed of a submission.
type AnswerOutcome int

const (
	AnswerAccepted AnswerOutcome = iota
	AnswerSessionMissing
	AnswerSessionClosed
	AnswerNotAwaited
)

// BeginAnswer records the answer and moves the session to processing in
// one step, so two concurrent submits for the same session cannot both
// pass the state check. The question id is stored as given; it is not
// compared against the open question.
func (r *Registry) BeginAnswer(sessionID string, questionID int, answerText string) AnswerOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return AnswerSessionMissing
	}
	if s.State.Terminal() {
		return AnswerSessionClosed
	}
	if s.State != models.StateWaitingForAnswer || s.CurrentQuestion == nil {
		return AnswerNotAwaited
	}

	now := time.Now().UTC()
	s.Answers = append(s.Answers, models.AnswerRecord{
		QuestionID: questionID,
		AnswerText: answerText,
		Timestamp:  now,
	})
	s.State = models.StateProcessing
	s.UpdatedAt = now
	return AnswerAccepted
}

// Complete marks the session completed.
func (r *Registry) Complete(sessionID string) bool {
	return r.UpdateState(sessionID, models.StateCompleted)
}

// Delete removes the session, reporting whether it existed.
func (r *Registry) Delete(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return false
	}
	delete(r.sessions, sessionID)
	return true
}

// Summary returns the compact session view.
func (r *Registry) Summary(sessionID string) (models.SessionSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return models.SessionSummary{}, false
	}

	summary := models.SessionSummary{
		SessionID:         s.SessionID,
		State:             s.State,
		QuestionsAnswered: len(s.Answers),
		CreatedAt:         s.CreatedAt,
	}
	if s.State == models.StateCompleted {
		completedAt := s.UpdatedAt
		summary.CompletedAt = &completedAt
	}
	return summary, true
}

// ActiveCount returns the number of sessions not in a terminal state.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, s := range r.sessions {
		if !s.State.Terminal() {
			count++
		}
	}
	return count
}

// PruneExpired drops sessions idle longer than idleFor. Non-terminal
// sessions pass through the expired state before removal. Returns the ids
// that were pruned.
func (r *Registry) PruneExpired(idleFor time.Duration) []string {
	cutoff := time.Now().UTC().Add(-idleFor)

	r.mu.Lock()
	defer r.mu.Unlock()

	var pruned []string
	for id, s := range r.sessions {
		if s.UpdatedAt.After(cutoff) {
			continue
		}
		if !s.State.Terminal() {
			s.State = models.StateExpired
		}
		delete(r.sessions, id)
		pruned = append(pruned, id)
	}
	return pruned
}

// snapshot copies the session so readers never share slices or pointers
// with the stored record.
func snapshot(s *models.InterviewSession) models.InterviewSession {
	out := *s
	out.Answers = make([]models.AnswerRecord, len(s.Answers))
	copy(out.Answers, s.Answers)
	if s.CurrentQuestion != nil {
		q := *s.CurrentQuestion
		out.CurrentQuestion = &q
	}
	return out
}
