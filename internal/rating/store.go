// Package rating owns the in-session rating state: per-question, per-answer,
// per-dimension scores for the active evaluator. All reads and writes to
// ratings pass through the Store; persistence (backup slot, remote rows) is
// layered on top by the service package.
package rating

import (
	"errors"
	"sync"
	"time"

	"agenteval/internal/model"
)

var (
	ErrInvalidScoreValue      = errors.New("score value must be between 1 and 5")
	ErrInvalidDimension       = errors.New("unknown score dimension")
	ErrInvalidAnswerReference = errors.New("answer does not belong to the question")
	ErrUnknownQuestion        = errors.New("question is not part of the active set")
)

// Store is the single source of truth for one session's rating state.
// It is owned by exactly one session; mutations are serialized by a mutex
// since HTTP handlers reach it concurrently. A mutation either fully applies
// or leaves the state untouched.
type Store struct {
	mu        sync.Mutex
	questions []model.Question
	byID      map[int]*model.Question
	ratings   map[int]*model.QuestionRating
}

// NewStore creates an empty store bound to the active question set
func NewStore(questions []model.Question) *Store {
	s := &Store{
		questions: questions,
		byID:      make(map[int]*model.Question, len(questions)),
		ratings:   make(map[int]*model.QuestionRating),
	}
	for i := range s.questions {
		s.byID[s.questions[i].ID] = &s.questions[i]
	}
	return s
}

// emptyRating synthesizes a zero-score rating covering every answer of q.
// It is not installed into the store; absence stays absence until the first
// mutation.
func emptyRating(q *model.Question) *model.QuestionRating {
	qr := &model.QuestionRating{QuestionID: q.ID}
	for _, a := range q.Answers {
		qr.AnswerRatings = append(qr.AnswerRatings, &model.AnswerRating{AnswerID: a.ID})
	}
	return qr
}

// QuestionRating returns the current rating for questionID, or a synthesized
// empty one if the question has not been scored yet. Reading never mutates
// store state; the returned value is a copy.
func (s *Store) QuestionRating(questionID int) (*model.QuestionRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.byID[questionID]
	if !ok {
		return nil, ErrUnknownQuestion
	}
	if qr, ok := s.ratings[questionID]; ok {
		return qr.Clone(), nil
	}
	return emptyRating(q), nil
}

// UpdateScore upserts the score for one (question, answer, dimension) cell and
// returns the post-mutation rating. The question's rating record is created
// lazily on first score. Validation happens before any state changes.
func (s *Store) UpdateScore(questionID int, answerID string, dim model.Dimension, value int) (*model.QuestionRating, error) {
	if value < model.MinScoreValue || value > model.MaxScoreValue {
		return nil, ErrInvalidScoreValue
	}
	if !dim.IsValid() {
		return nil, ErrInvalidDimension
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.byID[questionID]
	if !ok {
		return nil, ErrUnknownQuestion
	}
	if q.Answer(answerID) == nil {
		return nil, ErrInvalidAnswerReference
	}

	qr, ok := s.ratings[questionID]
	if !ok {
		qr = emptyRating(q)
		s.ratings[questionID] = qr
	}
	ar := qr.AnswerRating(answerID)
	if ar == nil {
		// question set changed under us; treat like a bad reference
		return nil, ErrInvalidAnswerReference
	}
	ar.SetScore(dim, value)
	return qr.Clone(), nil
}

// IsComplete reports whether every answer of the question has all dimensions
// scored above zero. Unknown or unrated questions are not complete.
func (s *Store) IsComplete(questionID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	qr, ok := s.ratings[questionID]
	return ok && qr.IsComplete()
}

// Progress counts complete questions against the active set size
func (s *Store) Progress() model.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Progress{Total: len(s.questions)}
	for _, qr := range s.ratings {
		if qr.IsComplete() {
			p.Completed++
		}
	}
	return p
}

// Snapshot captures the full rating state for the durable backup slot,
// in question-set order for stable output.
func (s *Store) Snapshot(userID string, topicID int) *model.RatingSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &model.RatingSnapshot{
		UserID:  userID,
		TopicID: topicID,
		SavedAt: time.Now(),
	}
	for i := range s.questions {
		if qr, ok := s.ratings[s.questions[i].ID]; ok {
			snap.QuestionRatings = append(snap.QuestionRatings, qr.Clone())
		}
	}
	return snap
}

// Restore replaces the store's state with the snapshot's ratings. Ratings for
// questions or answers no longer in the active set are dropped; totals are
// recomputed rather than trusted.
func (s *Store) Restore(snap *model.RatingSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ratings = make(map[int]*model.QuestionRating)
	if snap == nil {
		return
	}
	for _, saved := range snap.QuestionRatings {
		q, ok := s.byID[saved.QuestionID]
		if !ok {
			continue
		}
		qr := emptyRating(q)
		for _, ar := range saved.AnswerRatings {
			target := qr.AnswerRating(ar.AnswerID)
			if target == nil {
				continue
			}
			for _, sc := range ar.Scores {
				if !sc.Dimension.IsValid() || sc.Value <= 0 {
					continue
				}
				target.SetScore(sc.Dimension, sc.Value)
			}
		}
		s.ratings[q.ID] = qr
	}
}

// Clear drops all rating state; the question set stays bound
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = make(map[int]*model.QuestionRating)
}

// Questions returns the active question set
func (s *Store) Questions() []model.Question {
	return s.questions
}

// Question returns the active question with the given id, nil if unknown
func (s *Store) Question(questionID int) *model.Question {
	return s.byID[questionID]
}
