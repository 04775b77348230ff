package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"agenteval/internal/cache"
	"agenteval/internal/model"
	"agenteval/internal/rating"
	"agenteval/internal/repository"
)

// ErrNoSession means the user has not started an evaluation session yet
var ErrNoSession = errors.New("no active evaluation session")

const syncTimeout = 30 * time.Second

// EvaluationService owns one rating store per active evaluator and drives the
// persistence around it: every mutation mirrors the full state into the
// backup slot synchronously and, when the touched question is complete,
// schedules a remote sync that never blocks the caller.
type EvaluationService struct {
	topics  repository.TopicRepo
	backup  cache.BackupCache
	results repository.ResultRepo
	syncSvc *SyncService

	mu       sync.RWMutex
	sessions map[string]*session

	// seam for tests; production runs side effects on their own goroutine
	runAsync func(fn func())
}

type session struct {
	userID   string
	userName string
	topicID  int
	store    *rating.Store
}

// SessionState is returned when a session starts: everything the evaluation
// page needs to render, with prior progress already reconciled in.
type SessionState struct {
	TopicID   int                     `json:"topicId"`
	Questions []model.Question        `json:"questions"`
	Ratings   []*model.QuestionRating `json:"ratings"`
	Progress  model.Progress          `json:"progress"`
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(topics repository.TopicRepo, results repository.ResultRepo, backup cache.BackupCache, syncSvc *SyncService) *EvaluationService {
	return &EvaluationService{
		topics:   topics,
		results:  results,
		backup:   backup,
		syncSvc:  syncSvc,
		sessions: make(map[string]*session),
		runAsync: func(fn func()) { go fn() },
	}
}

// StartSession binds the user to their topic set and reconciles initial
// rating state: remote rows win, the local backup is the fallback when the
// remote store errors or is empty, and an empty store is the normal cold
// start. Restarting replaces any previous session for the user.
func (s *EvaluationService) StartSession(ctx context.Context, userID, userName string, topicID int) (*SessionState, error) {
	questions, err := s.topics.GetQuestionsBySet(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for topic %d: %w", topicID, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("topic set %d has no questions", topicID)
	}

	store := rating.NewStore(questions)
	s.reconcile(ctx, store, userID, userName, topicID)

	sess := &session{
		userID:   userID,
		userName: userName,
		topicID:  topicID,
		store:    store,
	}

	s.mu.Lock()
	s.sessions[userID] = sess
	s.mu.Unlock()

	snap := store.Snapshot(userID, topicID)
	return &SessionState{
		TopicID:   topicID,
		Questions: questions,
		Ratings:   snap.QuestionRatings,
		Progress:  store.Progress(),
	}, nil
}

// reconcile installs the session's initial state. Degrades instead of
// failing: a dead remote store plus an empty backup just means starting over.
func (s *EvaluationService) reconcile(ctx context.Context, store *rating.Store, userID, userName string, topicID int) {
	rows, err := s.results.GetByUserAndTopic(ctx, userName, topicID)
	if err == nil && len(rows) > 0 {
		store.Restore(snapshotFromRows(userID, topicID, rows, store))
		log.Printf("[reconcile] user=%s topic=%d: restored %d remote rows", userName, topicID, len(rows))
		return
	}
	if err != nil {
		log.Printf("[reconcile] user=%s topic=%d: remote fetch failed, trying backup: %v", userName, topicID, err)
	}

	snap, berr := s.backup.Load(ctx, userID)
	if berr != nil {
		log.Printf("[reconcile] user=%s: backup read failed: %v", userName, berr)
	}
	if snap != nil {
		store.Restore(snap)
		log.Printf("[reconcile] user=%s topic=%d: restored local backup from %s", userName, topicID, snap.SavedAt.Format(time.RFC3339))
		return
	}

	log.Printf("[reconcile] user=%s topic=%d: starting empty", userName, topicID)
}

// snapshotFromRows converts persisted rows back into rating state: rows group
// by question, then answer title, which maps back to the answer id through
// the active question set. Rows for unknown questions or answers are skipped;
// missing dimension columns read as 0 and stay unrated.
func snapshotFromRows(userID string, topicID int, rows []*model.ResultRow, store *rating.Store) *model.RatingSnapshot {
	byQuestion := make(map[int]*model.QuestionRating)
	var order []int
	for _, row := range rows {
		question := store.Question(row.QID)
		if question == nil {
			continue
		}
		answer := answerByTitle(question, row.AnswerTitle)
		if answer == nil {
			continue
		}

		qr, ok := byQuestion[row.QID]
		if !ok {
			qr = &model.QuestionRating{QuestionID: row.QID}
			byQuestion[row.QID] = qr
			order = append(order, row.QID)
		}

		ar := &model.AnswerRating{AnswerID: answer.ID}
		for dim, value := range row.DimensionScores() {
			if value > 0 {
				ar.SetScore(dim, value)
			}
		}
		qr.AnswerRatings = append(qr.AnswerRatings, ar)
	}

	snap := &model.RatingSnapshot{UserID: userID, TopicID: topicID}
	for _, qid := range order {
		snap.QuestionRatings = append(snap.QuestionRatings, byQuestion[qid])
	}
	return snap
}

func answerByTitle(q *model.Question, title string) *model.Answer {
	for i := range q.Answers {
		if q.Answers[i].Title == title {
			return &q.Answers[i]
		}
	}
	return nil
}

// UpdateScore is the single mutation path. The store mutation and the backup
// mirror happen synchronously; the remote sync is scheduled and the call
// returns without waiting for it. Backup failures are logged and swallowed.
func (s *EvaluationService) UpdateScore(ctx context.Context, userID string, questionID int, answerID string, dim model.Dimension, value int) (*model.QuestionRating, model.Progress, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, model.Progress{}, err
	}

	qr, err := sess.store.UpdateScore(questionID, answerID, dim, value)
	if err != nil {
		return nil, model.Progress{}, err
	}

	if berr := s.backup.Save(ctx, sess.store.Snapshot(sess.userID, sess.topicID)); berr != nil {
		log.Printf("[backup] write for user %s failed: %v", sess.userName, berr)
	}

	if qr.IsComplete() {
		s.scheduleSync(sess, questionID, qr)
	}

	return qr, sess.store.Progress(), nil
}

// scheduleSync fires a full-question sync off the mutation path. Runs for
// every completing mutation, including edits to already-complete questions,
// so corrections propagate as updates.
func (s *EvaluationService) scheduleSync(sess *session, questionID int, qr *model.QuestionRating) {
	question := sess.store.Question(questionID)
	if question == nil {
		return
	}

	s.runAsync(func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[sync] recovered from panic syncing question %d: %v", questionID, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		// errors are logged and surfaced inside SyncQuestion; nothing to do here
		_ = s.syncSvc.SyncQuestion(ctx, sess.userName, sess.topicID, question, qr)
	})
}

// QuestionRating returns the current rating for one question of the session
func (s *EvaluationService) QuestionRating(userID string, questionID int) (*model.QuestionRating, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	return sess.store.QuestionRating(questionID)
}

// Progress returns the session's completed/total question counts
func (s *EvaluationService) Progress(userID string) (model.Progress, error) {
	sess, err := s.session(userID)
	if err != nil {
		return model.Progress{}, err
	}
	return sess.store.Progress(), nil
}

// ClearAll wipes the in-memory state and the backup slot. Remote rows stay;
// removing those is an administrative operation on the dashboard side.
func (s *EvaluationService) ClearAll(ctx context.Context, userID string) error {
	sess, err := s.session(userID)
	if err != nil {
		return err
	}
	sess.store.Clear()
	if berr := s.backup.Delete(ctx, userID); berr != nil {
		log.Printf("[backup] delete for user %s failed: %v", sess.userName, berr)
	}
	return nil
}

// EndSession drops the user's session; rating state lives on in the backup
// slot and the remote store.
func (s *EvaluationService) EndSession(userID string) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

func (s *EvaluationService) session(userID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}
