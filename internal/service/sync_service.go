package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"agenteval/internal/model"
	"agenteval/internal/repository"
)

// ErrMissingKeyFields means a row's natural key (question id, answer title,
// user name) is incomplete; persisting it would be meaningless, so the row is
// rejected locally without a network call.
var ErrMissingKeyFields = errors.New("result row is missing natural key fields")

// SyncService propagates locally-complete judgments to the remote store.
// The natural-key upsert makes every sync idempotent: rapid re-syncs of the
// same question overwrite, never duplicate. There is no version counter, so
// two in-flight upserts for one key may land out of order and leave stale
// values until the next edit re-syncs the question. Accepted trade-off.
type SyncService struct {
	results  repository.ResultRepo
	notifier Notifier
}

// NewSyncService creates a new sync service
func NewSyncService(results repository.ResultRepo) *SyncService {
	return &SyncService{results: results}
}

// SetNotifier sets the sink for non-blocking failure notices
func (s *SyncService) SetNotifier(n Notifier) {
	s.notifier = n
}

// BuildRows converts one question's rating into persisted rows, one per
// answer, carrying the denormalized context the dashboard reads back.
func BuildRows(userName string, topicID int, q *model.Question, qr *model.QuestionRating) ([]*model.ResultRow, error) {
	rows := make([]*model.ResultRow, 0, len(qr.AnswerRatings))
	for _, ar := range qr.AnswerRatings {
		answer := q.Answer(ar.AnswerID)
		if answer == nil {
			return nil, fmt.Errorf("answer %s not part of question %d", ar.AnswerID, q.ID)
		}

		row := &model.ResultRow{
			QID:         q.ID,
			QName:       q.Name,
			AnswerTitle: answer.Title,
			UserName:    userName,
			AgentLabel:  answer.AgentLabel,
			AgentScene:  q.Scenario,
			TopicID:     topicID,
		}
		for _, sc := range ar.Scores {
			row.SetDimensionScore(sc.Dimension, sc.Value)
		}
		if !row.HasNaturalKey() {
			return nil, ErrMissingKeyFields
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SyncQuestion upserts every answer row of one complete question. Answers are
// independent, so their upserts run concurrently; the question counts as
// synced only once all of them settle. Failures are logged and surfaced, never
// retried here: the next mutation to the question triggers a fresh full sync.
func (s *SyncService) SyncQuestion(ctx context.Context, userName string, topicID int, q *model.Question, qr *model.QuestionRating) error {
	rows, err := BuildRows(userName, topicID, q, qr)
	if err != nil {
		log.Printf("[sync] question %d for %s rejected: %v", q.ID, userName, err)
		s.notify(userName, "warning", fmt.Sprintf("题目 %d 的评分未能保存: %v", q.ID, err))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, row := range rows {
		row := row
		g.Go(func() error {
			if err := s.results.Upsert(gctx, row); err != nil {
				return fmt.Errorf("upsert %d/%s/%s: %w", row.QID, row.AnswerTitle, row.UserName, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("[sync] question %d for %s failed: %v", q.ID, userName, err)
		s.notify(userName, "error", fmt.Sprintf("题目 %d 的评分同步失败，下次修改时将自动重试", q.ID))
		return err
	}

	log.Printf("[sync] question %d for %s: %d rows upserted", q.ID, userName, len(rows))
	return nil
}

func (s *SyncService) notify(userID, level, message string) {
	if s.notifier != nil {
		s.notifier.Notify(userID, level, message)
	}
}
