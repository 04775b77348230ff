package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenteval/internal/model"
)

func completeRating(q model.Question, value int) *model.QuestionRating {
	qr := &model.QuestionRating{QuestionID: q.ID}
	for _, a := range q.Answers {
		ar := &model.AnswerRating{AnswerID: a.ID}
		for _, dim := range model.Dimensions() {
			ar.SetScore(dim, value)
		}
		qr.AnswerRatings = append(qr.AnswerRatings, ar)
	}
	return qr
}

func TestBuildRowsOneRowPerAnswer(t *testing.T) {
	q := demoQuestions(7)[0]
	qr := completeRating(q, 5)

	rows, err := BuildRows("alice", 7, &q, qr)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].QID)
	assert.Equal(t, "question one", rows[0].QName)
	assert.Equal(t, "答案A", rows[0].AnswerTitle)
	assert.Equal(t, "alice", rows[0].UserName)
	assert.Equal(t, "minimax", rows[0].AgentLabel)
	assert.Equal(t, "planning", rows[0].AgentScene)
	assert.Equal(t, 7, rows[0].TopicID)
	for _, row := range rows {
		assert.Equal(t, 5, row.ItemVisual)
		assert.Equal(t, 5, row.ItemMajor)
		assert.Equal(t, 5, row.ItemData)
		assert.Equal(t, 5, row.ItemGuide)
	}
}

func TestBuildRowsRejectsMissingUserName(t *testing.T) {
	q := demoQuestions(7)[0]
	qr := completeRating(q, 5)

	_, err := BuildRows("", 7, &q, qr)
	assert.ErrorIs(t, err, ErrMissingKeyFields)
}

func TestBuildRowsRejectsForeignAnswer(t *testing.T) {
	q := demoQuestions(7)[0]
	qr := &model.QuestionRating{
		QuestionID:    q.ID,
		AnswerRatings: []*model.AnswerRating{{AnswerID: "9-9"}},
	}

	_, err := BuildRows("alice", 7, &q, qr)
	assert.Error(t, err)
}

func TestSyncQuestionUpsertsConcurrently(t *testing.T) {
	results := newFakeResultRepo()
	svc := NewSyncService(results)
	q := demoQuestions(7)[0]

	err := svc.SyncQuestion(context.Background(), "alice", 7, &q, completeRating(q, 4))
	require.NoError(t, err)
	assert.Equal(t, 2, results.rowCount())
	assert.Equal(t, 2, results.upsertCalls)
}

func TestSyncQuestionIsIdempotent(t *testing.T) {
	results := newFakeResultRepo()
	svc := NewSyncService(results)
	q := demoQuestions(7)[0]

	require.NoError(t, svc.SyncQuestion(context.Background(), "alice", 7, &q, completeRating(q, 4)))
	require.NoError(t, svc.SyncQuestion(context.Background(), "alice", 7, &q, completeRating(q, 2)))

	// same natural keys: rows updated in place, never duplicated
	assert.Equal(t, 2, results.rowCount())
	row := results.row(1, "答案B", "alice")
	require.NotNil(t, row)
	assert.Equal(t, 2, row.ItemVisual)
}

func TestSyncQuestionFailureNotifiesWithoutRetry(t *testing.T) {
	results := newFakeResultRepo()
	results.upsertErr = errors.New("mongo down")
	notifier := &fakeNotifier{}

	svc := NewSyncService(results)
	svc.SetNotifier(notifier)
	q := demoQuestions(7)[0]

	err := svc.SyncQuestion(context.Background(), "alice", 7, &q, completeRating(q, 4))
	require.Error(t, err)

	// both upserts attempted once, nothing persisted, one notice raised
	assert.Equal(t, 2, results.upsertCalls)
	assert.Equal(t, 0, results.rowCount())
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, "error", notifier.notices[0].Level)
	assert.Equal(t, []string{"alice"}, notifier.users)
}
