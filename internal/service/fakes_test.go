package service

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"agenteval/internal/model"
)

// fakeResultRepo is an in-memory stand-in for the MongoDB result collection.
// Rows key on the same natural triple the real unique index enforces.
type fakeResultRepo struct {
	mu          sync.Mutex
	rows        map[string]*model.ResultRow
	upsertCalls int
	upsertErr   error
	fetchErr    error
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{rows: make(map[string]*model.ResultRow)}
}

func naturalKey(row *model.ResultRow) string {
	return fmt.Sprintf("%d|%s|%s", row.QID, row.AnswerTitle, row.UserName)
}

func (f *fakeResultRepo) Upsert(ctx context.Context, row *model.ResultRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	clone := *row
	f.rows[naturalKey(row)] = &clone
	return nil
}

func (f *fakeResultRepo) GetByUserAndTopic(ctx context.Context, userName string, topicID int) ([]*model.ResultRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []*model.ResultRow
	for _, row := range f.rows {
		if row.UserName == userName && row.TopicID == topicID {
			clone := *row
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeResultRepo) List(ctx context.Context, page, limit int) ([]*model.ResultRow, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ResultRow
	for _, row := range f.rows {
		clone := *row
		out = append(out, &clone)
	}
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, int64(len(f.rows)), nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], int64(len(f.rows)), nil
}

func (f *fakeResultRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

func (f *fakeResultRepo) DistinctUsers(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, row := range f.rows {
		if !seen[row.UserName] {
			seen[row.UserName] = true
			out = append(out, row.UserName)
		}
	}
	return out, nil
}

func (f *fakeResultRepo) DeleteByUserAndTopic(ctx context.Context, userName string, topicID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, row := range f.rows {
		if row.UserName == userName && row.TopicID == topicID {
			delete(f.rows, key)
		}
	}
	return nil
}

func (f *fakeResultRepo) rowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeResultRepo) row(qid int, answerTitle, userName string) *model.ResultRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[fmt.Sprintf("%d|%s|%s", qid, answerTitle, userName)]
}

// fakeTopicRepo serves a fixed question set per topic id
type fakeTopicRepo struct {
	questions map[int][]model.Question
}

func newFakeTopicRepo() *fakeTopicRepo {
	return &fakeTopicRepo{questions: make(map[int][]model.Question)}
}

func (f *fakeTopicRepo) CreateSet(ctx context.Context, set *model.TopicSet) (int, error) {
	return 1, nil
}

func (f *fakeTopicRepo) GetSet(ctx context.Context, id int) (*model.TopicSet, error) {
	if _, ok := f.questions[id]; !ok {
		return nil, nil
	}
	return &model.TopicSet{ID: id, Name: "set", Status: true}, nil
}

func (f *fakeTopicRepo) ListSets(ctx context.Context) ([]*model.TopicSet, error) { return nil, nil }

func (f *fakeTopicRepo) UpdateSet(ctx context.Context, id int, fields bson.M) error { return nil }

func (f *fakeTopicRepo) DeleteSet(ctx context.Context, id int) error { return nil }

func (f *fakeTopicRepo) GetQuestionsBySet(ctx context.Context, topicID int) ([]model.Question, error) {
	return f.questions[topicID], nil
}

func (f *fakeTopicRepo) ReplaceQuestions(ctx context.Context, topicID int, questions []model.Question) error {
	f.questions[topicID] = questions
	return nil
}

func (f *fakeTopicRepo) MaxQuestionID(ctx context.Context) (int, error) {
	max := 0
	for _, qs := range f.questions {
		for _, q := range qs {
			if q.ID > max {
				max = q.ID
			}
		}
	}
	return max, nil
}

// fakeBackupCache is an in-memory backup slot
type fakeBackupCache struct {
	mu      sync.Mutex
	snaps   map[string]*model.RatingSnapshot
	saveErr error
	loadErr error
	saves   int
}

func newFakeBackupCache() *fakeBackupCache {
	return &fakeBackupCache{snaps: make(map[string]*model.RatingSnapshot)}
}

func (f *fakeBackupCache) Save(ctx context.Context, snap *model.RatingSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.snaps[snap.UserID] = snap
	return nil
}

func (f *fakeBackupCache) Load(ctx context.Context, userID string) (*model.RatingSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.snaps[userID], nil
}

func (f *fakeBackupCache) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.snaps, userID)
	return nil
}

// fakeNotifier records notices
type fakeNotifier struct {
	mu      sync.Mutex
	notices []Notice
	users   []string
}

func (f *fakeNotifier) Notify(userID, level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	f.notices = append(f.notices, Notice{Level: level, Message: message})
}

// demoQuestions builds a small question set: two questions, two answers each
func demoQuestions(topicID int) []model.Question {
	return []model.Question{
		{
			ID:       1,
			TopicID:  topicID,
			Name:     "question one",
			Scenario: "planning",
			Answers: []model.Answer{
				{ID: "1-1", Title: "答案A", AgentLabel: "minimax", ImageURL: "https://example.com/1a.png"},
				{ID: "1-2", Title: "答案B", AgentLabel: "qwen", ImageURL: "https://example.com/1b.png"},
			},
		},
		{
			ID:       2,
			TopicID:  topicID,
			Name:     "question two",
			Scenario: "analysis",
			Answers: []model.Answer{
				{ID: "2-1", Title: "答案A", AgentLabel: "minimax", ImageURL: "https://example.com/2a.png"},
				{ID: "2-2", Title: "答案B", AgentLabel: "qwen", ImageURL: "https://example.com/2b.png"},
			},
		},
	}
}
