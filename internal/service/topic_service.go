package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"agenteval/internal/model"
	"agenteval/internal/repository"
)

// ErrEmptyImport means the uploaded CSV had no question rows
var ErrEmptyImport = errors.New("import file contains no question rows")

// agentColumns lists the per-agent result columns of an import file, in the
// order their answers are labelled (答案A, 答案B, ...). Raters only ever see
// the labels; the agent name stays in the persisted row for the dashboard.
var agentColumns = []string{"minimax", "qwen", "deepseek", "chatgpt", "manus", "navos"}

// headerAliases maps the header spellings seen in real upload files onto
// canonical column keys.
var headerAliases = map[string]string{
	"题目id": "id", "id": "id", "question_id": "id", "questionid": "id",
	"题目名称": "name", "名称": "name", "name": "name", "title": "name",
	"question_name": "name", "questionname": "name",
	"场景": "scenario", "scenario": "scenario", "scene": "scenario",
	"context": "scenario", "情境": "scenario",
	"minimax结果": "minimax", "minimax": "minimax", "minimax_result": "minimax", "minimaxresult": "minimax",
	"qwen结果": "qwen", "qwen": "qwen", "qwen_result": "qwen", "qwenresult": "qwen",
	"deepseek结果": "deepseek", "deepseek": "deepseek", "deepseek_result": "deepseek", "deepseekresult": "deepseek",
	"chatgpt结果": "chatgpt", "chatgpt": "chatgpt", "chatgpt_result": "chatgpt", "chatgptresult": "chatgpt",
	"manus结果": "manus", "manus": "manus", "manus_result": "manus", "manusresult": "manus",
	"navos结果": "navos", "navos": "navos", "navos_result": "navos", "navosresult": "navos",
}

// TopicService handles topic-set CRUD and question imports
type TopicService struct {
	topics repository.TopicRepo
}

// NewTopicService creates a new topic service
func NewTopicService(topics repository.TopicRepo) *TopicService {
	return &TopicService{topics: topics}
}

// Create inserts a new topic set
func (s *TopicService) Create(ctx context.Context, set *model.TopicSet) (int, error) {
	return s.topics.CreateSet(ctx, set)
}

// Get returns one topic set, nil when absent
func (s *TopicService) Get(ctx context.Context, id int) (*model.TopicSet, error) {
	return s.topics.GetSet(ctx, id)
}

// List returns all topic sets
func (s *TopicService) List(ctx context.Context) ([]*model.TopicSet, error) {
	return s.topics.ListSets(ctx)
}

// Rename updates a set's name
func (s *TopicService) Rename(ctx context.Context, id int, name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return errors.New("topic set name must be at least 2 characters")
	}
	return s.topics.UpdateSet(ctx, id, bson.M{"name": name})
}

// SetStatus toggles whether the set is open for evaluation
func (s *TopicService) SetStatus(ctx context.Context, id int, status bool) error {
	return s.topics.UpdateSet(ctx, id, bson.M{"status": status})
}

// Delete removes the set and its questions
func (s *TopicService) Delete(ctx context.Context, id int) error {
	return s.topics.DeleteSet(ctx, id)
}

// Questions returns the set's questions ordered by id
func (s *TopicService) Questions(ctx context.Context, topicID int) ([]model.Question, error) {
	return s.topics.GetQuestionsBySet(ctx, topicID)
}

// ImportCSV parses an uploaded question file and replaces the set's
// questions. Headers are matched case-insensitively against known aliases;
// each recognized agent column becomes one blind-labelled answer. Rows
// without an explicit id get the next free one.
func (s *TopicService) ImportCSV(ctx context.Context, topicID int, r io.Reader) ([]model.Question, error) {
	set, err := s.topics.GetSet(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("topic set %d not found", topicID)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int) // canonical key -> column index
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := headerAliases[key]; ok {
			columns[canonical] = i
		}
	}
	if _, ok := columns["name"]; !ok {
		return nil, errors.New("import file has no question name column")
	}

	nextID, err := s.topics.MaxQuestionID(ctx)
	if err != nil {
		return nil, err
	}

	cell := func(record []string, key string) string {
		idx, ok := columns[key]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var questions []model.Question
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		name := cell(record, "name")
		if name == "" {
			continue
		}

		id := 0
		if raw := cell(record, "id"); raw != "" {
			id, _ = strconv.Atoi(raw)
		}
		if id == 0 {
			nextID++
			id = nextID
		} else if id > nextID {
			nextID = id
		}

		q := model.Question{
			ID:       id,
			TopicID:  topicID,
			Name:     name,
			Scenario: cell(record, "scenario"),
		}
		for i, agent := range agentColumns {
			url := cell(record, agent)
			if url == "" {
				continue
			}
			q.Answers = append(q.Answers, model.Answer{
				ID:         fmt.Sprintf("%d-%d", id, len(q.Answers)+1),
				Title:      fmt.Sprintf("答案%c", 'A'+i),
				AgentLabel: agent,
				ImageURL:   url,
			})
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, ErrEmptyImport
	}
	if err := s.topics.ReplaceQuestions(ctx, topicID, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// SampleCSV renders the template file admins download before importing
func (s *TopicService) SampleCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	rows := [][]string{
		{"题目ID", "题目名称", "场景", "MiniMax结果", "Qwen结果", "DeepSeek结果", "ChatGPT结果", "Manus结果", "Navos结果"},
		{"1", "示例题目1", "对话场景", "https://example.com/minimax1.jpg", "https://example.com/qwen1.jpg", "https://example.com/deepseek1.jpg", "https://example.com/chatgpt1.jpg", "https://example.com/manus1.jpg", "https://example.com/navos1.jpg"},
		{"2", "示例题目2", "推理场景", "https://example.com/minimax2.jpg", "https://example.com/qwen2.jpg", "https://example.com/deepseek2.jpg", "https://example.com/chatgpt2.jpg", "https://example.com/manus2.jpg", "https://example.com/navos2.jpg"},
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
