package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCSVMapsAliasedHeaders(t *testing.T) {
	topics := newFakeTopicRepo()
	topics.questions[3] = nil
	svc := NewTopicService(topics)

	csvData := strings.Join([]string{
		"题目ID,题目名称,场景,MiniMax结果,Qwen结果,Navos结果",
		"10,行程规划题,出行,https://img/a.png,https://img/b.png,https://img/c.png",
		"11,数据分析题,报表,https://img/d.png,,https://img/e.png",
	}, "\n")

	questions, err := svc.ImportCSV(context.Background(), 3, strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, questions, 2)

	q := questions[0]
	assert.Equal(t, 10, q.ID)
	assert.Equal(t, 3, q.TopicID)
	assert.Equal(t, "行程规划题", q.Name)
	assert.Equal(t, "出行", q.Scenario)
	require.Len(t, q.Answers, 3)
	assert.Equal(t, "10-1", q.Answers[0].ID)
	assert.Equal(t, "minimax", q.Answers[0].AgentLabel)
	assert.Equal(t, "https://img/a.png", q.Answers[0].ImageURL)
	assert.Equal(t, "navos", q.Answers[2].AgentLabel)

	// empty agent cell drops that answer
	assert.Len(t, questions[1].Answers, 2)

	stored, err := topics.GetQuestionsBySet(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestImportCSVAssignsMissingIDs(t *testing.T) {
	topics := newFakeTopicRepo()
	topics.questions[1] = demoQuestions(1) // existing max id is 2
	topics.questions[3] = nil
	svc := NewTopicService(topics)

	csvData := strings.Join([]string{
		"题目名称,场景,MiniMax结果",
		"新题一,场景一,https://img/1.png",
		"新题二,场景二,https://img/2.png",
	}, "\n")

	questions, err := svc.ImportCSV(context.Background(), 3, strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, 3, questions[0].ID)
	assert.Equal(t, 4, questions[1].ID)
}

func TestImportCSVRejectsHeaderWithoutName(t *testing.T) {
	topics := newFakeTopicRepo()
	topics.questions[3] = nil
	svc := NewTopicService(topics)

	_, err := svc.ImportCSV(context.Background(), 3, strings.NewReader("foo,bar\n1,2"))
	assert.Error(t, err)
}

func TestImportCSVRejectsEmptyFile(t *testing.T) {
	topics := newFakeTopicRepo()
	topics.questions[3] = nil
	svc := NewTopicService(topics)

	_, err := svc.ImportCSV(context.Background(), 3, strings.NewReader("题目名称,MiniMax结果\n"))
	assert.ErrorIs(t, err, ErrEmptyImport)
}

func TestImportCSVUnknownTopic(t *testing.T) {
	svc := NewTopicService(newFakeTopicRepo())

	_, err := svc.ImportCSV(context.Background(), 99, strings.NewReader("题目名称\nfoo"))
	assert.Error(t, err)
}

func TestSampleCSVRoundTrips(t *testing.T) {
	topics := newFakeTopicRepo()
	topics.questions[3] = nil
	svc := NewTopicService(topics)

	var buf bytes.Buffer
	require.NoError(t, svc.SampleCSV(&buf))

	questions, err := svc.ImportCSV(context.Background(), 3, &buf)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Len(t, questions[0].Answers, 6)
}
