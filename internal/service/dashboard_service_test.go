package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenteval/internal/model"
)

func seedResults(t *testing.T, repo *fakeResultRepo, userName string, count int) {
	t.Helper()
	for i := 1; i <= count; i++ {
		row := &model.ResultRow{
			QID: i, QName: "q", AnswerTitle: "答案A", UserName: userName,
			AgentLabel: "minimax", TopicID: 7,
			ItemVisual: 3, ItemMajor: 3, ItemData: 3, ItemGuide: 3,
		}
		require.NoError(t, repo.Upsert(context.Background(), row))
	}
}

func TestDashboardStats(t *testing.T) {
	repo := newFakeResultRepo()
	seedResults(t, repo, "alice", 3)
	seedResults(t, repo, "bob", 2)

	svc := NewDashboardService(repo)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.TotalResults)
	assert.Equal(t, 2, stats.RaterCount)
	assert.ElementsMatch(t, []string{"alice", "bob"}, stats.Raters)
}

func TestDashboardResultsClampsPaging(t *testing.T) {
	repo := newFakeResultRepo()
	seedResults(t, repo, "alice", 3)

	svc := NewDashboardService(repo)
	page, err := svc.Results(context.Background(), 0, -5)
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.PageSize)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Rows, 3)
}

func TestExportCSVWritesAllRows(t *testing.T) {
	repo := newFakeResultRepo()
	seedResults(t, repo, "alice", 4)

	svc := NewDashboardService(repo)
	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "q_id,q_name,answer_title"))
	assert.Contains(t, lines[1], "alice")
}
