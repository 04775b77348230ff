package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"agenteval/internal/model"
	"agenteval/internal/repository"
)

// DashboardStats summarizes the evaluation progress across all raters
type DashboardStats struct {
	TotalResults int64    `json:"total_results"`
	RaterCount   int      `json:"rater_count"`
	Raters       []string `json:"raters"`
}

// ResultPage is one page of persisted evaluation rows
type ResultPage struct {
	Rows     []*model.ResultRow `json:"rows"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// DashboardService backs the admin overview screens
type DashboardService struct {
	results repository.ResultRepo
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(results repository.ResultRepo) *DashboardService {
	return &DashboardService{results: results}
}

// Stats returns the aggregate counters shown on the admin landing page
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	total, err := s.results.Count(ctx)
	if err != nil {
		return nil, err
	}
	raters, err := s.results.DistinctUsers(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		TotalResults: total,
		RaterCount:   len(raters),
		Raters:       raters,
	}, nil
}

// Results returns one page of rows, newest first
func (s *DashboardService) Results(ctx context.Context, page, pageSize int) (*ResultPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	rows, total, err := s.results.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &ResultPage{Rows: rows, Total: total, Page: page, PageSize: pageSize}, nil
}

// UserResults returns everything one rater submitted for a topic set
func (s *DashboardService) UserResults(ctx context.Context, userName string, topicID int) ([]*model.ResultRow, error) {
	return s.results.GetByUserAndTopic(ctx, userName, topicID)
}

// ExportCSV streams every persisted row as a CSV download
func (s *DashboardService) ExportCSV(ctx context.Context, w io.Writer) error {
	writer := csv.NewWriter(w)
	header := []string{
		"q_id", "q_name", "answer_title", "agent_type", "agent_scene",
		"user_name", "topic_id", "item_visual", "item_major", "item_data",
		"item_guide", "updated_at",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	const exportPageSize = 500
	for page := 1; ; page++ {
		rows, _, err := s.results.List(ctx, page, exportPageSize)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			break
		}
		for _, row := range rows {
			record := []string{
				fmt.Sprintf("%d", row.QID),
				row.QName,
				row.AnswerTitle,
				row.AgentLabel,
				row.AgentScene,
				row.UserName,
				fmt.Sprintf("%d", row.TopicID),
				fmt.Sprintf("%d", row.ItemVisual),
				fmt.Sprintf("%d", row.ItemMajor),
				fmt.Sprintf("%d", row.ItemData),
				fmt.Sprintf("%d", row.ItemGuide),
				row.UpdatedAt.Format("2006-01-02 15:04:05"),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
		if len(rows) < exportPageSize {
			break
		}
	}
	writer.Flush()
	return writer.Error()
}
