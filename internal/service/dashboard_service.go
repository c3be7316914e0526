package service

import (
	"context"
	"fmt"

	"github.com/certifex/certifex-backend/internal/repository"
)

// DashboardSummary is the admin dashboard payload.
type DashboardSummary struct {
	TotalUsers        int                       `json:"total_users"`
	TotalExams        int                       `json:"total_exams"`
	TotalSessions     int                       `json:"total_sessions"`
	TotalCertificates int                       `json:"total_certificates"`
	Content           *repository.ContentCounts `json:"content"`
	ExamActivity      []repository.ExamActivity `json:"exam_activity"`
	RecentFinishes    []repository.RecentFinish `json:"recent_finishes"`
}

// DashboardService aggregates admin dashboard metrics.
type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboardRepo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

// GetSummary retrieves the dashboard metrics in one payload.
func (s *DashboardService) GetSummary(ctx context.Context) (*DashboardSummary, error) {
	users, exams, sessions, certificates, err := s.dashboardRepo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary counts: %w", err)
	}
	activity, err := s.dashboardRepo.GetExamActivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("exam activity: %w", err)
	}
	finishes, err := s.dashboardRepo.GetRecentFinishes(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("recent finishes: %w", err)
	}
	content, err := s.dashboardRepo.GetContentCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("content counts: %w", err)
	}

	return &DashboardSummary{
		TotalUsers:        users,
		TotalExams:        exams,
		TotalSessions:     sessions,
		TotalCertificates: certificates,
		Content:           content,
		ExamActivity:      activity,
		RecentFinishes:    finishes,
	}, nil
}
