package report

import (
	"context"
	"fmt"

	"localsphere-backend/internal/domain"
)

// Store is the report persistence contract the service depends on
type Store interface {
	Create(ctx context.Context, input *domain.ReportCreate) (*domain.Report, error)
	List(ctx context.Context) ([]*domain.Report, error)
}

// Service handles moderation report intake. Reports are append-only;
// review workflows live outside this system.
type Service struct {
	reportRepo Store
}

// NewService creates a new report service
func NewService(reportRepo Store) *Service {
	return &Service{reportRepo: reportRepo}
}

// Create files a new report
func (s *Service) Create(ctx context.Context, input *domain.ReportCreate) (*domain.Report, error) {
	report, err := s.reportRepo.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return report, nil
}

// List returns all reports, newest first
func (s *Service) List(ctx context.Context) ([]*domain.Report, error) {
	reports, err := s.reportRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}
