package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"localsphere-backend/internal/domain"
)

// ReportRepository is the append-only in-memory moderation report store
type ReportRepository struct {
	mu      sync.RWMutex
	reports map[string]*domain.Report
	nowFn   func() time.Time
}

// NewReportRepository creates an empty report store
func NewReportRepository() *ReportRepository {
	return &ReportRepository{
		reports: make(map[string]*domain.Report),
		nowFn:   time.Now,
	}
}

// Create stores a new report with status pending
func (r *ReportRepository) Create(ctx context.Context, input *domain.ReportCreate) (*domain.Report, error) {
	report := &domain.Report{
		ID:         uuid.New().String(),
		ReporterID: input.ReporterID,
		MessageID:  input.MessageID,
		UserID:     input.UserID,
		Reason:     input.Reason,
		Status:     "pending",
		CreatedAt:  r.nowFn(),
	}

	r.mu.Lock()
	r.reports[report.ID] = report
	r.mu.Unlock()

	return report, nil
}

// List returns all reports, newest first
func (r *ReportRepository) List(ctx context.Context) ([]*domain.Report, error) {
	r.mu.RLock()
	all := make([]*domain.Report, 0, len(r.reports))
	for _, report := range r.reports {
		all = append(all, report)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}
