package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localsphere-backend/internal/domain"
)

func TestCreateReportDefaults(t *testing.T) {
	repo := NewReportRepository()

	report, err := repo.Create(context.Background(), &domain.ReportCreate{
		ReporterID: "reporter",
		MessageID:  "message",
		Reason:     "spam",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "pending", report.Status)
	assert.Equal(t, "spam", report.Reason)
	assert.False(t, report.CreatedAt.IsZero())
}

func TestListReportsNewestFirst(t *testing.T) {
	repo := NewReportRepository()
	now := time.Now()

	repo.nowFn = func() time.Time { return now }
	first, err := repo.Create(context.Background(), &domain.ReportCreate{Reason: "first"})
	require.NoError(t, err)

	repo.nowFn = func() time.Time { return now.Add(time.Minute) }
	second, err := repo.Create(context.Background(), &domain.ReportCreate{Reason: "second"})
	require.NoError(t, err)

	reports, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, second.ID, reports[0].ID)
	assert.Equal(t, first.ID, reports[1].ID)

	// Append-only: listing twice returns the same records, untouched.
	again, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, "pending", again[0].Status)
}
