package services

import (
	"context"
	"testing"
	"time"

	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockFullPeriodRepo struct {
	repository.PeriodRepository
	mockFindByYearMonth func(ctx context.Context, year, month int) (*models.AccountingPeriod, error)
	mockFindOrCreate    func(ctx context.Context, year, month int) (*models.AccountingPeriod, error)
	mockUpdate          func(ctx context.Context, period *models.AccountingPeriod) error
	mockLatestClosed    func(ctx context.Context) (*models.AccountingPeriod, error)
}

func (m *mockFullPeriodRepo) FindByYearMonth(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
	return m.mockFindByYearMonth(ctx, year, month)
}

func (m *mockFullPeriodRepo) FindOrCreate(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
	return m.mockFindOrCreate(ctx, year, month)
}

func (m *mockFullPeriodRepo) Update(ctx context.Context, period *models.AccountingPeriod) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, period)
	}
	return nil
}

func (m *mockFullPeriodRepo) LatestClosed(ctx context.Context) (*models.AccountingPeriod, error) {
	return m.mockLatestClosed(ctx)
}

func TestPeriodService_EnsureOpen_NeverMaterialized(t *testing.T) {
	repo := &mockFullPeriodRepo{
		mockFindByYearMonth: func(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewPeriodService(repo, nil, nil)

	// A month without a period row is open.
	err := svc.EnsureOpen(context.Background(), time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
}

func TestPeriodService_EnsureOpen_Closed(t *testing.T) {
	repo := &mockFullPeriodRepo{
		mockFindByYearMonth: func(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
			return &models.AccountingPeriod{Year: year, Month: month, Status: models.PeriodStatusClosed}, nil
		},
	}
	svc := NewPeriodService(repo, nil, nil)

	err := svc.EnsureOpen(context.Background(), time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrPeriodClosed)
}

func TestPeriodService_Close(t *testing.T) {
	var saved *models.AccountingPeriod
	repo := &mockFullPeriodRepo{
		mockFindOrCreate: func(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
			return &models.AccountingPeriod{ID: 5, Year: year, Month: month, Status: models.PeriodStatusOpen}, nil
		},
		mockUpdate: func(ctx context.Context, period *models.AccountingPeriod) error {
			saved = period
			return nil
		},
	}
	svc := NewPeriodService(repo, nil, nil)

	period, err := svc.Close(context.Background(), 2026, 2, 3, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.PeriodStatusClosed, period.Status)
	require.NotNil(t, period.ClosedByUserID)
	assert.Equal(t, uint(3), *period.ClosedByUserID)
	assert.NotNil(t, period.ClosedAt)
	assert.Same(t, period, saved)
}

func TestPeriodService_Close_AlreadyClosed(t *testing.T) {
	repo := &mockFullPeriodRepo{
		mockFindOrCreate: func(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
			return &models.AccountingPeriod{Year: year, Month: month, Status: models.PeriodStatusClosed}, nil
		},
	}
	svc := NewPeriodService(repo, nil, nil)

	_, err := svc.Close(context.Background(), 2026, 2, 3, "", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPeriodService_Close_InvalidMonth(t *testing.T) {
	svc := NewPeriodService(&mockFullPeriodRepo{}, nil, nil)
	_, err := svc.Close(context.Background(), 2026, 13, 3, "", "")
	assert.Error(t, err)
}

func TestPeriodService_Reopen(t *testing.T) {
	closedAt := time.Now()
	closedBy := uint(3)
	repo := &mockFullPeriodRepo{
		mockFindByYearMonth: func(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
			return &models.AccountingPeriod{
				ID: 5, Year: year, Month: month,
				Status:         models.PeriodStatusClosed,
				ClosedByUserID: &closedBy,
				ClosedAt:       &closedAt,
			}, nil
		},
	}
	svc := NewPeriodService(repo, nil, nil)

	period, err := svc.Reopen(context.Background(), 2026, 2, 3, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.PeriodStatusOpen, period.Status)
	assert.Nil(t, period.ClosedByUserID)
	assert.Nil(t, period.ClosedAt)
}

func TestPeriodService_Reopen_NotClosed(t *testing.T) {
	repo := &mockFullPeriodRepo{
		mockFindByYearMonth: func(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
			return &models.AccountingPeriod{Year: year, Month: month, Status: models.PeriodStatusOpen}, nil
		},
	}
	svc := NewPeriodService(repo, nil, nil)

	_, err := svc.Reopen(context.Background(), 2026, 2, 3, "", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPeriodService_Reopen_NeverMaterialized(t *testing.T) {
	repo := &mockFullPeriodRepo{
		mockFindByYearMonth: func(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewPeriodService(repo, nil, nil)

	_, err := svc.Reopen(context.Background(), 2026, 2, 3, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPeriodService_MinimumOpenDate(t *testing.T) {
	repo := &mockFullPeriodRepo{
		mockLatestClosed: func(ctx context.Context) (*models.AccountingPeriod, error) {
			return &models.AccountingPeriod{Year: 2026, Month: 2, Status: models.PeriodStatusClosed}, nil
		},
	}
	svc := NewPeriodService(repo, nil, nil)

	min, err := svc.MinimumOpenDate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), min)
}

func TestPeriodService_MinimumOpenDate_NeverClosed(t *testing.T) {
	repo := &mockFullPeriodRepo{
		mockLatestClosed: func(ctx context.Context) (*models.AccountingPeriod, error) {
			return nil, nil
		},
	}
	svc := NewPeriodService(repo, nil, nil)

	min, err := svc.MinimumOpenDate(context.Background())
	require.NoError(t, err)
	assert.True(t, min.IsZero())
}
