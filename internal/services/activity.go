package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/domain/progress"
	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

const (
	minCalendarYear = 1970
	maxCalendarYear = 9999
)

// ContributionCalendar is a full year of daily cells plus its totals.
type ContributionCalendar struct {
	Year       int                    `json:"year"`
	Days       []*types.DailyActivity `json:"days"`
	Total      int                    `json:"total"`
	ActiveDays int                    `json:"active_days"`
}

type ActivityService interface {
	// RecordCompletion applies delta (+1 or -1) to the user's cell for date.
	RecordCompletion(dbc dbctx.Context, userID uuid.UUID, date string, delta int) (*types.DailyActivity, error)
	// GetYearContributions returns every day of year, zero-filled and ascending.
	GetYearContributions(ctx context.Context, userID uuid.UUID, year int) ([]*types.DailyActivity, error)
	ContributionSummary(ctx context.Context, userID uuid.UUID, year int) (*ContributionCalendar, error)
}

type activityService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.DailyActivityRepo
}

func NewActivityService(db *gorm.DB, baseLog *logger.Logger, repo repos.DailyActivityRepo) ActivityService {
	return &activityService{
		db:   db,
		log:  baseLog.With("service", "ActivityService"),
		repo: repo,
	}
}

func (s *activityService) RecordCompletion(dbc dbctx.Context, userID uuid.UUID, date string, delta int) (*types.DailyActivity, error) {
	if _, err := progress.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: bad date %q", progress.ErrInvalidArgument, date)
	}
	var (
		row *types.DailyActivity
		err error
	)
	switch delta {
	case 1:
		row, err = s.repo.Increment(dbc, userID, date)
	case -1:
		row, err = s.repo.Decrement(dbc, userID, date)
	default:
		return nil, fmt.Errorf("%w: delta must be +1 or -1, got %d", progress.ErrInvalidArgument, delta)
	}
	if err != nil {
		return nil, storageErr("record daily activity", err)
	}
	return row, nil
}

func (s *activityService) GetYearContributions(ctx context.Context, userID uuid.UUID, year int) ([]*types.DailyActivity, error) {
	if year < minCalendarYear || year > maxCalendarYear {
		return nil, fmt.Errorf("%w: year %d out of range", progress.ErrInvalidArgument, year)
	}
	from, to := progress.YearBounds(year)
	rows, err := s.repo.ListRange(dbctx.Context{Ctx: ctx}, userID, from, to)
	if err != nil {
		return nil, storageErr("list daily activity", err)
	}
	byDate := make(map[string]*types.DailyActivity, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r
	}
	return progress.FillYear(year, byDate), nil
}

func (s *activityService) ContributionSummary(ctx context.Context, userID uuid.UUID, year int) (*ContributionCalendar, error) {
	days, err := s.GetYearContributions(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	out := &ContributionCalendar{Year: year, Days: days}
	for _, d := range days {
		out.Total += d.TasksCompleted
		if d.TasksCompleted > 0 {
			out.ActiveDays++
		}
	}
	return out, nil
}
