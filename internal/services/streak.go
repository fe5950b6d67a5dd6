package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/domain/progress"
	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type StreakService interface {
	// RecomputeStreak rebuilds the user's streak from DailyActivity and stores it.
	RecomputeStreak(dbc dbctx.Context, userID uuid.UUID) (*types.StreakState, error)
	// Current computes the streak as of now without writing.
	Current(ctx context.Context, userID uuid.UUID) (*types.StreakState, error)
}

type streakService struct {
	log      *logger.Logger
	activity repos.DailyActivityRepo
	streaks  repos.StreakStateRepo
	clock    Clock
}

func NewStreakService(baseLog *logger.Logger, activity repos.DailyActivityRepo, streaks repos.StreakStateRepo, clock Clock) StreakService {
	return &streakService{
		log:      baseLog.With("service", "StreakService"),
		activity: activity,
		streaks:  streaks,
		clock:    clock,
	}
}

func (s *streakService) compute(dbc dbctx.Context, userID uuid.UUID) (*types.StreakState, error) {
	dates, err := s.activity.ListActiveDates(dbc, userID)
	if err != nil {
		return nil, storageErr("list active dates", err)
	}
	state, err := s.streaks.Get(dbc, userID)
	if err != nil {
		return nil, storageErr("load streak", err)
	}
	if state == nil {
		state = &types.StreakState{UserID: userID}
	}
	now := s.clock.now()
	state.ApplyRun(progress.ComputeStreak(dates, now), now)
	return state, nil
}

func (s *streakService) RecomputeStreak(dbc dbctx.Context, userID uuid.UUID) (*types.StreakState, error) {
	state, err := s.compute(dbc, userID)
	if err != nil {
		return nil, err
	}
	if err := s.streaks.Upsert(dbc, state); err != nil {
		return nil, storageErr("store streak", err)
	}
	return state, nil
}

func (s *streakService) Current(ctx context.Context, userID uuid.UUID) (*types.StreakState, error) {
	return s.compute(dbctx.Context{Ctx: ctx}, userID)
}
