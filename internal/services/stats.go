package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/domain/progress"
	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/userlock"
)

type StatsService interface {
	// ApplyCompletion folds one ledger transition into the accumulators.
	ApplyCompletion(dbc dbctx.Context, userID uuid.UUID, d types.Difficulty, timeSpent int, completed bool) (*types.UserStats, error)
	Project(ctx context.Context, userID uuid.UUID) (*types.UserStatsSnapshot, error)
	// Reconcile rebuilds the ledger-derived counters from retained history plus live
	// completion rows.
	Reconcile(ctx context.Context, userID uuid.UUID) (*types.UserStatsSnapshot, error)
	SetWeeklyGoal(ctx context.Context, userID uuid.UUID, goal int) (*types.UserStatsSnapshot, error)
	Leaderboard(ctx context.Context, metric types.LeaderboardMetric, limit int) (*types.Leaderboard, error)
}

type statsService struct {
	db         *gorm.DB
	log        *logger.Logger
	stats      repos.UserStatsRepo
	streaks    repos.StreakStateRepo
	events     repos.CompletionEventRepo
	activity   repos.DailyActivityRepo
	roadmaps   repos.RoadmapRepo
	streak     StreakService
	locker     userlock.Locker
	metrics    *observability.Metrics
	clock      Clock
	weeklyGoal int
}

type StatsServiceDeps struct {
	DB         *gorm.DB
	Log        *logger.Logger
	Stats      repos.UserStatsRepo
	Streaks    repos.StreakStateRepo
	Events     repos.CompletionEventRepo
	Activity   repos.DailyActivityRepo
	Roadmaps   repos.RoadmapRepo
	Streak     StreakService
	Locker     userlock.Locker
	Metrics    *observability.Metrics
	Clock      Clock
	WeeklyGoal int
}

func NewStatsService(d StatsServiceDeps) StatsService {
	return &statsService{
		db:         d.DB,
		log:        d.Log.With("service", "StatsService"),
		stats:      d.Stats,
		streaks:    d.Streaks,
		events:     d.Events,
		activity:   d.Activity,
		roadmaps:   d.Roadmaps,
		streak:     d.Streak,
		locker:     d.Locker,
		metrics:    d.Metrics,
		clock:      d.Clock,
		weeklyGoal: d.WeeklyGoal,
	}
}

func (s *statsService) ApplyCompletion(dbc dbctx.Context, userID uuid.UUID, d types.Difficulty, timeSpent int, completed bool) (*types.UserStats, error) {
	return updateStats(dbc, s.stats, s.log, userID, s.weeklyGoal, func(stats *types.UserStats) bool {
		stats.ApplyCompletion(d, timeSpent, completed)
		return true
	})
}

// updateStats loads the row, applies mutate and writes it back under the version check,
// retrying once on a lost race. mutate returns false when nothing needs writing.
func updateStats(dbc dbctx.Context, repo repos.UserStatsRepo, log *logger.Logger, userID uuid.UUID, weeklyGoal int, mutate func(*types.UserStats) bool) (*types.UserStats, error) {
	for attempt := 0; attempt < 2; attempt++ {
		stats, err := repo.GetOrCreate(dbc, userID, weeklyGoal)
		if err != nil {
			return nil, storageErr("load stats", err)
		}
		if !mutate(stats) {
			return stats, nil
		}
		ok, err := repo.Update(dbc, stats)
		if err != nil {
			return nil, storageErr("update stats", err)
		}
		if ok {
			return stats, nil
		}
		log.Debug("Stats version conflict, retrying", "user_id", userID, "attempt", attempt)
	}
	return nil, progress.ErrConflictingUpdate
}

func (s *statsService) Project(ctx context.Context, userID uuid.UUID) (*types.UserStatsSnapshot, error) {
	ctx, span := tracer.Start(ctx, "stats.Project")
	defer span.End()

	var (
		stats       *types.UserStats
		streak      *types.StreakState
		weekly      int
		completed   int
		total       int
		activeDays  int
		now         = s.clock.now()
		from, to    = progress.WeekWindow(now)
		g, gctx     = errgroup.WithContext(ctx)
		dbc         = dbctx.Context{Ctx: gctx}
	)
	g.Go(func() error {
		var err error
		if stats, err = s.stats.Get(dbc, userID); err != nil {
			return storageErr("load stats", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		streak, err = s.streak.Current(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		if weekly, err = s.activity.SumRange(dbc, userID, from, to); err != nil {
			return storageErr("sum weekly activity", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if completed, err = s.roadmaps.CountCompleted(dbc, userID); err != nil {
			return storageErr("count completed roadmaps", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if total, err = s.roadmaps.CountByUser(dbc, userID); err != nil {
			return storageErr("count roadmaps", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if activeDays, err = s.activity.CountActiveDays(dbc, userID); err != nil {
			return storageErr("count active days", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if stats == nil {
		stats = &types.UserStats{UserID: userID, Level: 1, WeeklyGoal: s.defaultGoal()}
	}
	return &types.UserStatsSnapshot{
		TotalCompleted:   stats.TotalCompleted,
		ExperiencePoints: stats.ExperiencePoints,
		Level:            progress.LevelForXP(stats.ExperiencePoints),
		WeeklyGoal:       stats.WeeklyGoal,
		WeeklyProgress:   weekly,
		TotalStudyTime:   stats.TotalStudyTime,
		ProblemsSolved: types.ProblemsSolved{
			Easy:   stats.ProblemsEasy,
			Medium: stats.ProblemsMedium,
			Hard:   stats.ProblemsHard,
			Total:  stats.ProblemsTotal,
		},
		RoadmapsCompleted:  completed,
		TotalRoadmaps:      total,
		CurrentStreak:      streak.CurrentStreak,
		LongestStreak:      streak.LongestStreak,
		ActiveLearningDays: activeDays,
		LastActiveDate:     streak.LastActiveDate,
		StreakStartDate:    streak.StreakStartDate,
		AsOf:               now,
	}, nil
}

func (s *statsService) defaultGoal() int {
	if s.weeklyGoal > 0 {
		return s.weeklyGoal
	}
	return progress.DefaultWeeklyGoal
}

func (s *statsService) Reconcile(ctx context.Context, userID uuid.UUID) (*types.UserStatsSnapshot, error) {
	unlock, err := lockUser(ctx, s.locker, s.metrics, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = inTx(s.db, dbctx.Context{Ctx: ctx}, func(dbc dbctx.Context) error {
		events, err := s.events.ListCompleted(dbc, userID)
		if err != nil {
			return storageErr("list completed events", err)
		}
		var before types.UserStats
		stats, err := updateStats(dbc, s.stats, s.log, userID, s.weeklyGoal, func(stats *types.UserStats) bool {
			before = *stats
			stats.RebuildCounters(events)
			return !countersEqual(&before, stats)
		})
		if err != nil {
			return err
		}
		if stats.Version != before.Version {
			s.log.Warn("Stats drift corrected",
				"user_id", userID,
				"total_completed_before", before.TotalCompleted,
				"total_completed_after", stats.TotalCompleted,
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Project(ctx, userID)
}

func (s *statsService) SetWeeklyGoal(ctx context.Context, userID uuid.UUID, goal int) (*types.UserStatsSnapshot, error) {
	if err := progress.ValidateWeeklyGoal(goal); err != nil {
		return nil, err
	}
	unlock, err := lockUser(ctx, s.locker, s.metrics, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = inTx(s.db, dbctx.Context{Ctx: ctx}, func(dbc dbctx.Context) error {
		_, err := updateStats(dbc, s.stats, s.log, userID, s.weeklyGoal, func(stats *types.UserStats) bool {
			if stats.WeeklyGoal == goal {
				return false
			}
			stats.WeeklyGoal = goal
			return true
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Weekly goal updated", "user_id", userID, "weekly_goal", goal)
	return s.Project(ctx, userID)
}

func (s *statsService) Leaderboard(ctx context.Context, metric types.LeaderboardMetric, limit int) (*types.Leaderboard, error) {
	ctx, span := tracer.Start(ctx, "stats.Leaderboard")
	defer span.End()

	limit = progress.ClampLeaderboardLimit(limit)
	dbc := dbctx.Context{Ctx: ctx}
	var (
		scores []types.UserScore
		err    error
	)
	switch metric {
	case progress.LeaderboardXP, progress.LeaderboardCompleted:
		scores, err = s.stats.Top(dbc, metric, limit)
	case progress.LeaderboardStreak:
		scores, err = s.streaks.TopCurrent(dbc, limit)
	case progress.LeaderboardRoadmaps:
		scores, err = s.roadmaps.TopCompleted(dbc, limit)
	default:
		return nil, fmt.Errorf("%w: unknown leaderboard type %q", progress.ErrInvalidArgument, metric)
	}
	if err != nil {
		return nil, storageErr("rank users", err)
	}
	return &types.Leaderboard{Type: metric, Entries: progress.Rank(scores)}, nil
}

func countersEqual(a, b *types.UserStats) bool {
	return a.TotalCompleted == b.TotalCompleted &&
		a.TotalStudyTime == b.TotalStudyTime &&
		a.ProblemsEasy == b.ProblemsEasy &&
		a.ProblemsMedium == b.ProblemsMedium &&
		a.ProblemsHard == b.ProblemsHard &&
		a.ProblemsTotal == b.ProblemsTotal &&
		a.Level == b.Level
}
