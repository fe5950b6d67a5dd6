package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/domain/progress"
	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type AchievementService interface {
	SeedCatalog(ctx context.Context, items []*types.Achievement) error
	// ListCatalog returns the active catalog, or every definition when includeInactive is set.
	ListCatalog(ctx context.Context, includeInactive bool) ([]*types.Achievement, error)
	ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]*types.UserAchievement, error)
	// Evaluate awards every active achievement the user now qualifies for and has not yet
	// earned, crediting the reward XP in the same transaction. Returns only new awards.
	Evaluate(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error)
}

type achievementService struct {
	db           *gorm.DB
	log          *logger.Logger
	achievements repos.AchievementRepo
	awards       repos.UserAchievementRepo
	stats        repos.UserStatsRepo
	streaks      repos.StreakStateRepo
	roadmaps     repos.RoadmapRepo
	metrics      *observability.Metrics
	clock        Clock
	weeklyGoal   int
}

type AchievementServiceDeps struct {
	DB           *gorm.DB
	Log          *logger.Logger
	Achievements repos.AchievementRepo
	Awards       repos.UserAchievementRepo
	Stats        repos.UserStatsRepo
	Streaks      repos.StreakStateRepo
	Roadmaps     repos.RoadmapRepo
	Metrics      *observability.Metrics
	Clock        Clock
	WeeklyGoal   int
}

func NewAchievementService(d AchievementServiceDeps) AchievementService {
	return &achievementService{
		db:           d.DB,
		log:          d.Log.With("service", "AchievementService"),
		achievements: d.Achievements,
		awards:       d.Awards,
		stats:        d.Stats,
		streaks:      d.Streaks,
		roadmaps:     d.Roadmaps,
		metrics:      d.Metrics,
		clock:        d.Clock,
		weeklyGoal:   d.WeeklyGoal,
	}
}

func (s *achievementService) SeedCatalog(ctx context.Context, items []*types.Achievement) error {
	if err := s.achievements.Seed(dbctx.Context{Ctx: ctx}, items); err != nil {
		return storageErr("seed achievements", err)
	}
	s.log.Info("Achievement catalog seeded", "count", len(items))
	return nil
}

func (s *achievementService) ListCatalog(ctx context.Context, includeInactive bool) ([]*types.Achievement, error) {
	dbc := dbctx.Context{Ctx: ctx}
	var (
		out []*types.Achievement
		err error
	)
	if includeInactive {
		out, err = s.achievements.ListAll(dbc)
	} else {
		out, err = s.achievements.ListActive(dbc)
	}
	if err != nil {
		return nil, storageErr("list achievements", err)
	}
	if out == nil {
		out = []*types.Achievement{}
	}
	return out, nil
}

func (s *achievementService) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]*types.UserAchievement, error) {
	out, err := s.awards.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, storageErr("list user achievements", err)
	}
	if out == nil {
		out = []*types.UserAchievement{}
	}
	return out, nil
}

func (s *achievementService) standing(dbc dbctx.Context, userID uuid.UUID) (progress.Standing, error) {
	var st progress.Standing
	stats, err := s.stats.Get(dbc, userID)
	if err != nil {
		return st, storageErr("load stats", err)
	}
	if stats != nil {
		st.TotalCompleted = stats.TotalCompleted
		st.TotalStudyTime = stats.TotalStudyTime
	}
	streak, err := s.streaks.Get(dbc, userID)
	if err != nil {
		return st, storageErr("load streak", err)
	}
	if streak != nil {
		st.CurrentStreak = streak.CurrentStreak
		st.LongestStreak = streak.LongestStreak
	}
	st.RoadmapsCompleted, err = s.roadmaps.CountCompleted(dbc, userID)
	if err != nil {
		return st, storageErr("count completed roadmaps", err)
	}
	return st, nil
}

func (s *achievementService) Evaluate(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error) {
	ctx, span := tracer.Start(dbc.Ctx, "achievements.Evaluate")
	defer span.End()
	dbc.Ctx = ctx

	standing, err := s.standing(dbc, userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.achievements.ListActive(dbc)
	if err != nil {
		return nil, storageErr("list achievements", err)
	}
	earned, err := s.awards.EarnedIDs(dbc, userID)
	if err != nil {
		return nil, storageErr("list earned achievements", err)
	}
	due := progress.NewlyQualified(catalog, earned, standing)
	if len(due) == 0 {
		return []*types.UserAchievement{}, nil
	}

	now := s.clock.now()
	var inserted []*types.UserAchievement
	err = inTx(s.db, dbc, func(dbc dbctx.Context) error {
		rows := make([]*types.UserAchievement, 0, len(due))
		for _, a := range due {
			rows = append(rows, &types.UserAchievement{
				ID:            uuid.New(),
				UserID:        userID,
				AchievementID: a.ID,
				EarnedAt:      now,
				Achievement:   a,
			})
		}
		got, err := s.awards.Award(dbc, rows)
		if err != nil {
			return storageErr("award achievements", err)
		}
		xp := 0
		for _, ua := range got {
			xp += ua.Achievement.RewardXP
		}
		if xp > 0 {
			if err := s.creditXP(dbc, userID, xp); err != nil {
				return err
			}
		}
		inserted = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, ua := range inserted {
		s.metrics.IncAchievementAwarded(ua.AchievementID)
		s.log.Info("Achievement earned", "user_id", userID, "achievement_id", ua.AchievementID)
	}
	return inserted, nil
}

// creditXP adds xp under the stats version check, retrying once after a lost race.
func (s *achievementService) creditXP(dbc dbctx.Context, userID uuid.UUID, xp int) error {
	for attempt := 0; attempt < 2; attempt++ {
		stats, err := s.stats.GetOrCreate(dbc, userID, s.weeklyGoal)
		if err != nil {
			return storageErr("load stats", err)
		}
		stats.AddXP(xp)
		ok, err := s.stats.Update(dbc, stats)
		if err != nil {
			return storageErr("update stats", err)
		}
		if ok {
			return nil
		}
	}
	return progress.ErrConflictingUpdate
}
