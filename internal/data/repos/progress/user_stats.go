package progress

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/domain/progress"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type UserStatsRepo interface {
	Get(dbc dbctx.Context, userID uuid.UUID) (*types.UserStats, error)
	// GetOrCreate lazily creates the row with level 1 and the given weekly goal.
	GetOrCreate(dbc dbctx.Context, userID uuid.UUID, weeklyGoal int) (*types.UserStats, error)
	// Update writes every accumulator if the stored version equals s.Version, bumping it.
	Update(dbc dbctx.Context, s *types.UserStats) (bool, error)
	// Top ranks users with a positive xp or completed count, highest first.
	Top(dbc dbctx.Context, metric types.LeaderboardMetric, limit int) ([]types.UserScore, error)
}

type userStatsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserStatsRepo(db *gorm.DB, baseLog *logger.Logger) UserStatsRepo {
	return &userStatsRepo{db: db, log: baseLog.With("repo", "UserStatsRepo")}
}

func (r *userStatsRepo) Get(dbc dbctx.Context, userID uuid.UUID) (*types.UserStats, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var s types.UserStats
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&s).Error; err != nil {
		return nil, err
	}
	if s.UserID == uuid.Nil {
		return nil, nil
	}
	return &s, nil
}

func (r *userStatsRepo) GetOrCreate(dbc dbctx.Context, userID uuid.UUID, weeklyGoal int) (*types.UserStats, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	existing, err := r.Get(dbc.WithTx(t), userID)
	if err != nil || existing != nil {
		return existing, err
	}
	if weeklyGoal <= 0 {
		weeklyGoal = progress.DefaultWeeklyGoal
	}
	now := time.Now().UTC()
	row := &types.UserStats{
		UserID:     userID,
		Level:      1,
		WeeklyGoal: weeklyGoal,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc.WithTx(t), userID)
}

func (r *userStatsRepo) Update(dbc dbctx.Context, s *types.UserStats) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	res := t.WithContext(dbc.Ctx).
		Model(&types.UserStats{}).
		Where("user_id = ? AND version = ?", s.UserID, s.Version).
		Updates(map[string]interface{}{
			"total_completed":     s.TotalCompleted,
			"experience_points":   s.ExperiencePoints,
			"level":               s.Level,
			"weekly_goal":         s.WeeklyGoal,
			"total_study_time":    s.TotalStudyTime,
			"problems_easy":       s.ProblemsEasy,
			"problems_medium":     s.ProblemsMedium,
			"problems_hard":       s.ProblemsHard,
			"problems_total":      s.ProblemsTotal,
			"retained_completed":  s.RetainedCompleted,
			"retained_study_time": s.RetainedStudyTime,
			"retained_easy":       s.RetainedEasy,
			"retained_medium":     s.RetainedMedium,
			"retained_hard":       s.RetainedHard,
			"version":             s.Version + 1,
			"updated_at":          now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected != 1 {
		return false, nil
	}
	s.Version++
	s.UpdatedAt = now
	return true, nil
}

func (r *userStatsRepo) Top(dbc dbctx.Context, metric types.LeaderboardMetric, limit int) ([]types.UserScore, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var col string
	switch metric {
	case progress.LeaderboardXP:
		col = "experience_points"
	case progress.LeaderboardCompleted:
		col = "total_completed"
	default:
		return nil, fmt.Errorf("%w: metric %q is not stored in user_stats", progress.ErrInvalidArgument, metric)
	}
	var out []types.UserScore
	if err := t.WithContext(dbc.Ctx).
		Model(&types.UserStats{}).
		Select("user_id, " + col + " AS score").
		Where(col + " > 0").
		Order(col + " DESC").
		Order("user_id ASC").
		Limit(limit).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
