package progress

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type StreakStateRepo interface {
	Get(dbc dbctx.Context, userID uuid.UUID) (*types.StreakState, error)
	Upsert(dbc dbctx.Context, s *types.StreakState) error
	// TopCurrent ranks users by stored current streak, highest first.
	TopCurrent(dbc dbctx.Context, limit int) ([]types.UserScore, error)
}

type streakStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStreakStateRepo(db *gorm.DB, baseLog *logger.Logger) StreakStateRepo {
	return &streakStateRepo{db: db, log: baseLog.With("repo", "StreakStateRepo")}
}

func (r *streakStateRepo) Get(dbc dbctx.Context, userID uuid.UUID) (*types.StreakState, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var s types.StreakState
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

func (r *streakStateRepo) Upsert(dbc dbctx.Context, s *types.StreakState) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"current_streak",
				"longest_streak",
				"streak_start_date",
				"last_active_date",
				"updated_at",
			}),
		}).
		Create(s).Error
}

func (r *streakStateRepo) TopCurrent(dbc dbctx.Context, limit int) ([]types.UserScore, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []types.UserScore
	if err := t.WithContext(dbc.Ctx).
		Model(&types.StreakState{}).
		Select("user_id, current_streak AS score").
		Where("current_streak > 0").
		Order("current_streak DESC").
		Order("user_id ASC").
		Limit(limit).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
