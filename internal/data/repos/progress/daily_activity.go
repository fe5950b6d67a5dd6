package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/domain/progress"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type DailyActivityRepo interface {
	// Increment finds-or-creates the (user, date) row and adds one atomically.
	Increment(dbc dbctx.Context, userID uuid.UUID, date string) (*types.DailyActivity, error)
	// Decrement subtracts one, floored at zero. A missing row stays missing.
	Decrement(dbc dbctx.Context, userID uuid.UUID, date string) (*types.DailyActivity, error)
	Get(dbc dbctx.Context, userID uuid.UUID, date string) (*types.DailyActivity, error)
	ListRange(dbc dbctx.Context, userID uuid.UUID, from, to string) ([]*types.DailyActivity, error)
	ListActiveDates(dbc dbctx.Context, userID uuid.UUID) ([]string, error)
	SumRange(dbc dbctx.Context, userID uuid.UUID, from, to string) (int, error)
	CountActiveDays(dbc dbctx.Context, userID uuid.UUID) (int, error)
}

type dailyActivityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyActivityRepo(db *gorm.DB, baseLog *logger.Logger) DailyActivityRepo {
	return &dailyActivityRepo{db: db, log: baseLog.With("repo", "DailyActivityRepo")}
}

func (r *dailyActivityRepo) Increment(dbc dbctx.Context, userID uuid.UUID, date string) (*types.DailyActivity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	row := &types.DailyActivity{
		ID:             uuid.New(),
		UserID:         userID,
		Date:           date,
		TasksCompleted: 1,
		ActivityLevel:  progress.ActivityLevel(1),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"tasks_completed": gorm.Expr("daily_activities.tasks_completed + 1"),
				"updated_at":      now,
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.syncLevel(dbc, t, userID, date)
}

func (r *dailyActivityRepo) Decrement(dbc dbctx.Context, userID uuid.UUID, date string) (*types.DailyActivity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.DailyActivity{}).
		Where("user_id = ? AND date = ?", userID, date).
		Updates(map[string]interface{}{
			"tasks_completed": gorm.Expr("CASE WHEN tasks_completed > 0 THEN tasks_completed - 1 ELSE 0 END"),
			"updated_at":      time.Now().UTC(),
		}).Error; err != nil {
		return nil, err
	}
	return r.syncLevel(dbc, t, userID, date)
}

// syncLevel re-reads the row and rewrites activity_level from the committed count.
func (r *dailyActivityRepo) syncLevel(dbc dbctx.Context, t *gorm.DB, userID uuid.UUID, date string) (*types.DailyActivity, error) {
	row, err := r.Get(dbc.WithTx(t), userID, date)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return &types.DailyActivity{UserID: userID, Date: date}, nil
	}
	lvl := progress.ActivityLevel(row.TasksCompleted)
	if lvl != row.ActivityLevel {
		if err := t.WithContext(dbc.Ctx).
			Model(&types.DailyActivity{}).
			Where("id = ?", row.ID).
			Update("activity_level", lvl).Error; err != nil {
			return nil, err
		}
		row.ActivityLevel = lvl
	}
	return row, nil
}

func (r *dailyActivityRepo) Get(dbc dbctx.Context, userID uuid.UUID, date string) (*types.DailyActivity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.DailyActivity
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *dailyActivityRepo) ListRange(dbc dbctx.Context, userID uuid.UUID, from, to string) ([]*types.DailyActivity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.DailyActivity
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *dailyActivityRepo) ListActiveDates(dbc dbctx.Context, userID uuid.UUID) ([]string, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []string
	if err := t.WithContext(dbc.Ctx).
		Model(&types.DailyActivity{}).
		Where("user_id = ? AND tasks_completed > 0", userID).
		Order("date DESC").
		Pluck("date", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *dailyActivityRepo) SumRange(dbc dbctx.Context, userID uuid.UUID, from, to string) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var total int
	if err := t.WithContext(dbc.Ctx).
		Model(&types.DailyActivity{}).
		Select("COALESCE(SUM(tasks_completed), 0)").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *dailyActivityRepo) CountActiveDays(dbc dbctx.Context, userID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.DailyActivity{}).
		Where("user_id = ? AND tasks_completed > 0", userID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
