package progress

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type AchievementRepo interface {
	// Seed inserts catalog entries. Display fields of existing entries are refreshed;
	// criteria and reward are left as first seeded.
	Seed(dbc dbctx.Context, items []*types.Achievement) error
	ListActive(dbc dbctx.Context) ([]*types.Achievement, error)
	ListAll(dbc dbctx.Context) ([]*types.Achievement, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) Seed(dbc dbctx.Context, items []*types.Achievement) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, a := range items {
		a.CreatedAt = now
		a.UpdatedAt = now
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "category", "sort_order", "is_active", "updated_at"}),
		}).
		Create(&items).Error
}

func (r *achievementRepo) ListActive(dbc dbctx.Context) ([]*types.Achievement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Achievement
	if err := t.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *achievementRepo) ListAll(dbc dbctx.Context) ([]*types.Achievement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Achievement
	if err := t.WithContext(dbc.Ctx).
		Order("sort_order ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
