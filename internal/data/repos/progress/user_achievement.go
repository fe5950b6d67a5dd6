package progress

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type UserAchievementRepo interface {
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error)
	EarnedIDs(dbc dbctx.Context, userID uuid.UUID) (map[string]bool, error)
	// Award inserts each row with on-conflict-do-nothing and returns only the rows that were
	// actually inserted.
	Award(dbc dbctx.Context, awards []*types.UserAchievement) ([]*types.UserAchievement, error)
}

type userAchievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return &userAchievementRepo{db: db, log: baseLog.With("repo", "UserAchievementRepo")}
}

func (r *userAchievementRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.UserAchievement
	if err := t.WithContext(dbc.Ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userAchievementRepo) EarnedIDs(dbc dbctx.Context, userID uuid.UUID) (map[string]bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var ids []string
	if err := t.WithContext(dbc.Ctx).
		Model(&types.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *userAchievementRepo) Award(dbc dbctx.Context, awards []*types.UserAchievement) ([]*types.UserAchievement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	inserted := make([]*types.UserAchievement, 0, len(awards))
	for _, a := range awards {
		if a == nil {
			continue
		}
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		res := t.WithContext(dbc.Ctx).
			Omit("Achievement").
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
				DoNothing: true,
			}).
			Create(a)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			inserted = append(inserted, a)
		}
	}
	return inserted, nil
}
