package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type CompletionEventRepo interface {
	Get(dbc dbctx.Context, ref types.TaskRef) (*types.CompletionEvent, error)
	// Insert returns false when a concurrent writer created the row first.
	Insert(dbc dbctx.Context, ev *types.CompletionEvent) (bool, error)
	// UpdateState writes the completion fields if the stored version still equals ev.Version,
	// bumping it on success.
	UpdateState(dbc dbctx.Context, ev *types.CompletionEvent) (bool, error)
	ListByRoadmap(dbc dbctx.Context, userID, roadmapID uuid.UUID) ([]*types.CompletionEvent, error)
	ListCompleted(dbc dbctx.Context, userID uuid.UUID) ([]*types.CompletionEvent, error)
	CountCompletedByRoadmap(dbc dbctx.Context, userID uuid.UUID, roadmapIDs []uuid.UUID) (map[uuid.UUID]int, error)
	DeleteByRoadmap(dbc dbctx.Context, userID, roadmapID uuid.UUID) (int64, error)
}

type completionEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompletionEventRepo(db *gorm.DB, baseLog *logger.Logger) CompletionEventRepo {
	return &completionEventRepo{db: db, log: baseLog.With("repo", "CompletionEventRepo")}
}

func (r *completionEventRepo) Get(dbc dbctx.Context, ref types.TaskRef) (*types.CompletionEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var ev types.CompletionEvent
	err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND roadmap_id = ? AND module_id = ? AND task_id = ?", ref.UserID, ref.RoadmapID, ref.ModuleID, ref.TaskID).
		Limit(1).
		Find(&ev).Error
	if err != nil {
		return nil, err
	}
	if ev.ID == uuid.Nil {
		return nil, nil
	}
	return &ev, nil
}

func (r *completionEventRepo) Insert(dbc dbctx.Context, ev *types.CompletionEvent) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	now := time.Now().UTC()
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now
	}
	ev.UpdatedAt = now
	if ev.Version == 0 {
		ev.Version = 1
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "roadmap_id"}, {Name: "module_id"}, {Name: "task_id"}},
			DoNothing: true,
		}).
		Create(ev)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *completionEventRepo) UpdateState(dbc dbctx.Context, ev *types.CompletionEvent) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	res := t.WithContext(dbc.Ctx).
		Model(&types.CompletionEvent{}).
		Where("id = ? AND version = ?", ev.ID, ev.Version).
		Updates(map[string]interface{}{
			"completed":          ev.Completed,
			"difficulty":         ev.Difficulty,
			"time_spent_minutes": ev.TimeSpentMinutes,
			"completed_at":       ev.CompletedAt,
			"completed_on":       ev.CompletedOn,
			"version":            ev.Version + 1,
			"updated_at":         now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected != 1 {
		return false, nil
	}
	ev.Version++
	ev.UpdatedAt = now
	return true, nil
}

func (r *completionEventRepo) ListByRoadmap(dbc dbctx.Context, userID, roadmapID uuid.UUID) ([]*types.CompletionEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CompletionEvent
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND roadmap_id = ?", userID, roadmapID).
		Order("module_id ASC, task_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *completionEventRepo) ListCompleted(dbc dbctx.Context, userID uuid.UUID) ([]*types.CompletionEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CompletionEvent
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND completed = ?", userID, true).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *completionEventRepo) CountCompletedByRoadmap(dbc dbctx.Context, userID uuid.UUID, roadmapIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := make(map[uuid.UUID]int, len(roadmapIDs))
	if len(roadmapIDs) == 0 {
		return out, nil
	}
	type row struct {
		RoadmapID uuid.UUID
		N         int
	}
	var rows []row
	if err := t.WithContext(dbc.Ctx).
		Model(&types.CompletionEvent{}).
		Select("roadmap_id, COUNT(*) AS n").
		Where("user_id = ? AND completed = ? AND roadmap_id IN ?", userID, true, roadmapIDs).
		Group("roadmap_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, rr := range rows {
		out[rr.RoadmapID] = rr.N
	}
	return out, nil
}

func (r *completionEventRepo) DeleteByRoadmap(dbc dbctx.Context, userID, roadmapID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND roadmap_id = ?", userID, roadmapID).
		Delete(&types.CompletionEvent{})
	return res.RowsAffected, res.Error
}
