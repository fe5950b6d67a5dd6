package roadmap

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type RoadmapRepo interface {
	// Create stores the roadmap together with its modules and their tasks.
	Create(dbc dbctx.Context, rm *types.Roadmap) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Roadmap, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Roadmap, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int, error)
	GetModule(dbc dbctx.Context, roadmapID uuid.UUID, moduleKey string) (*types.RoadmapModule, error)
	GetTask(dbc dbctx.Context, roadmapID uuid.UUID, moduleKey, taskKey string) (*types.RoadmapTask, error)
	ListModules(dbc dbctx.Context, roadmapID uuid.UUID) ([]*types.RoadmapModule, error)
	ListTasks(dbc dbctx.Context, roadmapID uuid.UUID) ([]*types.RoadmapTask, error)
	CountTasks(dbc dbctx.Context, roadmapIDs []uuid.UUID) (map[uuid.UUID]int, error)
	// CountCompleted counts the user's roadmaps that have tasks and whose every task has a
	// live completed ledger row.
	CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int, error)
	// TopCompleted ranks users by completed roadmap count, highest first.
	TopCompleted(dbc dbctx.Context, limit int) ([]types.UserScore, error)
	// Delete removes the roadmap and its module/task tree.
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type roadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return &roadmapRepo{db: db, log: baseLog.With("repo", "RoadmapRepo")}
}

func (r *roadmapRepo) Create(dbc dbctx.Context, rm *types.Roadmap) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	if rm.ID == uuid.Nil {
		rm.ID = uuid.New()
	}
	rm.CreatedAt, rm.UpdatedAt = now, now

	modules := rm.Modules
	var tasks []*types.RoadmapTask
	for i, m := range modules {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		m.RoadmapID = rm.ID
		m.Position = i
		m.CreatedAt, m.UpdatedAt = now, now
		for j, task := range m.Tasks {
			if task.ID == uuid.Nil {
				task.ID = uuid.New()
			}
			task.RoadmapID = rm.ID
			task.ModuleKey = m.ModuleKey
			task.Position = j
			task.CreatedAt, task.UpdatedAt = now, now
			tasks = append(tasks, task)
		}
	}

	return t.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Omit("Modules").Create(rm).Error; err != nil {
			return err
		}
		if len(modules) > 0 {
			if err := txx.Create(&modules).Error; err != nil {
				return err
			}
		}
		if len(tasks) > 0 {
			if err := txx.Create(&tasks).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *roadmapRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Roadmap, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rm types.Roadmap
	if err := t.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&rm).Error; err != nil {
		return nil, err
	}
	if rm.ID == uuid.Nil {
		return nil, nil
	}
	return &rm, nil
}

func (r *roadmapRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Roadmap, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Roadmap
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roadmapRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Roadmap{}).
		Where("user_id = ?", userID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *roadmapRepo) GetModule(dbc dbctx.Context, roadmapID uuid.UUID, moduleKey string) (*types.RoadmapModule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var m types.RoadmapModule
	if err := t.WithContext(dbc.Ctx).
		Where("roadmap_id = ? AND module_key = ?", roadmapID, moduleKey).
		Limit(1).
		Find(&m).Error; err != nil {
		return nil, err
	}
	if m.ID == uuid.Nil {
		return nil, nil
	}
	return &m, nil
}

func (r *roadmapRepo) GetTask(dbc dbctx.Context, roadmapID uuid.UUID, moduleKey, taskKey string) (*types.RoadmapTask, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var task types.RoadmapTask
	if err := t.WithContext(dbc.Ctx).
		Where("roadmap_id = ? AND module_key = ? AND task_key = ?", roadmapID, moduleKey, taskKey).
		Limit(1).
		Find(&task).Error; err != nil {
		return nil, err
	}
	if task.ID == uuid.Nil {
		return nil, nil
	}
	return &task, nil
}

func (r *roadmapRepo) ListModules(dbc dbctx.Context, roadmapID uuid.UUID) ([]*types.RoadmapModule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.RoadmapModule
	if err := t.WithContext(dbc.Ctx).
		Where("roadmap_id = ?", roadmapID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roadmapRepo) ListTasks(dbc dbctx.Context, roadmapID uuid.UUID) ([]*types.RoadmapTask, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.RoadmapTask
	if err := t.WithContext(dbc.Ctx).
		Where("roadmap_id = ?", roadmapID).
		Order("module_key ASC, position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roadmapRepo) CountTasks(dbc dbctx.Context, roadmapIDs []uuid.UUID) (map[uuid.UUID]int, error) {
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
		Model(&types.RoadmapTask{}).
		Select("roadmap_id, COUNT(*) AS n").
		Where("roadmap_id IN ?", roadmapIDs).
		Group("roadmap_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, rr := range rows {
		out[rr.RoadmapID] = rr.N
	}
	return out, nil
}

const completedRoadmapCond = `EXISTS (SELECT 1 FROM roadmap_tasks rt WHERE rt.roadmap_id = roadmaps.id)
  AND NOT EXISTS (
    SELECT 1 FROM roadmap_tasks rt
    WHERE rt.roadmap_id = roadmaps.id
      AND NOT EXISTS (
        SELECT 1 FROM completion_events ce
        WHERE ce.user_id = roadmaps.user_id
          AND ce.roadmap_id = roadmaps.id
          AND ce.module_id = rt.module_key
          AND ce.task_id = rt.task_key
          AND ce.completed = ?
      )
  )`

func (r *roadmapRepo) CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.Roadmap{}).
		Where("roadmaps.user_id = ?", userID).
		Where(completedRoadmapCond, true).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *roadmapRepo) TopCompleted(dbc dbctx.Context, limit int) ([]types.UserScore, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []types.UserScore
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Roadmap{}).
		Select("roadmaps.user_id AS user_id, COUNT(*) AS score").
		Where(completedRoadmapCond, true).
		Group("roadmaps.user_id").
		Order("score DESC").
		Order("roadmaps.user_id ASC").
		Limit(limit).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roadmapRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Where("roadmap_id = ?", id).Delete(&types.RoadmapTask{}).Error; err != nil {
			return err
		}
		if err := txx.Where("roadmap_id = ?", id).Delete(&types.RoadmapModule{}).Error; err != nil {
			return err
		}
		return txx.Where("id = ?", id).Delete(&types.Roadmap{}).Error
	})
}
