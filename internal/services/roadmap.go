package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/domain/progress"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/userlock"
)

// RoadmapImport is a generated roadmap tree as submitted by a client.
type RoadmapImport struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Difficulty  string         `json:"difficulty"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	AIProvider  string         `json:"ai_provider"`
	Modules     []ModuleImport `json:"modules"`
}

type ModuleImport struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Difficulty  string       `json:"difficulty"`
	Tasks       []TaskImport `json:"tasks"`
}

type TaskImport struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	Type       string `json:"type"`
}

const maxKeyLen = 128

func (in *RoadmapImport) toModel(userID uuid.UUID) (*types.Roadmap, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: roadmap title required", progress.ErrInvalidArgument)
	}
	level, err := normalizeLevel(in.Difficulty)
	if err != nil {
		return nil, err
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("%w: tags: %v", progress.ErrInvalidArgument, err)
	}
	rm := &types.Roadmap{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Difficulty:  level,
		Category:    strings.TrimSpace(in.Category),
		Tags:        datatypes.JSON(rawTags),
		AIProvider:  strings.TrimSpace(in.AIProvider),
	}
	moduleSeen := map[string]bool{}
	for i, m := range in.Modules {
		key := strings.TrimSpace(m.ID)
		if key == "" || len(key) > maxKeyLen {
			return nil, fmt.Errorf("%w: module %d: id must be 1..%d chars", progress.ErrInvalidArgument, i, maxKeyLen)
		}
		if moduleSeen[key] {
			return nil, fmt.Errorf("%w: duplicate module id %q", progress.ErrInvalidArgument, key)
		}
		moduleSeen[key] = true
		mod := &types.RoadmapModule{
			ModuleKey:   key,
			Title:       strings.TrimSpace(m.Title),
			Description: strings.TrimSpace(m.Description),
			Difficulty:  strings.ToLower(strings.TrimSpace(m.Difficulty)),
		}
		taskSeen := map[string]bool{}
		for j, t := range m.Tasks {
			tkey := strings.TrimSpace(t.ID)
			if tkey == "" || len(tkey) > maxKeyLen {
				return nil, fmt.Errorf("%w: module %q task %d: id must be 1..%d chars", progress.ErrInvalidArgument, key, j, maxKeyLen)
			}
			if taskSeen[tkey] {
				return nil, fmt.Errorf("%w: duplicate task id %q in module %q", progress.ErrInvalidArgument, tkey, key)
			}
			taskSeen[tkey] = true
			d, err := progress.ParseDifficulty(t.Difficulty)
			if err != nil {
				return nil, fmt.Errorf("module %q task %q: %w", key, tkey, err)
			}
			mod.Tasks = append(mod.Tasks, &types.RoadmapTask{
				TaskKey:    tkey,
				Title:      strings.TrimSpace(t.Title),
				Difficulty: string(d),
				TaskType:   normalizeTaskType(t.Type),
			})
		}
		rm.Modules = append(rm.Modules, mod)
	}
	return rm, nil
}

func normalizeLevel(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", roadmap.LevelBeginner:
		return roadmap.LevelBeginner, nil
	case roadmap.LevelIntermediate:
		return roadmap.LevelIntermediate, nil
	case roadmap.LevelAdvanced:
		return roadmap.LevelAdvanced, nil
	}
	return "", fmt.Errorf("%w: unknown roadmap difficulty %q", progress.ErrInvalidArgument, raw)
}

func normalizeTaskType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "theory":
		return roadmap.TaskTypeTheory
	case "project":
		return roadmap.TaskTypeProject
	default:
		return roadmap.TaskTypePractice
	}
}

type RoadmapService interface {
	// Authorize loads the roadmap and checks that userID owns it.
	Authorize(dbc dbctx.Context, userID, roadmapID uuid.UUID) (*types.Roadmap, error)
	ImportRoadmap(ctx context.Context, userID uuid.UUID, in *RoadmapImport) (*types.Roadmap, error)
	ListRoadmaps(ctx context.Context, userID uuid.UUID) ([]*types.RoadmapSummary, error)
	// GetRoadmap returns the roadmap with its module and task tree.
	GetRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) (*types.Roadmap, error)
	Analytics(ctx context.Context, userID, roadmapID uuid.UUID) (*types.RoadmapAnalytics, error)
	// DeleteRoadmap removes the roadmap, its tree and its ledger rows. Daily activity and stats
	// are history and are kept.
	DeleteRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) error
}

type roadmapService struct {
	db         *gorm.DB
	log        *logger.Logger
	roadmaps   repos.RoadmapRepo
	events     repos.CompletionEventRepo
	stats      repos.UserStatsRepo
	locker     userlock.Locker
	metrics    *observability.Metrics
	notify     ProgressNotifier
	weeklyGoal int
}

type RoadmapServiceDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Roadmaps repos.RoadmapRepo
	Events   repos.CompletionEventRepo
	// Stats receives the completed events of a deleted roadmap as retained history.
	Stats      repos.UserStatsRepo
	Locker     userlock.Locker
	Metrics    *observability.Metrics
	Notify     ProgressNotifier
	WeeklyGoal int
}

func NewRoadmapService(d RoadmapServiceDeps) RoadmapService {
	if d.Notify == nil {
		d.Notify = NewProgressNotifier(nil)
	}
	return &roadmapService{
		db:         d.DB,
		log:        d.Log.With("service", "RoadmapService"),
		roadmaps:   d.Roadmaps,
		events:     d.Events,
		stats:      d.Stats,
		locker:     d.Locker,
		metrics:    d.Metrics,
		notify:     d.Notify,
		weeklyGoal: d.WeeklyGoal,
	}
}

func (s *roadmapService) Authorize(dbc dbctx.Context, userID, roadmapID uuid.UUID) (*types.Roadmap, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user", progress.ErrAccessDenied)
	}
	rm, err := s.roadmaps.GetByID(dbc, roadmapID)
	if err != nil {
		return nil, storageErr("load roadmap", err)
	}
	if rm == nil {
		return nil, fmt.Errorf("%w: roadmap %s", progress.ErrNotFound, roadmapID)
	}
	if rm.UserID != userID {
		return nil, fmt.Errorf("%w: roadmap %s", progress.ErrAccessDenied, roadmapID)
	}
	return rm, nil
}

func (s *roadmapService) ImportRoadmap(ctx context.Context, userID uuid.UUID, in *RoadmapImport) (*types.Roadmap, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user", progress.ErrAccessDenied)
	}
	if in == nil {
		return nil, fmt.Errorf("%w: empty roadmap", progress.ErrInvalidArgument)
	}
	rm, err := in.toModel(userID)
	if err != nil {
		return nil, err
	}
	if err := s.roadmaps.Create(dbctx.Context{Ctx: ctx}, rm); err != nil {
		return nil, storageErr("create roadmap", err)
	}
	s.log.Info("Roadmap imported", "user_id", userID, "roadmap_id", rm.ID, "modules", len(rm.Modules))
	return rm, nil
}

func (s *roadmapService) ListRoadmaps(ctx context.Context, userID uuid.UUID) ([]*types.RoadmapSummary, error) {
	dbc := dbctx.Context{Ctx: ctx}
	list, err := s.roadmaps.ListByUser(dbc, userID)
	if err != nil {
		return nil, storageErr("list roadmaps", err)
	}
	ids := make([]uuid.UUID, 0, len(list))
	for _, rm := range list {
		ids = append(ids, rm.ID)
	}
	totals, err := s.roadmaps.CountTasks(dbc, ids)
	if err != nil {
		return nil, storageErr("count roadmap tasks", err)
	}
	done, err := s.events.CountCompletedByRoadmap(dbc, userID, ids)
	if err != nil {
		return nil, storageErr("count completed tasks", err)
	}
	out := make([]*types.RoadmapSummary, 0, len(list))
	for _, rm := range list {
		out = append(out, &types.RoadmapSummary{
			Roadmap:        rm,
			TotalTasks:     totals[rm.ID],
			CompletedTasks: done[rm.ID],
			Progress:       roadmap.ProgressPercent(done[rm.ID], totals[rm.ID]),
		})
	}
	return out, nil
}

func (s *roadmapService) GetRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) (*types.Roadmap, error) {
	dbc := dbctx.Context{Ctx: ctx}
	rm, err := s.Authorize(dbc, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	modules, err := s.roadmaps.ListModules(dbc, roadmapID)
	if err != nil {
		return nil, storageErr("list modules", err)
	}
	tasks, err := s.roadmaps.ListTasks(dbc, roadmapID)
	if err != nil {
		return nil, storageErr("list tasks", err)
	}
	byKey := make(map[string]*types.RoadmapModule, len(modules))
	for _, m := range modules {
		m.Tasks = []*types.RoadmapTask{}
		byKey[m.ModuleKey] = m
	}
	for _, t := range tasks {
		if m := byKey[t.ModuleKey]; m != nil {
			m.Tasks = append(m.Tasks, t)
		}
	}
	rm.Modules = modules
	return rm, nil
}

func (s *roadmapService) Analytics(ctx context.Context, userID, roadmapID uuid.UUID) (*types.RoadmapAnalytics, error) {
	rm, err := s.GetRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListByRoadmap(dbctx.Context{Ctx: ctx}, userID, roadmapID)
	if err != nil {
		return nil, storageErr("list completion events", err)
	}
	return buildAnalytics(rm, events), nil
}

func buildAnalytics(rm *types.Roadmap, events []*types.CompletionEvent) *types.RoadmapAnalytics {
	done := make(map[string]bool, len(events))
	out := &types.RoadmapAnalytics{
		RoadmapID: rm.ID,
		DifficultyDistribution: map[string]int{
			string(types.DifficultyEasy):   0,
			string(types.DifficultyMedium): 0,
			string(types.DifficultyHard):   0,
		},
	}
	for _, ev := range events {
		if !ev.Completed {
			continue
		}
		done[ev.ModuleID+"/"+ev.TaskID] = true
		out.TimeSpentMinutes += ev.TimeSpentMinutes
	}
	for _, m := range rm.Modules {
		out.TotalModules++
		moduleDone := len(m.Tasks) > 0
		for _, t := range m.Tasks {
			out.TotalTasks++
			out.DifficultyDistribution[t.Difficulty]++
			if done[m.ModuleKey+"/"+t.TaskKey] {
				out.CompletedTasks++
			} else {
				moduleDone = false
			}
		}
		if moduleDone {
			out.CompletedModules++
		}
	}
	out.Progress = roadmap.ProgressPercent(out.CompletedTasks, out.TotalTasks)
	return out
}

func (s *roadmapService) DeleteRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) error {
	unlock, err := lockUser(ctx, s.locker, s.metrics, userID)
	if err != nil {
		return err
	}
	defer unlock()

	var (
		removed  int64
		retained int
	)
	err = inTx(s.db, dbctx.Context{Ctx: ctx}, func(dbc dbctx.Context) error {
		if _, err := s.Authorize(dbc, userID, roadmapID); err != nil {
			return err
		}
		events, err := s.events.ListByRoadmap(dbc, userID, roadmapID)
		if err != nil {
			return storageErr("list completion events", err)
		}
		if _, err := updateStats(dbc, s.stats, s.log, userID, s.weeklyGoal, func(stats *types.UserStats) bool {
			retained = stats.Retain(events)
			return retained > 0
		}); err != nil {
			return err
		}
		n, err := s.events.DeleteByRoadmap(dbc, userID, roadmapID)
		if err != nil {
			return storageErr("delete completion events", err)
		}
		removed = n
		if err := s.roadmaps.Delete(dbc, roadmapID); err != nil {
			return storageErr("delete roadmap", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("Roadmap deleted",
		"user_id", userID,
		"roadmap_id", roadmapID,
		"events_removed", removed,
		"completions_retained", retained,
	)
	s.notify.RoadmapDeleted(ctx, userID, roadmapID)
	return nil
}
