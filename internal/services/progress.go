package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/domain/progress"
	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/userlock"
)

const maxTimeSpentMinutes = 24 * 60

type ToggleInput struct {
	RoadmapID        uuid.UUID
	ModuleID         string
	TaskID           string
	Completed        bool
	TimeSpentMinutes int
}

func (in ToggleInput) validate() error {
	if in.RoadmapID == uuid.Nil {
		return fmt.Errorf("%w: roadmap_id required", progress.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.ModuleID) == "" {
		return fmt.Errorf("%w: module_id required", progress.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.TaskID) == "" {
		return fmt.Errorf("%w: task_id required", progress.ErrInvalidArgument)
	}
	if in.TimeSpentMinutes < 0 || in.TimeSpentMinutes > maxTimeSpentMinutes {
		return fmt.Errorf("%w: time_spent_minutes must be within 0..%d", progress.ErrInvalidArgument, maxTimeSpentMinutes)
	}
	return nil
}

// ToggleOutcome is the result of one completion toggle. Degraded means the ledger committed
// but the streak or achievement step failed and will catch up on the next mutation.
type ToggleOutcome struct {
	Event           *types.CompletionEvent   `json:"event"`
	Changed         bool                     `json:"changed"`
	Snapshot        *types.UserStatsSnapshot `json:"snapshot"`
	NewAchievements []*types.UserAchievement `json:"new_achievements"`
	Streak          *types.StreakState       `json:"streak"`
	Degraded        bool                     `json:"degraded"`
}

type ProgressService interface {
	SetTaskCompletion(ctx context.Context, userID uuid.UUID, in ToggleInput) (*ToggleOutcome, error)
	ListRoadmapProgress(ctx context.Context, userID, roadmapID uuid.UUID) ([]*types.CompletionEvent, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	events       repos.CompletionEventRepo
	roadmaps     repos.RoadmapRepo
	roadmapSvc   RoadmapService
	activity     ActivityService
	streak       StreakService
	achievements AchievementService
	stats        StatsService
	locker       userlock.Locker
	notify       ProgressNotifier
	metrics      *observability.Metrics
	clock        Clock
}

type ProgressServiceDeps struct {
	DB           *gorm.DB
	Log          *logger.Logger
	Events       repos.CompletionEventRepo
	Roadmaps     repos.RoadmapRepo
	RoadmapSvc   RoadmapService
	Activity     ActivityService
	Streak       StreakService
	Achievements AchievementService
	Stats        StatsService
	Locker       userlock.Locker
	Notify       ProgressNotifier
	Metrics      *observability.Metrics
	Clock        Clock
}

func NewProgressService(d ProgressServiceDeps) ProgressService {
	if d.Notify == nil {
		d.Notify = NewProgressNotifier(nil)
	}
	return &progressService{
		db:           d.DB,
		log:          d.Log.With("service", "ProgressService"),
		events:       d.Events,
		roadmaps:     d.Roadmaps,
		roadmapSvc:   d.RoadmapSvc,
		activity:     d.Activity,
		streak:       d.Streak,
		achievements: d.Achievements,
		stats:        d.Stats,
		locker:       d.Locker,
		notify:       d.Notify,
		metrics:      d.Metrics,
		clock:        d.Clock,
	}
}

func (s *progressService) ListRoadmapProgress(ctx context.Context, userID, roadmapID uuid.UUID) ([]*types.CompletionEvent, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.roadmapSvc.Authorize(dbc, userID, roadmapID); err != nil {
		return nil, err
	}
	out, err := s.events.ListByRoadmap(dbc, userID, roadmapID)
	if err != nil {
		return nil, storageErr("list completion events", err)
	}
	if out == nil {
		out = []*types.CompletionEvent{}
	}
	return out, nil
}

func (s *progressService) SetTaskCompletion(ctx context.Context, userID uuid.UUID, in ToggleInput) (out *ToggleOutcome, err error) {
	ctx, span := tracer.Start(ctx, "progress.SetTaskCompletion")
	defer span.End()
	span.SetAttributes(
		attribute.String("roadmap.id", in.RoadmapID.String()),
		attribute.String("task.module_id", in.ModuleID),
		attribute.String("task.id", in.TaskID),
		attribute.Bool("task.completed", in.Completed),
	)
	defer func() {
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.metrics.IncToggle("error")
		case out.Degraded:
			s.metrics.IncToggle("degraded")
		case out.Changed:
			s.metrics.IncToggle("changed")
		default:
			s.metrics.IncToggle("noop")
		}
	}()

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user", progress.ErrAccessDenied)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	unlock, err := lockUser(ctx, s.locker, s.metrics, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var res *ledgerResult
	for attempt := 0; attempt < 2; attempt++ {
		res, err = s.applyLedger(ctx, userID, in)
		if err == nil || !errors.Is(err, progress.ErrConflictingUpdate) {
			break
		}
		s.log.Debug("Completion toggle conflicted, retrying", "user_id", userID, "attempt", attempt)
	}
	if err != nil {
		return nil, err
	}

	out = &ToggleOutcome{
		Event:           res.event,
		Changed:         res.changed,
		NewAchievements: []*types.UserAchievement{},
	}
	span.SetAttributes(attribute.Bool("toggle.changed", res.changed))

	if res.changed {
		streak, serr := s.streak.RecomputeStreak(dbctx.Context{Ctx: ctx}, userID)
		if serr != nil {
			s.degrade(out, userID, "streak", serr)
		} else {
			out.Streak = streak
		}
		awards, aerr := s.achievements.Evaluate(dbctx.Context{Ctx: ctx}, userID)
		if aerr != nil {
			s.degrade(out, userID, "achievements", aerr)
		} else {
			out.NewAchievements = awards
		}
	} else {
		streak, serr := s.streak.Current(ctx, userID)
		if serr != nil {
			s.degrade(out, userID, "streak", serr)
		} else {
			out.Streak = streak
		}
	}

	snapshot, perr := s.stats.Project(ctx, userID)
	if perr != nil {
		s.degrade(out, userID, "stats", perr)
	} else {
		out.Snapshot = snapshot
	}

	if res.changed {
		s.notify.ProgressUpdated(ctx, userID, out.Event)
		for _, ua := range out.NewAchievements {
			s.notify.AchievementEarned(ctx, userID, ua)
		}
		s.notify.StreakUpdated(ctx, userID, out.Streak)
		s.notify.StatsUpdated(ctx, userID, out.Snapshot)
	}
	return out, nil
}

func (s *progressService) degrade(out *ToggleOutcome, userID uuid.UUID, stage string, err error) {
	out.Degraded = true
	s.metrics.IncDegraded(stage)
	s.log.Warn("Post-commit step failed", "user_id", userID, "stage", stage, "error", err)
}

type ledgerResult struct {
	event   *types.CompletionEvent
	changed bool
}

// applyLedger writes the event, the daily delta and the stats deltas in one transaction.
func (s *progressService) applyLedger(ctx context.Context, userID uuid.UUID, in ToggleInput) (*ledgerResult, error) {
	res := &ledgerResult{}
	err := inTx(s.db, dbctx.Context{Ctx: ctx}, func(dbc dbctx.Context) error {
		if _, err := s.roadmapSvc.Authorize(dbc, userID, in.RoadmapID); err != nil {
			return err
		}
		module, err := s.roadmaps.GetModule(dbc, in.RoadmapID, in.ModuleID)
		if err != nil {
			return storageErr("load module", err)
		}
		if module == nil {
			return fmt.Errorf("%w: module %q", progress.ErrNotFound, in.ModuleID)
		}
		task, err := s.roadmaps.GetTask(dbc, in.RoadmapID, in.ModuleID, in.TaskID)
		if err != nil {
			return storageErr("load task", err)
		}
		if task == nil {
			return fmt.Errorf("%w: task %q", progress.ErrNotFound, in.TaskID)
		}
		difficulty, err := progress.ParseDifficulty(task.Difficulty)
		if err != nil {
			difficulty = types.DifficultyMedium
		}

		ref := types.TaskRef{UserID: userID, RoadmapID: in.RoadmapID, ModuleID: in.ModuleID, TaskID: in.TaskID}
		ev, err := s.events.Get(dbc, ref)
		if err != nil {
			return storageErr("load completion event", err)
		}
		now := s.clock.now()

		switch {
		case ev == nil && !in.Completed:
			res.event = &types.CompletionEvent{
				UserID:     userID,
				RoadmapID:  in.RoadmapID,
				ModuleID:   in.ModuleID,
				TaskID:     in.TaskID,
				Difficulty: difficulty,
			}
			return nil
		case ev == nil:
			completedAt := now
			ev = &types.CompletionEvent{
				UserID:           userID,
				RoadmapID:        in.RoadmapID,
				ModuleID:         in.ModuleID,
				TaskID:           in.TaskID,
				Completed:        true,
				Difficulty:       difficulty,
				TimeSpentMinutes: in.TimeSpentMinutes,
				CompletedAt:      &completedAt,
				CompletedOn:      progress.DateOf(now),
			}
			ok, err := s.events.Insert(dbc, ev)
			if err != nil {
				return storageErr("insert completion event", err)
			}
			if !ok {
				return fmt.Errorf("%w: completion event created concurrently", progress.ErrConflictingUpdate)
			}
			res.event, res.changed = ev, true
			return s.applyDeltas(dbc, userID, ev.CompletedOn, difficulty, in.TimeSpentMinutes, true)
		case ev.Completed == in.Completed:
			res.event = ev
			return nil
		}

		var (
			date      string
			timeDelta int
			d         = ev.Difficulty
		)
		if in.Completed {
			completedAt := now
			ev.Completed = true
			ev.Difficulty = difficulty
			ev.TimeSpentMinutes = in.TimeSpentMinutes
			ev.CompletedAt = &completedAt
			ev.CompletedOn = progress.DateOf(now)
			date, timeDelta, d = ev.CompletedOn, in.TimeSpentMinutes, difficulty
		} else {
			date = ev.CompletedOn
			if date == "" && ev.CompletedAt != nil {
				date = progress.DateOf(*ev.CompletedAt)
			}
			if date == "" {
				date = progress.DateOf(now)
			}
			timeDelta = ev.TimeSpentMinutes
			ev.Completed = false
			ev.TimeSpentMinutes = 0
			ev.CompletedAt = nil
			ev.CompletedOn = ""
		}
		ok, err := s.events.UpdateState(dbc, ev)
		if err != nil {
			return storageErr("update completion event", err)
		}
		if !ok {
			return fmt.Errorf("%w: completion event %s changed concurrently", progress.ErrConflictingUpdate, ev.ID)
		}
		res.event, res.changed = ev, true
		return s.applyDeltas(dbc, userID, date, d, timeDelta, in.Completed)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *progressService) applyDeltas(dbc dbctx.Context, userID uuid.UUID, date string, d types.Difficulty, timeSpent int, completed bool) error {
	delta := 1
	if !completed {
		delta = -1
	}
	if _, err := s.activity.RecordCompletion(dbc, userID, date, delta); err != nil {
		return err
	}
	if _, err := s.stats.ApplyCompletion(dbc, userID, d, timeSpent, completed); err != nil {
		return err
	}
	return nil
}
