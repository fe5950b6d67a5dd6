package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/data/repos/testutil"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/realtime"
	"github.com/yungbote/roadmap-backend/internal/userlock"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) events() []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(e.msgs))
	for _, m := range e.msgs {
		out = append(out, m.Event)
	}
	return out
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) AddDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.AddDate(0, 0, n)
}

type harness struct {
	ctx          context.Context
	db           *gorm.DB
	clock        *fakeClock
	emitter      *recordingEmitter
	metrics      *observability.Metrics
	events       repos.CompletionEventRepo
	activityRepo repos.DailyActivityRepo
	statsRepo    repos.UserStatsRepo
	streakRepo   repos.StreakStateRepo
	roadmapRepo  repos.RoadmapRepo
	log          *logger.Logger
	locker       userlock.Locker
	notify       ProgressNotifier

	activity     ActivityService
	streak       StreakService
	achievements AchievementService
	stats        StatsService
	roadmaps     RoadmapService
	progress     ProgressService
}

func newHarness(t *testing.T, catalog ...*types.Achievement) *harness {
	t.Helper()
	db := testutil.SQLite(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	h := &harness{
		ctx:     ctx,
		db:      db,
		clock:   &fakeClock{t: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.Local)},
		emitter: &recordingEmitter{},
		metrics: observability.NewMetrics(),
	}
	h.log = log
	h.locker = userlock.NewLocalLocker()
	h.notify = NewProgressNotifier(h.emitter)

	h.events = repos.NewCompletionEventRepo(db, log)
	h.activityRepo = repos.NewDailyActivityRepo(db, log)
	h.statsRepo = repos.NewUserStatsRepo(db, log)
	h.streakRepo = repos.NewStreakStateRepo(db, log)
	h.roadmapRepo = repos.NewRoadmapRepo(db, log)

	h.activity = NewActivityService(db, log, h.activityRepo)
	h.streak = NewStreakService(log, h.activityRepo, h.streakRepo, Clock(h.clock.Now))
	h.achievements = NewAchievementService(AchievementServiceDeps{
		DB:           db,
		Log:          log,
		Achievements: repos.NewAchievementRepo(db, log),
		Awards:       repos.NewUserAchievementRepo(db, log),
		Stats:        h.statsRepo,
		Streaks:      h.streakRepo,
		Roadmaps:     h.roadmapRepo,
		Metrics:      h.metrics,
		Clock:        Clock(h.clock.Now),
		WeeklyGoal:   10,
	})
	h.stats = h.newStats(h.statsRepo)
	h.roadmaps = NewRoadmapService(RoadmapServiceDeps{
		DB:         db,
		Log:        log,
		Roadmaps:   h.roadmapRepo,
		Events:     h.events,
		Stats:      h.statsRepo,
		Locker:     h.locker,
		Metrics:    h.metrics,
		Notify:     h.notify,
		WeeklyGoal: 10,
	})
	h.progress = h.newProgress(h.achievements, h.stats)

	if len(catalog) > 0 {
		require.NoError(t, h.achievements.SeedCatalog(ctx, catalog))
	}
	return h
}

// newStats builds a StatsService over the given stats repo, sharing everything else.
func (h *harness) newStats(statsRepo repos.UserStatsRepo) StatsService {
	return NewStatsService(StatsServiceDeps{
		DB:         h.db,
		Log:        h.log,
		Stats:      statsRepo,
		Streaks:    h.streakRepo,
		Events:     h.events,
		Activity:   h.activityRepo,
		Roadmaps:   h.roadmapRepo,
		Streak:     h.streak,
		Locker:     h.locker,
		Metrics:    h.metrics,
		Clock:      Clock(h.clock.Now),
		WeeklyGoal: 10,
	})
}

func (h *harness) newProgress(achievements AchievementService, stats StatsService) ProgressService {
	return NewProgressService(ProgressServiceDeps{
		DB:           h.db,
		Log:          h.log,
		Events:       h.events,
		Roadmaps:     h.roadmapRepo,
		RoadmapSvc:   h.roadmaps,
		Activity:     h.activity,
		Streak:       h.streak,
		Achievements: achievements,
		Stats:        stats,
		Locker:       h.locker,
		Notify:       h.notify,
		Metrics:      h.metrics,
		Clock:        Clock(h.clock.Now),
	})
}

// racingStatsRepo moves the stored version forward right before each Update while bumps
// remain, as a concurrent writer would. A negative bumps races every write.
type racingStatsRepo struct {
	repos.UserStatsRepo
	db      *gorm.DB
	bumps   int
	updates int
}

func (r *racingStatsRepo) Update(dbc dbctx.Context, s *types.UserStats) (bool, error) {
	r.updates++
	if r.bumps != 0 {
		r.bumps--
		t := dbc.Tx
		if t == nil {
			t = r.db
		}
		if err := t.WithContext(dbc.Ctx).
			Model(&types.UserStats{}).
			Where("user_id = ?", s.UserID).
			UpdateColumn("version", gorm.Expr("version + 1")).Error; err != nil {
			return false, err
		}
	}
	return r.UserStatsRepo.Update(dbc, s)
}

func (h *harness) seedRoadmap(t *testing.T, userID uuid.UUID, tasks ...testutil.TaskSeed) *types.Roadmap {
	t.Helper()
	return testutil.SeedRoadmap(t, h.ctx, h.db, userID, tasks...)
}

func (h *harness) toggle(t *testing.T, userID uuid.UUID, rm *types.Roadmap, module, task string, completed bool, minutes int) *ToggleOutcome {
	t.Helper()
	out, err := h.progress.SetTaskCompletion(h.ctx, userID, ToggleInput{
		RoadmapID:        rm.ID,
		ModuleID:         module,
		TaskID:           task,
		Completed:        completed,
		TimeSpentMinutes: minutes,
	})
	require.NoError(t, err)
	require.NotNil(t, out)
	return out
}

func (h *harness) dayCount(t *testing.T, userID uuid.UUID, date string) int {
	t.Helper()
	row, err := h.activityRepo.Get(dbctx.Context{Ctx: h.ctx}, userID, date)
	require.NoError(t, err)
	if row == nil {
		return 0
	}
	return row.TasksCompleted
}

func (h *harness) today() string {
	return h.clock.Now().Format("2006-01-02")
}

func achievement(id string, criteria types.CriteriaType, value, reward, order int) *types.Achievement {
	return &types.Achievement{
		ID:            id,
		Title:         id,
		Category:      "progress",
		CriteriaType:  criteria,
		CriteriaValue: value,
		RewardXP:      reward,
		SortOrder:     order,
		IsActive:      true,
	}
}
