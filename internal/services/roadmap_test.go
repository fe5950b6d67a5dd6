package services

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/domain/progress"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/realtime"
)

func sampleImport() *RoadmapImport {
	return &RoadmapImport{
		Title:      "Learn Go",
		Difficulty: "Intermediate",
		Category:   "backend",
		Tags:       []string{"go", "backend"},
		AIProvider: "openai",
		Modules: []ModuleImport{
			{ID: "basics", Title: "Basics", Tasks: []TaskImport{
				{ID: "syntax", Title: "Syntax", Difficulty: "easy", Type: "theory"},
				{ID: "types", Title: "Types", Difficulty: "medium", Type: "practice"},
			}},
			{ID: "concurrency", Title: "Concurrency", Tasks: []TaskImport{
				{ID: "channels", Title: "Channels", Difficulty: "hard", Type: "project"},
			}},
		},
	}
}

func TestImportAndGetRoadmap(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()

	rm, err := h.roadmaps.ImportRoadmap(h.ctx, userID, sampleImport())
	require.NoError(t, err)
	assert.Equal(t, "intermediate", rm.Difficulty)

	var tags []string
	require.NoError(t, json.Unmarshal(rm.Tags, &tags))
	assert.Equal(t, []string{"go", "backend"}, tags)

	got, err := h.roadmaps.GetRoadmap(h.ctx, userID, rm.ID)
	require.NoError(t, err)
	require.Len(t, got.Modules, 2)
	assert.Equal(t, "basics", got.Modules[0].ModuleKey)
	require.Len(t, got.Modules[0].Tasks, 2)
	assert.Equal(t, "Easy", got.Modules[0].Tasks[0].Difficulty)
	assert.Equal(t, "Theory", got.Modules[0].Tasks[0].TaskType)
	assert.Equal(t, "Project", got.Modules[1].Tasks[0].TaskType)

	_, err = h.roadmaps.GetRoadmap(h.ctx, uuid.New(), rm.ID)
	assert.ErrorIs(t, err, progress.ErrAccessDenied)
	_, err = h.roadmaps.GetRoadmap(h.ctx, userID, uuid.New())
	assert.ErrorIs(t, err, progress.ErrNotFound)
}

func TestImportRoadmapValidation(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()

	cases := map[string]func(in *RoadmapImport){
		"missing title":     func(in *RoadmapImport) { in.Title = " " },
		"bad level":         func(in *RoadmapImport) { in.Difficulty = "expert" },
		"empty module id":   func(in *RoadmapImport) { in.Modules[0].ID = "" },
		"duplicate module":  func(in *RoadmapImport) { in.Modules[1].ID = "basics" },
		"duplicate task":    func(in *RoadmapImport) { in.Modules[0].Tasks[1].ID = "syntax" },
		"bad difficulty":    func(in *RoadmapImport) { in.Modules[0].Tasks[0].Difficulty = "brutal" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := sampleImport()
			mutate(in)
			_, err := h.roadmaps.ImportRoadmap(h.ctx, userID, in)
			assert.ErrorIs(t, err, progress.ErrInvalidArgument)
		})
	}
}

func TestRoadmapSummariesAndAnalytics(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	rm, err := h.roadmaps.ImportRoadmap(h.ctx, userID, sampleImport())
	require.NoError(t, err)

	h.toggle(t, userID, rm, "basics", "syntax", true, 20)
	h.toggle(t, userID, rm, "basics", "types", true, 30)

	list, err := h.roadmaps.ListRoadmaps(h.ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].TotalTasks)
	assert.Equal(t, 2, list[0].CompletedTasks)
	assert.Equal(t, 67, list[0].Progress)

	a, err := h.roadmaps.Analytics(h.ctx, userID, rm.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, a.TotalModules)
	assert.Equal(t, 1, a.CompletedModules)
	assert.Equal(t, 3, a.TotalTasks)
	assert.Equal(t, 2, a.CompletedTasks)
	assert.Equal(t, 67, a.Progress)
	assert.Equal(t, 50, a.TimeSpentMinutes)
	assert.Equal(t, map[string]int{"Easy": 1, "Medium": 1, "Hard": 1}, a.DifficultyDistribution)
}

func TestDeleteRoadmapCascadesLedger(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	rm, err := h.roadmaps.ImportRoadmap(h.ctx, userID, sampleImport())
	require.NoError(t, err)
	h.toggle(t, userID, rm, "basics", "syntax", true, 0)

	err = h.roadmaps.DeleteRoadmap(h.ctx, uuid.New(), rm.ID)
	require.ErrorIs(t, err, progress.ErrAccessDenied)

	require.NoError(t, h.roadmaps.DeleteRoadmap(h.ctx, userID, rm.ID))

	var n int64
	require.NoError(t, h.db.Model(&types.CompletionEvent{}).Where("roadmap_id = ?", rm.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, h.db.Model(&types.RoadmapTask{}).Where("roadmap_id = ?", rm.ID).Count(&n).Error)
	assert.Zero(t, n)

	// History survives the roadmap.
	assert.Equal(t, 1, h.dayCount(t, userID, h.today()))
	snap, err := h.stats.Project(h.ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalCompleted)
	assert.Equal(t, 0, snap.TotalRoadmaps)
	row, err := h.statsRepo.Get(dbctx.Context{Ctx: h.ctx}, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, row.RetainedCompleted)

	assert.Contains(t, h.emitter.events(), realtime.SSEEventRoadmapDeleted)
	assert.ErrorIs(t, h.roadmaps.DeleteRoadmap(h.ctx, userID, rm.ID), progress.ErrNotFound)
}
