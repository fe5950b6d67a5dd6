package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/realtime"
)

// ProgressNotifier pushes best-effort events on the user's channel.
type ProgressNotifier interface {
	ProgressUpdated(ctx context.Context, userID uuid.UUID, ev *types.CompletionEvent)
	AchievementEarned(ctx context.Context, userID uuid.UUID, award *types.UserAchievement)
	StreakUpdated(ctx context.Context, userID uuid.UUID, streak *types.StreakState)
	StatsUpdated(ctx context.Context, userID uuid.UUID, snapshot *types.UserStatsSnapshot)
	RoadmapDeleted(ctx context.Context, userID, roadmapID uuid.UUID)
}

type progressNotifier struct {
	emit SSEEmitter
}

func NewProgressNotifier(emit SSEEmitter) ProgressNotifier {
	return &progressNotifier{emit: emit}
}

func (n *progressNotifier) send(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(context.WithoutCancel(ctx), realtime.SSEMessage{
		Channel: userID.String(),
		Event:   event,
		Data:    data,
	})
}

func (n *progressNotifier) ProgressUpdated(ctx context.Context, userID uuid.UUID, ev *types.CompletionEvent) {
	if ev == nil {
		return
	}
	n.send(ctx, userID, realtime.SSEEventProgressUpdated, map[string]any{
		"roadmap_id": ev.RoadmapID,
		"module_id":  ev.ModuleID,
		"task_id":    ev.TaskID,
		"completed":  ev.Completed,
	})
}

func (n *progressNotifier) AchievementEarned(ctx context.Context, userID uuid.UUID, award *types.UserAchievement) {
	if award == nil {
		return
	}
	data := map[string]any{"achievement_id": award.AchievementID}
	if award.Achievement != nil {
		data["title"] = award.Achievement.Title
		data["reward_xp"] = award.Achievement.RewardXP
	}
	n.send(ctx, userID, realtime.SSEEventAchievementEarned, data)
}

func (n *progressNotifier) StreakUpdated(ctx context.Context, userID uuid.UUID, streak *types.StreakState) {
	if streak == nil {
		return
	}
	n.send(ctx, userID, realtime.SSEEventStreakUpdated, map[string]any{
		"current_streak": streak.CurrentStreak,
		"longest_streak": streak.LongestStreak,
	})
}

func (n *progressNotifier) StatsUpdated(ctx context.Context, userID uuid.UUID, snapshot *types.UserStatsSnapshot) {
	if snapshot == nil {
		return
	}
	n.send(ctx, userID, realtime.SSEEventStatsUpdated, map[string]any{"stats": snapshot})
}

func (n *progressNotifier) RoadmapDeleted(ctx context.Context, userID, roadmapID uuid.UUID) {
	n.send(ctx, userID, realtime.SSEEventRoadmapDeleted, map[string]any{"roadmap_id": roadmapID})
}
