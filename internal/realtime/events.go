package realtime

type SSEEvent string

const (
	SSEEventProgressUpdated   SSEEvent = "progress_updated"
	SSEEventAchievementEarned SSEEvent = "achievement_earned"
	SSEEventStreakUpdated     SSEEvent = "streak_updated"
	SSEEventStatsUpdated      SSEEvent = "stats_updated"
	SSEEventRoadmapDeleted    SSEEvent = "roadmap_deleted"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
