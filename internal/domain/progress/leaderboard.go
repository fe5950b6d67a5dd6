package progress

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// LeaderboardMetric selects the value users are ranked by.
type LeaderboardMetric string

const (
	LeaderboardXP        LeaderboardMetric = "xp"
	LeaderboardStreak    LeaderboardMetric = "streak"
	LeaderboardCompleted LeaderboardMetric = "completed"
	LeaderboardRoadmaps  LeaderboardMetric = "roadmaps"

	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// ParseLeaderboardMetric maps a query value to a metric. Empty means xp.
func ParseLeaderboardMetric(s string) (LeaderboardMetric, error) {
	switch m := LeaderboardMetric(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return LeaderboardXP, nil
	case LeaderboardXP, LeaderboardStreak, LeaderboardCompleted, LeaderboardRoadmaps:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown leaderboard type %q", ErrInvalidArgument, s)
	}
}

// ClampLeaderboardLimit applies the default to non-positive limits and caps the rest.
func ClampLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

// UserScore is one row of a ranked query before ranks are assigned.
type UserScore struct {
	UserID uuid.UUID `gorm:"column:user_id"`
	Score  int       `gorm:"column:score"`
}

type LeaderboardEntry struct {
	Rank   int       `json:"rank"`
	UserID uuid.UUID `json:"user_id"`
	Value  int       `json:"value"`
}

type Leaderboard struct {
	Type    LeaderboardMetric   `json:"type"`
	Entries []*LeaderboardEntry `json:"entries"`
}

// Rank numbers scores in the order given, starting at 1.
func Rank(scores []UserScore) []*LeaderboardEntry {
	out := make([]*LeaderboardEntry, 0, len(scores))
	for i, s := range scores {
		out = append(out, &LeaderboardEntry{Rank: i + 1, UserID: s.UserID, Value: s.Score})
	}
	return out
}
