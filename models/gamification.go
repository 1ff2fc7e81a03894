package models

import "time"

// XPTransaction is one append-only ledger entry per awarded action, stored at
// xp_transaction:{user_id}:{id}. Never mutated or deleted; xp_amount is the
// rule's value at award time and is not recomputed later.
type XPTransaction struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	ActionType  string                 `json:"action_type"`
	XPAmount    int                    `json:"xp_amount"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
}

// LevelProgress describes where a profile sits between two level thresholds.
// Field names are camelCase on the wire for the progress bar UI.
type LevelProgress struct {
	CurrentLevel   int     `json:"currentLevel"`
	CurrentXP      int     `json:"currentXp"`
	CurrentLevelXP int     `json:"currentLevelXp"`
	NextLevelXP    int     `json:"nextLevelXp"`
	XPToNextLevel  int     `json:"xpToNextLevel"`
	Percentage     float64 `json:"percentage"`
}

type LeaderboardEntry struct {
	Rank        int      `json:"rank"`
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	AvatarURL   *string  `json:"avatar_url"`
	Level       int      `json:"level"`
	TotalXP     int      `json:"total_xp"`
	Role        UserRole `json:"role"`
}

// LeaderboardSnapshot is the cached ranking written by the leaderboard worker
// under leaderboard:global.
type LeaderboardSnapshot struct {
	Entries     []LeaderboardEntry `json:"entries"`
	GeneratedAt time.Time          `json:"generated_at"`
}
