package models

import "time"

type SocialProvider string

const (
	ProviderDiscord SocialProvider = "discord"
	ProviderTwitch  SocialProvider = "twitch"
	ProviderSteam   SocialProvider = "steam"
)

// SocialConnection links a profile to an external gaming identity, stored at
// social_connection:{user_id}:{id}. One connection per provider per user.
type SocialConnection struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	Provider         SocialProvider `json:"provider"`
	ProviderID       string         `json:"provider_id"`
	ProviderUsername string         `json:"provider_username"`
	ConnectedAt      time.Time      `json:"connected_at"`
}
