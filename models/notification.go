package models

import "time"

type NotificationType string

const (
	NotificationTournamentStart     NotificationType = "tournament_start"
	NotificationRegistrationClosing NotificationType = "registration_closing"
	NotificationMatchStart          NotificationType = "match_start"
	NotificationXPEarned            NotificationType = "xp_earned"
	NotificationLevelUp             NotificationType = "level_up"
	NotificationTeamInvite          NotificationType = "team_invite"
)

// Notification is a durable, queryable record at notification:{user_id}:{id}.
// The only mutation is the read toggle; there is no delivery mechanism here.
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}
