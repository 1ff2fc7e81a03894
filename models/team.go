package models

import "time"

// Team is stored at team:{id}. Members is an enrichment field filled from the
// team_member:{team_id}: prefix on detail reads.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tag       string    `json:"tag"`
	OwnerID   string    `json:"owner_id"`
	LogoURL   string    `json:"logo_url"`
	Bio       string    `json:"bio"`
	Level     int       `json:"level"`
	TotalXP   int       `json:"total_xp"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Members []TeamMember `json:"members,omitempty"`
}

type TeamRole string

const (
	TeamRoleOwner   TeamRole = "owner"
	TeamRoleCaptain TeamRole = "captain"
	TeamRoleMember  TeamRole = "member"
)

// TeamMember is stored at team_member:{team_id}:{user_id}.
type TeamMember struct {
	ID       string    `json:"id"`
	TeamID   string    `json:"team_id"`
	UserID   string    `json:"user_id"`
	Role     TeamRole  `json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	User *MemberSummary `json:"user,omitempty"`
}

type MemberSummary struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Level       int     `json:"level"`
}
