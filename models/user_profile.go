package models

import "time"

type UserRole string

const (
	RoleGamer     UserRole = "gamer"
	RoleOrganizer UserRole = "organizer"
	RoleAdmin     UserRole = "admin"
)

// UserProfile is the per-account document stored at user_profile:{id}.
// level must equal the resolved level for total_xp after every XP write;
// profile_completion_percentage is refreshed on fetch, not kept live.
type UserProfile struct {
	ID                          string                 `json:"id"`
	Role                        UserRole               `json:"role"`
	DisplayName                 string                 `json:"display_name"`
	Email                       string                 `json:"email,omitempty"`
	AvatarURL                   *string                `json:"avatar_url"`
	Level                       int                    `json:"level"`
	CurrentXP                   int                    `json:"current_xp"`
	TotalXP                     int                    `json:"total_xp"`
	ProfileCompletionPercentage int                    `json:"profile_completion_percentage"`
	InterestedGames             []string               `json:"interested_games"`
	ContactInfo                 map[string]interface{} `json:"contact_info"`
	Bio                         *string                `json:"bio"`
	CreatedAt                   time.Time              `json:"created_at"`
	UpdatedAt                   time.Time              `json:"updated_at"`
	IsBanned                    bool                   `json:"is_banned"`
}

// PublicProfile is the subset of UserProfile exposed on unauthenticated reads.
type PublicProfile struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	AvatarURL       *string   `json:"avatar_url"`
	Level           int       `json:"level"`
	Role            UserRole  `json:"role"`
	Bio             *string   `json:"bio"`
	InterestedGames []string  `json:"interested_games"`
	CreatedAt       time.Time `json:"created_at"`
}

func (p *UserProfile) PublicView() PublicProfile {
	return PublicProfile{
		ID:              p.ID,
		DisplayName:     p.DisplayName,
		AvatarURL:       p.AvatarURL,
		Level:           p.Level,
		Role:            p.Role,
		Bio:             p.Bio,
		InterestedGames: p.InterestedGames,
		CreatedAt:       p.CreatedAt,
	}
}

// HasBio reports whether any bio is set at all, regardless of length.
// The XP award for bios additionally requires more than 10 characters.
func (p *UserProfile) HasBio() bool {
	return p.Bio != nil && *p.Bio != ""
}

func (p *UserProfile) HasGames() bool {
	return len(p.InterestedGames) > 0
}

func (p *UserProfile) HasContactInfo() bool {
	return len(p.ContactInfo) > 0
}
