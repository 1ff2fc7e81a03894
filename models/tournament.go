package models

import "time"

type TournamentStatus string

const (
	TournamentDraft              TournamentStatus = "draft"
	TournamentPublished          TournamentStatus = "published"
	TournamentRegistrationClosed TournamentStatus = "registration_closed"
	TournamentLive               TournamentStatus = "live"
	TournamentCompleted          TournamentStatus = "completed"
	TournamentCancelled          TournamentStatus = "cancelled"
)

type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elimination"
	FormatDoubleElimination TournamentFormat = "double_elimination"
	FormatRoundRobin        TournamentFormat = "round_robin"
)

// Tournament is stored at tournament:{id}. Organizer and participants are
// enrichment fields filled on detail reads, never persisted back.
type Tournament struct {
	ID                string           `json:"id"`
	OrganizerID       string           `json:"organizer_id"`
	Name              string           `json:"name"`
	Slug              string           `json:"slug"`
	Description       string           `json:"description"`
	Game              string           `json:"game"`
	Format            TournamentFormat `json:"format"`
	MaxParticipants   int              `json:"max_participants"`
	RegistrationStart string           `json:"registration_start"`
	RegistrationEnd   string           `json:"registration_end"`
	TournamentStart   string           `json:"tournament_start"`
	TournamentEnd     string           `json:"tournament_end"`
	Status            TournamentStatus `json:"status"`
	Rules             string           `json:"rules"`
	DiscordLink       string           `json:"discord_link"`
	PrizePool         float64          `json:"prize_pool"`
	BannerURL         string           `json:"banner_url"`
	TeamSize          int              `json:"team_size"`
	CheckInRequired   bool             `json:"check_in_required"`
	PublishAt         *time.Time       `json:"publish_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`

	Organizer           *OrganizerSummary       `json:"organizer,omitempty"`
	Participants        []TournamentParticipant `json:"participants,omitempty"`
	CurrentParticipants *int                    `json:"current_participants,omitempty"`
}

type OrganizerSummary struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

type ParticipantStatus string

const (
	ParticipantRegistered   ParticipantStatus = "registered"
	ParticipantCheckedIn    ParticipantStatus = "checked_in"
	ParticipantDisqualified ParticipantStatus = "disqualified"
	ParticipantWithdrawn    ParticipantStatus = "withdrawn"
)

// TournamentParticipant is stored at tournament_participant:{tournament_id}:{user_id}
// so the duplicate-registration check is a single key lookup.
type TournamentParticipant struct {
	ID           string            `json:"id"`
	TournamentID string            `json:"tournament_id"`
	UserID       string            `json:"user_id"`
	TeamID       *string           `json:"team_id"`
	Status       ParticipantStatus `json:"status"`
	Placement    *int              `json:"placement"`
	JoinedAt     time.Time         `json:"joined_at"`
}
