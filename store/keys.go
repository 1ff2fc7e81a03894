package store

// Key naming is fixed for interoperability with already-persisted data.

const (
	ProfilePrefix          = "user_profile:"
	TournamentPrefix       = "tournament:"
	LeaderboardSnapshotKey = "leaderboard:global"
)

func ProfileKey(userID string) string {
	return ProfilePrefix + userID
}

func TransactionKey(userID, txID string) string {
	return "xp_transaction:" + userID + ":" + txID
}

func TransactionPrefix(userID string) string {
	return "xp_transaction:" + userID + ":"
}

func NotificationKey(userID, notifID string) string {
	return "notification:" + userID + ":" + notifID
}

func NotificationPrefix(userID string) string {
	return "notification:" + userID + ":"
}

func SocialConnectionKey(userID, connID string) string {
	return "social_connection:" + userID + ":" + connID
}

func SocialConnectionPrefix(userID string) string {
	return "social_connection:" + userID + ":"
}

func TournamentKey(id string) string {
	return TournamentPrefix + id
}

func ParticipantKey(tournamentID, userID string) string {
	return "tournament_participant:" + tournamentID + ":" + userID
}

func ParticipantPrefix(tournamentID string) string {
	return "tournament_participant:" + tournamentID + ":"
}

func TeamKey(id string) string {
	return "team:" + id
}

func TeamMemberKey(teamID, userID string) string {
	return "team_member:" + teamID + ":" + userID
}

func TeamMemberPrefix(teamID string) string {
	return "team_member:" + teamID + ":"
}
