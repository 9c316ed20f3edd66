package models

import "time"

// UnknownChannel is the sentinel label used when the presence source does not
// deliver a channel name.
const UnknownChannel = "Unknown Channel"

// Session is the tracked state of one user currently present in a voice
// channel. Owned by points.Tracker; all mutation happens under its lock.
type Session struct {
	UserID      string
	ChannelID   string
	ChannelName string
	JoinedAt    time.Time
	LastAwardAt time.Time
}

func (s *Session) Valid() bool {
	return s != nil && s.UserID != "" && s.ChannelID != ""
}

// PresenceUpdate is the wire form of a presence transition delivered by the
// platform's presence dispatcher. Either channel ID may be empty: empty old
// means the user entered, empty new means the user left.
type PresenceUpdate struct {
	UserID       string `json:"user_id"`
	OldChannelID string `json:"old_channel_id"`
	NewChannelID string `json:"new_channel_id"`
	ChannelName  string `json:"channel_name"`
}
