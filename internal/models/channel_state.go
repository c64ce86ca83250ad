package models

import "time"

// ChannelStatus is the activation status of a channel.
type ChannelStatus string

const (
	StatusActive ChannelStatus = "active"
	StatusPaused ChannelStatus = "paused"
)

// Valid reports whether s is one of the known statuses.
func (s ChannelStatus) Valid() bool {
	return s == StatusActive || s == StatusPaused
}

// ChannelState is the current status of a single channel. There is exactly
// one row per configured channel; rows are seeded at startup and only ever
// updated afterwards.
type ChannelState struct {
	Channel     string        `json:"channel"`
	Status      ChannelStatus `json:"status"`
	LastUpdated time.Time     `json:"last_updated"`
}
