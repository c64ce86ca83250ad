package models

import "time"

// Transition is one proposed channel status change emitted by the decision
// engine. The reason is used verbatim as both log payload and action tag.
type Transition struct {
	Channel string        `json:"channel"`
	Status  ChannelStatus `json:"status"`
	Reason  string        `json:"reason"`
}

// CycleResult summarizes one completed automation cycle. Manual triggers
// return it in full even when a fetch degraded to fallback data.
type CycleResult struct {
	RunID     string          `json:"run_id"`
	Timestamp time.Time       `json:"timestamp"`
	Weather   WeatherSnapshot `json:"weather"`
	Sports    SportsSnapshot  `json:"sports"`
	Actions   []string        `json:"actions"`
	States    []ChannelState  `json:"states"`
}
