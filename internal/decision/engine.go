// Package decision maps external snapshots onto channel status transitions.
// Decide is a pure function: it never touches storage, and each rule is
// evaluated independently of the others on every call.
package decision

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/irynahryshanovich/automation-suite/internal/models"
)

const (
	channelTwitter   = "Twitter"
	channelFacebook  = "Facebook"
	channelInstagram = "Instagram"

	// Twitter pauses above this Fahrenheit temperature; exactly 86.0 does
	// not count as exceeding it.
	hotTemperatureF = 86.0

	// Instagram prime hours, inclusive on both ends.
	primeHoursStart = 8
	primeHoursEnd   = 20
)

// Decide evaluates every rule against the given snapshots and hour of day and
// returns the resulting transitions in a fixed order: Twitter, Facebook (only
// when the sports snapshot has at least one event), Instagram.
func Decide(weather models.WeatherSnapshot, sports models.SportsSnapshot, hour int) []models.Transition {
	transitions := make([]models.Transition, 0, 3)

	if weather.TempF > hotTemperatureF {
		transitions = append(transitions, models.Transition{
			Channel: channelTwitter,
			Status:  models.StatusPaused,
			Reason:  fmt.Sprintf("Paused Twitter ads due to high temperature (%.1f°F)", weather.TempF),
		})
	} else {
		transitions = append(transitions, models.Transition{
			Channel: channelTwitter,
			Status:  models.StatusActive,
			Reason:  fmt.Sprintf("Activated Twitter ads due to moderate temperature (%.1f°F)", weather.TempF),
		})
	}

	if len(sports.Events) > 0 {
		event := sports.Events[0]
		home := parseScore(event.HomeScore)
		away := parseScore(event.AwayScore)

		if home > away {
			transitions = append(transitions, models.Transition{
				Channel: channelFacebook,
				Status:  models.StatusActive,
				Reason:  fmt.Sprintf("Activated Facebook ads - home team won (%d-%d)", home, away),
			})
		} else {
			transitions = append(transitions, models.Transition{
				Channel: channelFacebook,
				Status:  models.StatusPaused,
				Reason:  fmt.Sprintf("Paused Facebook ads - away team won or tied (%d-%d)", away, home),
			})
		}
	}

	if hour >= primeHoursStart && hour <= primeHoursEnd {
		transitions = append(transitions, models.Transition{
			Channel: channelInstagram,
			Status:  models.StatusActive,
			Reason:  "Activated Instagram ads during prime hours",
		})
	} else {
		transitions = append(transitions, models.Transition{
			Channel: channelInstagram,
			Status:  models.StatusPaused,
			Reason:  "Paused Instagram ads during off hours",
		})
	}

	return transitions
}

// parseScore treats absent or non-numeric scores as 0, which the upstream
// API reports for incomplete or in-progress games.
func parseScore(raw string) int {
	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return score
}
