package datasource

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/irynahryshanovich/automation-suite/internal/models"
)

var fallbackConditions = []string{"Clear", "Clouds", "Rain", "Snow"}

var fallbackTeams = []string{
	"Lakers", "Celtics", "Bulls", "Warriors",
	"Heat", "Bucks", "Nets", "Suns",
}

// syntheticWeather builds a fully-populated snapshot with a plausible random
// temperature. Downstream rules treat it exactly like a real fetch.
func syntheticWeather(city string) models.WeatherSnapshot {
	tempC := roundTenth(15.0 + rand.Float64()*20.0)

	return models.WeatherSnapshot{
		City:        city,
		TempC:       tempC,
		TempF:       celsiusToFahrenheit(tempC),
		Condition:   fallbackConditions[rand.IntN(len(fallbackConditions))],
		Description: "Synthetic weather data generated after a failed fetch",
		ObservedAt:  time.Now().Unix(),
		Fallback:    true,
	}
}

// syntheticSports builds one finished game between two distinct teams from a
// fixed roster.
func syntheticSports() models.SportsSnapshot {
	home := fallbackTeams[rand.IntN(len(fallbackTeams))]
	away := home
	for away == home {
		away = fallbackTeams[rand.IntN(len(fallbackTeams))]
	}

	homeScore := 70 + rand.IntN(51)
	awayScore := 70 + rand.IntN(51)

	return models.SportsSnapshot{
		Events: []models.SportsEvent{{
			Name:      fmt.Sprintf("%s vs %s", home, away),
			HomeTeam:  home,
			AwayTeam:  away,
			HomeScore: strconv.Itoa(homeScore),
			AwayScore: strconv.Itoa(awayScore),
			Status:    "Finished",
			Date:      time.Now().Format("2006-01-02"),
		}},
		Fallback: true,
	}
}

func fahrenheitToCelsius(f float64) float64 {
	return roundTenth((f - 32) * 5 / 9)
}

func celsiusToFahrenheit(c float64) float64 {
	return roundTenth(c*9/5 + 32)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
