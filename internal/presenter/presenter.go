// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"math"
	"time"

	"github.com/wneessen/weather-widget/internal/geocode"
	"github.com/wneessen/weather-widget/internal/weather"
	"github.com/wneessen/weather-widget/internal/weathercode"
)

// DisplayableWeather is the render-ready result of a single lookup.
type DisplayableWeather struct {
	DisplayName         string  `json:"display_name"`
	Description         string  `json:"description"`
	Icon                string  `json:"icon"`
	Temperature         int     `json:"temperature"`
	ApparentTemperature int     `json:"apparent_temperature"`
	RelativeHumidity    float64 `json:"relative_humidity"`
	WindSpeed           float64 `json:"wind_speed"`
	WeatherCode         int     `json:"weather_code"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	UTCOffset           int     `json:"utc_offset_seconds"`
	Zone                string  `json:"timezone_abbreviation,omitempty"`
}

// Build combines a resolved location and its current conditions into a DisplayableWeather.
// Temperatures are rounded to the nearest integer with halves rounded up.
func Build(loc geocode.Location, cond weather.Conditions) DisplayableWeather {
	entry := weathercode.Lookup(cond.WeatherCode)
	return DisplayableWeather{
		DisplayName:         loc.DisplayName(),
		Description:         entry.Description,
		Icon:                entry.Icon,
		Temperature:         roundHalfUp(cond.Temperature),
		ApparentTemperature: roundHalfUp(cond.ApparentTemperature),
		RelativeHumidity:    cond.RelativeHumidity,
		WindSpeed:           cond.WindSpeed,
		WeatherCode:         cond.WeatherCode,
		Latitude:            loc.Latitude,
		Longitude:           loc.Longitude,
		UTCOffset:           cond.UTCOffset,
		Zone:                cond.Zone,
	}
}

// roundHalfUp rounds -2.5 to -2 and 2.5 to 3, matching how browsers round for display.
func roundHalfUp(val float64) int {
	return int(math.Floor(val + 0.5))
}

// Location returns the fixed time zone the conditions were reported in.
func (d DisplayableWeather) Location() *time.Location {
	if d.UTCOffset == 0 && d.Zone == "" {
		return time.UTC
	}
	return time.FixedZone(d.Zone, d.UTCOffset)
}
