// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package weathercode maps WMO weather codes as reported by Open-Meteo to a
// human-readable description and an emoji icon.
package weathercode

import "sort"

// Entry is the description and icon for a single weather code.
type Entry struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Unknown is returned for every code that is not part of the catalog.
var Unknown = Entry{Description: "Unknown", Icon: "🌡️"}

var catalog = map[int]Entry{
	0:  {"Clear sky", "☀️"},
	1:  {"Mainly clear", "🌤️"},
	2:  {"Partly cloudy", "⛅"},
	3:  {"Overcast", "☁️"},
	45: {"Foggy", "🌫️"},
	48: {"Depositing rime fog", "🌫️"},
	51: {"Light drizzle", "🌧️"},
	53: {"Moderate drizzle", "🌧️"},
	55: {"Dense drizzle", "🌧️"},
	56: {"Light freezing drizzle", "🌨️"},
	57: {"Dense freezing drizzle", "🌨️"},
	61: {"Slight rain", "🌧️"},
	63: {"Moderate rain", "🌧️"},
	65: {"Heavy rain", "🌧️"},
	66: {"Light freezing rain", "🌨️"},
	67: {"Heavy freezing rain", "🌨️"},
	71: {"Slight snow fall", "🌨️"},
	73: {"Moderate snow fall", "🌨️"},
	75: {"Heavy snow fall", "❄️"},
	77: {"Snow grains", "🌨️"},
	80: {"Slight rain showers", "🌦️"},
	81: {"Moderate rain showers", "🌦️"},
	82: {"Violent rain showers", "⛈️"},
	85: {"Slight snow showers", "🌨️"},
	86: {"Heavy snow showers", "❄️"},
	95: {"Thunderstorm", "⛈️"},
	96: {"Thunderstorm with slight hail", "⛈️"},
	99: {"Thunderstorm with heavy hail", "⛈️"},
}

// Lookup returns the catalog entry for code, or Unknown if the code is not mapped.
func Lookup(code int) Entry {
	if entry, ok := catalog[code]; ok {
		return entry
	}
	return Unknown
}

// Known reports whether code is part of the catalog.
func Known(code int) bool {
	_, ok := catalog[code]
	return ok
}

// Codes returns all mapped codes in ascending order.
func Codes() []int {
	codes := make([]int, 0, len(catalog))
	for code := range catalog {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
