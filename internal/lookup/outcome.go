// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package lookup

import "github.com/wneessen/weather-widget/internal/presenter"

// State is the terminal state of a single lookup.
type State int

const (
	StateSuccess State = iota
	StateInvalidInput
	StateFailed
	StateBusy
)

func (s State) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateInvalidInput:
		return "invalid_input"
	case StateFailed:
		return "failed"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Kind classifies why a lookup did not succeed.
type Kind string

const (
	KindNone               Kind = ""
	KindInvalidInput       Kind = "invalid_input"
	KindCityNotFound       Kind = "city_not_found"
	KindServiceUnreachable Kind = "service_unreachable"
	KindDataUnavailable    Kind = "data_unavailable"
	KindUnknown            Kind = "unknown"
	KindBusy               Kind = "busy"
)

// Upstream services a failure can originate from.
const (
	SourceGeocoding = "geocoding"
	SourceWeather   = "weather"
)

// User-facing messages.
const (
	MsgInvalidInput         = "Please enter a city name"
	MsgCityNotFound         = `City "%s" not found. Please check the spelling and try again.`
	MsgGeocodingUnreachable = "Failed to connect to geocoding service"
	MsgWeatherUnreachable   = "Failed to fetch weather data"
	MsgDataUnavailable      = "Weather data not available"
	MsgUnknown              = "Something went wrong. Please try again."
	MsgBusy                 = "A lookup is already in progress"
)

// Outcome is the result of FetchWeather. Message is what the UI shows for any state but
// StateSuccess; Weather is only set on success.
type Outcome struct {
	State   State
	Kind    Kind
	Source  string
	Message string
	Weather presenter.DisplayableWeather
	Err     error
}

// Succeeded reports whether the lookup produced weather data.
func (o Outcome) Succeeded() bool {
	return o.State == StateSuccess
}

// Failed reports whether the lookup reached an upstream service and failed.
func (o Outcome) Failed() bool {
	return o.State == StateFailed
}
