// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"context"
	"errors"
)

var (
	// ErrServiceUnreachable is returned when the weather API could not be reached or answered
	// with a non-success status.
	ErrServiceUnreachable = errors.New("weather service unreachable")

	// ErrDataUnavailable is returned when the API answered but did not include current conditions.
	ErrDataUnavailable = errors.New("weather data not available")
)

// Provider is implemented by each weather API backend.
type Provider interface {
	Name() string
	Current(ctx context.Context, lat, lon float64) (Conditions, error)
}

// Conditions are the current readings at a location in metric units.
type Conditions struct {
	// Temperature at 2m in °C
	Temperature float64
	// ApparentTemperature in °C
	ApparentTemperature float64
	// RelativeHumidity at 2m in percent
	RelativeHumidity float64
	// WindSpeed at 10m in km/h
	WindSpeed   float64
	WeatherCode int

	// UTCOffset is the location's offset from UTC in seconds, Zone its abbreviation
	UTCOffset int
	Zone      string
}
