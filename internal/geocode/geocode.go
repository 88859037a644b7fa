// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode resolves free-text city names to a single location.
package geocode

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrServiceUnreachable is returned when the geocoding API could not be reached or
	// answered with a non-success status.
	ErrServiceUnreachable = errors.New("geocoding service unreachable")

	// ErrCityNotFound is matched by every *CityNotFoundError.
	ErrCityNotFound = errors.New("city not found")
)

// Location is the best match for a searched city name. Name is never empty, Country may be.
type Location struct {
	Latitude  float64
	Longitude float64
	Name      string
	Country   string
}

// DisplayName returns "Name, Country", or only Name if no country is known.
func (l Location) DisplayName() string {
	if l.Country == "" {
		return l.Name
	}
	return l.Name + ", " + l.Country
}

// Resolver is implemented by each forward geocoding backend.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, cityName string) (Location, error)
}

// CityNotFoundError reports that the geocoding API had no usable match for Name.
type CityNotFoundError struct {
	Name string
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("no location found for city %q", e.Name)
}

// Is makes errors.Is(err, ErrCityNotFound) hold for every CityNotFoundError.
func (e *CityNotFoundError) Is(target error) bool {
	return target == ErrCityNotFound
}
