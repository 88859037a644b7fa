// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openmeteo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/weather-widget/internal/geocode"
	"github.com/wneessen/weather-widget/internal/http"
	"github.com/wneessen/weather-widget/internal/vartype"
)

const (
	APIEndpoint = "https://geocoding-api.open-meteo.com/v1/search"
	APITimeout  = time.Second * 10
	name        = "open-meteo"
)

// OpenMeteo resolves city names using the Open-Meteo geocoding API.
type OpenMeteo struct {
	endpoint string
	http     *http.Client
	lang     language.Tag
}

type response struct {
	Results []result `json:"results"`
}

type result struct {
	ID        int64              `json:"id"`
	Name      vartype.VarString  `json:"name"`
	Latitude  vartype.VarFloat64 `json:"latitude"`
	Longitude vartype.VarFloat64 `json:"longitude"`
	Country   vartype.VarString  `json:"country"`
}

// New returns an Open-Meteo geocoder. An empty endpoint selects the public API.
func New(client *http.Client, lang language.Tag, endpoint string) *OpenMeteo {
	if endpoint == "" {
		endpoint = APIEndpoint
	}
	return &OpenMeteo{
		endpoint: endpoint,
		http:     client,
		lang:     lang,
	}
}

func (o *OpenMeteo) Name() string {
	return name
}

// Resolve returns the first match the API reports for cityName.
func (o *OpenMeteo) Resolve(ctx context.Context, cityName string) (geocode.Location, error) {
	res := new(response)

	query := url.Values{}
	query.Set("name", cityName)
	query.Set("count", "1")
	query.Set("language", o.lang.String())
	query.Set("format", "json")

	if _, err := o.http.GetWithTimeout(ctx, o.endpoint, res, query, nil, APITimeout); err != nil {
		return geocode.Location{}, fmt.Errorf("failed to search city via Open-Meteo geocoding API: %w: %w",
			geocode.ErrServiceUnreachable, err)
	}
	if len(res.Results) < 1 {
		return geocode.Location{}, &geocode.CityNotFoundError{Name: cityName}
	}

	first := res.Results[0]
	if !first.Latitude.IsSet() || !first.Longitude.IsSet() {
		return geocode.Location{}, &geocode.CityNotFoundError{Name: cityName}
	}
	locName := strings.TrimSpace(first.Name.Value())
	if locName == "" {
		return geocode.Location{}, &geocode.CityNotFoundError{Name: cityName}
	}
	lat, lon := first.Latitude.Value(), first.Longitude.Value()
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return geocode.Location{}, &geocode.CityNotFoundError{Name: cityName}
	}

	return geocode.Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      locName,
		Country:   strings.TrimSpace(first.Country.Value()),
	}, nil
}
