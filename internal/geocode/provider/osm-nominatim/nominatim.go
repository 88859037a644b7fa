// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/weather-widget/internal/geocode"
	"github.com/wneessen/weather-widget/internal/http"
)

const (
	APISearchEndpoint = "https://nominatim.openstreetmap.org/search"
	APITimeout        = time.Second * 10
	name              = "osm-nominatim"
)

type Nominatim struct {
	endpoint string
	http     *http.Client
	lang     language.Tag
}

type SearchResult struct {
	APILat      string  `json:"lat"`
	APILon      string  `json:"lon"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Address     Address `json:"address"`
}

type Address struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// New returns a Nominatim geocoder. An empty endpoint selects the public OSM instance.
func New(client *http.Client, lang language.Tag, endpoint string) *Nominatim {
	if endpoint == "" {
		endpoint = APISearchEndpoint
	}
	return &Nominatim{
		endpoint: endpoint,
		lang:     lang,
		http:     client,
	}
}

func (n *Nominatim) Name() string {
	return name
}

// Resolve searches for cityName and returns the first match.
func (n *Nominatim) Resolve(ctx context.Context, cityName string) (geocode.Location, error) {
	var result []SearchResult
	var err error

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("q", cityName)
	query.Set("limit", "1")
	query.Set("addressdetails", "1")
	query.Set("accept-language", n.lang.String())

	if _, err = n.http.GetWithTimeout(ctx, n.endpoint, &result, query, nil, APITimeout); err != nil {
		return geocode.Location{}, fmt.Errorf("failed to search city via Nominatim API: %w: %w",
			geocode.ErrServiceUnreachable, err)
	}
	if len(result) < 1 {
		return geocode.Location{}, &geocode.CityNotFoundError{Name: cityName}
	}

	first := result[0]
	location := geocode.Location{
		Name:    strings.TrimSpace(first.Name),
		Country: strings.TrimSpace(first.Address.Country),
	}
	if location.Name == "" {
		location.Name = first.Address.City
	}
	if location.Name == "" && first.Address.Town != "" {
		location.Name = first.Address.Town
	}
	if location.Name == "" && first.Address.Village != "" {
		location.Name = first.Address.Village
	}
	if location.Name == "" {
		return geocode.Location{}, &geocode.CityNotFoundError{Name: cityName}
	}
	location.Latitude, err = strconv.ParseFloat(first.APILat, 64)
	if err != nil {
		return geocode.Location{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w: %w",
			geocode.ErrServiceUnreachable, err)
	}
	location.Longitude, err = strconv.ParseFloat(first.APILon, 64)
	if err != nil {
		return geocode.Location{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w: %w",
			geocode.ErrServiceUnreachable, err)
	}

	return location, nil
}
