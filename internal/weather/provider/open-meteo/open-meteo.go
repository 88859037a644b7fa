// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openmeteo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/weather-widget/internal/http"
	"github.com/wneessen/weather-widget/internal/logger"
	"github.com/wneessen/weather-widget/internal/vartype"
	"github.com/wneessen/weather-widget/internal/weather"
)

const (
	name        = "open-meteo"
	APIEndpoint = "https://api.open-meteo.com/v1/forecast"
	apiTimeout  = time.Second * 10
)

var dataFields = []string{
	"temperature_2m", "relative_humidity_2m", "apparent_temperature", "weather_code", "wind_speed_10m",
}

type OpenMeteo struct {
	endpoint string
	log      *logger.Logger
	http     *http.Client
}

type response struct {
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	UTCOffset    int      `json:"utc_offset_seconds"`
	Timezone     string   `json:"timezone"`
	TimezoneAbbr string   `json:"timezone_abbreviation"`
	Current      *current `json:"current"`
}

type current struct {
	Time                string             `json:"time"`
	Temperature         vartype.VarFloat64 `json:"temperature_2m"`
	RelativeHumidity    vartype.VarFloat64 `json:"relative_humidity_2m"`
	ApparentTemperature vartype.VarFloat64 `json:"apparent_temperature"`
	WeatherCode         vartype.VarInt     `json:"weather_code"`
	WindSpeed           vartype.VarFloat64 `json:"wind_speed_10m"`
}

// New returns an Open-Meteo weather provider. An empty endpoint selects the public API.
func New(http *http.Client, log *logger.Logger, endpoint string) (*OpenMeteo, error) {
	if http == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if endpoint == "" {
		endpoint = APIEndpoint
	}

	return &OpenMeteo{endpoint: endpoint, http: http, log: log}, nil
}

func (o *OpenMeteo) Name() string {
	return name
}

// Current fetches the current conditions for the given coordinates.
func (o *OpenMeteo) Current(ctx context.Context, lat, lon float64) (weather.Conditions, error) {
	res := new(response)

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("current", strings.Join(dataFields, ","))
	query.Set("timezone", "auto")

	if _, err := o.http.GetWithTimeout(ctx, o.endpoint, res, query, nil, apiTimeout); err != nil {
		return weather.Conditions{}, fmt.Errorf("failed to retrieve weather data from Open-Meteo API: %w: %w",
			weather.ErrServiceUnreachable, err)
	}
	if res.Current == nil {
		return weather.Conditions{}, fmt.Errorf("Open-Meteo API response has no current block: %w",
			weather.ErrDataUnavailable)
	}

	cur := res.Current
	if missing := cur.missingFields(); len(missing) > 0 {
		return weather.Conditions{}, fmt.Errorf("Open-Meteo API response misses current fields %s: %w",
			strings.Join(missing, ", "), weather.ErrDataUnavailable)
	}
	o.log.Debug("current weather received", slog.String("time", cur.Time),
		slog.String("timezone", res.Timezone), slog.Int("weather_code", cur.WeatherCode.Value()))

	return weather.Conditions{
		Temperature:         cur.Temperature.Value(),
		ApparentTemperature: cur.ApparentTemperature.Value(),
		RelativeHumidity:    cur.RelativeHumidity.Value(),
		WindSpeed:           cur.WindSpeed.Value(),
		WeatherCode:         cur.WeatherCode.Value(),
		UTCOffset:           res.UTCOffset,
		Zone:                res.TimezoneAbbr,
	}, nil
}

func (c *current) missingFields() []string {
	var missing []string
	if !c.Temperature.IsSet() {
		missing = append(missing, "temperature_2m")
	}
	if !c.RelativeHumidity.IsSet() {
		missing = append(missing, "relative_humidity_2m")
	}
	if !c.ApparentTemperature.IsSet() {
		missing = append(missing, "apparent_temperature")
	}
	if !c.WeatherCode.IsSet() {
		missing = append(missing, "weather_code")
	}
	if !c.WindSpeed.IsSet() {
		missing = append(missing, "wind_speed_10m")
	}
	return missing
}
