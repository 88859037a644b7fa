// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"

	"github.com/wneessen/weather-widget/internal/config"
	"github.com/wneessen/weather-widget/internal/geocode"
	geoopenmeteo "github.com/wneessen/weather-widget/internal/geocode/provider/open-meteo"
	nominatim "github.com/wneessen/weather-widget/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/weather-widget/internal/http"
	"github.com/wneessen/weather-widget/internal/logger"
	"github.com/wneessen/weather-widget/internal/weather"
	openmeteo "github.com/wneessen/weather-widget/internal/weather/provider/open-meteo"
)

func selectGeocodeProvider(conf *config.Config, client *http.Client) (geocode.Resolver, error) {
	switch conf.Geocoding.Provider {
	case config.GeocoderOpenMeteo:
		return geoopenmeteo.New(client, conf.LanguageTag(), conf.Geocoding.Endpoint), nil
	case config.GeocoderNominatim:
		return nominatim.New(client, conf.LanguageTag(), conf.Geocoding.Endpoint), nil
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", conf.Geocoding.Provider)
	}
}

func selectWeatherProvider(conf *config.Config, client *http.Client, log *logger.Logger) (weather.Provider, error) {
	provider, err := openmeteo.New(client, log, conf.Weather.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create Open-Meteo weather provider: %w", err)
	}
	return provider, nil
}
