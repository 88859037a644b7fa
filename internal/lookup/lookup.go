// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package lookup chains a city name lookup into a current weather lookup and reports the
// result to a UI.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wneessen/weather-widget/internal/geocode"
	"github.com/wneessen/weather-widget/internal/logger"
	"github.com/wneessen/weather-widget/internal/presenter"
	"github.com/wneessen/weather-widget/internal/weather"
)

// UI receives the visible states of a lookup.
type UI interface {
	ShowLoading()
	ShowError(message string)
	ShowWeather(weather presenter.DisplayableWeather)
	ShowLastSearched(displayName string)
}

// CityStore remembers the last successfully displayed city. Implementations must not fail
// the caller; the result of Save may be discarded.
type CityStore interface {
	Save(displayName string) bool
	Load() (string, bool)
}

// Observer is notified when a lookup starts and after every call to FetchWeather, including
// rejected ones.
type Observer interface {
	LookupStarted()
	LookupFinished(outcome Outcome, took time.Duration)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers an Observer.
func WithObserver(observer Observer) Option {
	return func(o *Orchestrator) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithClock replaces the clock used to time lookups.
func WithClock(clock clockwork.Clock) Option {
	return func(o *Orchestrator) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// Orchestrator runs at most one lookup at a time.
type Orchestrator struct {
	resolver geocode.Resolver
	provider weather.Provider
	store    CityStore
	ui       UI
	log      *logger.Logger
	observer Observer
	clock    clockwork.Clock

	busy atomic.Bool
}

type nopObserver struct{}

func (nopObserver) LookupStarted()                        {}
func (nopObserver) LookupFinished(Outcome, time.Duration) {}

// New returns an Orchestrator over the given collaborators. None of them may be nil.
func New(resolver geocode.Resolver, provider weather.Provider, store CityStore, ui UI, log *logger.Logger,
	opts ...Option,
) (*Orchestrator, error) {
	if resolver == nil {
		return nil, errors.New("geocoding resolver is required")
	}
	if provider == nil {
		return nil, errors.New("weather provider is required")
	}
	if store == nil {
		return nil, errors.New("city store is required")
	}
	if ui == nil {
		return nil, errors.New("ui is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}

	orch := &Orchestrator{
		resolver: resolver,
		provider: provider,
		store:    store,
		ui:       ui,
		log:      log,
		observer: nopObserver{},
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(orch)
	}
	return orch, nil
}

// FetchWeather looks up the current weather for rawCityName. A call that overlaps with a
// running lookup is rejected with StateBusy and does not touch the UI.
func (o *Orchestrator) FetchWeather(ctx context.Context, rawCityName string) Outcome {
	if !o.busy.CompareAndSwap(false, true) {
		o.log.Debug("rejecting lookup, another lookup is in progress", slog.String("city", rawCityName))
		outcome := Outcome{State: StateBusy, Kind: KindBusy, Message: MsgBusy}
		o.observer.LookupFinished(outcome, 0)
		return outcome
	}
	defer o.busy.Store(false)

	o.observer.LookupStarted()
	start := o.clock.Now()
	outcome := o.fetch(ctx, rawCityName)
	o.observer.LookupFinished(outcome, o.clock.Since(start))
	return outcome
}

// LastCity returns the last successfully displayed city and shows it as last searched.
func (o *Orchestrator) LastCity() (string, bool) {
	city, ok := o.store.Load()
	if ok {
		o.ui.ShowLastSearched(city)
	}
	return city, ok
}

func (o *Orchestrator) fetch(ctx context.Context, rawCityName string) Outcome {
	cityName := strings.TrimSpace(rawCityName)
	if cityName == "" {
		o.ui.ShowError(MsgInvalidInput)
		return Outcome{State: StateInvalidInput, Kind: KindInvalidInput, Message: MsgInvalidInput}
	}

	o.ui.ShowLoading()

	location, err := o.resolver.Resolve(ctx, cityName)
	if err != nil {
		return o.fail(classifyGeocodeError(err, cityName))
	}
	o.log.Debug("city resolved", slog.String("city", cityName), slog.String("provider", o.resolver.Name()),
		slog.Float64("lat", location.Latitude), slog.Float64("lon", location.Longitude))

	conditions, err := o.provider.Current(ctx, location.Latitude, location.Longitude)
	if err != nil {
		return o.fail(classifyWeatherError(err))
	}

	display := presenter.Build(location, conditions)
	o.ui.ShowWeather(display)
	_ = o.store.Save(display.DisplayName)
	o.ui.ShowLastSearched(display.DisplayName)

	return Outcome{State: StateSuccess, Kind: KindNone, Weather: display}
}

func (o *Orchestrator) fail(outcome Outcome) Outcome {
	o.log.Error("weather lookup failed", logger.Err(outcome.Err), slog.String("kind", string(outcome.Kind)),
		slog.String("source", outcome.Source))
	if outcome.Message == "" {
		outcome.Message = MsgUnknown
	}
	o.ui.ShowError(outcome.Message)
	return outcome
}

func classifyGeocodeError(err error, cityName string) Outcome {
	outcome := Outcome{State: StateFailed, Source: SourceGeocoding, Err: err}
	switch {
	case errors.Is(err, geocode.ErrCityNotFound):
		outcome.Kind = KindCityNotFound
		outcome.Message = fmt.Sprintf(MsgCityNotFound, cityName)
	case errors.Is(err, geocode.ErrServiceUnreachable):
		outcome.Kind = KindServiceUnreachable
		outcome.Message = MsgGeocodingUnreachable
	default:
		outcome.Kind = KindUnknown
		outcome.Message = MsgUnknown
	}
	return outcome
}

func classifyWeatherError(err error) Outcome {
	outcome := Outcome{State: StateFailed, Source: SourceWeather, Err: err}
	switch {
	case errors.Is(err, weather.ErrDataUnavailable):
		outcome.Kind = KindDataUnavailable
		outcome.Message = MsgDataUnavailable
	case errors.Is(err, weather.ErrServiceUnreachable):
		outcome.Kind = KindServiceUnreachable
		outcome.Message = MsgWeatherUnreachable
	default:
		outcome.Kind = KindUnknown
		outcome.Message = MsgUnknown
	}
	return outcome
}
