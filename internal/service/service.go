// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	stdhttp "net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/wneessen/weather-widget/internal/config"
	"github.com/wneessen/weather-widget/internal/geocode"
	"github.com/wneessen/weather-widget/internal/http"
	"github.com/wneessen/weather-widget/internal/httpapi"
	"github.com/wneessen/weather-widget/internal/logger"
	"github.com/wneessen/weather-widget/internal/lookup"
	"github.com/wneessen/weather-widget/internal/observability"
	"github.com/wneessen/weather-widget/internal/store"
	"github.com/wneessen/weather-widget/internal/template"
	"github.com/wneessen/weather-widget/internal/terminal"
	"github.com/wneessen/weather-widget/internal/weather"
)

const (
	refreshJobName  = "weather_refresh_job"
	shutdownTimeout = 5 * time.Second
)

var (
	// ErrNoCity is returned when a mode needs a city but none was given or remembered.
	ErrNoCity = errors.New("no city given and no last city remembered")

	// ErrLookupFailed is returned by a single lookup run that did not show weather data.
	ErrLookupFailed = errors.New("weather lookup failed")
)

// RunOptions selects what Run does after the initial lookup.
type RunOptions struct {
	City        string
	Serve       bool
	Watch       bool
	Interactive bool
}

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	clock     clockwork.Clock
	scheduler gocron.Scheduler
	templates *template.Templates
	store     store.Store
	cities    *store.LastCity
	metrics   *observability.Metrics
	resolver  geocode.Resolver
	provider  weather.Provider
	SignalSrc signalSource

	input  io.Reader
	output io.Writer
	ui     *terminal.UI

	orchOnce sync.Once
	orch     *lookup.Orchestrator
	orchErr  error

	cityLock sync.RWMutex
	city     string
}

func New(conf *config.Config, log *logger.Logger) (*Service, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	clock := clockwork.NewRealClock()

	scheduler, err := gocron.NewScheduler(gocron.WithClock(clock), gocron.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	tpls, err := template.New(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	httpClient := http.NewWithTimeout(log, conf.HTTP.Timeout)
	resolver, err := selectGeocodeProvider(conf, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode provider: %w", err)
	}
	provider, err := selectWeatherProvider(conf, httpClient, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather provider: %w", err)
	}

	st, err := store.Open(conf.Store.Backend, conf.Store.Path, clock)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	service := &Service{
		config:    conf,
		logger:    log,
		clock:     clock,
		scheduler: scheduler,
		templates: tpls,
		store:     st,
		cities:    store.NewLastCity(st, log),
		metrics:   observability.NewMetrics(),
		resolver:  resolver,
		provider:  provider,
		SignalSrc: stdLibSignalSource{},
		input:     os.Stdin,
		output:    os.Stdout,
	}
	return service, nil
}

// Run performs the initial lookup and then serves, watches or prompts as selected by opts.
func (s *Service) Run(ctx context.Context, opts RunOptions) error {
	if opts.Serve {
		return s.Serve(ctx)
	}

	given := strings.TrimSpace(opts.City)
	city := given
	var startup lookup.Outcome
	if given == "" {
		city, startup, _ = s.Startup(ctx)
	}

	switch {
	case opts.Watch:
		if city == "" {
			return ErrNoCity
		}
		if given != "" {
			s.fetch(ctx, given)
		}
		return s.Watch(ctx)
	case opts.Interactive:
		if given != "" {
			s.fetch(ctx, given)
		}
		return s.Interactive(ctx, city)
	}

	switch {
	case city == "":
		s.fetch(ctx, "")
		return ErrNoCity
	case given == "":
		if !startup.Succeeded() {
			return fmt.Errorf("%w: %s", ErrLookupFailed, startup.Kind)
		}
		return nil
	}
	if outcome := s.fetch(ctx, given); !outcome.Succeeded() {
		return fmt.Errorf("%w: %s", ErrLookupFailed, outcome.Kind)
	}
	return nil
}

// Startup shows and fetches the last remembered city, if there is one, and returns
// the city with the outcome of its lookup.
func (s *Service) Startup(ctx context.Context) (string, lookup.Outcome, bool) {
	orch, err := s.terminalLookup()
	if err != nil {
		s.logger.Error("failed to create weather lookup", logger.Err(err))
		return "", lookup.Outcome{}, false
	}
	city, ok := orch.LastCity()
	if !ok {
		s.logger.Debug("no last city remembered, skipping startup lookup")
		return "", lookup.Outcome{}, false
	}
	return city, s.fetch(ctx, city), true
}

// Watch refreshes the current city every configured interval until ctx is cancelled.
func (s *Service) Watch(ctx context.Context) error {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(s.config.Intervals.Refresh),
		gocron.NewTask(s.refresh),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(refreshJobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", refreshJobName, err)
	}
	s.scheduler.Start()

	if len(refreshSignals) > 0 {
		sigChan := make(chan os.Signal, 1)
		s.SignalSrc.Notify(sigChan, refreshSignals...)
		defer s.SignalSrc.Stop(sigChan)
		go s.HandleRefreshSignal(ctx, sigChan, job.RunNow)
	}

	s.logger.Debug("watching weather", slog.String("city", s.currentCity()),
		slog.Duration("interval", s.config.Intervals.Refresh))
	<-ctx.Done()
	return s.scheduler.Shutdown()
}

// Interactive prompts for cities until the input ends, "quit" is entered or ctx is cancelled.
// An empty line repeats the previous lookup.
func (s *Service) Interactive(ctx context.Context, prefill string) error {
	if _, err := s.terminalLookup(); err != nil {
		return fmt.Errorf("failed to create weather lookup: %w", err)
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.input)
		defer func() {
			readErr <- scanner.Err()
			close(lines)
		}()
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		s.ui.Prompt(prefill)

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			if err := <-readErr; err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return nil
		}

		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "quit", "exit":
			return nil
		case "":
			if prefill == "" {
				continue
			}
			line = prefill
		}
		s.fetch(ctx, line)
		prefill = line
	}
}

// Serve runs the HTTP API until ctx is cancelled.
func (s *Service) Serve(ctx context.Context) error {
	api := httpapi.NewServer(s.newLookup, s.cities, s.metrics.Handler(), s.logger, s.config.Server.AllowedOrigins)
	httpSrv := &stdhttp.Server{
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2*s.config.HTTP.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.config.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving weather API", slog.String("addr", listener.Addr().String()))
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve HTTP API: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP API: %w", err)
	}
	return nil
}

// Close releases the state store.
func (s *Service) Close() error {
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("failed to close state store: %w", err)
	}
	return nil
}

func (s *Service) newLookup(ui lookup.UI) (*lookup.Orchestrator, error) {
	return lookup.New(s.resolver, s.provider, s.cities, ui, s.logger, lookup.WithObserver(s.metrics),
		lookup.WithClock(s.clock))
}

// terminalLookup returns the orchestrator shared by all terminal modes.
func (s *Service) terminalLookup() (*lookup.Orchestrator, error) {
	s.orchOnce.Do(func() {
		s.ui = terminal.New(s.output, s.templates, s.logger, s.clock)
		s.orch, s.orchErr = s.newLookup(s.ui)
	})
	return s.orch, s.orchErr
}

// fetch looks up city on the terminal and makes it the city refreshed by Watch.
func (s *Service) fetch(ctx context.Context, city string) lookup.Outcome {
	orch, err := s.terminalLookup()
	if err != nil {
		s.logger.Error("failed to create weather lookup", logger.Err(err))
		return lookup.Outcome{State: lookup.StateFailed, Kind: lookup.KindUnknown, Message: lookup.MsgUnknown, Err: err}
	}

	if trimmed := strings.TrimSpace(city); trimmed != "" {
		s.cityLock.Lock()
		s.city = trimmed
		s.cityLock.Unlock()
	}
	return orch.FetchWeather(ctx, city)
}

// refresh is the task of the refresh job.
func (s *Service) refresh(ctx context.Context) {
	city := s.currentCity()
	if city == "" {
		return
	}
	outcome := s.fetch(ctx, city)
	if outcome.State == lookup.StateBusy {
		s.logger.Debug("skipping refresh, a lookup is in progress", slog.String("city", city))
	}
}

func (s *Service) currentCity() string {
	s.cityLock.RLock()
	defer s.cityLock.RUnlock()
	return s.city
}
