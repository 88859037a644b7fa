// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/wneessen/weather-widget/internal/config"
	"github.com/wneessen/weather-widget/internal/geocode"
	"github.com/wneessen/weather-widget/internal/logger"
	"github.com/wneessen/weather-widget/internal/lookup"
	"github.com/wneessen/weather-widget/internal/weather"
)

func TestNew(t *testing.T) {
	t.Run("new service succeeds", func(t *testing.T) {
		serv, err := testService(t, nil)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		if serv.resolver.Name() != "open-meteo" {
			t.Errorf("expected default geocoder to be %q, got %q", "open-meteo", serv.resolver.Name())
		}
		if serv.provider.Name() != "open-meteo" {
			t.Errorf("expected weather provider to be %q, got %q", "open-meteo", serv.provider.Name())
		}
	})
	t.Run("initializing service with different geocode providers", func(t *testing.T) {
		tests := []struct {
			name     string
			provider string
			wantName string
		}{
			{"open-meteo", config.GeocoderOpenMeteo, "open-meteo"},
			{"osm-nominatim", config.GeocoderNominatim, "osm-nominatim"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				serv, err := testService(t, func(c *config.Config) { c.Geocoding.Provider = tc.provider })
				if err != nil {
					t.Fatalf("failed to create service: %s", err)
				}
				if serv.resolver.Name() != tc.wantName {
					t.Errorf("expected geocoder name to be %q, got %q", tc.wantName, serv.resolver.Name())
				}
			})
		}
	})
	t.Run("unsupported geocode provider fails", func(t *testing.T) {
		_, err := testService(t, func(c *config.Config) { c.Geocoding.Provider = "invalid" })
		if err == nil {
			t.Fatal("expected service creation to fail")
		}
		wantErr := "failed to create geocode provider: unsupported geocoder type: invalid"
		if !strings.Contains(err.Error(), wantErr) {
			t.Errorf("expected error to contain %q, got %q", wantErr, err)
		}
	})
	t.Run("invalid template configuration should fail", func(t *testing.T) {
		_, err := testService(t, func(c *config.Config) { c.Templates.Card = "{{" })
		if err == nil {
			t.Fatal("expected service creation to fail")
		}
		wantErr := "failed to parse template"
		if !strings.Contains(err.Error(), wantErr) {
			t.Errorf("expected error to contain %q, got %q", wantErr, err)
		}
	})
	t.Run("unsupported store backend fails", func(t *testing.T) {
		_, err := testService(t, func(c *config.Config) { c.Store.Backend = "postgres" })
		if err == nil {
			t.Fatal("expected service creation to fail")
		}
		wantErr := "failed to open state store"
		if !strings.Contains(err.Error(), wantErr) {
			t.Errorf("expected error to contain %q, got %q", wantErr, err)
		}
	})
	t.Run("nil logger fails", func(t *testing.T) {
		conf, err := config.New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		_, err = New(conf, nil)
		if err == nil {
			t.Fatal("expected service creation to fail")
		}
		wantErr := "logger is required"
		if !strings.Contains(err.Error(), wantErr) {
			t.Errorf("expected error to contain %q, got %q", wantErr, err)
		}
	})
}

func TestService_Run(t *testing.T) {
	t.Run("single lookup for a given city", func(t *testing.T) {
		serv, buf, geo := mockedService(t)
		if err := serv.Run(t.Context(), RunOptions{City: "London"}); err != nil {
			t.Fatalf("failed to run service: %s", err)
		}
		for _, want := range []string{"Loading weather data...", "London, United Kingdom", "Feels like: 14°C",
			"Last searched: London, United Kingdom"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected output to contain %q, got %q", want, buf.String())
			}
		}
		if calls := geo.Calls(); len(calls) != 1 || calls[0] != "London" {
			t.Errorf("expected one geocoding call for London, got %q", calls)
		}
	})
	t.Run("failed single lookup returns an error", func(t *testing.T) {
		serv, buf, _ := mockedService(t)
		err := serv.Run(t.Context(), RunOptions{City: "Zzqx"})
		if !errors.Is(err, ErrLookupFailed) {
			t.Fatalf("expected lookup failed error, got %v", err)
		}
		want := `Error: City "Zzqx" not found. Please check the spelling and try again.`
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %q, got %q", want, buf.String())
		}
	})
	t.Run("startup loads the last city", func(t *testing.T) {
		serv, buf, geo := mockedService(t)
		serv.cities.Save("London, United Kingdom")
		if err := serv.Run(t.Context(), RunOptions{}); err != nil {
			t.Fatalf("failed to run service: %s", err)
		}
		if !strings.HasPrefix(buf.String(), "Last searched: London, United Kingdom\nLoading weather data...") {
			t.Errorf("expected last city to be shown before loading, got %q", buf.String())
		}
		if calls := geo.Calls(); len(calls) != 1 || calls[0] != "London, United Kingdom" {
			t.Errorf("expected startup lookup for the remembered city, got %q", calls)
		}
	})
	t.Run("failed startup lookup returns an error", func(t *testing.T) {
		serv, buf, _ := mockedService(t)
		serv.cities.Save("Zzqx")
		err := serv.Run(t.Context(), RunOptions{})
		if !errors.Is(err, ErrLookupFailed) {
			t.Fatalf("expected lookup failed error, got %v", err)
		}
		if !strings.Contains(buf.String(), `Error: City "Zzqx" not found.`) {
			t.Errorf("expected city not found message, got %q", buf.String())
		}
	})
	t.Run("nothing to look up", func(t *testing.T) {
		serv, buf, geo := mockedService(t)
		err := serv.Run(t.Context(), RunOptions{City: "   "})
		if !errors.Is(err, ErrNoCity) {
			t.Fatalf("expected no city error, got %v", err)
		}
		if !strings.Contains(buf.String(), "Error: "+lookup.MsgInvalidInput) {
			t.Errorf("expected invalid input message, got %q", buf.String())
		}
		if len(geo.Calls()) != 0 {
			t.Errorf("expected no geocoding calls, got %q", geo.Calls())
		}
	})
	t.Run("watch without a city fails", func(t *testing.T) {
		serv, _, _ := mockedService(t)
		if err := serv.Run(t.Context(), RunOptions{Watch: true}); !errors.Is(err, ErrNoCity) {
			t.Errorf("expected no city error, got %v", err)
		}
	})
	t.Run("interactive mode starts from the given city", func(t *testing.T) {
		serv, buf, geo := mockedService(t)
		serv.input = strings.NewReader("\nquit\n")
		if err := serv.Run(t.Context(), RunOptions{City: "London", Interactive: true}); err != nil {
			t.Fatalf("failed to run service: %s", err)
		}
		if calls := geo.Calls(); len(calls) != 2 {
			t.Errorf("expected the given city and one retry, got %q", calls)
		}
		if !strings.Contains(buf.String(), "City [London]: ") {
			t.Errorf("expected prompt to be prefilled, got %q", buf.String())
		}
	})
}

func TestService_Watch(t *testing.T) {
	t.Run("weather is refreshed every interval", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			serv, _, geo := mockedService(t)
			serv.SignalSrc = nopSignalSource{}

			done := make(chan error, 1)
			go func() { done <- serv.Run(ctx, RunOptions{City: "London", Watch: true}) }()

			time.Sleep(2*serv.config.Intervals.Refresh + time.Second)
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("failed to run service: %s", err)
			}
			if calls := geo.Calls(); len(calls) < 3 {
				t.Errorf("expected initial lookup and at least 2 refreshes, got %d lookups", len(calls))
			}
		})
	})
}

func TestService_Interactive(t *testing.T) {
	t.Run("each line is looked up and empty lines retry", func(t *testing.T) {
		serv, buf, geo := mockedService(t)
		serv.input = strings.NewReader("London\n\n  Paris \nquit\nBerlin\n")
		if err := serv.Interactive(t.Context(), ""); err != nil {
			t.Fatalf("interactive mode failed: %s", err)
		}
		want := []string{"London", "London", "Paris"}
		calls := geo.Calls()
		if len(calls) != len(want) {
			t.Fatalf("expected geocoding calls %q, got %q", want, calls)
		}
		for i := range want {
			if calls[i] != want[i] {
				t.Errorf("expected geocoding call %d to be %q, got %q", i, want[i], calls[i])
			}
		}
		if !strings.Contains(buf.String(), "City [Paris]: ") {
			t.Errorf("expected prompt to be prefilled with the last input, got %q", buf.String())
		}
	})
	t.Run("empty line without previous input re-prompts", func(t *testing.T) {
		serv, buf, geo := mockedService(t)
		serv.input = strings.NewReader("\n\n")
		if err := serv.Interactive(t.Context(), ""); err != nil {
			t.Fatalf("interactive mode failed: %s", err)
		}
		if len(geo.Calls()) != 0 {
			t.Errorf("expected no geocoding calls, got %q", geo.Calls())
		}
		if got := strings.Count(buf.String(), "City: "); got != 3 {
			t.Errorf("expected 3 prompts, got %d in %q", got, buf.String())
		}
		if strings.Contains(buf.String(), "Error:") {
			t.Errorf("expected no error to be shown, got %q", buf.String())
		}
	})
	t.Run("failed lookup keeps the input for a retry", func(t *testing.T) {
		serv, buf, geo := mockedService(t)
		serv.input = strings.NewReader("Zzqx\n\n")
		if err := serv.Interactive(t.Context(), ""); err != nil {
			t.Fatalf("interactive mode failed: %s", err)
		}
		if calls := geo.Calls(); len(calls) != 2 || calls[1] != "Zzqx" {
			t.Errorf("expected retry of Zzqx, got %q", calls)
		}
		if got := strings.Count(buf.String(), `City "Zzqx" not found`); got != 2 {
			t.Errorf("expected the not found message twice, got %d", got)
		}
	})
	t.Run("cancelled context ends the prompt", func(t *testing.T) {
		serv, _, _ := mockedService(t)
		reader, writer := io.Pipe()
		t.Cleanup(func() { _ = writer.Close() })
		serv.input = reader

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- serv.Interactive(ctx, "") }()
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected no error, got %s", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("interactive mode did not return after cancellation")
		}
	})
	t.Run("read errors are reported", func(t *testing.T) {
		serv, _, _ := mockedService(t)
		serv.input = failReader{}
		err := serv.Interactive(t.Context(), "")
		if err == nil {
			t.Fatal("expected interactive mode to fail")
		}
		if !strings.Contains(err.Error(), "failed to read input") {
			t.Errorf("expected error to contain %q, got %q", "failed to read input", err)
		}
	})
}

func TestService_Serve(t *testing.T) {
	t.Run("serving and shutting down succeeds", func(t *testing.T) {
		serv, _, _ := mockedService(t)
		serv.config.Server.Addr = "127.0.0.1:0"
		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- serv.Run(ctx, RunOptions{Serve: true}) }()
		time.Sleep(50 * time.Millisecond)
		cancel()
		if err := <-done; err != nil {
			t.Errorf("failed to serve: %s", err)
		}
	})
	t.Run("invalid listen address fails", func(t *testing.T) {
		serv, _, _ := mockedService(t)
		serv.config.Server.Addr = "256.256.256.256:-1"
		err := serv.Serve(t.Context())
		if err == nil {
			t.Fatal("expected serving to fail")
		}
		if !strings.Contains(err.Error(), "failed to listen") {
			t.Errorf("expected error to contain %q, got %q", "failed to listen", err)
		}
	})
}

func TestService_HandleRefreshSignal(t *testing.T) {
	t.Run("every signal triggers a refresh", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		serv, err := testService(t, nil)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		refreshed := make(chan struct{}, 2)
		sigChan := make(chan os.Signal, 1)
		go serv.HandleRefreshSignal(ctx, sigChan, func() error {
			refreshed <- struct{}{}
			return nil
		})

		sigChan <- os.Interrupt
		sigChan <- os.Interrupt
		for i := 0; i < 2; i++ {
			select {
			case <-refreshed:
			case <-time.After(5 * time.Second):
				t.Fatalf("refresh %d was not triggered", i+1)
			}
		}
	})
	t.Run("refresh failures are logged", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		serv, err := testService(t, nil)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		buf := &syncBuffer{buf: bytes.NewBuffer(nil)}
		serv.logger = logger.NewLogger(slog.LevelInfo, buf)
		sigChan := make(chan os.Signal, 1)
		done := make(chan struct{})
		go func() {
			defer close(done)
			serv.HandleRefreshSignal(ctx, sigChan, func() error { return errors.New("job not scheduled") })
		}()

		sigChan <- os.Interrupt
		time.Sleep(time.Millisecond * 100)
		cancel()
		<-done
		wantLog := `msg="failed to trigger weather refresh" error="job not scheduled"`
		if !strings.Contains(buf.String(), wantLog) {
			t.Errorf("expected log to contain %q, got %q", wantLog, buf.String())
		}
	})
}

func testService(t *testing.T, configure func(*config.Config)) (*Service, error) {
	t.Helper()
	conf, err := config.New()
	if err != nil {
		return nil, err
	}
	conf.Store.Backend = "memory"
	conf.Store.Path = ""
	if configure != nil {
		configure(conf)
	}
	serv, err := New(conf, logger.NewLogger(conf.LogLevel, io.Discard))
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { _ = serv.Close() })
	return serv, nil
}

// mockedService returns a service whose upstream services are replaced by in-memory fakes.
func mockedService(t *testing.T) (*Service, *syncBuffer, *mockGeocoder) {
	t.Helper()
	serv, err := testService(t, nil)
	if err != nil {
		t.Fatalf("failed to create service: %s", err)
	}
	buf := &syncBuffer{buf: bytes.NewBuffer(nil)}
	geo := &mockGeocoder{}
	serv.output = buf
	serv.input = strings.NewReader("")
	serv.resolver = geo
	serv.provider = &weatherProv{}
	return serv, buf, geo
}

type (
	weatherProv     struct{}
	failReader      struct{}
	nopSignalSource struct{}
	mockGeocoder    struct {
		mu    sync.Mutex
		calls []string
	}
	syncBuffer struct {
		mu  sync.Mutex
		buf *bytes.Buffer
	}
)

func (failReader) Read([]byte) (int, error) { return 0, errors.New("failed to read") }

func (nopSignalSource) Notify(chan<- os.Signal, ...os.Signal) {}
func (nopSignalSource) Stop(chan<- os.Signal)                 {}

func (m *mockGeocoder) Name() string {
	return "mock geocoder"
}

func (m *mockGeocoder) Resolve(_ context.Context, cityName string) (geocode.Location, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cityName)
	m.mu.Unlock()
	name, _, _ := strings.Cut(cityName, ",")
	switch name {
	case "London":
		return geocode.Location{Latitude: 51.5, Longitude: -0.12, Name: "London", Country: "United Kingdom"}, nil
	case "Paris":
		return geocode.Location{Latitude: 48.85, Longitude: 2.35, Name: "Paris", Country: "France"}, nil
	default:
		return geocode.Location{}, &geocode.CityNotFoundError{Name: cityName}
	}
}

func (m *mockGeocoder) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (w *weatherProv) Name() string {
	return "mock weather provider"
}

func (w *weatherProv) Current(_ context.Context, lat, lon float64) (weather.Conditions, error) {
	if lat == 0 && lon == 0 {
		return weather.Conditions{}, fmt.Errorf("no coordinates: %w", weather.ErrDataUnavailable)
	}
	return weather.Conditions{
		Temperature: 15.4, ApparentTemperature: 14.1, RelativeHumidity: 72, WindSpeed: 10.3, WeatherCode: 3,
	}, nil
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
