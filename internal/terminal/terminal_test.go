// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package terminal

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wneessen/weather-widget/internal/config"
	"github.com/wneessen/weather-widget/internal/logger"
	"github.com/wneessen/weather-widget/internal/lookup"
	"github.com/wneessen/weather-widget/internal/presenter"
	"github.com/wneessen/weather-widget/internal/template"
)

var testWeather = presenter.DisplayableWeather{
	DisplayName:         "London, United Kingdom",
	Description:         "Overcast",
	Icon:                "☁️",
	Temperature:         15,
	ApparentTemperature: 14,
	RelativeHumidity:    72,
	WindSpeed:           10.3,
	WeatherCode:         3,
	Latitude:            51.5085,
	Longitude:           -0.1257,
}

var _ lookup.UI = (*UI)(nil)

func TestUI(t *testing.T) {
	t.Run("states are written as lines", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		ui := testUI(t, buf, "")
		ui.ShowLoading()
		ui.ShowError(lookup.MsgGeocodingUnreachable)
		ui.ShowLastSearched("Paris, France")

		want := LoadingText + "\nError: Failed to connect to geocoding service\nLast searched: Paris, France\n"
		if buf.String() != want {
			t.Errorf("expected output %q, got %q", want, buf.String())
		}
	})
	t.Run("weather is rendered with the card template", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		ui := testUI(t, buf, "{{.Current.DisplayName}}|{{.Wind}}|{{timeFormat .UpdateTime \"15:04\"}}")
		ui.ShowWeather(testWeather)

		want := "London, United Kingdom|10.3 km/h|12:00\n"
		if buf.String() != want {
			t.Errorf("expected output %q, got %q", want, buf.String())
		}
	})
	t.Run("failing card template falls back to a summary line", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		logBuf := bytes.NewBuffer(nil)
		conf, err := config.New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		conf.Templates.Card = "{{.DoesNotExist}}"
		tpls, err := template.New(conf)
		if err != nil {
			t.Fatalf("failed to parse templates: %s", err)
		}
		ui := New(buf, tpls, logger.NewLogger(slog.LevelError, logBuf), clockwork.NewFakeClock())
		ui.ShowWeather(testWeather)

		if !strings.Contains(buf.String(), "London, United Kingdom: Overcast, 15°C") {
			t.Errorf("expected summary line, got %q", buf.String())
		}
		if !strings.Contains(logBuf.String(), "failed to render weather card") {
			t.Errorf("expected rendering failure to be logged, got %q", logBuf.String())
		}
	})
	t.Run("prompt shows the prefilled city", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		ui := testUI(t, buf, "")
		ui.Prompt("")
		ui.Prompt("London, United Kingdom")
		want := "City: City [London, United Kingdom]: "
		if buf.String() != want {
			t.Errorf("expected output %q, got %q", want, buf.String())
		}
	})
	t.Run("write failures are logged", func(t *testing.T) {
		logBuf := bytes.NewBuffer(nil)
		conf, err := config.New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		tpls, err := template.New(conf)
		if err != nil {
			t.Fatalf("failed to parse templates: %s", err)
		}
		ui := New(failWriter{}, tpls, logger.NewLogger(slog.LevelError, logBuf), nil)
		ui.ShowLoading()
		if !strings.Contains(logBuf.String(), "failed to write to terminal") {
			t.Errorf("expected write failure to be logged, got %q", logBuf.String())
		}
	})
}

func testUI(t *testing.T, buf *bytes.Buffer, card string) *UI {
	t.Helper()
	conf, err := config.New()
	if err != nil {
		t.Fatalf("failed to load config: %s", err)
	}
	if card != "" {
		conf.Templates.Card = card
	}
	tpls, err := template.New(conf)
	if err != nil {
		t.Fatalf("failed to parse templates: %s", err)
	}
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC))
	return New(buf, tpls, logger.Discard(), clock)
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("failed to write") }
