// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package terminal renders lookup states as plain text lines.
package terminal

import (
	"fmt"
	"io"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/wneessen/weather-widget/internal/logger"
	"github.com/wneessen/weather-widget/internal/presenter"
	"github.com/wneessen/weather-widget/internal/template"
)

const (
	LoadingText      = "Loading weather data..."
	errorPrefix      = "Error: "
	lastSearchPrefix = "Last searched: "
)

// UI writes every lookup state to an io.Writer. Writes are serialized.
type UI struct {
	out       io.Writer
	templates *template.Templates
	log       *logger.Logger
	clock     clockwork.Clock

	mu sync.Mutex
}

func New(out io.Writer, tpls *template.Templates, log *logger.Logger, clock clockwork.Clock) *UI {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &UI{out: out, templates: tpls, log: log, clock: clock}
}

func (u *UI) ShowLoading() {
	u.println(LoadingText)
}

func (u *UI) ShowError(message string) {
	u.println(errorPrefix + message)
}

func (u *UI) ShowLastSearched(displayName string) {
	u.println(lastSearchPrefix + displayName)
}

// ShowWeather renders the weather card. On a template failure the card falls back to a
// single summary line.
func (u *UI) ShowWeather(weather presenter.DisplayableWeather) {
	u.mu.Lock()
	defer u.mu.Unlock()

	data := template.NewDisplayData(weather, u.clock.Now())
	if err := u.templates.RenderCard(u.out, data); err != nil {
		u.log.Error("failed to render weather card", logger.Err(err))
		u.writeLine(fmt.Sprintf("%s%s: %s, %d°C", data.IconWithSpace, weather.DisplayName,
			weather.Description, weather.Temperature))
		return
	}
	u.writeLine("")
}

// Prompt asks for the next city. prefill is shown as the default value.
func (u *UI) Prompt(prefill string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if prefill != "" {
		u.write(fmt.Sprintf("City [%s]: ", prefill))
		return
	}
	u.write("City: ")
}

func (u *UI) println(line string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.writeLine(line)
}

func (u *UI) writeLine(line string) {
	u.write(line + "\n")
}

func (u *UI) write(text string) {
	if _, err := io.WriteString(u.out, text); err != nil {
		u.log.Error("failed to write to terminal", logger.Err(err))
	}
}
