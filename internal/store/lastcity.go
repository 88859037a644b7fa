// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package store

import (
	"log/slog"

	"github.com/wneessen/weather-widget/internal/logger"
)

// LastCityKey is the namespaced key the last displayed city is stored under.
const LastCityKey = "weatherDashboard_lastCity"

// LastCity remembers the display name of the last successful lookup. Its methods never
// fail the caller, storage errors are logged and swallowed.
type LastCity struct {
	store Store
	log   *logger.Logger
}

// NewLastCity returns a LastCity remembering the city in store.
func NewLastCity(store Store, log *logger.Logger) *LastCity {
	return &LastCity{store: store, log: log}
}

// Save stores name and reports whether it was persisted. The result may be discarded.
func (l *LastCity) Save(name string) bool {
	if err := l.store.Save(LastCityKey, name); err != nil {
		l.log.Warn("could not save last city", logger.Err(err), slog.String("city", name))
		return false
	}
	return true
}

// Load returns the last stored city. Read failures are reported as absent.
func (l *LastCity) Load() (string, bool) {
	rec, ok, err := l.store.Load(LastCityKey)
	if err != nil {
		l.log.Warn("could not read last city", logger.Err(err))
		return "", false
	}
	if !ok || rec.Value == "" {
		return "", false
	}
	return rec.Value, true
}
