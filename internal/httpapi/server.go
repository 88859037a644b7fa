// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package httpapi exposes weather lookups as a small JSON API.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/wneessen/weather-widget/internal/logger"
	"github.com/wneessen/weather-widget/internal/lookup"
	"github.com/wneessen/weather-widget/internal/presenter"
)

// LookupFactory builds an orchestrator that reports to ui. It is called once per request.
type LookupFactory func(ui lookup.UI) (*lookup.Orchestrator, error)

type Server struct {
	newLookup LookupFactory
	cities    lookup.CityStore
	metrics   http.Handler
	log       *logger.Logger
	origins   []string
}

type weatherResponse struct {
	Weather      presenter.DisplayableWeather `json:"weather"`
	LastSearched string                       `json:"last_searched,omitempty"`
}

type lastCityResponse struct {
	City string `json:"city"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewServer returns a Server. metrics may be nil, in which case /metrics is not routed.
func NewServer(factory LookupFactory, cities lookup.CityStore, metrics http.Handler, log *logger.Logger,
	allowedOrigins []string,
) *Server {
	return &Server{
		newLookup: factory,
		cities:    cities,
		metrics:   metrics,
		log:       log,
		origins:   allowedOrigins,
	}
}

// Router returns the HTTP handler with all routes and middleware registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/api", func(r chi.Router) {
		r.Get("/weather", s.handleWeather)
		r.Get("/last-city", s.handleLastCity)
	})
	return r
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	rec := new(recorder)
	orch, err := s.newLookup(rec)
	if err != nil {
		s.log.Error("failed to create weather lookup", logger.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: string(lookup.KindUnknown), Message: lookup.MsgUnknown,
		})
		return
	}

	outcome := orch.FetchWeather(r.Context(), r.URL.Query().Get("city"))
	if !outcome.Succeeded() {
		writeJSON(w, statusFor(outcome), errorResponse{Error: string(outcome.Kind), Message: outcome.Message})
		return
	}
	writeJSON(w, http.StatusOK, weatherResponse{Weather: outcome.Weather, LastSearched: rec.lastSearched})
}

func (s *Server) handleLastCity(w http.ResponseWriter, _ *http.Request) {
	city, ok := s.cities.Load()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, lastCityResponse{City: city})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("handled HTTP request", slog.String("method", r.Method),
			slog.String("path", r.URL.Path), slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)), slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// statusFor maps a failed outcome to its HTTP status code.
func statusFor(outcome lookup.Outcome) int {
	switch outcome.Kind {
	case lookup.KindInvalidInput:
		return http.StatusBadRequest
	case lookup.KindCityNotFound:
		return http.StatusNotFound
	case lookup.KindServiceUnreachable, lookup.KindDataUnavailable:
		return http.StatusBadGateway
	case lookup.KindBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// recorder is the UI of a single API request. Only the last searched name is kept, the
// rest of the state is carried by the Outcome.
type recorder struct {
	lastSearched string
}

func (r *recorder) ShowLoading()                             {}
func (r *recorder) ShowError(string)                         {}
func (r *recorder) ShowWeather(presenter.DisplayableWeather) {}
func (r *recorder) ShowLastSearched(displayName string)      { r.lastSearched = displayName }
