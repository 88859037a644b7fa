// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/wneessen/weather-widget/internal/logger"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// stdLibSignalSource is the production implementation.
type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleRefreshSignal calls refresh for every signal received until ctx is cancelled
func (s *Service) HandleRefreshSignal(ctx context.Context, sigChan <-chan os.Signal, refresh func() error) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			s.logger.Debug("refresh requested by signal", slog.String("signal", sig.String()),
				slog.String("city", s.currentCity()))
			if err := refresh(); err != nil {
				s.logger.Error("failed to trigger weather refresh", logger.Err(err))
			}
		}
	}
}
