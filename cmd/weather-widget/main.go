// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the weather-widget command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/wneessen/weather-widget/internal/config"
	"github.com/wneessen/weather-widget/internal/logger"
	"github.com/wneessen/weather-widget/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.New(slog.LevelError)

	confPath := flag.String("config", "", "path to the config file")
	serve := flag.Bool("serve", false, "serve the weather HTTP API")
	watch := flag.Bool("watch", false, "keep refreshing the weather for the city")
	interactive := flag.Bool("i", false, "prompt for cities after the first lookup")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [city]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("weather-widget %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}

	conf, err := loadConfig(*confPath)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		return 1
	}
	log = logger.New(conf.LogLevel)

	// Initialize the service
	serv, err := service.New(conf, log)
	if err != nil {
		log.Error("failed to initialize weather-widget service", logger.Err(err))
		return 1
	}
	defer func() {
		if err := serv.Close(); err != nil {
			log.Error("failed to close weather-widget service", logger.Err(err))
		}
	}()

	log.Debug("starting weather-widget", slog.String("version", version),
		slog.String("commit", commit), slog.String("date", date))
	err = serv.Run(ctx, service.RunOptions{
		City:        strings.Join(flag.Args(), " "),
		Serve:       *serve,
		Watch:       *watch,
		Interactive: *interactive,
	})
	switch {
	case err == nil:
		return 0
	case errors.Is(err, service.ErrLookupFailed), errors.Is(err, service.ErrNoCity):
		// Already shown to the user
		return 1
	default:
		log.Error("weather-widget failed", logger.Err(err))
		return 1
	}
}

// loadConfig reads the config from path, or from the default location if path is empty. Without
// any config file, defaults and environment variables are used.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.NewFromFile(filepath.Dir(path), filepath.Base(path))
	}
	if dir, file := findConfigFile(); dir != "" && file != "" {
		return config.NewFromFile(dir, file)
	}
	return config.New()
}

func findConfigFile() (string, string) {
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(config.Dir(), "config."+ext)
		if _, err := os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
