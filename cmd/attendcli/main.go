// Command attendcli is an interactive front end for the attendance
// client: badge/password login, OTP verification, geofenced check-in and
// check-out, timesheet display and logout.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oneit/go-attendance-client/authflow"
	"github.com/oneit/go-attendance-client/backend"
	"github.com/oneit/go-attendance-client/internal/config"
	"github.com/oneit/go-attendance-client/internal/prefs"
	"github.com/oneit/go-attendance-client/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("client stopped")
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(logLevel())

	c := config.New()
	displayAppname(c.GetAppName())

	store, err := session.NewFileStore(c.GetDataFolder())
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	prefStore, err := prefs.NewStore(c.GetDataFolder())
	if err != nil {
		return fmt.Errorf("opening preferences: %w", err)
	}

	timeout := time.Duration(c.GetHTTPTimeoutSeconds()) * time.Second
	connect := func(serverURL string) (authflow.API, error) {
		return backend.New(serverURL, store, backend.WithTimeout(timeout))
	}

	flow, err := authflow.New(store, prefStore, connect)
	if err != nil {
		return fmt.Errorf("initialising auth flow: %w", err)
	}

	a := newApp(c, store, prefStore, flow, timeout)
	return a.loop(context.Background())
}

func logLevel() zerolog.Level {
	if lvl, err := zerolog.ParseLevel(config.GetEnv("LOG_LEVEL", "info")); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
