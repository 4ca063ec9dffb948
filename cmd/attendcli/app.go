package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oneit/go-attendance-client/attendance"
	"github.com/oneit/go-attendance-client/authflow"
	"github.com/oneit/go-attendance-client/backend"
	"github.com/oneit/go-attendance-client/device"
	"github.com/oneit/go-attendance-client/internal/config"
	"github.com/oneit/go-attendance-client/internal/prefs"
	"github.com/oneit/go-attendance-client/location"
	"github.com/oneit/go-attendance-client/outcome"
	"github.com/oneit/go-attendance-client/session"
)

// app holds the interactive session: the auth flow is always present, the
// attendance pipeline exists only while authenticated.
type app struct {
	cfg       config.Config
	store     session.Store
	prefStore *prefs.Store
	flow      *authflow.Controller
	timeout   time.Duration

	reader    *bufio.Reader
	serverURL string
	feed      *location.Feed
	pipe      *attendance.Pipeline
}

func newApp(cfg config.Config, store session.Store, prefStore *prefs.Store, flow *authflow.Controller, timeout time.Duration) *app {
	return &app{
		cfg:       cfg,
		store:     store,
		prefStore: prefStore,
		flow:      flow,
		timeout:   timeout,
		reader:    bufio.NewReader(os.Stdin),
		feed:      location.NewFeed(),
	}
}

func (a *app) loop(ctx context.Context) error {
	fmt.Println("commands: login, otp, fix <lat> <lon>, checkin, checkout, timesheet, logout, quit")

	for {
		fmt.Printf("[%s]> ", a.flow.State())
		line, err := a.reader.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "login":
			a.login(ctx)
		case "otp":
			a.otp(ctx)
		case "fix":
			a.fix(fields[1:])
		case "checkin":
			a.submit(ctx, backend.ActionCheckIn)
		case "checkout":
			a.submit(ctx, backend.ActionCheckOut)
		case "timesheet":
			a.timesheet(ctx)
		case "logout":
			a.logout(ctx)
		case "quit", "exit":
			return nil
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func (a *app) login(ctx context.Context) {
	saved, err := a.prefStore.Load()
	if err != nil {
		saved = prefs.Preferences{}
	}
	defaultURL := saved.ServerURL
	if defaultURL == "" {
		defaultURL = a.cfg.GetServerURL()
	}

	serverURL := a.prompt(fmt.Sprintf("server URL [%s]: ", defaultURL))
	if serverURL == "" {
		serverURL = defaultURL
	}
	badge := a.prompt(badgePrompt(saved.BadgeNumber))
	if badge == "" {
		badge = saved.BadgeNumber
	}
	password := a.prompt("password: ")

	out := a.flow.SubmitCredentials(ctx, authflow.Credentials{BadgeNumber: badge, Password: password}, serverURL)
	if a.flow.State() == authflow.OtpPending {
		a.serverURL = serverURL
		fmt.Println("enter the 6-digit code with 'otp'")
		return
	}
	printOutcome(out)
}

func (a *app) otp(ctx context.Context) {
	code := authflow.NormalizeOTP(a.prompt("code: "))
	if !authflow.ValidOTP(code) {
		fmt.Println("the code must be exactly 6 digits")
		return
	}

	out, err := a.flow.SubmitCode(ctx, code)
	if err != nil {
		fmt.Println(err)
		return
	}
	printOutcome(out)

	if a.flow.State() != authflow.Authenticated {
		return
	}

	profile, _ := a.flow.Profile()
	fmt.Printf("welcome, %s (badge %s)\n", profile.DisplayName, profile.BadgeNumber)

	if err := a.buildPipeline(profile.BadgeNumber); err != nil {
		fmt.Println("attendance unavailable:", err)
	}
}

// buildPipeline wires the guard chain for the authenticated employee.
func (a *app) buildPipeline(badgeNumber string) error {
	api, err := backend.New(a.serverURL, a.store, backend.WithTimeout(a.timeout))
	if err != nil {
		return err
	}

	auth, err := device.NewPromptAuthenticator(a.confirmIdentity)
	if err != nil {
		return err
	}

	pipe, err := attendance.New(api, a.store, a.feed, device.NewInterfaceScanner(), auth, badgeNumber, attendance.DeviceMetadata{
		Model:     a.cfg.GetDeviceModel(),
		OSVersion: a.cfg.GetDeviceOS(),
	})
	if err != nil {
		return err
	}
	a.pipe = pipe
	return nil
}

func (a *app) fix(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: fix <lat> <lon>")
		return
	}
	lat, err1 := strconv.ParseFloat(args[0], 64)
	lon, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		fmt.Println("usage: fix <lat> <lon>")
		return
	}
	a.feed.Update(location.GeoFix{Latitude: lat, Longitude: lon, Timestamp: time.Now()})
	fmt.Printf("location fix set to %.4f, %.4f\n", lat, lon)
}

func (a *app) submit(ctx context.Context, action backend.Action) {
	if a.pipe == nil {
		fmt.Println("log in first")
		return
	}
	if _, ok := a.feed.Latest(); !ok {
		// The pipeline would refuse anyway; gate the action here like the
		// mobile UI gates its button.
		fmt.Println("no location fix; use 'fix <lat> <lon>' first")
		return
	}

	out := a.pipe.Submit(ctx, action)
	printOutcome(out)
	a.noteExpiry(out)
}

func (a *app) timesheet(ctx context.Context) {
	if a.pipe == nil {
		fmt.Println("log in first")
		return
	}

	entries, out := a.pipe.Timesheet(ctx)
	if out.Kind != outcome.Accepted {
		printOutcome(out)
		a.noteExpiry(out)
		return
	}
	for _, e := range entries {
		fmt.Printf("%-18s  in %-8s  out %-8s  %s\n",
			attendance.FormatDay(e.DayDate),
			attendance.FormatClock(e.CheckIn),
			attendance.FormatClock(e.CheckOut),
			attendance.FormatDuration(e.TotalMinutes),
		)
	}
}

func (a *app) logout(ctx context.Context) {
	out := a.flow.Logout(ctx)
	a.pipe = nil
	a.serverURL = ""
	printOutcome(out)
}

// noteExpiry routes a refused session back to the login screen.
func (a *app) noteExpiry(out outcome.Outcome) {
	if out.Kind != outcome.SessionExpired {
		return
	}
	a.flow.NoteSessionExpired()
	a.pipe = nil
}

// confirmIdentity is the CLI's stand-in for the platform owner
// verification prompt.
func (a *app) confirmIdentity(ctx context.Context, reason string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	answer := a.prompt(reason + " [y/N]: ")
	return strings.EqualFold(answer, "y"), nil
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	line, err := a.reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func badgePrompt(saved string) string {
	if saved == "" {
		return "badge number: "
	}
	return fmt.Sprintf("badge number [%s]: ", saved)
}

func printOutcome(out outcome.Outcome) {
	switch out.Kind {
	case outcome.Accepted:
		fmt.Println("ok:", out.Message)
	default:
		fmt.Printf("%s: %s\n", out.Kind, out.Message)
	}
}
