package attendance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/oneit/go-attendance-client/backend"
	"github.com/oneit/go-attendance-client/outcome"
	"github.com/rs/zerolog/log"
)

const (
	dayDateLayout    = "2006-01-02"
	clockTimeLayout  = "15:04:05.000"
	invalidDuration  = "invalid duration"
	dayDisplayLayout = "Monday, Jan 2"
	timeDisplay      = "3:04 PM"
)

// Timesheet fetches the employee's historical records. Like every
// authenticated call, a 401 clears the stored session as a side effect.
func (p *Pipeline) Timesheet(ctx context.Context) ([]backend.TimesheetEntry, outcome.Outcome) {
	reply, err := p.api.Timesheet(ctx)
	if err != nil {
		return nil, outcome.Classify(0, nil, err)
	}

	if reply.Status == 200 {
		entries, err := backend.DecodeTimesheet(reply.Body)
		if err != nil {
			return nil, outcome.Transport("unexpected response")
		}
		return entries, outcome.Accept("")
	}

	out := outcome.Classify(reply.Status, reply.Body, nil)
	if out.Kind == outcome.SessionExpired {
		if err := p.store.Clear(); err != nil {
			log.Warn().Err(err).Msg("failed to clear expired session")
		}
	}
	return nil, out
}

// FormatDuration renders the backend's stringly-typed minute total as
// "2h 5m". Anything non-numeric yields an explicit invalid marker rather
// than a crash.
func FormatDuration(totalMinutes string) string {
	mins, err := strconv.Atoi(totalMinutes)
	if err != nil || mins < 0 {
		return invalidDuration
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

// FormatDay renders "2025-01-06" as "Monday, Jan 6". Unparseable input is
// echoed through unchanged.
func FormatDay(dayDate string) string {
	d, err := time.Parse(dayDateLayout, dayDate)
	if err != nil {
		return dayDate
	}
	return d.Format(dayDisplayLayout)
}

// FormatClock renders "08:05:00.000" as "8:05 AM". Unparseable input is
// echoed through unchanged.
func FormatClock(clock string) string {
	c, err := time.Parse(clockTimeLayout, clock)
	if err != nil {
		return clock
	}
	return c.Format(timeDisplay)
}
