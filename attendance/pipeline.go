// Package attendance gates check-in/check-out submissions behind the
// device policy: a location fix must exist, no VPN may be active, and the
// device owner must re-authenticate locally before anything touches the
// network.
package attendance

import (
	"context"

	"github.com/oneit/go-attendance-client/backend"
	"github.com/oneit/go-attendance-client/device"
	"github.com/oneit/go-attendance-client/location"
	"github.com/oneit/go-attendance-client/outcome"
	"github.com/oneit/go-attendance-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const authReason = "Confirm it's you to record attendance"

// API is the slice of the backend client the pipeline needs.
type API interface {
	SubmitAttendance(ctx context.Context, action backend.Action, req backend.CheckRequest) (*backend.Reply, error)
	Timesheet(ctx context.Context) (*backend.Reply, error)
}

// DeviceMetadata is the static device description sent with every
// submission.
type DeviceMetadata struct {
	Model     string
	OSVersion string
}

// guard checks one precondition. It returns nil to proceed or a terminal
// outcome that aborts the submission before the next guard or any network
// request runs.
type guard func(ctx context.Context) *outcome.Outcome

// Pipeline runs the ordered guard chain and then submits the attendance
// event. Guard order is a correctness invariant: a device without a
// location fix never reaches the VPN scan, and a VPN-connected device
// never reaches the owner-verification prompt.
type Pipeline struct {
	api         API
	store       session.Store
	loc         location.Provider
	vpn         device.VPNChecker
	auth        device.Authenticator
	badgeNumber string
	meta        DeviceMetadata
}

// New initialises a Pipeline for an authenticated employee.
func New(
	api API,
	store session.Store,
	loc location.Provider,
	vpn device.VPNChecker,
	auth device.Authenticator,
	badgeNumber string,
	meta DeviceMetadata,
) (*Pipeline, error) {
	if api == nil {
		return nil, errors.New("[attendance.New] backend API is required")
	}
	if store == nil {
		return nil, errors.New("[attendance.New] session store is required")
	}
	if loc == nil {
		return nil, errors.New("[attendance.New] location provider is required")
	}
	if vpn == nil {
		return nil, errors.New("[attendance.New] VPN checker is required")
	}
	if auth == nil {
		return nil, errors.New("[attendance.New] authenticator is required")
	}
	if badgeNumber == "" {
		return nil, errors.New("[attendance.New] badge number is required")
	}

	return &Pipeline{
		api:         api,
		store:       store,
		loc:         loc,
		vpn:         vpn,
		auth:        auth,
		badgeNumber: badgeNumber,
		meta:        meta,
	}, nil
}

// Submit runs the guard chain for one check-in or check-out event and, if
// every guard proceeds, posts it to the backend. The guards run strictly
// in order and any terminal outcome short-circuits the rest.
func (p *Pipeline) Submit(ctx context.Context, action backend.Action) outcome.Outcome {
	var fix location.GeoFix

	chain := []guard{
		p.locationGuard(&fix),
		p.vpnGuard,
		p.biometricGuard,
	}
	for _, g := range chain {
		if out := g(ctx); out != nil {
			log.Info().
				Str("action", action.String()).
				Str("outcome", out.Kind.String()).
				Msg("submission blocked by guard")
			return *out
		}
	}

	return p.send(ctx, action, fix)
}

// locationGuard reads the latest fix. The UI gates the button on this
// precondition already, but the pipeline still defends against a stale
// call: absence is terminal, never a wait.
func (p *Pipeline) locationGuard(fix *location.GeoFix) guard {
	return func(ctx context.Context) *outcome.Outcome {
		latest, ok := p.loc.Latest()
		if !ok {
			out := outcome.CapabilityFailure("location unavailable")
			return &out
		}
		*fix = latest
		return nil
	}
}

// vpnGuard runs before the owner-verification prompt; a policy violation
// must never reach the user-paced step.
func (p *Pipeline) vpnGuard(ctx context.Context) *outcome.Outcome {
	active, err := p.vpn.VPNActive()
	if err != nil {
		out := outcome.CapabilityFailure("VPN check failed: " + err.Error())
		return &out
	}
	if active {
		out := outcome.Blocked("VPN not allowed")
		return &out
	}
	return nil
}

// biometricGuard waits for the user-paced owner verification. Cancellation
// here aborts the whole submission.
func (p *Pipeline) biometricGuard(ctx context.Context) *outcome.Outcome {
	if err := p.auth.Authenticate(ctx, authReason); err != nil {
		var out outcome.Outcome
		if errors.Is(err, device.ErrUnavailable) {
			out = outcome.CapabilityFailure(err.Error())
		} else {
			out = outcome.CapabilityFailure("authentication failed")
		}
		return &out
	}
	return nil
}

// send builds a fresh request from the captured fix and posts it. A 401
// clears the stored session token before the outcome is returned.
func (p *Pipeline) send(ctx context.Context, action backend.Action, fix location.GeoFix) outcome.Outcome {
	reply, err := p.api.SubmitAttendance(ctx, action, backend.CheckRequest{
		BadgeNumber: p.badgeNumber,
		Latitude:    fix.Latitude,
		Longitude:   fix.Longitude,
		MobileModel: p.meta.Model,
		MobileOS:    p.meta.OSVersion,
	})
	if err != nil {
		return outcome.Classify(0, nil, err)
	}

	out := outcome.Classify(reply.Status, reply.Body, nil)
	if out.Kind == outcome.SessionExpired {
		if err := p.store.Clear(); err != nil {
			log.Warn().Err(err).Msg("failed to clear expired session")
		}
	}

	log.Info().
		Str("action", action.String()).
		Str("outcome", out.Kind.String()).
		Msg("attendance submitted")
	return out
}
