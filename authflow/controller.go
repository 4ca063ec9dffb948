// Package authflow drives the user through the authentication lifecycle:
// badge/password login, the one-time-passcode challenge, and logout. It is
// a state machine over the session store; the presentation layer feeds it
// events and receives plain outcome values back.
package authflow

import (
	"context"
	"sync"

	"github.com/oneit/go-attendance-client/backend"
	"github.com/oneit/go-attendance-client/internal/utils"
	"github.com/oneit/go-attendance-client/outcome"
	"github.com/oneit/go-attendance-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// loginSuccessMessage is the backend's fixed marker for an accepted
// credential pair.
const loginSuccessMessage = "Login successful"

// State of the authentication flow.
type State int

const (
	Unauthenticated State = iota
	CredentialsPending
	OtpPending
	Authenticated
	// SessionExpired is absorbing: reachable from Authenticated when the
	// backend refuses the session; the UI routes back to login from here.
	SessionExpired
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case CredentialsPending:
		return "credentials pending"
	case OtpPending:
		return "otp pending"
	case Authenticated:
		return "authenticated"
	case SessionExpired:
		return "session expired"
	}
	return "unknown"
}

// Credentials is the transient badge/password pair. It exists only for the
// duration of a login request and is never persisted.
type Credentials struct {
	BadgeNumber string
	Password    string
}

// Profile identifies the authenticated employee. Immutable for the
// session's lifetime.
type Profile struct {
	BadgeNumber string
	DisplayName string
}

// API is the slice of the backend client the flow needs.
type API interface {
	Login(ctx context.Context, badgeNumber, password string) (*backend.Reply, error)
	VerifyTOTP(ctx context.Context, code string) (*backend.Reply, error)
	Logout(ctx context.Context) (*backend.Reply, error)
}

// Connector builds an API bound to the server URL the user entered.
type Connector func(serverURL string) (API, error)

// Prefs persists the login conveniences that survive session expiry: the
// last-used server URL and badge number.
type Prefs interface {
	Remember(serverURL, badgeNumber string) error
	Forget() error
}

// Controller is the authentication state machine. One logical flow is
// active at a time; the lock serialises overlapping calls rather than
// interleaving them.
type Controller struct {
	store   session.Store
	prefs   Prefs
	connect Connector

	lock    sync.Mutex
	state   State
	api     API
	profile *Profile
}

// New initialises a Controller in the Unauthenticated state.
func New(store session.Store, prefs Prefs, connect Connector) (*Controller, error) {
	if store == nil {
		return nil, errors.New("[authflow.New] session store is required")
	}
	if prefs == nil {
		return nil, errors.New("[authflow.New] prefs store is required")
	}
	if connect == nil {
		return nil, errors.New("[authflow.New] connector is required")
	}
	return &Controller{store: store, prefs: prefs, connect: connect}, nil
}

// State returns the current flow state.
func (c *Controller) State() State {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// Profile returns the authenticated employee, if any.
func (c *Controller) Profile() (Profile, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.profile == nil {
		return Profile{}, false
	}
	return *c.profile, true
}

// SubmitCredentials sends the badge/password pair to serverURL's login
// endpoint. It is valid from any state: a user-initiated re-login restarts
// the flow. Any previously stored token rides along so the backend can
// renew a still-valid prior session.
//
// On success the flow moves to OtpPending and the server URL and badge
// number are remembered for the next run. On any failure the flow returns
// to Unauthenticated; there is no automatic retry.
func (c *Controller) SubmitCredentials(ctx context.Context, creds Credentials, serverURL string) outcome.Outcome {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.state = CredentialsPending
	c.profile = nil

	api, err := c.connect(serverURL)
	if err != nil {
		c.state = Unauthenticated
		return outcome.Transport(err.Error())
	}

	reply, err := api.Login(ctx, creds.BadgeNumber, creds.Password)
	if err != nil {
		c.state = Unauthenticated
		return outcome.Classify(0, nil, err)
	}

	out := outcome.Classify(reply.Status, reply.Body, nil)
	switch out.Kind {
	case outcome.Accepted:
		lr, err := backend.DecodeLogin(reply.Body)
		if err != nil || utils.Value(lr.Message) != loginSuccessMessage {
			c.state = Unauthenticated
			return outcome.Reject("unexpected response: " + out.Message)
		}
		if err := c.prefs.Remember(serverURL, creds.BadgeNumber); err != nil {
			log.Warn().Err(err).Msg("failed to persist login preferences")
		}
		c.api = api
		c.state = OtpPending
		log.Info().Str("badge", creds.BadgeNumber).Msg("credentials accepted, OTP pending")
		return out
	case outcome.SessionExpired:
		// A 401 at login means the credentials were refused; any stale
		// token attached to the attempt is dead either way.
		if err := c.store.Clear(); err != nil {
			log.Warn().Err(err).Msg("failed to clear session after refused login")
		}
		c.state = Unauthenticated
		return outcome.Reject("invalid credentials")
	default:
		c.state = Unauthenticated
		return out
	}
}

// SubmitCode sends the one-time passcode. The code must already be
// normalized to six digits; the controller does not re-validate it.
// Returns ErrNoPendingVerification when no login is awaiting a code.
func (c *Controller) SubmitCode(ctx context.Context, code string) (outcome.Outcome, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state != OtpPending {
		return outcome.Outcome{}, ErrNoPendingVerification
	}

	reply, err := c.api.VerifyTOTP(ctx, code)
	if err != nil {
		// Transient; the user may re-enter the code.
		return outcome.Classify(0, nil, err), nil
	}

	out := outcome.Classify(reply.Status, reply.Body, nil)
	switch out.Kind {
	case outcome.Accepted:
		vr, err := backend.DecodeVerify(reply.Body)
		if err != nil || vr.BadgeNumber == "" {
			return outcome.Transport("unexpected response"), nil
		}
		c.profile = &Profile{BadgeNumber: vr.BadgeNumber, DisplayName: vr.Name}
		c.state = Authenticated
		log.Info().Str("badge", vr.BadgeNumber).Msg("authenticated")
		return out, nil
	case outcome.SessionExpired:
		if err := c.store.Clear(); err != nil {
			log.Warn().Err(err).Msg("failed to clear expired session")
		}
		c.state = Unauthenticated
		return out, nil
	default:
		// Invalid code (403) and transient failures leave the challenge
		// open for re-entry.
		return out, nil
	}
}

// Logout ends the session. The user-visible intent must always succeed
// locally: token, remembered server URL and badge number are cleared
// together no matter what the server answers.
func (c *Controller) Logout(ctx context.Context) outcome.Outcome {
	c.lock.Lock()
	defer c.lock.Unlock()

	api := c.api
	c.clearLocalSession()

	if api == nil {
		return outcome.Accept("logged out")
	}

	reply, err := api.Logout(ctx)
	if err != nil {
		return outcome.Classify(0, nil, err)
	}
	switch reply.Status {
	case 200, 401:
		// A stale token still yields a clean local logout.
		return outcome.Accept("logged out")
	default:
		return outcome.Classify(reply.Status, reply.Body, nil)
	}
}

// NoteSessionExpired records that an authenticated call elsewhere (e.g. an
// attendance submission) was refused with a 401. The flow parks in the
// absorbing SessionExpired state until the user logs in again.
func (c *Controller) NoteSessionExpired() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.state == Authenticated {
		c.state = SessionExpired
		c.profile = nil
	}
}

func (c *Controller) clearLocalSession() {
	if err := c.store.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear session on logout")
	}
	if err := c.prefs.Forget(); err != nil {
		log.Warn().Err(err).Msg("failed to clear preferences on logout")
	}
	c.api = nil
	c.profile = nil
	c.state = Unauthenticated
}
