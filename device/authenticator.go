package device

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrUnavailable means the host has no local authentication facility.
	ErrUnavailable = errors.New("local authentication unavailable")
	// ErrAuthenticationFailed covers a failed or user-cancelled prompt.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// Authenticator performs local device-owner verification before an
// attendance submission. The prompt is user-paced: implementations block
// until the user responds or ctx is cancelled.
type Authenticator interface {
	Authenticate(ctx context.Context, reason string) error
}

var _ Authenticator = (*PromptAuthenticator)(nil)

// PromptAuthenticator delegates owner verification to a caller-supplied
// confirm function, which is how a terminal front end (or a platform
// biometric binding) plugs in.
type PromptAuthenticator struct {
	confirm func(ctx context.Context, reason string) (bool, error)
}

func NewPromptAuthenticator(confirm func(ctx context.Context, reason string) (bool, error)) (*PromptAuthenticator, error) {
	if confirm == nil {
		return nil, errors.New("[NewPromptAuthenticator] confirm function is required")
	}
	return &PromptAuthenticator{confirm: confirm}, nil
}

func (p *PromptAuthenticator) Authenticate(ctx context.Context, reason string) error {
	ok, err := p.confirm(ctx, reason)
	if err != nil {
		return errors.Wrap(ErrAuthenticationFailed, err.Error())
	}
	if !ok {
		return ErrAuthenticationFailed
	}
	return nil
}

var _ Authenticator = UnavailableAuthenticator{}

// UnavailableAuthenticator stands in on hosts with no verification
// facility at all; every attempt fails with ErrUnavailable.
type UnavailableAuthenticator struct{}

func (UnavailableAuthenticator) Authenticate(ctx context.Context, reason string) error {
	return ErrUnavailable
}
