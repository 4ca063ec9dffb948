package devicefakes

import (
	"context"
	"sync"

	"github.com/oneit/go-attendance-client/device"
)

var _ device.VPNChecker = (*FakeVPNChecker)(nil)

// FakeVPNChecker reports a fixed VPN state and counts queries.
type FakeVPNChecker struct {
	Active bool
	Err    error

	lock  sync.Mutex
	calls int
}

func (f *FakeVPNChecker) VPNActive() (bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls++
	return f.Active, f.Err
}

func (f *FakeVPNChecker) Calls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls
}

var _ device.Authenticator = (*FakeAuthenticator)(nil)

// FakeAuthenticator succeeds or fails with a fixed error and counts
// prompts, so guard short-circuit tests can assert it was never reached.
type FakeAuthenticator struct {
	Err error

	lock  sync.Mutex
	calls int
}

func (f *FakeAuthenticator) Authenticate(ctx context.Context, reason string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls++
	if err := ctx.Err(); err != nil {
		return device.ErrAuthenticationFailed
	}
	return f.Err
}

func (f *FakeAuthenticator) Calls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls
}
