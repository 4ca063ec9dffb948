package authflow_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/oneit/go-attendance-client/authflow"
	"github.com/oneit/go-attendance-client/backend"
	"github.com/oneit/go-attendance-client/session/storefakes"
	"github.com/oneit/go-attendance-client/token"
	"github.com/stretchr/testify/require"
)

const (
	testBadge    = "A1"
	testPassword = "x"
	testOtp      = "123456"
)

// fakePrefs records remembered and forgotten login conveniences.
type fakePrefs struct {
	lock      sync.Mutex
	ServerURL string
	Badge     string
	Forgotten int
}

func (p *fakePrefs) Remember(serverURL, badgeNumber string) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.ServerURL = serverURL
	p.Badge = badgeNumber
	return nil
}

func (p *fakePrefs) Forget() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.ServerURL, p.Badge = "", ""
	p.Forgotten++
	return nil
}

// testFixture wires a controller to an httptest backend whose behaviour
// each test swaps in.
type testFixture struct {
	store   *storefakes.FakeStore
	prefs   *fakePrefs
	flow    *authflow.Controller
	server  *httptest.Server
	handler func(w http.ResponseWriter, r *http.Request)
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		store: storefakes.NewFakeStore(),
		prefs: &fakePrefs{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.handler(w, r)
	}))
	t.Cleanup(f.server.Close)

	flow, err := authflow.New(f.store, f.prefs, func(serverURL string) (authflow.API, error) {
		return backend.New(serverURL, f.store)
	})
	require.NoError(t, err)
	f.flow = flow
	return f
}

// login drives the fixture to OtpPending with a stored session token.
func (f *testFixture) login(t *testing.T) {
	t.Helper()
	f.handler = func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "sess-1"})
		w.Write([]byte(`{"message":"Login successful"}`))
	}
	out := f.flow.SubmitCredentials(context.Background(), authflow.Credentials{BadgeNumber: testBadge, Password: testPassword}, f.server.URL)
	require.Equal(t, "Login successful", out.Message)
	require.Equal(t, authflow.OtpPending, f.flow.State())
}

func TestNewValidation(t *testing.T) {
	store := storefakes.NewFakeStore()
	connect := func(string) (authflow.API, error) { return nil, nil }

	_, err := authflow.New(nil, &fakePrefs{}, connect)
	require.Error(t, err)
	_, err = authflow.New(store, nil, connect)
	require.Error(t, err)
	_, err = authflow.New(store, &fakePrefs{}, nil)
	require.Error(t, err)
}

func TestSubmitCredentials(t *testing.T) {
	t.Run("success moves to OtpPending and stores the token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		tok, ok := f.store.Current()
		require.True(t, ok)
		require.Equal(t, token.Token("sess-1"), tok)
		require.Equal(t, f.server.URL, f.prefs.ServerURL)
		require.Equal(t, testBadge, f.prefs.Badge)
	})

	t.Run("200 with an unexpected message stays unauthenticated", func(t *testing.T) {
		f := setupTestFixture(t)
		f.handler = func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"message":"Password change required"}`))
		}
		out := f.flow.SubmitCredentials(context.Background(), authflow.Credentials{BadgeNumber: testBadge, Password: testPassword}, f.server.URL)
		require.Equal(t, authflow.Unauthenticated, f.flow.State())
		require.Contains(t, out.Message, "Password change required")
	})

	t.Run("401 rejects the credentials and clears any stale token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.store.Adopt(token.Token("stale"))
		f.handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}
		out := f.flow.SubmitCredentials(context.Background(), authflow.Credentials{BadgeNumber: testBadge, Password: "wrong"}, f.server.URL)
		require.Equal(t, "invalid credentials", out.Message)
		require.Equal(t, authflow.Unauthenticated, f.flow.State())
		_, ok := f.store.Current()
		require.False(t, ok)
	})

	t.Run("500 stays unauthenticated with a transient error", func(t *testing.T) {
		f := setupTestFixture(t)
		f.handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}
		out := f.flow.SubmitCredentials(context.Background(), authflow.Credentials{BadgeNumber: testBadge, Password: testPassword}, f.server.URL)
		require.Equal(t, authflow.Unauthenticated, f.flow.State())
		require.Equal(t, "server error, try again later", out.Message)
	})

	t.Run("unreachable server", func(t *testing.T) {
		f := setupTestFixture(t)
		dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		dead.Close()
		out := f.flow.SubmitCredentials(context.Background(), authflow.Credentials{BadgeNumber: testBadge, Password: testPassword}, dead.URL)
		require.Equal(t, authflow.Unauthenticated, f.flow.State())
		require.NotEmpty(t, out.Message)
	})
}

func TestSubmitCode(t *testing.T) {
	t.Run("valid code authenticates with a profile", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.handler = func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie("JSESSIONID")
			require.NoError(t, err)
			require.Equal(t, "sess-1", c.Value)
			w.Write([]byte(`{"message":"ok","badgeNumber":"A1","name":"Jane"}`))
		}
		out, err := f.flow.SubmitCode(context.Background(), testOtp)
		require.NoError(t, err)
		require.Equal(t, "ok", out.Message)
		require.Equal(t, authflow.Authenticated, f.flow.State())

		profile, ok := f.flow.Profile()
		require.True(t, ok)
		require.Equal(t, authflow.Profile{BadgeNumber: "A1", DisplayName: "Jane"}, profile)
	})

	t.Run("403 keeps the challenge open", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}
		out, err := f.flow.SubmitCode(context.Background(), "000000")
		require.NoError(t, err)
		require.Equal(t, "invalid code", out.Message)
		require.Equal(t, authflow.OtpPending, f.flow.State())
	})

	t.Run("401 clears the session and restarts the flow", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}
		out, err := f.flow.SubmitCode(context.Background(), testOtp)
		require.NoError(t, err)
		require.Equal(t, "session expired, log in again", out.Message)
		require.Equal(t, authflow.Unauthenticated, f.flow.State())
		_, ok := f.store.Current()
		require.False(t, ok)
	})

	t.Run("500 keeps the challenge open", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}
		_, err := f.flow.SubmitCode(context.Background(), testOtp)
		require.NoError(t, err)
		require.Equal(t, authflow.OtpPending, f.flow.State())
	})

	t.Run("200 with an undecodable body keeps the challenge open", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.handler = func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>proxy error</html>`))
		}
		out, err := f.flow.SubmitCode(context.Background(), testOtp)
		require.NoError(t, err)
		require.Equal(t, "unexpected response", out.Message)
		require.Equal(t, authflow.OtpPending, f.flow.State())
	})

	t.Run("without a pending login", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.flow.SubmitCode(context.Background(), testOtp)
		require.ErrorIs(t, err, authflow.ErrNoPendingVerification)
	})
}

func TestLogout(t *testing.T) {
	t.Run("200 clears everything", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.handler = func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"message":"bye"}`))
		}
		out := f.flow.Logout(context.Background())
		require.Equal(t, "logged out", out.Message)
		require.Equal(t, authflow.Unauthenticated, f.flow.State())
		_, ok := f.store.Current()
		require.False(t, ok)
		require.Equal(t, 1, f.prefs.Forgotten)
	})

	t.Run("401 is still a clean local logout", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}
		out := f.flow.Logout(context.Background())
		require.Equal(t, "logged out", out.Message)
		_, ok := f.store.Current()
		require.False(t, ok)
	})

	t.Run("500 surfaces the error but local state is cleared regardless", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}
		out := f.flow.Logout(context.Background())
		require.Equal(t, "server error, try again later", out.Message)
		require.Equal(t, authflow.Unauthenticated, f.flow.State())
		_, ok := f.store.Current()
		require.False(t, ok)
		require.Equal(t, 1, f.prefs.Forgotten)
	})

	t.Run("without any backend contact", func(t *testing.T) {
		f := setupTestFixture(t)
		out := f.flow.Logout(context.Background())
		require.Equal(t, "logged out", out.Message)
	})
}

func TestNoteSessionExpired(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok","badgeNumber":"A1","name":"Jane"}`))
	}
	_, err := f.flow.SubmitCode(context.Background(), testOtp)
	require.NoError(t, err)

	f.flow.NoteSessionExpired()
	require.Equal(t, authflow.SessionExpired, f.flow.State())
	_, ok := f.flow.Profile()
	require.False(t, ok)

	t.Run("only from Authenticated", func(t *testing.T) {
		g := setupTestFixture(t)
		g.flow.NoteSessionExpired()
		require.Equal(t, authflow.Unauthenticated, g.flow.State())
	})
}
