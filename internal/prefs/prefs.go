// Package prefs persists the non-sensitive login conveniences: the
// last-used server URL and badge number. They survive session expiry so
// the user need not retype them, and are cleared only on explicit logout.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

const prefsFileName = "prefs.json"

// Preferences is the persisted document.
type Preferences struct {
	ServerURL   string `json:"serverUrl"`
	BadgeNumber string `json:"badgeNumber"`
}

// Store reads and writes Preferences under a data folder.
type Store struct {
	path string
	lock sync.Mutex
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "[prefs.NewStore] creating data folder")
	}
	return &Store{path: filepath.Join(dir, prefsFileName)}, nil
}

// Load returns the saved preferences; a missing file reads as empty.
func (s *Store) Load() (Preferences, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Preferences{}, nil
	}
	if err != nil {
		return Preferences{}, errors.Wrap(err, "[prefs.Load] reading preferences")
	}

	var p Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return Preferences{}, errors.Wrap(err, "[prefs.Load] decoding preferences")
	}
	return p, nil
}

// Remember saves the server URL and badge number of a successful login.
func (s *Store) Remember(serverURL, badgeNumber string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := json.Marshal(Preferences{ServerURL: serverURL, BadgeNumber: badgeNumber})
	if err != nil {
		return errors.Wrap(err, "[prefs.Remember] encoding preferences")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[prefs.Remember] writing preferences")
	}
	return nil
}

// Forget removes the saved preferences.
func (s *Store) Forget() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[prefs.Forget] removing preferences")
	}
	return nil
}
