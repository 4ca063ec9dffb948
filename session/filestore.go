package session

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/oneit/go-attendance-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	keyFileName   = "session.key"
	tokenFileName = "session.tok"
)

var _ Store = (*FileStore)(nil)

// FileStore persists the session token under a data folder so the session
// survives process restarts. The token is sealed at rest with a
// machine-local key; the key file is created on first use.
type FileStore struct {
	dir     string
	key     []byte
	lock    sync.RWMutex
	current token.Token
}

// NewFileStore opens (or initialises) the persisted session under dir.
// A shadow copy left by a previous run is loaded as the current token; an
// unreadable shadow copy is discarded rather than failing the start-up,
// since the worst case is a fresh login.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] creating data folder")
	}

	key, err := loadOrCreateKey(filepath.Join(dir, keyFileName))
	if err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] session key")
	}

	fs := &FileStore{dir: dir, key: key}

	sealed, err := os.ReadFile(fs.tokenPath())
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] reading persisted session")
	}

	tok, err := fs.unseal(sealed)
	if err != nil {
		log.Warn().Err(err).Msg("discarding unreadable persisted session")
		_ = os.Remove(fs.tokenPath())
		return fs, nil
	}
	fs.current = tok
	return fs, nil
}

func (fs *FileStore) Current() (token.Token, bool) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.current, !fs.current.IsZero()
}

func (fs *FileStore) Adopt(t token.Token) error {
	if t.IsZero() {
		return errors.New("[FileStore.Adopt] refusing to adopt an empty token")
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()

	sealed, err := fs.seal(t)
	if err != nil {
		return errors.Wrap(err, "[FileStore.Adopt] sealing token")
	}
	if err := os.WriteFile(fs.tokenPath(), sealed, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.Adopt] persisting token")
	}
	fs.current = t
	return nil
}

func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.current = ""
	if err := os.Remove(fs.tokenPath()); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] removing persisted token")
	}
	return nil
}

func (fs *FileStore) tokenPath() string {
	return filepath.Join(fs.dir, tokenFileName)
}

func (fs *FileStore) seal(t token.Token) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(fs.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, []byte(t), nil), nil
}

func (fs *FileStore) unseal(sealed []byte) (token.Token, error) {
	aead, err := chacha20poly1305.NewX(fs.key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", errors.New("sealed token too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.Wrap(err, "opening sealed token")
	}
	return token.Token(plain), nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, errors.New("session key has wrong size")
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}
