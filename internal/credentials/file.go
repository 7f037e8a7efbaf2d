package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	fileFormatVersion = 1
	pbkdf2Iterations  = 100000
	keyLen            = 32
	saltLen           = 16
)

// ErrNoCredentials is returned by FileStore.Load when nothing is persisted.
var ErrNoCredentials = errors.New("no stored credentials")

// envelope is the on-disk representation of a persisted pair.
type envelope struct {
	Version   int       `json:"version"`
	Salt      string    `json:"salt"`
	Data      string    `json:"data"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FileStore persists a credential pair to an encrypted file.
//
// The pair is sealed with AES-256-GCM under a key derived from the
// passphrase with PBKDF2-SHA256 and a random per-file salt. The file is
// written with 0600 permissions.
type FileStore struct {
	mu         sync.Mutex
	path       string
	passphrase string
}

// NewFileStore creates a file store at path. Nothing is read or written
// until Load or Save is called.
func NewFileStore(path, passphrase string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("credentials path cannot be empty")
	}
	if passphrase == "" {
		return nil, fmt.Errorf("credentials passphrase cannot be empty")
	}
	return &FileStore{path: path, passphrase: passphrase}, nil
}

// Path returns the file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads and decrypts the persisted pair.
// Returns ErrNoCredentials if the file does not exist.
func (f *FileStore) Load() (Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Pair{}, ErrNoCredentials
		}
		return Pair{}, fmt.Errorf("read credentials: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Pair{}, fmt.Errorf("parse credentials file: %w", err)
	}
	if env.Version != fileFormatVersion {
		return Pair{}, fmt.Errorf("unsupported credentials file version %d", env.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return Pair{}, fmt.Errorf("decode salt: %w", err)
	}

	plaintext, err := decrypt(f.deriveKey(salt), env.Data)
	if err != nil {
		return Pair{}, fmt.Errorf("decrypt credentials: %w", err)
	}

	var pair Pair
	if err := json.Unmarshal(plaintext, &pair); err != nil {
		return Pair{}, fmt.Errorf("parse credentials: %w", err)
	}
	if pair.Access == "" {
		return Pair{}, ErrNoCredentials
	}

	return pair, nil
}

// Save encrypts and writes the pair, replacing any previous file.
func (f *FileStore) Save(pair Pair) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	plaintext, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	sealed, err := encrypt(f.deriveKey(salt), plaintext)
	if err != nil {
		return fmt.Errorf("encrypt credentials: %w", err)
	}

	data, err := json.MarshalIndent(envelope{
		Version:   fileFormatVersion,
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Data:      sealed,
		UpdatedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}

	// Write to a sibling file first so a crash never leaves a torn file.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace credentials: %w", err)
	}

	return nil
}

// Remove deletes the persisted pair. Missing files are not an error.
func (f *FileStore) Remove() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// Observer returns a store observer that mirrors every change to disk.
// Persistence failures are reported to onErr and never block the store.
func (f *FileStore) Observer(onErr func(error)) Observer {
	return func(pair Pair, live bool) {
		var err error
		if live {
			err = f.Save(pair)
		} else {
			err = f.Remove()
		}
		if err != nil && onErr != nil {
			onErr(err)
		}
	}
}

func (f *FileStore) deriveKey(salt []byte) []byte {
	return pbkdf2.Key([]byte(f.passphrase), salt, pbkdf2Iterations, keyLen, sha256.New)
}

// encrypt seals plaintext with AES-GCM and returns base64(nonce||ciphertext).
func encrypt(key, plaintext []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(gcm.Seal(nonce, nonce, plaintext, nil)), nil
}

func decrypt(key []byte, encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(data) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
