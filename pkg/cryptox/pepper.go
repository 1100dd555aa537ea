package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const pepperBytes = 32

var (
	pepperMu sync.RWMutex
	pepper   string
)

// SetPepper replaces the process-wide pepper mixed into every password hash.
// An empty pepper disables peppering.
func SetPepper(p string) {
	pepperMu.Lock()
	pepper = p
	pepperMu.Unlock()
}

// LoadPepper reads the pepper from path, generating and persisting a new one
// when the file does not exist yet. The loaded value becomes the active pepper.
func LoadPepper(path string) error {
	if path == "" {
		return errors.New("pepper file path is empty")
	}
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		p := strings.TrimSpace(string(data))
		if p == "" {
			return fmt.Errorf("pepper file %s is empty", path)
		}
		SetPepper(p)
		return nil

	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("create pepper dir: %w", err)
		}
		buf := make([]byte, pepperBytes)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate pepper: %w", err)
		}
		p := base64.RawURLEncoding.EncodeToString(buf)
		if err := os.WriteFile(path, []byte(p), 0o600); err != nil {
			return fmt.Errorf("write pepper: %w", err)
		}
		SetPepper(p)
		return nil

	default:
		return fmt.Errorf("read pepper: %w", err)
	}
}

func peppered(password string) []byte {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return []byte(password + pepper)
}
