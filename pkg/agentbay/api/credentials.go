package api

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	apperrors "github.com/agentbay/agentbay-go/pkg/agentbay/errors"
)

const (
	// EnvAPIKey is the environment variable holding the API credential.
	EnvAPIKey = "AGENTBAY_API_KEY"

	DefaultRefreshPeriod = 60 * time.Second
)

// CredentialProvider supplies the API key attached to every backend call.
type CredentialProvider interface {
	APIKey() string
}

// StaticCredential is a fixed API key.
type StaticCredential string

func (s StaticCredential) APIKey() string { return string(s) }

// CredentialFromEnv reads the API key from AGENTBAY_API_KEY.
func CredentialFromEnv() (CredentialProvider, error) {
	key := strings.TrimSpace(os.Getenv(EnvAPIKey))
	if key == "" {
		return nil, apperrors.New(apperrors.ErrCodeAuthFailed,
			EnvAPIKey+" is not set", nil)
	}
	return StaticCredential(key), nil
}

// FileCredential reads the API key from a file and refreshes it periodically,
// for deployments that rotate mounted credentials.
type FileCredential struct {
	path          string
	refreshPeriod time.Duration
	key           string
	mu            sync.RWMutex
	stopCh        chan struct{}
}

// NewFileCredential creates a new FileCredential
func NewFileCredential(path string) *FileCredential {
	return &FileCredential{
		path:          path,
		refreshPeriod: DefaultRefreshPeriod,
		stopCh:        make(chan struct{}),
	}
}

// Start loads the key and begins the refresh cycle.
func (f *FileCredential) Start(ctx context.Context) error {
	if err := f.refresh(); err != nil {
		return apperrors.New(apperrors.ErrCodeAuthFailed, "failed to load initial credential", err)
	}

	ticker := time.NewTicker(f.refreshPeriod)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// Keep serving the last good key on refresh failure
				_ = f.refresh()
			case <-f.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop halts the refresh cycle.
func (f *FileCredential) Stop() {
	close(f.stopCh)
}

func (f *FileCredential) APIKey() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.key
}

func (f *FileCredential) refresh() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.key = strings.TrimSpace(string(data))
	f.mu.Unlock()
	return nil
}
