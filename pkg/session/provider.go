// Package session holds the client's only durable state: the auth token and
// the current user's name. Login writes it, logout clears it, everything else
// reads it through a Provider.
package session

import (
	"sync"

	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
)

const (
	KeyToken    = "userToken"
	KeyUserName = "userName"
)

// Provider reads and writes the credential through a Store
type Provider struct {
	mu    sync.RWMutex
	store Store
}

func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

// Get returns the stored credential. ok is false unless both the token and
// the user name are present.
func (p *Provider) Get() (model.Credential, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	token, ok, err := p.store.Get(KeyToken)
	if err != nil || !ok || token == "" {
		return model.Credential{}, false
	}
	user, ok, err := p.store.Get(KeyUserName)
	if err != nil || !ok || user == "" {
		return model.Credential{}, false
	}
	return model.Credential{Token: token, UserID: user}, true
}

// Set stores cred, replacing any previous credential
func (p *Provider) Set(cred model.Credential) error {
	if cred.Token == "" || cred.UserID == "" {
		return apperr.Validation("token and user name are required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.Set(KeyToken, cred.Token); err != nil {
		return apperr.StorageUnavailable("could not save session", err)
	}
	if err := p.store.Set(KeyUserName, cred.UserID); err != nil {
		// Never leave a token without its user behind
		_ = p.store.Delete(KeyToken)
		return apperr.StorageUnavailable("could not save session", err)
	}
	return nil
}

// Clear removes the credential
func (p *Provider) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.Delete(KeyUserName, KeyToken); err != nil {
		return apperr.StorageUnavailable("could not clear session", err)
	}
	return nil
}
