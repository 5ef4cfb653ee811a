// Package credstore is the client-side credential cache: a persisted
// {token, email} pair that a request-issuing process attaches to calls. It
// is deliberately an injected collaborator rather than process-global state.
package credstore

import "sync"

// Credentials is what a client holds between requests.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Store has opaque get/set/clear semantics.
type Store interface {
	Get() (Credentials, bool)
	Set(Credentials) error
	Clear() error
}

// Memory is an in-process store, used by tests and short-lived clients.
type Memory struct {
	mu    sync.Mutex
	creds Credentials
	set   bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get() (Credentials, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds, m.set
}

func (m *Memory) Set(creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
	m.set = true
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	m.set = false
	return nil
}
