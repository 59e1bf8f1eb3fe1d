// Package session tracks the current authenticated identity and tells
// observers when it changes.
package session

import "sync"

// Provider exposes the current identity ("" means guest) and transition
// callbacks fired on login and logout.
type Provider interface {
	Identity() string
	OnLogin(fn func(identity string))
	OnLogout(fn func())
}

// Manager is the in-process Provider implementation. It is constructed
// once per session and handed to consumers; nothing reaches into ambient
// global state.
type Manager struct {
	mu       sync.RWMutex
	identity string
	onLogin  []func(identity string)
	onLogout []func()
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Identity() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity
}

func (m *Manager) OnLogin(fn func(identity string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogin = append(m.onLogin, fn)
}

func (m *Manager) OnLogout(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = append(m.onLogout, fn)
}

// Login records the identity and notifies observers. A repeated login
// with the same state still notifies; observers guard their own
// once-per-transition behavior.
func (m *Manager) Login(identity string) {
	m.mu.Lock()
	m.identity = identity
	observers := make([]func(string), len(m.onLogin))
	copy(observers, m.onLogin)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(identity)
	}
}

// Logout clears the identity and notifies observers.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.identity = ""
	observers := make([]func(), len(m.onLogout))
	copy(observers, m.onLogout)
	m.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}
