// Package session keeps the per-user training state of the bot.
package session

import (
	"sync"

	"verbal-trainer/internal/speech"
	"verbal-trainer/internal/trainer"
)

type State struct {
	Module  trainer.Module
	Topic   string
	Capture speech.Capture
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]State
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]State)}
}

// Get returns a copy of the user's state; new users start in the general module.
func (m *Manager) Get(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.get(userID)
}

func (m *Manager) get(userID int64) State {
	st, ok := m.sessions[userID]
	if !ok {
		return State{Module: trainer.General}
	}
	return st
}

// SetModule switches module and clears the topic of the previous one.
func (m *Manager) SetModule(userID int64, module trainer.Module) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.get(userID)
	st.Module = module
	st.Topic = ""
	m.sessions[userID] = st
}

func (m *Manager) SetTopic(userID int64, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.get(userID)
	st.Topic = topic
	m.sessions[userID] = st
}

// UpdateCapture applies fn to the user's capture. The new value is stored
// only when fn succeeds.
func (m *Manager) UpdateCapture(userID int64, fn func(speech.Capture) (speech.Capture, error)) (speech.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.get(userID)
	next, err := fn(st.Capture)
	if err != nil {
		return st.Capture, err
	}
	st.Capture = next
	m.sessions[userID] = st
	return next, nil
}

func (m *Manager) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
