package store

import (
	"context"
	"sync"
)

// Memory is an in-process Directory for tests and local development.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	media    []Media
}

func NewMemory() *Memory {
	return &Memory{profiles: make(map[string]*Profile)}
}

// Seed inserts or replaces a profile.
func (m *Memory) Seed(p Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.profiles[p.ID] = &cp
}

// MediaRecords returns a snapshot of inserted media rows.
func (m *Memory) MediaRecords() []Media {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Media, len(m.media))
	copy(out, m.media)
	return out
}

func (m *Memory) ProfileByID(_ context.Context, id string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) ProfileIDByUsername(_ context.Context, username string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles {
		if p.Username == username {
			return p.ID, nil
		}
	}
	return "", ErrNotFound
}

func (m *Memory) UpdateProfile(_ context.Context, id string, up ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return ErrNotFound
	}
	for otherID, other := range m.profiles {
		if otherID != id && other.Username == up.Username {
			return ErrUsernameTaken
		}
	}
	p.Username = up.Username
	p.Gender = up.Gender
	if up.AvatarURL != nil {
		p.AvatarURL = *up.AvatarURL
	}
	p.UpdatedAt = up.UpdatedAt
	return nil
}

func (m *Memory) InsertMedia(_ context.Context, rec Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.media = append(m.media, rec)
	return nil
}
