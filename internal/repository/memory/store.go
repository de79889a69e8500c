// Package memory is an in-process implementation of the storage ports.
// It keeps the same guarantees the SQL stores get from their schema: unique
// emails, a unique (user, event) registration and capacity-checked inserts.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"eventsphere/internal/domain"
)

// Store holds users, events and registrations behind a single lock, the way a
// database serializes writers that touch the same rows.
type Store struct {
	mu sync.RWMutex

	users        map[string]*domain.User
	userByEmail  map[string]string
	events       map[string]*domain.Event
	regs         map[string]*domain.Registration
	regByPair    map[regKey]string
	regsPerEvent map[string]int

	newID func() string
}

type regKey struct {
	eventID string
	userID  string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:        make(map[string]*domain.User),
		userByEmail:  make(map[string]string),
		events:       make(map[string]*domain.Event),
		regs:         make(map[string]*domain.Registration),
		regByPair:    make(map[regKey]string),
		regsPerEvent: make(map[string]int),
		newID:        uuid.NewString,
	}
}

// Users returns the store's UserRepository.
func (s *Store) Users() domain.UserRepository { return &userRepository{s: s} }

// Events returns the store's EventRepository.
func (s *Store) Events() domain.EventRepository { return &eventRepository{s: s} }

// Registrations returns the store's RegistrationRepository.
func (s *Store) Registrations() domain.RegistrationRepository { return &registrationRepository{s: s} }
