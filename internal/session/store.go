// Package session persists the authenticated identity and its tokens across
// CLI invocations and notifies observers when the session changes.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/paperdesk/paperdesk/internal/model"
)

const (
	currentUserKey = "currentUser"
	credentialsKey = "credentials"
)

// Credentials holds the token pair issued at login.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Observer is called with the new identity whenever the session changes. A
// zero identity means logged out.
type Observer func(model.Identity)

// Store is a badger-backed session store. Observers are notified
// synchronously, in subscription order, after the change is persisted.
type Store struct {
	db *badger.DB

	mu        sync.Mutex
	observers []Observer
}

// NewStore opens the session database under dir. An empty dir opens an
// in-memory store, which is what tests use.
func NewStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithLoggingLevel(badger.WARNING)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Subscribe registers an observer and immediately invokes it with the
// current identity, so new views render the present state without waiting
// for a change.
func (s *Store) Subscribe(observer Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()

	observer(s.CurrentUser())
}

// SetCurrentUser persists the identity and its credentials, then notifies
// observers.
func (s *Store) SetCurrentUser(identity model.Identity, credentials Credentials) error {
	userData, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	credData, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(currentUserKey), userData); err != nil {
			return err
		}
		return txn.Set([]byte(credentialsKey), credData)
	})
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.notify(identity)
	return nil
}

// CurrentUser returns the stored identity. A missing or unreadable record
// reads as logged out rather than failing.
func (s *Store) CurrentUser() model.Identity {
	data, err := s.get(currentUserKey)
	if err != nil {
		return model.Identity{}
	}

	var identity model.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return model.Identity{}
	}
	return identity
}

// Credentials returns the stored token pair, if any.
func (s *Store) Credentials() (Credentials, bool) {
	data, err := s.get(credentialsKey)
	if err != nil {
		return Credentials{}, false
	}

	var credentials Credentials
	if err := json.Unmarshal(data, &credentials); err != nil {
		return Credentials{}, false
	}
	return credentials, true
}

// AccessToken returns the stored access token or an empty string. It
// satisfies the API client's credential source.
func (s *Store) AccessToken() string {
	credentials, ok := s.Credentials()
	if !ok {
		return ""
	}
	return credentials.AccessToken
}

// IsLoggedIn reports whether an identity is stored.
func (s *Store) IsLoggedIn() bool {
	return !s.CurrentUser().IsZero()
}

// Logout removes the stored session and notifies observers with a zero
// identity. Logging out while logged out is a no-op.
func (s *Store) Logout() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(currentUserKey)); err != nil {
			return err
		}
		return txn.Delete([]byte(credentialsKey))
	})
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.notify(model.Identity{})
	return nil
}

func (s *Store) get(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}
	return data, err
}

func (s *Store) notify(identity model.Identity) {
	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, observer := range observers {
		observer(identity)
	}
}
