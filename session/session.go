package session

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"
)

const (
	cookieName = "cafe-session"
	userIDKey  = "user_id"
	maxAge     = 7 * 24 * 60 * 60
)

// Manager keeps the logged-in user id and flash messages in a signed,
// encrypted cookie.
type Manager struct {
	store *sessions.CookieStore
}

// NewManager derives the signing and encryption keys from secret.
func NewManager(secret string, secure bool) (*Manager, error) {
	hashKey, err := deriveKey(secret, "session-auth")
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(secret, "session-encrypt")
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}, nil
}

func deriveKey(secret, info string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}

// get never fails: an unreadable cookie (tampered, or signed with an old
// secret) yields a fresh anonymous session.
func (m *Manager) get(r *http.Request) *sessions.Session {
	s, _ := m.store.Get(r, cookieName)
	return s
}

// Establish logs the user in for subsequent requests.
func (m *Manager) Establish(w http.ResponseWriter, r *http.Request, userID int) error {
	s := m.get(r)
	s.Values[userIDKey] = userID
	s.Options.MaxAge = maxAge
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// UserID returns the logged-in user id, if any.
func (m *Manager) UserID(r *http.Request) (int, bool) {
	id, ok := m.get(r).Values[userIDKey].(int)
	return id, ok
}

// Clear logs the user out. Clearing an anonymous session is a no-op.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	delete(s.Values, userIDKey)
	s.Options.MaxAge = -1
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// AddFlash queues a message for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, message string) error {
	s := m.get(r)
	s.AddFlash(message)
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("save flash: %w", err)
	}
	return nil
}

// Flashes pops the queued messages. The messages are returned even when the
// session could not be saved; they will then show up again on the next page.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) ([]string, error) {
	s := m.get(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	if err := s.Save(r, w); err != nil {
		return messages, fmt.Errorf("save popped flashes: %w", err)
	}
	return messages, nil
}
