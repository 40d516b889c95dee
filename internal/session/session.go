package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Identity is the authenticated user record returned by user/login. Tokens
// are stored next to it but never embedded in the serialized identity file,
// mirroring the three separate storage keys the backend expects clients to
// keep (access token, refresh token, identity).
type Identity struct {
	Message   string `json:"message"`
	Username  string `json:"username"`
	GUID      string `json:"guid"`
	Role      string `json:"role"`
	UserID    int64  `json:"user_id"`
	AceUserID string `json:"ace_user_id"`
	AccountID string `json:"account_id"`
}

// Anonymous is the default identity before login or after logout.
func Anonymous() Identity {
	return Identity{}
}

const (
	accessTokenFile  = "token"
	refreshTokenFile = "refresh-token"
	identityFile     = "user.json"
)

// Store owns the authenticated identity and its durable copy on disk.
// All mutation goes through OnLogin/OnLogout/StoreTokens; views read
// snapshots and never get raw setters.
type Store struct {
	mu      sync.Mutex
	dir     string
	user    Identity
	access  string
	refresh string
}

// NewStore creates a store rooted at dir and hydrates it from any
// previously persisted session. A missing or unreadable directory leaves
// the anonymous identity in place; hydration never fails hard.
func NewStore(dir string) *Store {
	s := &Store{dir: dir, user: Anonymous()}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	if data, err := os.ReadFile(filepath.Join(s.dir, accessTokenFile)); err == nil {
		s.access = strings.TrimSpace(string(data))
	}
	if data, err := os.ReadFile(filepath.Join(s.dir, refreshTokenFile)); err == nil {
		s.refresh = strings.TrimSpace(string(data))
	}
	if data, err := os.ReadFile(filepath.Join(s.dir, identityFile)); err == nil {
		// Merge over defaults: unknown or absent fields keep their zero
		// values, a partial record never wipes what is already set.
		_ = json.Unmarshal(data, &s.user)
	}
}

// OnLogin persists the token pair and the raw identity payload, then merges
// the payload over the in-memory identity. The raw JSON is unmarshalled onto
// the existing struct so fields the server omitted are left untouched.
func (s *Store) OnLogin(accessToken, refreshToken string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, accessTokenFile), []byte(accessToken), 0o600); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, refreshTokenFile), []byte(refreshToken), 0o600); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, identityFile), payload, 0o600); err != nil {
		return err
	}

	s.access = accessToken
	s.refresh = refreshToken
	_ = json.Unmarshal(payload, &s.user)
	return nil
}

// OnLogout clears the in-memory identity and removes all three persisted
// keys. Calling it twice is harmless.
func (s *Store) OnLogout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = Anonymous()
	s.access = ""
	s.refresh = ""
	for _, name := range []string{accessTokenFile, refreshTokenFile, identityFile} {
		_ = os.Remove(filepath.Join(s.dir, name))
	}
}

// StoreTokens replaces the persisted token pair after a refresh. An empty
// refresh token keeps the previous one, matching servers that rotate only
// the access token.
func (s *Store) StoreTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = accessToken
	_ = os.MkdirAll(s.dir, 0o755)
	_ = os.WriteFile(filepath.Join(s.dir, accessTokenFile), []byte(accessToken), 0o600)
	if refreshToken != "" {
		s.refresh = refreshToken
		_ = os.WriteFile(filepath.Join(s.dir, refreshTokenFile), []byte(refreshToken), 0o600)
	}
}

// AccessToken returns the current bearer credential, or "".
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

// RefreshToken returns the current refresh credential, or "".
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

// Identity returns a copy of the current identity.
func (s *Store) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Authenticated is the route guard: true when any access credential is
// present. It is synchronous and has no side effects; the caller decides
// whether to redirect to the login view.
func (s *Store) Authenticated() bool {
	return s.AccessToken() != ""
}

// DefaultDir returns the per-user directory holding the persisted session.
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "trk")
	}
	return filepath.Join(base, "trk")
}
