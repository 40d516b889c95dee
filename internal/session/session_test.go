package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewStore_EmptyDirYieldsAnonymous(t *testing.T) {
	s := NewStore(t.TempDir())

	if s.Authenticated() {
		t.Fatalf("fresh store reports authenticated")
	}
	if got := s.Identity(); got != Anonymous() {
		t.Fatalf("fresh store identity = %+v, want anonymous", got)
	}
}

func TestNewStore_MissingDirDoesNotFail(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "does", "not", "exist"))
	if s.Authenticated() {
		t.Fatalf("store over missing dir reports authenticated")
	}
}

func TestOnLogin_PersistsAllThreeKeys(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	payload := []byte(`{"username":"jdoe","guid":"g-1","role":"employee","user_id":42,"ace_user_id":"ACE-7","account_id":"acme"}`)
	if err := s.OnLogin("acc-1", "ref-1", payload); err != nil {
		t.Fatalf("OnLogin: %v", err)
	}

	for _, name := range []string{"token", "refresh-token", "user.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to be persisted: %v", name, err)
		}
	}

	// A second store over the same dir must hydrate the session back.
	restored := NewStore(dir)
	if !restored.Authenticated() {
		t.Fatalf("restored store not authenticated")
	}
	if got := restored.AccessToken(); got != "acc-1" {
		t.Fatalf("restored access token = %q, want %q", got, "acc-1")
	}
	if got := restored.RefreshToken(); got != "ref-1" {
		t.Fatalf("restored refresh token = %q, want %q", got, "ref-1")
	}
	id := restored.Identity()
	if id.Username != "jdoe" || id.UserID != 42 || id.AceUserID != "ACE-7" {
		t.Fatalf("restored identity = %+v", id)
	}
}

func TestOnLogin_MergesOverExistingFields(t *testing.T) {
	s := NewStore(t.TempDir())

	first := []byte(`{"username":"jdoe","guid":"g-1","user_id":42}`)
	if err := s.OnLogin("a", "r", first); err != nil {
		t.Fatalf("OnLogin: %v", err)
	}
	// Partial payload: fields absent from the JSON keep their values.
	second := []byte(`{"username":"jdoe2"}`)
	if err := s.OnLogin("a2", "r2", second); err != nil {
		t.Fatalf("OnLogin: %v", err)
	}

	id := s.Identity()
	if id.Username != "jdoe2" {
		t.Fatalf("username = %q, want jdoe2", id.Username)
	}
	if id.GUID != "g-1" || id.UserID != 42 {
		t.Fatalf("merge dropped unrelated fields: %+v", id)
	}
}

func TestOnLogout_ClearsEverythingAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := s.OnLogin("acc", "ref", []byte(`{"username":"jdoe"}`)); err != nil {
		t.Fatalf("OnLogin: %v", err)
	}

	s.OnLogout()
	s.OnLogout() // second call must be harmless

	if s.Authenticated() {
		t.Fatalf("authenticated after logout")
	}
	if got := s.Identity(); got != Anonymous() {
		t.Fatalf("identity after logout = %+v, want anonymous", got)
	}
	for _, name := range []string{"token", "refresh-token", "user.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("%s still present after logout", name)
		}
	}
}

func TestStoreTokens_EmptyRefreshKeepsPrevious(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.OnLogin("acc", "ref", []byte(`{}`)); err != nil {
		t.Fatalf("OnLogin: %v", err)
	}

	s.StoreTokens("acc-2", "")

	if got := s.AccessToken(); got != "acc-2" {
		t.Fatalf("access token = %q, want acc-2", got)
	}
	if got := s.RefreshToken(); got != "ref" {
		t.Fatalf("refresh token = %q, want ref (unrotated)", got)
	}
}
