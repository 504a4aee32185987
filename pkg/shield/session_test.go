package shield

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func authBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode login: %v", err)
		}
		if body["password"] != "hunter22" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
			return
		}
		writeData(t, w, authPayload{
			User:  User{ID: "u1", Email: body["email"], Role: RoleDataProvider, OrganizationIDs: []string{"org-a"}},
			Token: "token-u1",
		})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, map[string]string{"message": "logged out"})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-u1" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token")
			return
		}
		writeData(t, w, User{ID: "u1", Email: "ana@acme.test", Role: RoleDataProvider})
	})
	mux.HandleFunc("PUT /users/u1", func(w http.ResponseWriter, r *http.Request) {
		var update ProfileUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			t.Fatalf("decode update: %v", err)
		}
		user := User{ID: "u1", Email: "ana@acme.test", Role: RoleDataProvider}
		if update.JobTitle != nil {
			user.JobTitle = *update.JobTitle
		}
		writeData(t, w, user)
	})
	return httptest.NewServer(mux)
}

func TestSessionLoginPersistsCredential(t *testing.T) {
	server := authBackend(t)
	defer server.Close()

	creds := &MemoryCredentialStore{}
	client := NewClient(server.URL)
	session := NewSession(client, creds)

	user, err := session.Login(context.Background(), "ana@acme.test", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user id = %q, want u1", user.ID)
	}

	state := session.State()
	if !state.IsAuthenticated || state.IsLoading || state.Err != "" {
		t.Errorf("unexpected state after login: %+v", state)
	}
	if token, _ := creds.Load(); token != "token-u1" {
		t.Errorf("persisted token = %q, want token-u1", token)
	}
	if client.Token() != "token-u1" {
		t.Errorf("client token = %q, want token-u1", client.Token())
	}
}

func TestSessionLoginFailureRecordsError(t *testing.T) {
	server := authBackend(t)
	defer server.Close()

	session := NewSession(NewClient(server.URL), nil)
	_, err := session.Login(context.Background(), "ana@acme.test", "wrong")
	if err == nil {
		t.Fatal("expected login to fail")
	}
	if KindOf(err) != KindAuthRequired {
		t.Errorf("kind = %v, want %v", KindOf(err), KindAuthRequired)
	}

	state := session.State()
	if state.IsAuthenticated || state.User != nil {
		t.Errorf("failed login must not authenticate: %+v", state)
	}
	if state.IsLoading {
		t.Error("loading flag should be cleared")
	}
	if state.Err == "" {
		t.Error("error should be recorded in state")
	}
}

func TestSessionResumeFromPersistedToken(t *testing.T) {
	server := authBackend(t)
	defer server.Close()

	creds := &MemoryCredentialStore{}
	if err := creds.Save("token-u1"); err != nil {
		t.Fatalf("seed credential: %v", err)
	}

	session := NewSession(NewClient(server.URL), creds)
	user, err := session.FetchCurrentUser(context.Background())
	if err != nil {
		t.Fatalf("FetchCurrentUser: %v", err)
	}
	if user.Email != "ana@acme.test" {
		t.Errorf("resumed user = %+v", user)
	}
}

func TestSessionLogoutClearsStateEvenOnRemoteFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "session store unavailable")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	creds := &MemoryCredentialStore{}
	_ = creds.Save("token-u1")
	client := NewClient(server.URL)
	session := NewSession(client, creds)
	session.finishUser(User{ID: "u1"})

	err := session.Logout(context.Background())
	if err == nil {
		t.Fatal("remote failure should still be reported")
	}

	state := session.State()
	if state.IsAuthenticated || state.User != nil || state.IsLoading || state.Err != "" {
		t.Errorf("logout must reset state unconditionally: %+v", state)
	}
	if client.Token() != "" {
		t.Error("bearer credential should be removed from the client")
	}
	if token, _ := creds.Load(); token != "" {
		t.Error("persisted credential should be cleared")
	}
}

func TestSessionUpdateProfileRequiresAuth(t *testing.T) {
	session := NewSession(NewClient("http://127.0.0.1:0"), nil)
	_, err := session.UpdateProfile(context.Background(), ProfileUpdate{})
	if err == nil {
		t.Fatal("expected an auth error")
	}
	if KindOf(err) != KindAuthRequired {
		t.Errorf("kind = %v, want %v", KindOf(err), KindAuthRequired)
	}
	if !strings.Contains(err.Error(), "UpdateProfile") {
		t.Errorf("error should name the operation, got %q", err.Error())
	}
}

func TestSessionUpdateProfile(t *testing.T) {
	server := authBackend(t)
	defer server.Close()

	session := NewSession(NewClient(server.URL), nil)
	if _, err := session.Login(context.Background(), "ana@acme.test", "hunter22"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	title := "Threat Analyst"
	user, err := session.UpdateProfile(context.Background(), ProfileUpdate{JobTitle: &title})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.JobTitle != "Threat Analyst" {
		t.Errorf("job title = %q, want Threat Analyst", user.JobTitle)
	}
	if got := session.State().User.JobTitle; got != "Threat Analyst" {
		t.Errorf("session user not refreshed, job title = %q", got)
	}
}
