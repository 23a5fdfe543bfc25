package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newGitHubStub(t *testing.T) (*httptest.Server, *[]url.Values) {
	t.Helper()
	var exchanges []url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		exchanges = append(exchanges, r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "login": "octo", "name": "Octo Cat"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &exchanges
}

func TestOAuthProvider_FullFlow(t *testing.T) {
	stub, exchanges := newGitHubStub(t)

	var authURL string
	p := NewOAuthProvider(OAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		AuthURL:      stub.URL + "/authorize",
		TokenURL:     stub.URL + "/token",
		UserURL:      stub.URL + "/user",
		OpenBrowser:  func(u string) error { authURL = u; return nil },
	})
	defer p.Close()

	events := make(chan *Session, 1)
	sub := p.OnAuthStateChange(func(ev Event, s *Session) {
		if ev == EventSignedIn {
			events <- s
		}
	})
	defer sub.Unsubscribe()

	if err := p.SignInWithOAuth(context.Background(), ProviderGitHub, SignInOptions{RedirectTo: "http://127.0.0.1:0/auth/callback"}); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	q := u.Query()
	if q.Get("client_id") != "client" || q.Get("code_challenge_method") != "S256" || q.Get("code_challenge") == "" {
		t.Fatalf("unexpected auth url %s", authURL)
	}
	redirect := q.Get("redirect_uri")
	if !strings.HasPrefix(redirect, "http://127.0.0.1:") || strings.HasSuffix(redirect, ":0/auth/callback") {
		t.Fatalf("expected a bound loopback redirect, got %q", redirect)
	}

	bad, err := http.Get(redirect + "?code=c&state=wrong")
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected state mismatch rejection, got %d", bad.StatusCode)
	}

	resp, err := http.Get(redirect + "?code=the-code&state=" + url.QueryEscape(q.Get("state")))
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok callback, got %d", resp.StatusCode)
	}

	select {
	case s := <-events:
		if s.User.Login != "octo" || s.User.ID != "42" {
			t.Fatalf("unexpected session user %+v", s.User)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sign-in event")
	}
	if p.Session() == nil {
		t.Fatal("expected session to be stored")
	}
	if len(*exchanges) != 1 {
		t.Fatalf("expected one token exchange, got %d", len(*exchanges))
	}
	form := (*exchanges)[0]
	if form.Get("code") != "the-code" || form.Get("code_verifier") == "" || form.Get("client_id") != "client" {
		t.Fatalf("unexpected exchange form %v", form)
	}
}

func TestOAuthProvider_SignInErrors(t *testing.T) {
	tests := []struct {
		name     string
		cfg      OAuthConfig
		provider string
		redirect string
		wantErr  error
	}{
		{name: "unsupported provider", cfg: OAuthConfig{ClientID: "c"}, provider: "gitlab", redirect: "http://127.0.0.1:0/cb", wantErr: ErrUnsupportedProvider},
		{name: "missing client", cfg: OAuthConfig{}, provider: ProviderGitHub, redirect: "http://127.0.0.1:0/cb", wantErr: ErrNotConfigured},
		{name: "non loopback redirect", cfg: OAuthConfig{ClientID: "c"}, provider: ProviderGitHub, redirect: "https://example.com/cb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewOAuthProvider(tt.cfg)
			defer p.Close()
			err := p.SignInWithOAuth(context.Background(), tt.provider, SignInOptions{RedirectTo: tt.redirect})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestOAuthProvider_BrowserFailure(t *testing.T) {
	p := NewOAuthProvider(OAuthConfig{
		ClientID:    "c",
		OpenBrowser: func(string) error { return errors.New("no browser") },
	})
	defer p.Close()
	err := p.SignInWithOAuth(context.Background(), ProviderGitHub, SignInOptions{RedirectTo: "http://127.0.0.1:0/cb"})
	if err == nil || !strings.Contains(err.Error(), "no browser") {
		t.Fatalf("expected browser error, got %v", err)
	}
}

func TestOAuthProvider_FlowStopsItsTimeout(t *testing.T) {
	p := NewOAuthProvider(OAuthConfig{
		ClientID:        "c",
		CallbackTimeout: time.Hour,
		OpenBrowser:     func(string) error { return nil },
	})
	opts := SignInOptions{RedirectTo: "http://127.0.0.1:0/cb"}

	if err := p.SignInWithOAuth(context.Background(), ProviderGitHub, opts); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	first := p.flow
	if err := p.SignInWithOAuth(context.Background(), ProviderGitHub, opts); err != nil {
		t.Fatalf("second sign in: %v", err)
	}
	second := p.flow
	if second == nil || second == first {
		t.Fatal("expected the newer sign in to replace the pending flow")
	}
	if first.timer.Stop() {
		t.Fatal("replaced flow left its timeout running")
	}

	p.Close()
	if p.flow != nil {
		t.Fatal("expected no pending flow after Close")
	}
	if second.timer.Stop() {
		t.Fatal("closed flow left its timeout running")
	}
}

func TestOAuthProvider_TriggerIntegration(t *testing.T) {
	p := NewOAuthProvider(OAuthConfig{})
	r := &fakeRouter{}
	tr := NewTrigger(p, r, TriggerOptions{RedirectTo: "http://127.0.0.1:0/cb"})
	defer tr.Close()

	tr.Login(context.Background())
	if tr.Loading() {
		t.Fatal("unconfigured client must reset loading")
	}
	if r.refreshes != 1 {
		t.Fatalf("expected refresh, got %d", r.refreshes)
	}
}

func TestOAuthProvider_SignOut(t *testing.T) {
	p := NewOAuthProvider(OAuthConfig{})
	var got []Event
	sub := p.OnAuthStateChange(func(ev Event, _ *Session) { got = append(got, ev) })
	p.SignOut()
	if len(got) != 0 {
		t.Fatalf("no event without a session, got %v", got)
	}
	p.session = &Session{}
	p.SignOut()
	sub.Unsubscribe()
	sub.Unsubscribe()
	p.session = &Session{}
	p.SignOut()
	if len(got) != 1 || got[0] != EventSignedOut {
		t.Fatalf("expected a single sign-out event, got %v", got)
	}
}
