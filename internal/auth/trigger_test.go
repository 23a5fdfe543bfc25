package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeProvider struct {
	mu       sync.Mutex
	err      error
	calls    []SignInOptions
	provider string
	subs     []func(Event, *Session)
	unsubbed int
	// during runs inside SignInWithOAuth, before it returns.
	during func()
}

func (p *fakeProvider) SignInWithOAuth(_ context.Context, provider string, opts SignInOptions) error {
	p.mu.Lock()
	p.calls = append(p.calls, opts)
	p.provider = provider
	during := p.during
	p.mu.Unlock()
	if during != nil {
		during()
	}
	return p.err
}

func (p *fakeProvider) OnAuthStateChange(fn func(Event, *Session)) Subscription {
	p.mu.Lock()
	p.subs = append(p.subs, fn)
	p.mu.Unlock()
	return SubscriptionFunc(func() {
		p.mu.Lock()
		p.unsubbed++
		p.mu.Unlock()
	})
}

func (p *fakeProvider) fire(ev Event, s *Session) {
	p.mu.Lock()
	subs := append(([]func(Event, *Session))(nil), p.subs...)
	p.mu.Unlock()
	for _, fn := range subs {
		fn(ev, s)
	}
}

type fakeRouter struct {
	mu        sync.Mutex
	pushes    []string
	refreshes int
	log       []string
}

func (r *fakeRouter) Push(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, path)
	r.log = append(r.log, "push:"+path)
}

func (r *fakeRouter) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshes++
	r.log = append(r.log, "refresh")
}

func TestTrigger_LoginFailureResetsLoadingAndRefreshes(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom")}
	r := &fakeRouter{}
	tr := NewTrigger(p, r, TriggerOptions{RedirectTo: "http://127.0.0.1:8787/auth/callback"})
	defer tr.Close()

	var loadingDuring bool
	p.during = func() { loadingDuring = tr.Loading() }

	tr.Login(context.Background())

	if !loadingDuring {
		t.Fatal("expected loading while the provider call runs")
	}
	if tr.Loading() {
		t.Fatal("expected loading to be false after a failed sign in")
	}
	if r.refreshes != 1 {
		t.Fatalf("expected one refresh, got %d", r.refreshes)
	}
	if len(p.calls) != 1 || p.calls[0].RedirectTo != "http://127.0.0.1:8787/auth/callback" || p.provider != ProviderGitHub {
		t.Fatalf("unexpected provider calls %+v (%q)", p.calls, p.provider)
	}
}

func TestTrigger_LoginSuccessStaysLoading(t *testing.T) {
	p := &fakeProvider{}
	r := &fakeRouter{}
	tr := NewTrigger(p, r, TriggerOptions{})
	defer tr.Close()

	tr.Login(context.Background())

	if !tr.Loading() {
		t.Fatal("expected loading to stay set until navigation")
	}
	if r.refreshes != 1 {
		t.Fatalf("expected refresh after a successful call, got %d", r.refreshes)
	}
	if len(r.pushes) != 0 {
		t.Fatalf("no navigation before the sign-in event, got %v", r.pushes)
	}
}

func TestTrigger_CodePresetsLoading(t *testing.T) {
	tr := NewTrigger(&fakeProvider{}, &fakeRouter{}, TriggerOptions{Code: "abc"})
	defer tr.Close()
	if !tr.Loading() {
		t.Fatal("expected loading when a code is present")
	}

	idle := NewTrigger(&fakeProvider{}, &fakeRouter{}, TriggerOptions{Code: "  "})
	defer idle.Close()
	if idle.Loading() {
		t.Fatal("blank code must not start loading")
	}
}

func TestTrigger_SignInEventNavigates(t *testing.T) {
	p := &fakeProvider{}
	r := &fakeRouter{}
	tr := NewTrigger(p, r, TriggerOptions{})

	p.fire(EventSignedOut, nil)
	if len(r.pushes) != 0 {
		t.Fatalf("sign out must not navigate, got %v", r.pushes)
	}
	p.fire(EventSignedIn, &Session{User: User{Login: "octo"}})
	if len(r.pushes) != 1 || r.pushes[0] != DefaultDestination {
		t.Fatalf("expected push to %s, got %v", DefaultDestination, r.pushes)
	}

	tr.Close()
	tr.Close()
	if p.unsubbed != 1 {
		t.Fatalf("expected one unsubscribe, got %d", p.unsubbed)
	}
	p.fire(EventSignedIn, nil)
	if len(r.pushes) != 1 {
		t.Fatalf("events after close must be dropped, got %v", r.pushes)
	}
	tr.Login(context.Background())
	if len(p.calls) != 0 {
		t.Fatal("login after close must not reach the provider")
	}
}

func TestTrigger_RefreshComesBeforeCallbackNavigation(t *testing.T) {
	p := &fakeProvider{}
	r := &fakeRouter{}
	tr := NewTrigger(p, r, TriggerOptions{Destination: "/inbox"})
	defer tr.Close()

	tr.Login(context.Background())
	p.fire(EventSignedIn, &Session{})

	want := []string{"refresh", "push:/inbox"}
	if len(r.log) != len(want) {
		t.Fatalf("got %v, want %v", r.log, want)
	}
	for i := range want {
		if r.log[i] != want[i] {
			t.Fatalf("got %v, want %v", r.log, want)
		}
	}
}

func TestTrigger_NilProvider(t *testing.T) {
	r := &fakeRouter{}
	tr := NewTrigger(nil, r, TriggerOptions{})
	tr.Login(context.Background())
	if tr.Loading() {
		t.Fatal("missing provider is a failed sign in")
	}
	if r.refreshes != 1 {
		t.Fatalf("expected refresh, got %d", r.refreshes)
	}
	tr.Close()
}
