package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

type TriggerOptions struct {
	// Provider defaults to ProviderGitHub.
	Provider string
	// RedirectTo is where the provider sends the user back with a code.
	RedirectTo string
	// Destination is pushed on the router after a sign-in event.
	Destination string
	// Code is an authorization code already present at startup. A non-empty
	// code starts the trigger in the loading state.
	Code   string
	Logger zerolog.Logger
}

// Trigger starts a sign-in and follows the provider's auth events. It is
// idle or loading; loading only returns to idle when sign-in fails.
type Trigger struct {
	provider Provider
	router   Router
	opts     TriggerOptions

	mu      sync.Mutex
	loading bool
	closed  bool
	sub     Subscription
}

// NewTrigger subscribes to provider events right away. Call Close to release
// the subscription.
func NewTrigger(provider Provider, router Router, opts TriggerOptions) *Trigger {
	if strings.TrimSpace(opts.Provider) == "" {
		opts.Provider = ProviderGitHub
	}
	if strings.TrimSpace(opts.Destination) == "" {
		opts.Destination = DefaultDestination
	}
	t := &Trigger{
		provider: provider,
		router:   router,
		opts:     opts,
		loading:  strings.TrimSpace(opts.Code) != "",
	}
	if provider != nil {
		sub := provider.OnAuthStateChange(t.onAuthStateChange)
		t.mu.Lock()
		t.sub = sub
		t.mu.Unlock()
	}
	return t
}

func (t *Trigger) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// Login starts the OAuth flow. Errors are logged, never returned. The router
// is refreshed once the provider call returns, on success and failure alike.
func (t *Trigger) Login(ctx context.Context) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.loading = true
	t.mu.Unlock()

	var err error
	if t.provider == nil {
		err = ErrNotConfigured
	} else {
		err = t.provider.SignInWithOAuth(ctx, t.opts.Provider, SignInOptions{RedirectTo: t.opts.RedirectTo})
	}
	if err != nil {
		t.mu.Lock()
		t.loading = false
		t.mu.Unlock()
		t.opts.Logger.Error().Err(err).Str("provider", t.opts.Provider).Msg("sign in failed")
	}
	if t.router != nil {
		t.router.Refresh()
	}
}

func (t *Trigger) onAuthStateChange(ev Event, s *Session) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed || ev != EventSignedIn {
		return
	}
	l := t.opts.Logger.Info()
	if s != nil {
		l = l.Str("user", s.User.Login)
	}
	l.Msg("signed in")
	if t.router != nil {
		t.router.Push(t.opts.Destination)
	}
}

// Close unsubscribes from the provider. Events delivered afterwards are
// dropped. Safe to call more than once.
func (t *Trigger) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	sub := t.sub
	t.sub = nil
	t.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}
