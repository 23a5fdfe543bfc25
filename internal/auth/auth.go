// Package auth holds the sign-in trigger and the OAuth provider it drives.
package auth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

type Event string

const (
	EventSignedIn  Event = "SIGNED_IN"
	EventSignedOut Event = "SIGNED_OUT"
)

const (
	ProviderGitHub = "github"

	DefaultDestination = "/playground"
	DefaultCallback    = "/auth/callback"
)

var (
	ErrStateMismatch       = errors.New("oauth state mismatch")
	ErrUnsupportedProvider = errors.New("unsupported oauth provider")
	ErrNotConfigured       = errors.New("oauth client is not configured")
)

type User struct {
	ID        string `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type Session struct {
	Provider string        `json:"provider"`
	User     User          `json:"user"`
	Token    *oauth2.Token `json:"-"`
}

type SignInOptions struct {
	RedirectTo string
}

// Provider is an external sign-in service.
type Provider interface {
	SignInWithOAuth(ctx context.Context, provider string, opts SignInOptions) error
	OnAuthStateChange(fn func(Event, *Session)) Subscription
}

type Subscription interface {
	Unsubscribe()
}

type Router interface {
	Push(path string)
	Refresh()
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}
