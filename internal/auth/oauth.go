package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	GitHubAuthURL  = "https://github.com/login/oauth/authorize"
	GitHubTokenURL = "https://github.com/login/oauth/access_token"
	GitHubUserURL  = "https://api.github.com/user"
)

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	Scopes       []string

	// Endpoints default to GitHub.
	AuthURL  string
	TokenURL string
	UserURL  string

	// HTTPClient is used for the token exchange and profile fetch.
	HTTPClient *http.Client
	// OpenBrowser launches the authorization URL. Defaults to OpenBrowser.
	OpenBrowser func(u string) error
	// CallbackTimeout bounds how long the loopback server waits for the
	// provider redirect.
	CallbackTimeout time.Duration
	Logger          zerolog.Logger
}

// OAuthProvider runs an authorization code flow with PKCE against a loopback
// redirect and publishes the resulting session to its subscribers.
type OAuthProvider struct {
	cfg OAuthConfig

	mu      sync.Mutex
	subs    map[int]func(Event, *Session)
	nextSub int
	session *Session
	flow    *pendingFlow
}

func NewOAuthProvider(cfg OAuthConfig) *OAuthProvider {
	if cfg.AuthURL == "" {
		cfg.AuthURL = GitHubAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = GitHubTokenURL
	}
	if cfg.UserURL == "" {
		cfg.UserURL = GitHubUserURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"read:user", "user:email"}
	}
	if cfg.OpenBrowser == nil {
		cfg.OpenBrowser = OpenBrowser
	}
	if cfg.CallbackTimeout <= 0 {
		cfg.CallbackTimeout = 5 * time.Minute
	}
	return &OAuthProvider{cfg: cfg, subs: map[int]func(Event, *Session){}}
}

var _ Provider = (*OAuthProvider)(nil)

func (p *OAuthProvider) Session() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

func (p *OAuthProvider) OnAuthStateChange(fn func(Event, *Session)) Subscription {
	if fn == nil {
		return SubscriptionFunc(nil)
	}
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return SubscriptionFunc(func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	})
}

func (p *OAuthProvider) publish(ev Event, s *Session) {
	p.mu.Lock()
	fns := make([]func(Event, *Session), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(ev, s)
	}
}

// SignOut drops the current session and notifies subscribers.
func (p *OAuthProvider) SignOut() {
	p.mu.Lock()
	had := p.session != nil
	p.session = nil
	p.mu.Unlock()
	if had {
		p.publish(EventSignedOut, nil)
	}
}

// SignInWithOAuth starts the loopback callback server and opens the browser
// on the provider's consent page. It returns once the browser was launched;
// the outcome arrives later as an auth state event.
func (p *OAuthProvider) SignInWithOAuth(ctx context.Context, provider string, opts SignInOptions) error {
	if provider != ProviderGitHub {
		return fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	if strings.TrimSpace(p.cfg.ClientID) == "" {
		return ErrNotConfigured
	}
	redirect, err := url.Parse(strings.TrimSpace(opts.RedirectTo))
	if err != nil {
		return fmt.Errorf("parse redirect: %w", err)
	}
	if redirect.Scheme != "http" || !isLoopback(redirect.Hostname()) {
		return fmt.Errorf("redirect must be an http loopback url, got %q", opts.RedirectTo)
	}
	if redirect.Path == "" {
		redirect.Path = DefaultCallback
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", redirect.Host)
	if err != nil {
		return fmt.Errorf("listen for callback: %w", err)
	}
	// Port 0 picks a free port; the provider must see the real one.
	redirect.Host = ln.Addr().String()

	conf := &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.cfg.AuthURL,
			TokenURL:  p.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirect.String(),
		Scopes:      p.cfg.Scopes,
	}
	flow := &pendingFlow{
		provider: p,
		conf:     conf,
		state:    uuid.NewString(),
		verifier: oauth2.GenerateVerifier(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, flow.handleCallback)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	flow.server = srv

	p.mu.Lock()
	prev := p.flow
	p.flow = flow
	p.mu.Unlock()
	if prev != nil {
		prev.stop(false)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.cfg.Logger.Error().Err(err).Msg("oauth callback server")
		}
	}()
	flow.mu.Lock()
	if !flow.stopped {
		flow.timer = time.AfterFunc(p.cfg.CallbackTimeout, func() { flow.stop(true) })
	}
	flow.mu.Unlock()

	authURL := conf.AuthCodeURL(flow.state, oauth2.S256ChallengeOption(flow.verifier))
	p.cfg.Logger.Debug().Str("redirect", conf.RedirectURL).Msg("opening browser for sign in")
	if err := p.cfg.OpenBrowser(authURL); err != nil {
		flow.stop(true)
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

// Close stops any pending callback server.
func (p *OAuthProvider) Close() {
	p.mu.Lock()
	flow := p.flow
	p.mu.Unlock()
	if flow != nil {
		flow.stop(false)
	}
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

type pendingFlow struct {
	provider *OAuthProvider
	conf     *oauth2.Config
	state    string
	verifier string
	server   *http.Server

	mu      sync.Mutex
	done    bool
	timer   *time.Timer
	stopped bool
}

// stop cancels the callback timeout and takes the server down, draining
// in-flight requests when graceful. Later calls do nothing.
func (f *pendingFlow) stop(graceful bool) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	if f.timer != nil {
		f.timer.Stop()
	}
	f.mu.Unlock()

	p := f.provider
	p.mu.Lock()
	if p.flow == f {
		p.flow = nil
	}
	p.mu.Unlock()

	if !graceful {
		_ = f.server.Close()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = f.server.Shutdown(ctx)
}

func (f *pendingFlow) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	log := f.provider.cfg.Logger
	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		log.Error().Str("error", errParam).Str("description", q.Get("error_description")).Msg("provider denied sign in")
		writePage(w, http.StatusBadRequest, "Sign in failed", errParam)
		go f.stop(true)
		return
	}
	code := q.Get("code")
	if code == "" || q.Get("state") == "" {
		http.Error(w, "missing code or state", http.StatusBadRequest)
		return
	}
	if q.Get("state") != f.state {
		log.Error().Err(ErrStateMismatch).Msg("oauth callback rejected")
		http.Error(w, ErrStateMismatch.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		http.Error(w, "sign in already completed", http.StatusConflict)
		return
	}
	f.done = true
	f.mu.Unlock()

	sess, err := f.complete(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("oauth exchange failed")
		writePage(w, http.StatusBadGateway, "Sign in failed", err.Error())
		go f.stop(true)
		return
	}

	writePage(w, http.StatusOK, "Signed in", "You can close this tab and return to the terminal.")
	go f.stop(true)

	p := f.provider
	p.mu.Lock()
	p.session = sess
	p.mu.Unlock()
	p.publish(EventSignedIn, sess)
}

func (f *pendingFlow) complete(ctx context.Context, code string) (*Session, error) {
	if hc := f.provider.cfg.HTTPClient; hc != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
	}
	tok, err := f.conf.Exchange(ctx, code, oauth2.VerifierOption(f.verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	user, err := fetchUser(ctx, f.conf.Client(ctx, tok), f.provider.cfg.UserURL)
	if err != nil {
		return nil, err
	}
	return &Session{Provider: ProviderGitHub, User: user, Token: tok}, nil
}

func fetchUser(ctx context.Context, client *http.Client, userURL string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userURL, nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("fetch profile: status %d", resp.StatusCode)
	}
	var payload struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return User{}, fmt.Errorf("decode profile: %w", err)
	}
	if payload.ID == 0 && payload.Login == "" {
		return User{}, errors.New("profile has no id")
	}
	return User{
		ID:        strconv.FormatInt(payload.ID, 10),
		Login:     payload.Login,
		Name:      payload.Name,
		Email:     payload.Email,
		AvatarURL: payload.AvatarURL,
	}, nil
}

func writePage(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "<!doctype html><title>%s</title><h1>%s</h1><p>%s</p>\n",
		html.EscapeString(title), html.EscapeString(title), html.EscapeString(body))
}
