package tui

import (
	"sync"

	"inkmail-cli/internal/auth"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	pathLogin      = "/"
	pathPlayground = auth.DefaultDestination
)

type routeMsg struct{ path string }

type refreshMsg struct{}

// programRouter turns router calls into messages for the update loop. It may
// be called from any goroutine, including the OAuth callback server.
type programRouter struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

var _ auth.Router = (*programRouter)(nil)

func (r *programRouter) attach(send func(tea.Msg)) {
	r.mu.Lock()
	r.send = send
	r.mu.Unlock()
}

func (r *programRouter) dispatch(msg tea.Msg) {
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (r *programRouter) Push(path string) { r.dispatch(routeMsg{path: path}) }

func (r *programRouter) Refresh() { r.dispatch(refreshMsg{}) }
