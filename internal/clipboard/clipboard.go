// Package clipboard writes text to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	atotto "github.com/atotto/clipboard"
	"github.com/muesli/termenv"
)

var ErrUnavailable = errors.New("clipboard unavailable")

type Writer interface {
	Write(text string) error
}

// WriterFunc adapts a function to a Writer.
type WriterFunc func(text string) error

func (f WriterFunc) Write(text string) error { return f(text) }

type backend struct {
	name  string
	write func(text string) error
}

// System tries the native clipboard library, then the platform clipboard
// commands, and finally an OSC52 escape sequence on Terminal (when set).
type System struct {
	// Terminal receives the OSC52 fallback; nil disables it.
	Terminal io.Writer

	backends []backend
}

func NewSystem(terminal io.Writer) *System {
	s := &System{Terminal: terminal}
	s.backends = append(s.backends, backend{name: "native", write: func(text string) error {
		if atotto.Unsupported {
			return errors.New("no native clipboard")
		}
		return atotto.WriteAll(text)
	}})
	s.backends = append(s.backends, commandBackends()...)
	return s
}

func (s *System) Write(text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var errs []error
	for _, b := range s.backends {
		err := b.write(text)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
	}
	if s.Terminal != nil {
		termenv.NewOutput(s.Terminal).Copy(text)
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}

func commandBackends() []backend {
	cmd := func(name string, args ...string) backend {
		return backend{name: name, write: func(text string) error { return runClipboardCmd(name, args, text) }}
	}
	switch runtime.GOOS {
	case "darwin":
		return []backend{cmd("pbcopy")}
	case "windows":
		return []backend{
			cmd("cmd", "/c", "clip"),
			cmd("powershell", "-NoProfile", "-Command", "Set-Clipboard"),
		}
	default:
		// Wayland first, then X11.
		return []backend{
			cmd("wl-copy"),
			cmd("xclip", "-selection", "clipboard"),
			cmd("xsel", "--clipboard", "--input"),
		}
	}
}

func runClipboardCmd(name string, args []string, stdin string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	c := exec.Command(name, args...)
	c.Stdin = strings.NewReader(stdin)
	if err := c.Run(); err != nil {
		return errors.New(name + ": " + err.Error())
	}
	return nil
}
