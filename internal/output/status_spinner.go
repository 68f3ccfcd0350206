package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var statusSpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// StatusSpinner shows an animated status line while a wait is in progress.
// When the output is not a terminal it prints each message once per line
// instead of animating. Safe for concurrent updates.
type StatusSpinner struct {
	out      io.Writer
	animate  bool
	frameIdx int
	message  string
	stop     chan struct{}
	done     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewStatusSpinner creates a StatusSpinner writing to stderr.
func NewStatusSpinner() *StatusSpinner {
	return NewStatusSpinnerTo(os.Stderr)
}

// NewStatusSpinnerTo creates a StatusSpinner writing to w. It animates only
// when w is a terminal.
func NewStatusSpinnerTo(w io.Writer) *StatusSpinner {
	animate := false
	if f, ok := w.(*os.File); ok {
		animate = term.IsTerminal(int(f.Fd()))
	}
	return &StatusSpinner{out: w, animate: animate}
}

// Start begins showing message.
func (s *StatusSpinner) Start(message string) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.message = message
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	animate := s.animate
	s.mu.Unlock()

	if !animate {
		fmt.Fprintln(s.out, message)
		close(s.done)
		return
	}

	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		defer close(s.done)

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.render()
			}
		}
	}()
}

// Update changes the message.
func (s *StatusSpinner) Update(message string) {
	s.mu.Lock()
	changed := s.message != message
	s.message = message
	animate := s.animate
	s.mu.Unlock()

	if !animate {
		if changed {
			fmt.Fprintln(s.out, message)
		}
		return
	}
	s.render()
}

// Stop stops the spinner and clears the line.
func (s *StatusSpinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	animate := s.animate
	s.mu.Unlock()

	<-s.done
	if animate {
		fmt.Fprintf(s.out, "\r%80s\r", "")
	}
}

func (s *StatusSpinner) render() {
	s.mu.Lock()
	msg := s.message
	idx := s.frameIdx
	s.frameIdx = (s.frameIdx + 1) % len(statusSpinnerFrames)
	s.mu.Unlock()

	fmt.Fprintf(s.out, "\r%s %s          ", statusSpinnerFrames[idx], msg)
}
