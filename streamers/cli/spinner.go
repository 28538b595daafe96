package cli

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var defaultFrames = []string{"◐", "◓", "◑", "◒"}

// spinner handles the loading animation
type spinner struct {
	out     io.Writer
	frames  []string
	stop    chan struct{}
	stopped chan struct{}
	mu      sync.Mutex
	running bool
}

func newSpinner(out io.Writer, frames []string) *spinner {
	if len(frames) == 0 {
		frames = defaultFrames
	}
	return &spinner{out: out, frames: frames}
}

func (s *spinner) Start(message string) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	stop, stopped := s.stop, s.stopped
	s.mu.Unlock()

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.out, "\r%s%s%s %s", ColorGray, s.frames[i%len(s.frames)], ColorReset, message)
			select {
			case <-stop:
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, stopped := s.stop, s.stopped
	s.mu.Unlock()

	close(stop)
	<-stopped
}
