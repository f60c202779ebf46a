package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// relaxSpinner animates a status line while a layout relaxes. The
// relaxation feeds it the step count through progress, which shows up next
// to the message. It stops on its own when ctx is done.
type relaxSpinner struct {
	out     io.Writer
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once

	mu    sync.Mutex
	steps int
	width int // widest line drawn so far
}

func newRelaxSpinner(ctx context.Context, out io.Writer, message string) *relaxSpinner {
	ctx, cancel := context.WithCancel(ctx)
	return &relaxSpinner{
		out:     out,
		message: message,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start draws a frame every spinnerInterval until Stop or cancellation.
func (s *relaxSpinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// progress records the relaxation's step count. It has the signature of
// pipeline.Progress.
func (s *relaxSpinner) progress(iterations int) {
	s.mu.Lock()
	s.steps = iterations
	s.mu.Unlock()
}

func (s *relaxSpinner) line(frame string) string {
	text := s.message
	if s.steps > 0 {
		text += fmt.Sprintf(" %d steps", s.steps)
	}
	return styleIconSpinner.Render(frame) + " " + StyleDim.Render(text)
}

func (s *relaxSpinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := s.line(frame)
	s.width = max(s.width, lipgloss.Width(line))
	fmt.Fprintf(s.out, "\r%s", line)
}

func (s *relaxSpinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// Stop ends the animation started by Start and clears the line. It
// returns the last step count reported and may be called more than once.
func (s *relaxSpinner) Stop() int {
	s.once.Do(s.cancel)
	<-s.stopped
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}
