package codeviz

import (
	"context"
	"errors"
	"fmt"
)

// ErrSourceUnavailable wraps failures reported by a TextSource.
var ErrSourceUnavailable = errors.New("codeviz: text source unavailable")

const (
	// WelcomeText is shown before anything else arrives.
	WelcomeText = "// Welcome to Gemini 3D Code Visualizer...\n// Starting code generation..."

	// AutoStartText replaces DisplayText when auto mode starts.
	AutoStartText = "// Auto-code generation enabled...\n// Fetching code stream from Gemini...\n"

	// StreamErrorText is appended as the final fragment when a stream fails.
	StreamErrorText = "// Gemini API Error. Please check your API Key and network connection.\n// Auto-mode stopped."

	// PromptErrorText replaces DisplayText when a completion fails.
	PromptErrorText = "// Error generating code from prompt.\n// Please check your Gemini API key and network connection."

	promptPendingPrefix = "// Generating code for: "
)

// TextSource produces code text.
type TextSource interface {
	// Stream pushes fragments to emit, in order, until ctx is cancelled or
	// the source fails. Returning because ctx was cancelled is not an error.
	Stream(ctx context.Context, emit func(fragment string)) error

	// Complete returns code for a single prompt.
	Complete(ctx context.Context, prompt string) (string, error)
}

// streamSession runs one TextSource.Stream call on its own goroutine.
// Cancellation is the only way to stop it; already queued text stays.
type streamSession struct {
	cancel context.CancelFunc
	done   chan error
}

// startStream starts streaming src into sink. When the source fails the
// session appends StreamErrorText, cancels itself, and reports an error
// wrapping ErrSourceUnavailable.
func startStream(parent context.Context, src TextSource, sink Sink) *streamSession {
	ctx, cancel := context.WithCancel(parent)
	s := &streamSession{cancel: cancel, done: make(chan error, 1)}
	go func() {
		defer cancel()
		err := src.Stream(ctx, func(fragment string) {
			if ctx.Err() != nil {
				return
			}
			sink.Append(fragment)
		})
		if err != nil && ctx.Err() == nil {
			sink.Append(StreamErrorText)
			s.done <- fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
			return
		}
		s.done <- nil
	}()
	return s
}

// Stop cancels the stream. Safe to call more than once.
func (s *streamSession) Stop() {
	s.cancel()
}

// Poll reports, without blocking, whether the stream goroutine has finished
// and with which error.
func (s *streamSession) Poll() (finished bool, err error) {
	select {
	case err = <-s.done:
		return true, err
	default:
		return false, nil
	}
}

// promptSession runs one TextSource.Complete call on its own goroutine and
// delivers the result through Sink.Replace.
type promptSession struct {
	cancel context.CancelFunc
	done   chan error
}

func startPrompt(parent context.Context, src TextSource, prompt string, sink Sink) *promptSession {
	ctx, cancel := context.WithCancel(parent)
	s := &promptSession{cancel: cancel, done: make(chan error, 1)}
	go func() {
		defer cancel()
		text, err := src.Complete(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				s.done <- nil
				return
			}
			sink.Replace(PromptErrorText)
			s.done <- fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
			return
		}
		sink.Replace(text)
		s.done <- nil
	}()
	return s
}

// Stop abandons the request.
func (s *promptSession) Stop() {
	s.cancel()
}

// Poll reports, without blocking, whether the completion has been delivered.
func (s *promptSession) Poll() (finished bool, err error) {
	select {
	case err = <-s.done:
		return true, err
	default:
		return false, nil
	}
}
