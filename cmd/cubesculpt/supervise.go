package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cubesculpt/internal/app"
	"cubesculpt/internal/xr"
)

// session is one runtime instance plus how to tell a finished session from a failed one.
type session struct {
	rt xr.Runtime
	// finished reports a deliberate end: the script ran out or the user closed the window.
	finished func() bool
	close    func() error
}

// opener creates a fresh runtime for each attempt.
type opener func(ctx context.Context) (*session, error)

// supervisor rebuilds the session object after every fatal error, waiting backoff between
// attempts. It stops when ctx is done, when a session finishes deliberately, or after
// maxAttempts sessions when that is positive.
type supervisor struct {
	open        opener
	opts        app.Options
	backoff     time.Duration
	maxAttempts int
	log         *slog.Logger
	// report is called with every session object after its loop stops.
	report func(a *app.App)
}

func (s *supervisor) run(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		finished, err := s.once(ctx)
		switch {
		case ctx.Err() != nil:
			s.log.Info("shutting down", "attempts", attempt)
			return nil
		case finished:
			s.log.Info("session finished", "attempts", attempt)
			return nil
		}

		s.log.Error("session failed", "attempt", attempt, "fatal", xr.IsFatal(err), "err", err)
		if s.maxAttempts > 0 && attempt >= s.maxAttempts {
			return err
		}
		s.log.Info("restarting session", "backoff", s.backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.backoff):
		}
	}
}

// once runs a single session object from construction to teardown.
func (s *supervisor) once(ctx context.Context) (finished bool, err error) {
	sess, err := s.open(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := sess.close(); cerr != nil {
			s.log.Warn("closing runtime", "err", cerr)
		}
	}()

	a, err := app.New(sess.rt, s.opts, s.log)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			s.log.Warn("releasing session", "err", cerr)
		}
	}()

	err = a.Run()
	if s.report != nil {
		s.report(a)
	}
	if sess.finished() && errors.Is(err, xr.ErrSessionTerminated) {
		return true, nil
	}
	return false, err
}
