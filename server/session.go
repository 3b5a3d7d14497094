package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"endfind/config"
	"endfind/estimator"
	"endfind/observe"
	"endfind/relay"
)

// Session statuses.
const (
	StatusWaiting      = "waiting"
	StatusOK           = "ok"
	StatusNoPrediction = "no_prediction"
	StatusCleared      = "cleared"
)

// CommandClear resets the observation set.
const CommandClear = "clear"

// Update is published after every change to the session.
type Update struct {
	TS         int64                `json:"ts"`
	Count      int                  `json:"count"`
	Status     string               `json:"status"`
	OK         bool                 `json:"ok"`
	Prediction estimator.Prediction `json:"prediction"`
}

// Sink receives session updates.
type Sink interface {
	Publish(Update)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Update)

func (f SinkFunc) Publish(u Update) { f(u) }

// Session accumulates distinct observations and re-estimates after each new
// one. Estimation runs under the session lock, one at a time.
type Session struct {
	cfg   config.EstimatorConfig
	set   *observe.Set
	mu    sync.Mutex
	last  Update
	sinks []Sink
}

func NewSession(cfg config.EstimatorConfig) *Session {
	return &Session{
		cfg:  cfg,
		set:  observe.NewSet(),
		last: Update{Status: StatusWaiting},
	}
}

// AddSink registers a sink. Call before traffic starts.
func (s *Session) AddSink(k Sink) {
	s.sinks = append(s.sinks, k)
}

// HandleLine applies one line of input: either the clear command or an
// observation command.
func (s *Session) HandleLine(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.EqualFold(line, CommandClear) {
		s.Clear()
		return nil
	}
	obs, err := observe.ParseCommand(line)
	if err != nil {
		return fmt.Errorf("parse %q: %w", line, err)
	}
	_, err = s.Add(ctx, obs)
	return err
}

// Add stores obs and, if it is new and enough observations are present,
// re-runs the estimator. Repeats leave the session unchanged. If the
// estimate fails, obs is dropped again and the error returned.
func (s *Session) Add(ctx context.Context, obs estimator.Observation) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set.Add(obs) {
		return s.last, nil
	}
	u, err := s.estimate(ctx)
	if err != nil {
		// Not kept, so a resend is treated as new.
		s.set.Remove(obs)
		return s.last, err
	}
	s.publish(u)
	return u, nil
}

// Clear drops every observation.
func (s *Session) Clear() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set.Clear()
	u := Update{TS: time.Now().UnixMilli(), Status: StatusCleared}
	s.publish(u)
	return u
}

// Latest returns the most recent update.
func (s *Session) Latest() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Snapshot returns Latest for callers that only serialize it.
func (s *Session) Snapshot() interface{} {
	return s.Latest()
}

func (s *Session) Observations() []estimator.Observation {
	return s.set.Observations()
}

func (s *Session) estimate(ctx context.Context) (Update, error) {
	obs := s.set.Observations()
	u := Update{TS: time.Now().UnixMilli(), Count: len(obs), Status: StatusWaiting}
	if len(obs) < s.cfg.MinObservations {
		return u, nil
	}

	e, err := estimator.New(s.cfg.Sigma, obs, s.cfg.Options()...)
	if err != nil {
		return u, err
	}
	pred, ok, err := e.FindContext(ctx, s.cfg.SearchParams())
	if err != nil {
		return u, err
	}
	u.OK = ok
	u.Prediction = pred
	if ok {
		u.Status = StatusOK
		log.Printf("session: %d observations -> x=%.0f z=%.0f (%d%%)", len(obs), pred.X, pred.Z, pred.Percent())
	} else {
		u.Status = StatusNoPrediction
	}
	return u, nil
}

func (s *Session) publish(u Update) {
	s.last = u
	for _, k := range s.sinks {
		k.Publish(u)
	}
}

// Forwarder is the relay side of a session.
type Forwarder interface {
	Publish(relay.Result)
}

// RelaySink adapts a Forwarder to Sink.
func RelaySink(f Forwarder) Sink {
	return SinkFunc(func(u Update) {
		f.Publish(relay.Result{
			Count:      u.Count,
			Status:     u.Status,
			OK:         u.OK,
			Prediction: u.Prediction,
		})
	})
}
