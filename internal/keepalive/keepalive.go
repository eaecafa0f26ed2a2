// Package keepalive periodically calls the service's own public URL so that hosting
// platforms which idle inactive instances keep it warm.
package keepalive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/giannis84/recipe-favourites/internal/logging"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule fires every 14 minutes.
const DefaultSchedule = "*/14 * * * *"

const (
	defaultPingTimeout = 10 * time.Second

	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder receives the outcome of every ping. *metrics.Metrics implements it.
type Recorder interface {
	ObserveKeepAlive(result string)
}

// Pinger issues a single GET against URL.
type Pinger struct {
	URL      string
	Client   *http.Client
	Logger   *slog.Logger
	Recorder Recorder
}

// Ping sends one GET request. Any status other than 200 is reported as an error.
func (p *Pinger) Ping(ctx context.Context) error {
	err := p.ping(ctx)

	result := ResultSuccess
	log := logging.With(p.logger()).Layer("keepalive").Op("Ping").Str("url", p.URL)
	if err != nil {
		result = ResultFailure
		log.Err(err).Warn("keep-alive request failed")
	} else {
		log.Info("keep-alive request sent successfully")
	}
	if p.Recorder != nil {
		p.Recorder.ObserveKeepAlive(result)
	}
	return err
}

func (p *Pinger) ping(ctx context.Context) error {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: defaultPingTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return fmt.Errorf("building keep-alive request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending keep-alive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("keep-alive request returned status %d", resp.StatusCode)
	}
	return nil
}

func (p *Pinger) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Scheduler runs a Pinger on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	entryID cron.EntryID
}

// Start validates schedule, registers pinger on it and starts the scheduler.
// An empty schedule uses DefaultSchedule.
func Start(schedule string, pinger *Pinger) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if pinger == nil || pinger.URL == "" {
		return nil, fmt.Errorf("keep-alive pinger requires a URL")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	id, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
		defer cancel()
		_ = pinger.Ping(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("parsing keep-alive schedule %q: %w", schedule, err)
	}
	c.Start()

	logging.With(pinger.logger()).Layer("keepalive").Str("schedule", schedule).Str("url", pinger.URL).
		Time("next_run", c.Entry(id).Next).Info("keep-alive job started")
	return &Scheduler{cron: c, entryID: id}, nil
}

// Next returns the time of the next scheduled ping.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// Stop stops scheduling new pings and waits for a running one to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
