package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler periodically runs the status report.
type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	spec       string
	statusFunc func(ctx context.Context) error
}

func New(spec string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		spec:   spec,
	}
}

// SetStatusFunc sets the report generator.
func (s *Scheduler) SetStatusFunc(f func(ctx context.Context) error) {
	s.statusFunc = f
}

func (s *Scheduler) Start() error {
	if s.statusFunc == nil {
		log.Println("status function not set, scheduler will not report")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.statusFunc(s.ctx); err != nil {
			log.Printf("status report failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("scheduler started, status reports on %q", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("scheduler stopped")
}
