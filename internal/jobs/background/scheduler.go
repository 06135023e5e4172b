package background

import (
	"context"
	"time"

	"garagehub/internal/services"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

const (
	lowStockInterval     = 30 * time.Minute
	overdueSweepInterval = 1 * time.Hour

	// Unpaid invoices older than this are marked overdue by the sweep.
	invoiceGracePeriod = 30 * 24 * time.Hour
)

// Scheduler runs the periodic maintenance jobs: the low-stock report and
// the overdue invoice sweep.
type Scheduler struct {
	scheduler gocron.Scheduler
	parts     services.PartService
	billing   services.BillingService
}

func NewScheduler(parts services.PartService, billing services.BillingService) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{scheduler: s, parts: parts, billing: billing}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(lowStockInterval),
		gocron.NewTask(s.runLowStockSweep),
	)
	if err != nil {
		return err
	}

	_, err = s.scheduler.NewJob(
		gocron.DurationJob(overdueSweepInterval),
		gocron.NewTask(s.runOverdueSweep),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	log.Info("background scheduler started")
	return nil
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) runLowStockSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	parts, err := s.parts.ListBelowReorderLevel(ctx)
	if err != nil {
		log.WithError(err).Error("low stock sweep failed")
		return
	}
	if len(parts) > 0 {
		log.WithField("count", len(parts)).Warn("parts need reordering")
	}
}

func (s *Scheduler) runOverdueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	marked, err := s.billing.MarkOverdueInvoices(ctx, invoiceGracePeriod)
	if err != nil {
		log.WithError(err).Error("overdue invoice sweep failed")
		return
	}
	if marked > 0 {
		log.WithField("count", marked).Info("invoices marked overdue")
	}
}
