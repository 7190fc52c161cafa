package payment

import (
	"context"
	"sync"
	"time"

	"github.com/figoaljufrie/roomstay/internal/service/ports"
	"github.com/wb-go/wbf/logger"
)

// statusApplier is the slice of the booking service the poller needs:
// apply one gateway status and learn whether reconciliation is done.
type statusApplier interface {
	ApplyGatewayStatus(ctx context.Context, bookingID string, status ports.GatewayStatus) (bool, error)
}

// Poller reconciles in-flight gateway bookings by polling transaction
// status at a bounded interval for a bounded number of attempts. One
// goroutine per booking; exhausting the budget leaves the booking
// as-is for webhook or manual resolution.
type Poller struct {
	gateway     ports.PaymentGateway
	applier     statusApplier
	interval    time.Duration
	maxAttempts int
	logger      logger.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
	baseCtx context.Context
}

func NewPoller(
	gateway ports.PaymentGateway,
	applier statusApplier,
	interval time.Duration,
	maxAttempts int,
	logger logger.Logger,
) *Poller {
	return &Poller{
		gateway:     gateway,
		applier:     applier,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger,
		cancels:     make(map[string]context.CancelFunc),
		baseCtx:     context.Background(),
	}
}

// Run parents all polling goroutines to ctx and blocks until it ends.
func (p *Poller) Run(ctx context.Context) {
	p.mu.Lock()
	p.baseCtx = ctx
	p.mu.Unlock()

	<-ctx.Done()
	p.wg.Wait()
}

// StartPolling launches reconciliation for one booking. Restarting an
// already-polled booking replaces the previous loop.
func (p *Poller) StartPolling(bookingID, paymentRef string) {
	p.mu.Lock()
	if cancel, ok := p.cancels[bookingID]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(p.baseCtx)
	p.cancels[bookingID] = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.stop(bookingID)
		p.poll(ctx, bookingID, paymentRef)
	}()
}

// Stop cancels the poll loop for one booking, if any.
func (p *Poller) Stop(bookingID string) {
	p.stop(bookingID)
}

func (p *Poller) stop(bookingID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cancel, ok := p.cancels[bookingID]; ok {
		cancel()
		delete(p.cancels, bookingID)
	}
}

func (p *Poller) poll(ctx context.Context, bookingID, paymentRef string) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := p.gateway.QueryStatus(ctx, paymentRef)
		if err != nil {
			// A transport error burns an attempt but never moves the
			// booking.
			p.logger.Warn("gateway status query failed",
				logger.String("booking_id", bookingID),
				logger.Int("attempt", attempt),
				logger.String("error", err.Error()),
			)
			continue
		}

		done, err := p.applier.ApplyGatewayStatus(ctx, bookingID, status)
		if err != nil {
			p.logger.Error("failed to apply gateway status",
				logger.String("booking_id", bookingID),
				logger.String("gateway_status", string(status)),
				logger.String("error", err.Error()),
			)
			continue
		}
		if done {
			return
		}
	}

	// Budget exhausted without a terminal gateway status: stop and
	// leave the booking for webhook or support resolution.
	p.logger.Warn("payment reconciliation undetermined",
		logger.String("booking_id", bookingID),
		logger.String("payment_ref", paymentRef),
		logger.Int("attempts", p.maxAttempts),
	)
}
