package console

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultRefreshDelay is the wait between a successful write and the first reload.
const DefaultRefreshDelay = 100 * time.Millisecond

// RefreshPolicy controls how Save waits for the written value to show up.
// With an acknowledgment source the first reload waits for the change event
// (up to AckTimeout); otherwise it waits Delay. Reloads then repeat every
// PollInterval until the value is visible, MaxPollAttempts loads at most.
type RefreshPolicy struct {
	Delay           time.Duration
	AckTimeout      time.Duration
	PollInterval    time.Duration
	MaxPollAttempts int
}

// DefaultRefreshPolicy waits 100ms and polls up to five times.
func DefaultRefreshPolicy() RefreshPolicy {
	return RefreshPolicy{
		Delay:           DefaultRefreshDelay,
		AckTimeout:      2 * time.Second,
		PollInterval:    200 * time.Millisecond,
		MaxPollAttempts: 5,
	}
}

func (rp RefreshPolicy) withDefaults() RefreshPolicy {
	if rp.Delay < 0 {
		rp.Delay = 0
	}
	if rp.PollInterval < 0 {
		rp.PollInterval = 0
	}
	if rp.MaxPollAttempts < 1 {
		rp.MaxPollAttempts = 1
	}
	if rp.AckTimeout <= 0 {
		rp.AckTimeout = DefaultRefreshPolicy().AckTimeout
	}
	return rp
}

func (p *Page) refreshAfterSave(ctx context.Context, ack *Ack, name, value string) {
	log := p.logger.With(zap.String("name", name))

	if ack != nil {
		if err := p.awaitAck(ctx, ack); err != nil {
			log.Debug("No acknowledgment for saved value, reloading anyway", zap.Error(err))
		}
	} else if err := sleep(ctx, p.policy.Delay); err != nil {
		log.Warn("Refresh interrupted", zap.Error(err))
		p.clearLoading()
		return
	}

	for attempt := 1; attempt <= p.policy.MaxPollAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, p.policy.PollInterval); err != nil {
				log.Warn("Refresh interrupted", zap.Error(err))
				p.clearLoading()
				return
			}
		}
		if err := p.Search(ctx); err == nil && p.shows(name, value) {
			log.Debug("Saved value visible", zap.Int("attempt", attempt))
			return
		}
	}
	log.Warn("Saved value not visible after reloading",
		zap.Int("attempts", p.policy.MaxPollAttempts),
		zap.String("value", value),
	)
}

func (p *Page) awaitAck(ctx context.Context, ack *Ack) error {
	waitCtx, cancel := context.WithTimeout(ctx, p.policy.AckTimeout)
	defer cancel()
	return ack.Wait(waitCtx)
}

func (p *Page) clearLoading() {
	p.mu.Lock()
	p.state.Loading = false
	p.mu.Unlock()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
