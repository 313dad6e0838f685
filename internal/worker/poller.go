package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	dbm "pointfetch/internal/models/db_models"
)

// Pipeline is the slice of the order service the poller drives.
type Pipeline interface {
	Submit(ctx context.Context, orderID uuid.UUID) error
	PollOnce(ctx context.Context, orderID uuid.UUID) error
}

// OrderSource yields the orders still in flight.
type OrderSource interface {
	ListNonTerminal(ctx context.Context, limit int) ([]dbm.Order, error)
}

// Poller drives every non-terminal order forward on a fixed interval with a
// bounded worker pool. Ticks may overlap with stragglers from the previous
// tick; the in-flight set keeps each order single-flight here, and the
// store's conditional transitions make any remaining overlap harmless.
type Poller struct {
	orders    OrderSource
	pipeline  Pipeline
	interval  time.Duration
	workers   int
	scanLimit int

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewPoller(orders OrderSource, pipeline Pipeline, interval time.Duration, workers, scanLimit int) *Poller {
	if workers < 1 {
		workers = 1
	}
	if scanLimit < 1 {
		scanLimit = 100
	}
	return &Poller{
		orders:    orders,
		pipeline:  pipeline,
		interval:  interval,
		workers:   workers,
		scanLimit: scanLimit,
		inFlight:  make(map[uuid.UUID]struct{}),
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Println("fulfillment poller started")

	for {
		select {
		case <-ctx.Done():
			log.Println("fulfillment poller stopped")
			return
		case <-ticker.C:
			if err := p.tick(ctx); err != nil {
				log.Printf("poll tick failed: %v", err)
			}
		}
	}
}

func (p *Poller) tick(ctx context.Context) error {
	orders, err := p.orders.ListNonTerminal(ctx, p.scanLimit)
	if err != nil {
		return err
	}

	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup
	for i := range orders {
		order := orders[i]
		if !p.claim(order.ID) {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			defer p.release(order.ID)
			p.advance(ctx, order)
		}()
	}
	wg.Wait()
	return nil
}

func (p *Poller) advance(ctx context.Context, order dbm.Order) {
	var err error
	switch order.Status {
	case dbm.OrderStatusPending:
		err = p.pipeline.Submit(ctx, order.ID)
	case dbm.OrderStatusProcessing:
		err = p.pipeline.PollOnce(ctx, order.ID)
	}
	if err != nil {
		log.Printf("advance order %s: %v", order.ID, err)
	}
}

func (p *Poller) claim(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[id]; busy {
		return false
	}
	p.inFlight[id] = struct{}{}
	return true
}

func (p *Poller) release(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, id)
}
