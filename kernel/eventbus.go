// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"sync"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
)

// CommitteeEvent is the sum type published on the bus. Exactly one of the
// fields is meaningful per event; Kind discriminates.
type CommitteeEvent struct {
	Kind EventKind

	// EvaluationStarted
	Action     string
	Phase      string
	AgentCount int

	// PhaseCompleted
	ConsensusReached bool
	NextPhase        string

	// EarlyConsensus / FinalDecision
	Decision            ConsensusDecision
	ThresholdExceededBy float64
	Rounds              int
	TotalTimeMs         int64
	FromCache           bool
}

// EventKind enumerates the bus's event taxonomy.
type EventKind int

const (
	EventEvaluationStarted EventKind = iota
	EventPhaseCompleted
	EventEarlyConsensus
	EventFinalDecision
)

// subscriber is a bounded, drop-on-overflow mailbox for one listener.
type subscriber struct {
	ch chan CommitteeEvent
}

// EventBus fans out CommitteeEvents to subscribers. Delivery is FIFO per
// subscriber; there is no ordering guarantee across subscribers. A full
// subscriber queue drops the newest event rather than blocking the
// publisher.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[int]*subscriber
	nextID      int
	closed      bool
	queueSize   int

	log     log.Logger
	dropped prometheus.Counter
}

// NewEventBus creates a bus whose per-subscriber queue holds queueSize
// events before dropping newest. A nil logger defaults to a no-op logger
// (teacher convention, see log/noop.go).
func NewEventBus(queueSize int, logger log.Logger, reg prometheus.Registerer) *EventBus {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	b := &EventBus{
		subscribers: make(map[int]*subscriber),
		queueSize:   queueSize,
		log:         logger,
	}
	if reg != nil {
		b.dropped = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cognitive_core_eventbus_dropped_total",
			Help: "Events dropped because a subscriber's queue was full.",
		})
		_ = reg.Register(b.dropped)
	}
	return b
}

// Subscribe registers a new listener and returns its channel plus an
// unsubscribe function. The channel is closed when the bus closes or the
// caller unsubscribes.
func (b *EventBus) Subscribe() (<-chan CommitteeEvent, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, nil, ErrBusClosed
	}
	id := b.nextID
	b.nextID++
	sub := &subscriber{ch: make(chan CommitteeEvent, b.queueSize)}
	b.subscribers[id] = sub

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if s, ok := b.subscribers[id]; ok {
			close(s.ch)
			delete(b.subscribers, id)
		}
	}
	return sub.ch, unsub, nil
}

// Publish fans an event out to every subscriber, dropping it for any
// subscriber whose queue is currently full.
func (b *EventBus) Publish(evt CommitteeEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	for _, sub := range b.subscribers {
		select {
		case sub.ch <- evt:
		default:
			if b.dropped != nil {
				b.dropped.Inc()
			}
			b.log.Debug("kernel: dropped event, subscriber queue full")
		}
	}
	return nil
}

// Close shuts the bus down; further Publish/Subscribe calls return
// ErrBusClosed. Idempotent.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}
