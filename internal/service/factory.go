package service

import (
	"time"

	"basegraph.app/courier/common/clock"
	"basegraph.app/courier/common/id"
	"basegraph.app/courier/internal/cache"
	"basegraph.app/courier/internal/retention"
)

// Deps carries the collaborators shared by every service.
type Deps struct {
	Stores   StoreProvider
	TxRunner TxRunner
	Cache    cache.Cache
	CacheTTL time.Duration
	Fanout   *Fanout
	Policies *retention.Policies
	// SupportRoster is notified on every escalation.
	SupportRoster []int64
	Clock         clock.Clock
	NewID         id.Generator
	Metrics       *Metrics
}

type Services struct {
	deps Deps
}

func NewServices(deps Deps) *Services {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.NewID == nil {
		deps.NewID = id.Default
	}
	if deps.Policies == nil {
		deps.Policies = retention.DefaultPolicies()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}
	if deps.Fanout == nil {
		deps.Fanout = NewFanout(deps.Cache, nil, nil, nil, deps.Metrics)
	}
	return &Services{deps: deps}
}

func (s *Services) Threads() ThreadService {
	return &threadService{
		stores:   s.deps.Stores,
		txRunner: s.deps.TxRunner,
		cache:    s.deps.Cache,
		cacheTTL: s.deps.CacheTTL,
		fanout:   s.deps.Fanout,
		policies: s.deps.Policies,
		clock:    s.deps.Clock,
		newID:    s.deps.NewID,
	}
}

func (s *Services) Messages() MessageService {
	return &messageService{
		stores:   s.deps.Stores,
		txRunner: s.deps.TxRunner,
		cache:    s.deps.Cache,
		cacheTTL: s.deps.CacheTTL,
		fanout:   s.deps.Fanout,
		clock:    s.deps.Clock,
		newID:    s.deps.NewID,
		metrics:  s.deps.Metrics,
	}
}

func (s *Services) Support() SupportService {
	return &supportService{
		stores:   s.deps.Stores,
		txRunner: s.deps.TxRunner,
		cache:    s.deps.Cache,
		cacheTTL: s.deps.CacheTTL,
		fanout:   s.deps.Fanout,
		roster:   s.deps.SupportRoster,
		clock:    s.deps.Clock,
		newID:    s.deps.NewID,
		metrics:  s.deps.Metrics,
	}
}
