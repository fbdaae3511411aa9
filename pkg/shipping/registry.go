package shipping

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// Registry manages registered shipping systems by case-insensitive name.
type Registry struct {
	systems map[string]System
	mu      sync.RWMutex
}

// NewRegistry creates a new system registry.
func NewRegistry() *Registry {
	return &Registry{
		systems: make(map[string]System),
	}
}

// Register adds a system to the registry.
func (r *Registry) Register(s System) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systems[strings.ToLower(s.Name())] = s
}

// Get returns a system by name.
func (r *Registry) Get(name string) (System, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.systems[strings.ToLower(name)]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
}

// All returns all registered systems.
func (r *Registry) All() []System {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]System, 0, len(r.systems))
	for _, s := range r.systems {
		result = append(result, s)
	}
	return result
}

// Names returns the names of all registered systems.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.systems))
	for name := range r.systems {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered systems.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.systems)
}

// EstimateAll fetches cost estimates through the given sessions in
// parallel. Errors from individual providers are collected but don't
// fail the entire request.
func (r *Registry) EstimateAll(ctx context.Context, sessions []*Session, shipment *Shipment) ([]*ShippingRate, []error) {
	if len(sessions) == 0 {
		return nil, nil
	}

	results := make([]*ShippingRate, 0, len(sessions))
	errs := make([]error, 0)
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)

	for _, sess := range sessions {
		sess := sess // capture loop variable
		g.Go(func() error {
			rate, err := sess.EstimateShippingCost(ctx, shipment)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", sess.System().Name(), err))
				return nil // continue with other providers
			}
			results = append(results, rate)
			return nil
		})
	}

	g.Wait()
	return results, errs
}

// ConfigureAll resolves every registered system's provider section in
// the configuration tree.
func (r *Registry) ConfigureAll(v *viper.Viper) error {
	for _, s := range r.All() {
		base, ok := s.(interface{ Configure(*viper.Viper) error })
		if !ok {
			continue
		}
		if err := base.Configure(v); err != nil {
			return err
		}
	}
	return nil
}

// StopAll shuts down every registered system.
func (r *Registry) StopAll(ctx context.Context) error {
	for _, s := range r.All() {
		stoppable, ok := s.(interface{ Stop(context.Context) error })
		if !ok {
			continue
		}
		if err := stoppable.Stop(ctx); err != nil {
			return err
		}
	}
	return nil
}
