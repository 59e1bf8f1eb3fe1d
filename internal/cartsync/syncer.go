// Package cartsync resolves divergence between the local and remote
// carts on login and keeps the local store as an optimistic display
// mirror while authenticated.
package cartsync

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/loomwear/cartcore/internal/catalog"
	"github.com/loomwear/cartcore/internal/domain"
	"github.com/loomwear/cartcore/internal/gateway"
	"github.com/loomwear/cartcore/internal/localcart"
	"github.com/loomwear/cartcore/internal/session"
)

// RemoteCart is the gateway surface the syncer needs. Defined here, on
// the consumer side.
type RemoteCart interface {
	FetchAll(ctx context.Context, identity string) ([]domain.LineItem, error)
	Add(ctx context.Context, identity, productID string, quantity int, size, color string) error
	UpdateQuantity(ctx context.Context, identity, lineID string, quantity int) error
	Remove(ctx context.Context, identity, lineID string) error
	Clear(ctx context.Context, identity string) error
}

const defaultRequestTimeout = 10 * time.Second

// Syncer is constructed once per session and torn down on sign-out. It
// observes the session provider and reconciles the two carts exactly
// once per authentication transition.
type Syncer struct {
	local    *localcart.Store
	remote   RemoteCart
	sessions session.Provider
	timeout  time.Duration
	logErr   func(err error)

	mu         sync.Mutex
	reconciled bool

	wg sync.WaitGroup
}

// New wires the syncer to the session provider. Background sync failures
// go to logErr; pass nil for the default log output.
func New(local *localcart.Store, remote RemoteCart, sessions session.Provider, logErr func(error)) *Syncer {
	if logErr == nil {
		logErr = func(err error) { log.Printf("cart sync error: %v", err) }
	}

	s := &Syncer{
		local:    local,
		remote:   remote,
		sessions: sessions,
		timeout:  defaultRequestTimeout,
		logErr:   logErr,
	}

	sessions.OnLogin(func(identity string) {
		s.ReconcileOnLogin(context.Background())
	})
	sessions.OnLogout(func() {
		s.SignOut()
	})

	return s
}

// ReconcileOnLogin runs the merge decision at most once per
// authentication transition. Repeated login events are ignored until a
// sign-out resets the guard. A failed remote fetch leaves the local cart
// untouched and is not retried; the session continues local-only.
func (s *Syncer) ReconcileOnLogin(ctx context.Context) {
	// A guest call must not consume the once-per-login guard.
	identity := s.sessions.Identity()
	if identity == "" {
		return
	}

	s.mu.Lock()
	if s.reconciled {
		s.mu.Unlock()
		return
	}
	s.reconciled = true
	s.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	remoteItems, err := s.remote.FetchAll(fetchCtx, identity)
	if err != nil {
		s.logErr(err)
		return
	}

	localItems := s.local.Items()

	switch {
	case len(remoteItems) == 0 && len(localItems) > 0:
		s.pushLocalToRemote(ctx, identity, localItems)
	case len(remoteItems) > 0:
		// Remote wins outright; local additions made while logged out
		// are discarded, no line-level merge.
		s.local.Replace(remoteItems)
	}
}

// pushLocalToRemote copies guest lines into the remote cart, clamping
// each quantity to available stock and silently dropping lines whose
// product is gone or inactive. The local mirror is then refreshed from
// the remote so line ids match server rows.
func (s *Syncer) pushLocalToRemote(ctx context.Context, identity string, items []domain.LineItem) {
	for _, item := range items {
		pushCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.remote.Add(pushCtx, identity, item.ProductID, item.Quantity, item.Size, item.Color)
		cancel()
		if err == nil {
			continue
		}

		var stockErr *gateway.InsufficientStockError
		if errors.As(err, &stockErr) {
			// Clamp to what is left; zero stock means the line is dropped.
			if stockErr.Available > 0 {
				clampCtx, cancelClamp := context.WithTimeout(ctx, s.timeout)
				errClamp := s.remote.Add(clampCtx, identity, item.ProductID, stockErr.Available, item.Size, item.Color)
				cancelClamp()
				if errClamp != nil {
					s.logErr(errClamp)
				}
			}
			continue
		}

		// Inactive, deleted, or out-of-stock products are dropped
		// without surfacing anything.
		if errors.Is(err, gateway.ErrProductInactive) || errors.Is(err, catalog.ErrProductNotFound) {
			continue
		}
		s.logErr(err)
	}

	refreshCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	merged, err := s.remote.FetchAll(refreshCtx, identity)
	if err != nil {
		s.logErr(err)
		return
	}
	s.local.Replace(merged)
}

// SignOut returns the session to the unauthenticated state. The local
// cart keeps whatever it last held.
func (s *Syncer) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconciled = false
}

// AddItem applies the mutation locally first, then fires the remote call
// in the background. Remote failures are logged, never rolled back; the
// next authoritative fetch self-corrects.
func (s *Syncer) AddItem(item domain.LineItem) ([]domain.LineItem, localcart.AddOutcome) {
	items, outcome := s.local.AddItem(item)

	s.background(func(ctx context.Context, identity string) error {
		return s.remote.Add(ctx, identity, item.ProductID, item.Quantity, item.Size, item.Color)
	})

	return items, outcome
}

// UpdateQuantity mirrors the local store's semantics: a quantity of zero
// or below removes the line, remotely as well.
func (s *Syncer) UpdateQuantity(id string, quantity int) {
	s.local.UpdateQuantity(id, quantity)

	s.background(func(ctx context.Context, identity string) error {
		if quantity <= 0 {
			return s.remote.Remove(ctx, identity, id)
		}
		return s.remote.UpdateQuantity(ctx, identity, id, quantity)
	})
}

func (s *Syncer) RemoveItem(id string) {
	s.local.RemoveItem(id)

	s.background(func(ctx context.Context, identity string) error {
		return s.remote.Remove(ctx, identity, id)
	})
}

func (s *Syncer) Clear() {
	s.local.Clear()

	s.background(func(ctx context.Context, identity string) error {
		return s.remote.Clear(ctx, identity)
	})
}

// background fires a remote call without blocking the caller. Guests get
// no remote call at all. Calls are not serialized against each other:
// two rapid updates race at the network layer and last response wins.
func (s *Syncer) background(fn func(ctx context.Context, identity string) error) {
	identity := s.sessions.Identity()
	if identity == "" {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := fn(ctx, identity); err != nil {
			s.logErr(err)
		}
	}()
}

// Wait blocks until in-flight background syncs finish. Used on shutdown.
func (s *Syncer) Wait() {
	s.wg.Wait()
}
