package remotesync

import (
	"context"
	"errors"
	"time"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/service"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Syncer keeps the ledger and one remote snapshot in step. The whole snapshot is the
// unit of exchange and the one with the later updatedAt wins.
type Syncer struct {
	ledger   service.LedgerService
	store    RemoteStore
	key      string
	debounce time.Duration
	interval time.Duration

	trigger chan struct{}
	sfGroup singleflight.Group
}

func NewSyncer(ledger service.LedgerService, store RemoteStore, key string, debounce, interval time.Duration) *Syncer {
	if debounce <= 0 {
		debounce = 1500 * time.Millisecond
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Syncer{
		ledger:   ledger,
		store:    store,
		key:      key,
		debounce: debounce,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// LedgerChanged schedules a debounced push. Snapshots applied from a remote are not
// pushed back.
func (s *Syncer) LedgerChanged(ev service.ChangeEvent) {
	if ev.Action == service.ActionSnapshotApplied {
		return
	}
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run pulls once, then runs the push and pull loops until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.pushLoop(ctx)
		return nil
	})
	g.Go(func() error {
		s.pullLoop(ctx)
		return nil
	})
	return g.Wait()
}

func (s *Syncer) pushLoop(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.trigger:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(s.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			if _, err := s.PushNow(ctx); err != nil {
				log.Warn().Err(err).Str("sync_key", s.key).Msg("snapshot push failed")
			}
		}
	}
}

func (s *Syncer) pullLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if _, err := s.PullNow(ctx); err != nil {
			log.Warn().Err(err).Str("sync_key", s.key).Msg("snapshot pull failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PullNow applies the remote snapshot when it is strictly newer than local state.
func (s *Syncer) PullNow(ctx context.Context) (bool, error) {
	remote, err := s.fetch(ctx)
	if err != nil || remote == nil {
		return false, err
	}
	applied, err := s.ledger.ApplySnapshot(*remote)
	if err != nil {
		return false, err
	}
	if applied {
		log.Info().Time("remote_updated_at", remote.UpdatedAt).Msg("pulled remote snapshot")
	}
	return applied, nil
}

// PushNow writes the local snapshot unless the remote one is at least as new. The fetch
// only short-circuits; the store itself re-checks atomically, so a device that wrote in
// between is never overwritten by an older snapshot.
func (s *Syncer) PushNow(ctx context.Context) (bool, error) {
	local := s.ledger.Snapshot()
	remote, err := s.fetch(ctx)
	if err != nil {
		return false, err
	}
	if remote != nil && !local.NewerThan(remote) {
		log.Debug().
			Time("local_updated_at", local.UpdatedAt).
			Time("remote_updated_at", remote.UpdatedAt).
			Msg("remote snapshot not older, push skipped")
		return false, nil
	}
	if err := s.store.Store(ctx, s.key, local); err != nil {
		if errors.Is(err, ErrRemoteNewer) {
			log.Debug().Time("local_updated_at", local.UpdatedAt).Msg("remote snapshot changed meanwhile, push skipped")
			return false, nil
		}
		return false, err
	}
	log.Debug().Time("updated_at", local.UpdatedAt).Msg("pushed snapshot")
	return true, nil
}

// fetch collapses concurrent reads of the same key into one round trip.
func (s *Syncer) fetch(ctx context.Context) (*model.Snapshot, error) {
	v, err, _ := s.sfGroup.Do(s.key, func() (interface{}, error) {
		return s.store.Fetch(ctx, s.key)
	})
	if err != nil {
		return nil, err
	}
	snap, _ := v.(*model.Snapshot)
	return snap, nil
}
