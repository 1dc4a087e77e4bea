package membersync

import (
	"context"
	"errors"
	"sync"

	"authsync-service/internal/group"
	"authsync-service/internal/identity"
	"authsync-service/internal/identity/store"
	"authsync-service/internal/logger"

	"golang.org/x/sync/errgroup"
)

// ErrRunInProgress is returned when a sync run is started while another
// one is still in flight. One run at a time keeps pressure on the group
// API bounded.
var ErrRunInProgress = errors.New("sync run already in progress")

// Report tallies one sync run. Total counts records actually processed,
// so alreadyMember+added+failed always equals Total, including runs cut
// short by cancellation.
type Report struct {
	AlreadyMember int `json:"already_member"`
	Added         int `json:"added"`
	Failed        int `json:"failed"`
	Total         int `json:"total"`
}

// ProgressFunc observes incremental progress of a run: processed records
// out of the store size. Called under the run's internal lock; keep it
// cheap.
type ProgressFunc func(processed, size int)

// Service reconciles every stored identity against actual membership of
// a target group. Remote calls are issued through a bounded worker pool;
// per-record failures are counted, never fatal.
type Service struct {
	store    store.Store
	groups   group.Client
	workers  int
	progress ProgressFunc

	running sync.Mutex
}

func NewService(credStore store.Store, groups group.Client, workers int, progress ProgressFunc) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		store:    credStore,
		groups:   groups,
		workers:  workers,
		progress: progress,
	}
}

// Run processes the full store against groupID. On cancellation the
// partial report is returned together with the context error; records
// not yet attempted are simply absent from the tally.
func (s *Service) Run(ctx context.Context, groupID string) (Report, error) {
	if !s.running.TryLock() {
		return Report{}, ErrRunInProgress
	}
	defer s.running.Unlock()

	records, err := s.store.All(ctx)
	if err != nil {
		return Report{}, err
	}

	size := len(records)
	if size == 0 {
		return Report{}, nil
	}

	var (
		mu     sync.Mutex
		report Report
	)

	tally := func(update func(*Report)) {
		mu.Lock()
		defer mu.Unlock()
		update(&report)
		report.Total++
		if s.progress != nil {
			s.progress(report.Total, size)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, rec := range records {
		if gctx.Err() != nil {
			break
		}
		rec := rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.reconcile(gctx, groupID, rec, tally)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, ctx.Err()
}

func (s *Service) reconcile(ctx context.Context, groupID string, rec identity.AuthorizedIdentity, tally func(func(*Report))) {
	isMember, err := s.groups.IsMember(ctx, groupID, rec.IdentityID)
	if err != nil {
		// The membership lookup is best-effort: an inconclusive answer
		// falls through to the add attempt, which settles it.
		logger.Warn("membership lookup failed", map[string]any{
			"identity_id": rec.IdentityID,
			"group_id":    groupID,
			"error":       err.Error(),
		})
	}

	if isMember {
		tally(func(r *Report) { r.AlreadyMember++ })
		return
	}

	if err := s.groups.AddMember(ctx, groupID, rec.IdentityID, rec.AccessToken); err != nil {
		logger.Warn("member add failed", map[string]any{
			"identity_id": rec.IdentityID,
			"group_id":    groupID,
			"error":       err.Error(),
		})
		tally(func(r *Report) { r.Failed++ })
		return
	}

	tally(func(r *Report) { r.Added++ })
}
