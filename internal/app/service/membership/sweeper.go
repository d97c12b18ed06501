package membership

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fatflowers/gymgate/internal/app/service/broadcast"
	cfgpkg "github.com/fatflowers/gymgate/pkg/config"
)

// Sweeper periodically finds memberships approaching their end date and
// publishes membership.expiring events so dashboards can prompt renewal.
// Sweep failures are logged and skipped; the next tick tries again.
type Sweeper struct {
	repo   *Repository
	hub    *broadcast.Hub
	log    *zap.SugaredLogger
	window time.Duration
	every  time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewSweeper(repo *Repository, hub *broadcast.Hub, cfg *cfgpkg.Config, log *zap.SugaredLogger) *Sweeper {
	window := cfg.Membership.ExpiringWindow
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	every := cfg.Membership.SweepInterval
	if every <= 0 {
		every = 24 * time.Hour
	}
	return &Sweeper{
		repo:   repo,
		hub:    hub,
		log:    log,
		window: window,
		every:  every,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go s.run()
}

func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.SweepOnce(context.Background())
		case <-s.stop:
			return
		}
	}
}

// SweepOnce runs one pass and returns the number of notifications published.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	rows, err := s.repo.FindExpiring(ctx, time.Now(), s.window)
	if err != nil {
		s.log.Errorw("expiring sweep failed", "err", err)
		return 0
	}
	for _, ms := range rows {
		s.hub.Publish(broadcast.NewEvent(broadcast.EventTypeMembershipExpiring, ms.CompanyID, nil, map[string]any{
			"membership_id": ms.ID,
			"member_id":     ms.MemberID,
			"ends_at":       ms.EndsAt,
		}))
	}
	if len(rows) > 0 {
		s.log.Infow("published expiring notifications", "count", len(rows))
	}
	return len(rows)
}
