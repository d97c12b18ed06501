package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fatflowers/gymgate/internal/app/service/audit"
	"github.com/fatflowers/gymgate/internal/app/service/broadcast"
	"github.com/fatflowers/gymgate/internal/app/service/membership"
	"github.com/fatflowers/gymgate/internal/app/service/visit"
	"github.com/fatflowers/gymgate/internal/models"
	cfgpkg "github.com/fatflowers/gymgate/pkg/config"
	"github.com/fatflowers/gymgate/pkg/metrics"
)

// MemberDirectory is the tenant-scoped member/membership lookup the
// coordinator depends on.
type MemberDirectory interface {
	FindMember(ctx context.Context, memberID, companyID string) (*models.Member, error)
	FindMemberByBiometricToken(ctx context.Context, token, companyID string) (*models.Member, error)
	FindCurrent(ctx context.Context, memberID, companyID string) (*models.Membership, error)
}

// VisitStore is the ledger surface the coordinator uses. The store, not the
// coordinator, owns the one-open-visit-per-membership invariant.
type VisitStore interface {
	FindOpen(ctx context.Context, membershipID string) (*models.Visit, error)
	Create(ctx context.Context, membershipID, gymID, deviceID string, at time.Time) (*models.Visit, error)
	Close(ctx context.Context, visitID string, at time.Time) (*models.Visit, error)
	FindForCompany(ctx context.Context, visitID, companyID string) (*models.Visit, error)
}

// AuditSink records gate decisions fire-and-forget.
type AuditSink interface {
	Record(ctx context.Context, e audit.Entry)
}

// Publisher hands events to the broadcaster without ever failing the caller.
type Publisher interface {
	Publish(ev broadcast.Event)
}

// ScanRequest is one turnstile/kiosk scan. Device identity comes from the
// authenticated device context, never from client input.
type ScanRequest struct {
	DeviceID   string
	CompanyID  string
	GymID      string
	Identifier string
}

// ScanResult is a successful admission.
type ScanResult struct {
	Decision membership.Decision
	Member   *models.Member
	Visit    *models.Visit
}

// CheckoutRequest closes an open visit.
type CheckoutRequest struct {
	VisitID   string
	CompanyID string
}

// CheckoutResult carries the closed visit and its floored duration.
type CheckoutResult struct {
	Visit           *models.Visit
	DurationMinutes int64
}

// Coordinator orchestrates a scan: identify, evaluate, suppress duplicates,
// admit, then fire side effects. Side effects (audit, broadcast) never roll
// back an admission and no step is retried internally.
type Coordinator struct {
	dir   MemberDirectory
	store VisitStore
	sink  AuditSink
	pub   Publisher
	log   *zap.SugaredLogger

	graceWindow time.Duration
	now         func() time.Time
}

func NewCoordinator(repo *membership.Repository, ledger *visit.Ledger, rec *audit.Recorder, hub *broadcast.Hub, cfg *cfgpkg.Config, log *zap.SugaredLogger) *Coordinator {
	grace := cfg.Checkin.GraceWindow
	if grace <= 0 {
		grace = 5 * time.Minute
	}
	return &Coordinator{
		dir:         repo,
		store:       ledger,
		sink:        rec,
		pub:         hub,
		log:         log,
		graceWindow: grace,
		now:         time.Now,
	}
}

// Scan processes one scan request end to end. Domain rejections come back as
// *DomainError with a stable code; any other error is infrastructure.
func (c *Coordinator) Scan(ctx context.Context, req *ScanRequest) (*ScanResult, error) {
	res, derr, err := c.scan(ctx, req)

	switch {
	case err != nil:
		return nil, err
	case derr != nil:
		c.audit(ctx, req.CompanyID, "checkin.scan", false, derr.Code, derr.Message, map[string]any{
			"device_id": req.DeviceID,
			"gym_id":    req.GymID,
		})
		metrics.ScanDecisions.WithLabelValues(derr.Code, "false").Inc()
		return nil, derr
	default:
		c.audit(ctx, req.CompanyID, "checkin.scan", true, res.Decision.Code, res.Decision.Message, map[string]any{
			"device_id":     req.DeviceID,
			"gym_id":        req.GymID,
			"member_id":     res.Member.ID,
			"membership_id": res.Visit.MembershipID,
			"visit_id":      res.Visit.ID,
		})
		metrics.ScanDecisions.WithLabelValues(res.Decision.Code, "true").Inc()
		c.publishCheckin(req, res)
		return res, nil
	}
}

func (c *Coordinator) scan(ctx context.Context, req *ScanRequest) (*ScanResult, *DomainError, error) {
	ident, derr := ParseIdentifier(req.Identifier)
	if derr != nil {
		return nil, derr, nil
	}

	m, err := c.resolveMember(ctx, ident, req.CompanyID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, memberNotFound(), nil
	}
	if !m.Active {
		return nil, memberInactive(), nil
	}

	ms, err := c.dir.FindCurrent(ctx, m.ID, req.CompanyID)
	if err != nil {
		return nil, nil, err
	}
	if ms == nil {
		return nil, noMembership(), nil
	}

	now := c.now()
	dec := membership.Evaluate(ms, now)
	if !dec.Allowed {
		return nil, accessDenied(dec.Code, dec.Message), nil
	}

	// Duplicate suppression. A recent open visit means an accidental repeat
	// scan; a stale one means the member never checked out, so close it and
	// admit. The partial unique index backs this check-then-act against
	// concurrent scans.
	open, err := c.store.FindOpen(ctx, ms.ID)
	if err != nil {
		return nil, nil, err
	}
	if open != nil {
		if now.Sub(open.CheckIn) <= c.graceWindow {
			return nil, duplicateCheckin(&VisitRef{ID: open.ID, CheckIn: open.CheckIn}), nil
		}
		if _, err := c.store.Close(ctx, open.ID, now); err != nil {
			return nil, nil, fmt.Errorf("failed to auto-close stale visit: %w", err)
		}
		c.log.Infow("auto-closed stale open visit", "visit_id", open.ID, "membership_id", ms.ID)
	}

	v, err := c.store.Create(ctx, ms.ID, req.GymID, req.DeviceID, now)
	if errors.Is(err, visit.ErrDuplicateOpenVisit) {
		// Lost a race with a concurrent scan; report the winner's visit.
		winner, ferr := c.store.FindOpen(ctx, ms.ID)
		if ferr != nil || winner == nil {
			return nil, duplicateCheckin(nil), nil
		}
		return nil, duplicateCheckin(&VisitRef{ID: winner.ID, CheckIn: winner.CheckIn}), nil
	}
	if err != nil {
		return nil, nil, err
	}

	return &ScanResult{Decision: dec, Member: m, Visit: v}, nil, nil
}

// Checkout closes an open visit and reports its duration.
func (c *Coordinator) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	v, err := c.store.FindForCompany(ctx, req.VisitID, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if v == nil || !v.Open() {
		derr := visitNotFound()
		c.audit(ctx, req.CompanyID, "checkin.checkout", false, derr.Code, derr.Message, map[string]any{
			"visit_id": req.VisitID,
		})
		return nil, derr
	}

	closed, err := c.store.Close(ctx, v.ID, c.now())
	if err != nil {
		return nil, err
	}
	if closed == nil {
		return nil, visitNotFound()
	}
	dur := visit.DurationMinutes(closed)

	c.audit(ctx, req.CompanyID, "checkin.checkout", true, "", "visit closed", map[string]any{
		"visit_id":         closed.ID,
		"duration_minutes": dur,
	})
	metrics.CheckoutsTotal.Inc()
	c.publish(broadcast.NewEvent(broadcast.EventTypeVisitCheckout, req.CompanyID, &closed.GymID, map[string]any{
		"visit_id":         closed.ID,
		"membership_id":    closed.MembershipID,
		"gym_id":           closed.GymID,
		"check_in":         closed.CheckIn,
		"check_out":        closed.CheckOut,
		"duration_minutes": dur,
	}))

	return &CheckoutResult{Visit: closed, DurationMinutes: dur}, nil
}

// resolveMember turns a parsed identifier into a tenant-scoped member lookup.
func (c *Coordinator) resolveMember(ctx context.Context, ident Identifier, companyID string) (*models.Member, error) {
	switch id := ident.(type) {
	case RawID:
		return c.dir.FindMember(ctx, id.MemberID, companyID)
	case EncodedPayload:
		return c.dir.FindMember(ctx, id.MemberID, companyID)
	case BiometricStub:
		return c.dir.FindMemberByBiometricToken(ctx, id.Token, companyID)
	default:
		return nil, fmt.Errorf("unhandled identifier variant %T", ident)
	}
}

func (c *Coordinator) publishCheckin(req *ScanRequest, res *ScanResult) {
	c.publish(broadcast.NewEvent(broadcast.EventTypeVisitCheckin, req.CompanyID, &req.GymID, map[string]any{
		"visit_id":      res.Visit.ID,
		"member_id":     res.Member.ID,
		"member_name":   res.Member.Name,
		"membership_id": res.Visit.MembershipID,
		"gym_id":        req.GymID,
		"device_id":     req.DeviceID,
		"check_in":      res.Visit.CheckIn,
		"state":         res.Decision.State,
		"warning":       res.Decision.Warning,
	}))
}

// publish hands an event to the broadcaster, recovering from anything it
// might do wrong; a notification failure never surfaces to the kiosk.
func (c *Coordinator) publish(ev broadcast.Event) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorw("broadcast publish panicked", "event_id", ev.ID, "panic", r)
		}
	}()
	c.pub.Publish(ev)
}

func (c *Coordinator) audit(ctx context.Context, companyID, action string, success bool, code, msg string, meta map[string]any) {
	c.sink.Record(ctx, audit.Entry{
		CompanyID: companyID,
		Action:    action,
		Success:   success,
		Code:      code,
		Message:   msg,
		Metadata:  meta,
	})
}
