package visit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/gymgate/internal/models"
	"github.com/fatflowers/gymgate/pkg/tool"
)

// ErrDuplicateOpenVisit is returned when creating a visit would violate the
// one-open-visit-per-membership guard. The database index is the sole source
// of truth for this condition; the ledger only translates the conflict.
var ErrDuplicateOpenVisit = errors.New("membership already has an open visit")

// Ledger is the thin persistence wrapper for visit records. It exposes
// idempotent primitives; orchestration (grace windows, auto-close policy)
// belongs to the check-in coordinator.
type Ledger struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewLedger(db *gorm.DB, log *zap.SugaredLogger) *Ledger {
	return &Ledger{db: db, log: log}
}

// FindOpen returns the membership's open visit, or nil when none exists.
func (l *Ledger) FindOpen(ctx context.Context, membershipID string) (*models.Visit, error) {
	var v models.Visit
	err := l.db.WithContext(ctx).
		Where("membership_id = ? AND check_out IS NULL", membershipID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open visit: %w", err)
	}
	return &v, nil
}

// Create opens a new visit. A concurrent open visit for the same membership
// surfaces as ErrDuplicateOpenVisit.
func (l *Ledger) Create(ctx context.Context, membershipID, gymID, deviceID string, at time.Time) (*models.Visit, error) {
	v := &models.Visit{
		ID:           tool.GenerateUUIDV7(),
		MembershipID: membershipID,
		GymID:        gymID,
		DeviceID:     deviceID,
		CheckIn:      at,
	}
	if err := l.db.WithContext(ctx).Create(v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateOpenVisit
		}
		return nil, fmt.Errorf("failed to create visit: %w", err)
	}
	return v, nil
}

// Close stamps the visit's check-out time. Closing an already-closed visit
// leaves it untouched.
func (l *Ledger) Close(ctx context.Context, visitID string, at time.Time) (*models.Visit, error) {
	var v models.Visit
	err := l.db.WithContext(ctx).Where("id = ?", visitID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load visit: %w", err)
	}
	if v.CheckOut != nil {
		return &v, nil
	}
	if err := l.db.WithContext(ctx).Model(&v).Update("check_out", at).Error; err != nil {
		return nil, fmt.Errorf("failed to close visit: %w", err)
	}
	v.CheckOut = &at
	return &v, nil
}

// FindForCompany loads a visit and verifies, via its membership, that it
// belongs to the given tenant. Cross-tenant visits read as not found.
func (l *Ledger) FindForCompany(ctx context.Context, visitID, companyID string) (*models.Visit, error) {
	var v models.Visit
	err := l.db.WithContext(ctx).
		Joins("JOIN membership ON membership.id = visit.membership_id").
		Where("visit.id = ? AND membership.company_id = ?", visitID, companyID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find visit: %w", err)
	}
	return &v, nil
}

// RecentActivity lists the company's latest visits, optionally narrowed to a
// gym. Clients use it to reconcile after a streaming reconnect, since the
// broadcaster never replays missed events.
func (l *Ledger) RecentActivity(ctx context.Context, companyID string, gymID *string, since time.Time, limit int) ([]*models.Visit, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := l.db.WithContext(ctx).
		Joins("JOIN membership ON membership.id = visit.membership_id").
		Where("membership.company_id = ? AND visit.check_in >= ?", companyID, since)
	if gymID != nil && *gymID != "" {
		q = q.Where("visit.gym_id = ?", *gymID)
	}
	var rows []*models.Visit
	if err := q.Order("visit.check_in DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent activity: %w", err)
	}
	return rows, nil
}

// DurationMinutes computes a closed visit's duration, floored at one minute
// so instant taps and clock skew never produce a zero-length visit.
func DurationMinutes(v *models.Visit) int64 {
	if v == nil || v.CheckOut == nil {
		return 0
	}
	mins := int64(v.CheckOut.Sub(v.CheckIn).Minutes())
	if mins < 1 {
		return 1
	}
	return mins
}
