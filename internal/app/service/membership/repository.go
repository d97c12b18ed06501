package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/gymgate/internal/models"
	"github.com/fatflowers/gymgate/pkg/tool"
	"github.com/fatflowers/gymgate/pkg/types"
)

// Repository resolves members and their current membership, always scoped to
// a tenant. A member under a different company must look identical to a
// missing member, so callers never learn about cross-tenant records.
type Repository struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewRepository(db *gorm.DB, log *zap.SugaredLogger) *Repository {
	return &Repository{db: db, log: log}
}

// FindMember returns the member by id under the given company, or nil when no
// such member exists in that tenant.
func (r *Repository) FindMember(ctx context.Context, memberID, companyID string) (*models.Member, error) {
	var m models.Member
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", memberID, companyID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return &m, nil
}

// FindMemberByBiometricToken resolves a biometric enrollment token to a
// member inside the tenant.
func (r *Repository) FindMemberByBiometricToken(ctx context.Context, token, companyID string) (*models.Member, error) {
	var m models.Member
	err := r.db.WithContext(ctx).
		Where("biometric_token = ? AND company_id = ?", token, companyID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find member by biometric token: %w", err)
	}
	return &m, nil
}

// FindCurrent returns the most recently created membership for the member in
// the acceptable-status set, or nil when the member holds none.
func (r *Repository) FindCurrent(ctx context.Context, memberID, companyID string) (*models.Membership, error) {
	var ms models.Membership
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND company_id = ? AND status IN ?", memberID, companyID, types.AcceptableStatuses).
		Order("created_at DESC").
		First(&ms).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return &ms, nil
}

// CreateMember registers a member identity under a tenant.
func (r *Repository) CreateMember(ctx context.Context, m *models.Member) error {
	if m.ID == "" {
		m.ID = tool.GenerateUUIDV7()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// CreateMembership grants a member paid access. Grants accumulate; selection
// at the gate always picks the newest one.
func (r *Repository) CreateMembership(ctx context.Context, ms *models.Membership) error {
	if ms.ID == "" {
		ms.ID = tool.GenerateUUIDV7()
	}
	if err := r.db.WithContext(ctx).Create(ms).Error; err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// ListMembers pages through a tenant's members.
func (r *Repository) ListMembers(ctx context.Context, companyID string, offset, limit int) ([]*models.Member, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Model(&models.Member{}).Where("company_id = ?", companyID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}
	var rows []*models.Member
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	return rows, total, nil
}

// FindExpiring lists memberships in active status whose EndsAt falls inside
// (now, now+window]. Used by the expiring sweep.
func (r *Repository) FindExpiring(ctx context.Context, now time.Time, window time.Duration) ([]*models.Membership, error) {
	var rows []*models.Membership
	err := r.db.WithContext(ctx).
		Where("status = ? AND ends_at IS NOT NULL AND ends_at > ? AND ends_at <= ?",
			types.MembershipStatusActive, now, now.Add(window)).
		Order("ends_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring memberships: %w", err)
	}
	return rows, nil
}
