package audit

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/fatflowers/gymgate/internal/models"
	"github.com/fatflowers/gymgate/pkg/types"
)

type ScanAuditLogsRequest struct {
	CompanyID string                `json:"company_id"`
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
}

type ScanAuditLogsResponse struct {
	Total int64              `json:"total"`
	Items []*models.AuditLog `json:"items"`
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// ScanAuditLogs implements paginated compliance review, newest first.
func (r *Recorder) ScanAuditLogs(ctx context.Context, req *ScanAuditLogsRequest) (*ScanAuditLogsResponse, error) {
	if req == nil || req.CompanyID == "" {
		return nil, fmt.Errorf("company_id is required")
	}
	if req.Size <= 0 {
		req.Size = 20
	}

	tx := r.db.WithContext(ctx).Model(&models.AuditLog{}).Where("company_id = ?", req.CompanyID)
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var rows []*models.AuditLog
	q := tx.Order("created_at DESC").Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return &ScanAuditLogsResponse{Total: total, Items: rows}, nil
}
