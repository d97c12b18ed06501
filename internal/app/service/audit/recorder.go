package audit

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fatflowers/gymgate/internal/models"
	"github.com/fatflowers/gymgate/pkg/tool"
)

// Entry is one compliance record. Every gate decision produces one, success
// or failure.
type Entry struct {
	CompanyID string
	Action    string
	Success   bool
	Code      string
	Message   string
	Metadata  map[string]any
}

// Recorder persists audit entries fire-and-forget: Record never blocks the
// caller on the insert and never returns an error. A failed insert is logged
// and swallowed; an audit outage must not reject a real-world check-in.
type Recorder struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	wg  sync.WaitGroup
}

func NewRecorder(db *gorm.DB, log *zap.SugaredLogger) *Recorder {
	return &Recorder{db: db, log: log}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	row := &models.AuditLog{
		ID:        tool.GenerateUUIDV7(),
		CompanyID: e.CompanyID,
		Action:    e.Action,
		Success:   e.Success,
		Code:      e.Code,
		Message:   e.Message,
	}
	if len(e.Metadata) > 0 {
		if b, err := json.Marshal(e.Metadata); err == nil {
			row.Metadata = datatypes.JSON(b)
		}
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		// Detached from the request context: a canceled scan request must not
		// cancel its compliance record.
		if err := r.db.WithContext(context.WithoutCancel(ctx)).Create(row).Error; err != nil {
			r.log.Errorw("audit record failed", "action", e.Action, "err", err)
		}
	}()
}

// Flush waits for in-flight inserts. Used on shutdown and in tests.
func (r *Recorder) Flush() {
	r.wg.Wait()
}
