package visit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/gymgate/internal/models"
)

func TestDurationMinutes(t *testing.T) {
	checkIn := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	closedAt := func(d time.Duration) *models.Visit {
		out := checkIn.Add(d)
		return &models.Visit{CheckIn: checkIn, CheckOut: &out}
	}

	tests := []struct {
		name string
		v    *models.Visit
		want int64
	}{
		{"nil visit", nil, 0},
		{"still open", &models.Visit{CheckIn: checkIn}, 0},
		{"ten seconds floors to one", closedAt(10 * time.Second), 1},
		{"exactly one minute", closedAt(time.Minute), 1},
		{"ninety minutes", closedAt(90 * time.Minute), 90},
		{"partial minute truncates", closedAt(45*time.Minute + 59*time.Second), 45},
		{"checkout before checkin floors to one", closedAt(-time.Minute), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DurationMinutes(tt.v))
		})
	}
}
