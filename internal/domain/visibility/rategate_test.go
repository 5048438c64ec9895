package visibility

import (
	"testing"
	"time"
)

func TestCanRun(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	ago := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name    string
		plan    Plan
		lastRun *time.Time
		want    bool
	}{
		{"never ran free", PlanFree, nil, true},
		{"never ran pro", PlanPro, nil, true},
		{"free inside window", PlanFree, ago(167 * time.Hour), false},
		{"free at boundary", PlanFree, ago(168 * time.Hour), true},
		{"free past window", PlanFree, ago(200 * time.Hour), true},
		{"pro inside window", PlanPro, ago(23 * time.Hour), false},
		{"pro at boundary", PlanPro, ago(24 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanRun(tt.plan, tt.lastRun, now); got != tt.want {
				t.Errorf("CanRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextRunAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	last := now.Add(-10 * time.Hour)

	next := NextRunAt(PlanPro, &last, now)
	if want := last.Add(24 * time.Hour); !next.Equal(want) {
		t.Errorf("NextRunAt = %v, want %v", next, want)
	}

	if got := NextRunAt(PlanPro, nil, now); !got.IsZero() {
		t.Errorf("open gate should report zero time, got %v", got)
	}
}
