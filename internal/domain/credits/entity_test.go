package credits

import "testing"

func TestRolloverInto(t *testing.T) {
	tests := []struct {
		name   string
		period AllowancePeriod
		want   int64
	}{
		{"partial spend carries the rest", AllowancePeriod{BaseTokens: 10000, UsedTokens: 4000}, 6000},
		{"exhausted carries nothing", AllowancePeriod{BaseTokens: 10000, UsedTokens: 10000}, 0},
		{"overspend floors at zero", AllowancePeriod{BaseTokens: 10000, UsedTokens: 12000}, 0},
		{"rollover stack capped at base", AllowancePeriod{BaseTokens: 10000, Rollover: 8000, UsedTokens: 0}, 10000},
		{"untouched month carries one base", AllowancePeriod{BaseTokens: 10000}, 10000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.period.RolloverInto(); got != tt.want {
				t.Errorf("RolloverInto() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	p := AllowancePeriod{BaseTokens: 10000, Rollover: 2500, UsedTokens: 3000}
	if got := p.Remaining(); got != 9500 {
		t.Errorf("Remaining() = %d, want 9500", got)
	}
}
