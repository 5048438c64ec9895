package visibility

import (
	"math"
	"testing"
)

func mentionedAt(bucket, n int) []ScoreInput {
	out := make([]ScoreInput, n)
	for i := range out {
		out[i] = ScoreInput{Mentioned: true, Position: bucket}
	}
	return out
}

func missed(n int) []ScoreInput {
	return make([]ScoreInput, n)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		results []ScoreInput
		want    int
	}{
		{"empty set", nil, 0},
		{"no mentions", missed(20), 0},
		{"all top mentions hit the cap", mentionedAt(1, 20), 100},
		{"all late mentions get no bonus", mentionedAt(4, 20), 70},
		{"six top mentions of twenty", append(mentionedAt(1, 6), missed(14)...), 30},
		{"six mid mentions of twenty", append(mentionedAt(2, 6), missed(14)...), 27},
		{"single top mention rounds up", mentionedAt(1, 1), 72},
		{"half mentioned bucket three", append(mentionedAt(3, 10), missed(10)...), 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.results); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreBonusCapped(t *testing.T) {
	// 25 bucket-1 mentions would earn 37.5 bonus points uncapped.
	got := Score(mentionedAt(1, 25))
	if got != 100 {
		t.Errorf("Score() = %d, want 100", got)
	}
}

func TestScoreOrderIndependent(t *testing.T) {
	a := []ScoreInput{{true, 1}, {false, 0}, {true, 3}, {false, 0}}
	b := []ScoreInput{{false, 0}, {true, 3}, {false, 0}, {true, 1}}
	if Score(a) != Score(b) {
		t.Errorf("score depends on order: %d vs %d", Score(a), Score(b))
	}
}

func TestScoreMonotonic(t *testing.T) {
	// Turning a miss into a mention never lowers the score.
	base := append(mentionedAt(2, 5), missed(15)...)
	prev := Score(base)
	for i := 5; i < len(base); i++ {
		base[i] = ScoreInput{Mentioned: true, Position: 2}
		cur := Score(base)
		if cur < prev {
			t.Fatalf("score dropped from %d to %d after adding mention %d", prev, cur, i)
		}
		prev = cur
	}
}

func TestScoreBounds(t *testing.T) {
	for bucket := 1; bucket <= 4; bucket++ {
		for n := 0; n <= 30; n++ {
			got := Score(mentionedAt(bucket, n))
			if got < 0 || got > 100 {
				t.Fatalf("Score out of range: bucket=%d n=%d score=%d", bucket, n, got)
			}
		}
	}
}

func TestMentionRate(t *testing.T) {
	if got := MentionRate(nil); got != 0 {
		t.Errorf("empty rate = %v, want 0", got)
	}
	got := MentionRate(append(mentionedAt(1, 5), missed(15)...))
	if math.Abs(got-0.25) > 1e-9 {
		t.Errorf("rate = %v, want 0.25", got)
	}
}

func TestAveragePosition(t *testing.T) {
	if got := AveragePosition(missed(10)); got != 0 {
		t.Errorf("no mentions avg = %v, want 0", got)
	}
	in := []ScoreInput{{true, 1}, {true, 3}, {false, 0}}
	if got := AveragePosition(in); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("avg = %v, want 2", got)
	}
}
