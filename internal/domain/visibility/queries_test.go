package visibility

import (
	"strings"
	"testing"
)

func TestGenerateQueriesCount(t *testing.T) {
	queries := GenerateQueries("dental clinics", "SmileCo")
	if len(queries) != QueryCount {
		t.Fatalf("expected %d queries, got %d", QueryCount, len(queries))
	}
	if QueryCount != 20 {
		t.Fatalf("expected fixed query count of 20, got %d", QueryCount)
	}
}

func TestGenerateQueriesDeterministic(t *testing.T) {
	a := GenerateQueries("crm software", "PipeDrive")
	b := GenerateQueries("crm software", "PipeDrive")
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("query %d differs: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestGenerateQueriesInterpolation(t *testing.T) {
	topic := "tax accounting"
	brand := "LedgerPro"
	queries := GenerateQueries(topic, brand)

	for i, q := range queries {
		if !strings.Contains(q, topic) {
			t.Errorf("query %d %q missing topic", i, q)
		}
	}

	// The tail of the set is brand-aware; the head is topic only.
	brandCount := 0
	for _, q := range queries {
		if strings.Contains(q, brand) {
			brandCount++
		}
	}
	if brandCount != 5 {
		t.Errorf("expected 5 brand-aware queries, got %d", brandCount)
	}
	for _, q := range queries[:15] {
		if strings.Contains(q, brand) {
			t.Errorf("topic query %q unexpectedly contains brand", q)
		}
	}
}
