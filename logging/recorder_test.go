package logging

import (
	"strings"
	"testing"
	"time"

	"academiqa-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSanitizeTruncatesLongStrings(t *testing.T) {
	long := strings.Repeat("x", maxStringLength+500)

	record := Sanitize(models.LogRecord{
		Timestamp: "2024-01-01T00:00:00Z",
		Message:   long,
		AdditionalData: map[string]interface{}{
			"answer": long,
			"nested": map[string]interface{}{
				"context": long,
			},
			"list": []interface{}{long, 42},
		},
	})

	if len(record.Message) != maxStringLength {
		t.Errorf("message length = %d, want %d", len(record.Message), maxStringLength)
	}
	if len(record.AdditionalData["answer"].(string)) != maxStringLength {
		t.Error("top-level additional data string not truncated")
	}
	nested := record.AdditionalData["nested"].(map[string]interface{})
	if len(nested["context"].(string)) != maxStringLength {
		t.Error("nested string not truncated")
	}
	list := record.AdditionalData["list"].([]interface{})
	if len(list[0].(string)) != maxStringLength {
		t.Error("string inside slice not truncated")
	}
	if list[1] != 42 {
		t.Errorf("non-string value altered: %v", list[1])
	}
}

func TestSanitizeDefaultsTimestamp(t *testing.T) {
	record := Sanitize(models.LogRecord{Message: "no timestamp"})
	if record.Timestamp == "" {
		t.Fatal("timestamp not filled in")
	}
	if _, err := time.Parse(time.RFC3339, record.Timestamp); err != nil {
		t.Errorf("timestamp not RFC3339: %q", record.Timestamp)
	}
}

func TestSanitizeNormalizesTimeValues(t *testing.T) {
	at := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	record := Sanitize(models.LogRecord{
		Timestamp: "2024-01-01T00:00:00Z",
		AdditionalData: map[string]interface{}{
			"when": at,
		},
	})

	got, ok := record.AdditionalData["when"].(string)
	if !ok {
		t.Fatalf("time.Time not converted to string: %T", record.AdditionalData["when"])
	}
	if got != "2024-03-15T12:30:00Z" {
		t.Errorf("normalized time = %q", got)
	}
}

func TestSanitizeNilAdditionalData(t *testing.T) {
	record := Sanitize(models.LogRecord{Timestamp: "2024-01-01T00:00:00Z"})
	if record.AdditionalData == nil {
		t.Fatal("additional data must be an empty map, not nil")
	}
	if len(record.AdditionalData) != 0 {
		t.Errorf("unexpected contents: %v", record.AdditionalData)
	}
}

func TestTimestampOf(t *testing.T) {
	at := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record map[string]interface{}
		want   string
	}{
		{"string", map[string]interface{}{"timestamp": "2024-03-15T12:30:00Z"}, "2024-03-15T12:30:00Z"},
		{"time.Time", map[string]interface{}{"timestamp": at}, "2024-03-15T12:30:00Z"},
		{"bson datetime", map[string]interface{}{"timestamp": primitive.NewDateTimeFromTime(at)}, "2024-03-15T12:30:00Z"},
		{"missing", map[string]interface{}{}, ""},
		{"unexpected type", map[string]interface{}{"timestamp": 1234}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timestampOf(tt.record); got != tt.want {
				t.Errorf("timestampOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMergedOrderingIsDescending(t *testing.T) {
	// String timestamps sort lexicographically, which matches
	// chronological order for RFC3339 UTC values
	a := "2024-01-01T00:00:00Z"
	b := "2024-02-01T00:00:00Z"
	if !(timestampOf(map[string]interface{}{"timestamp": b}) > timestampOf(map[string]interface{}{"timestamp": a})) {
		t.Fatal("RFC3339 ordering assumption broken")
	}
}

func logBatch(source string, base time.Time, step time.Duration, n int) []map[string]interface{} {
	batch := make([]map[string]interface{}, n)
	for i := 0; i < n; i++ {
		batch[i] = map[string]interface{}{
			"timestamp": base.Add(time.Duration(i) * step).UTC().Format(time.RFC3339),
			"source":    source,
		}
	}
	return batch
}

func TestMergeRecentSortsAndCaps(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Two interleaved batches of 60: active on even minutes, legacy on odd
	active := logBatch("active", base, 2*time.Minute, 60)
	legacy := logBatch("legacy", base.Add(time.Minute), 2*time.Minute, 60)

	merged := mergeRecent(active, legacy)

	if len(merged) != 100 {
		t.Fatalf("merged length = %d, want cap of 100", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		prev := merged[i-1]["timestamp"].(string)
		cur := merged[i]["timestamp"].(string)
		if prev < cur {
			t.Fatalf("not descending at %d: %s before %s", i, prev, cur)
		}
	}

	// The cap keeps the newest entries, so the overall newest record
	// (last of the legacy batch) must survive at the front
	newest := base.Add(119 * time.Minute).UTC().Format(time.RFC3339)
	if merged[0]["timestamp"] != newest {
		t.Errorf("newest record missing: got %v, want %s", merged[0]["timestamp"], newest)
	}
	// Entries from both collections survive the merge
	sources := map[string]bool{}
	for _, record := range merged {
		sources[record["source"].(string)] = true
	}
	if !sources["active"] || !sources["legacy"] {
		t.Errorf("merge dropped a collection: %v", sources)
	}
}

func TestMergeRecentUnderCap(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	merged := mergeRecent(logBatch("active", base, time.Minute, 3), nil)
	if len(merged) != 3 {
		t.Fatalf("merged length = %d, want 3", len(merged))
	}
}

func TestMergeRecentStableOnEqualTimestamps(t *testing.T) {
	same := "2024-01-01T00:00:00Z"
	first := []map[string]interface{}{{"timestamp": same, "source": "active"}}
	second := []map[string]interface{}{{"timestamp": same, "source": "legacy"}}

	merged := mergeRecent(first, second)
	if len(merged) != 2 {
		t.Fatalf("merged length = %d, want 2", len(merged))
	}
	if merged[0]["source"] != "active" || merged[1]["source"] != "legacy" {
		t.Errorf("equal-timestamp records reordered: %v", merged)
	}
}
