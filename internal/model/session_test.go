package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestSessionStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	finished := now.Add(-10 * time.Minute)

	tests := []struct {
		name    string
		session ExamSession
		want    SessionStatus
	}{
		{
			name:    "live within window",
			session: ExamSession{EndsAt: now.Add(time.Minute), Active: true},
			want:    SessionStatusActive,
		},
		{
			name:    "expired past window",
			session: ExamSession{EndsAt: now.Add(-time.Minute), Active: true},
			want:    SessionStatusExpired,
		},
		{
			name:    "exactly at the end is expired",
			session: ExamSession{EndsAt: now, Active: true},
			want:    SessionStatusExpired,
		},
		{
			name:    "deactivated counts as expired",
			session: ExamSession{EndsAt: now.Add(time.Hour), Active: false},
			want:    SessionStatusExpired,
		},
		{
			name:    "finished wins over the clock",
			session: ExamSession{EndsAt: now.Add(time.Hour), Active: true, FinishedAt: &finished},
			want:    SessionStatusCompleted,
		},
		{
			name:    "finished wins even after expiry",
			session: ExamSession{EndsAt: now.Add(-time.Hour), Active: false, FinishedAt: &finished},
			want:    SessionStatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Status(now); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectedMapJSON(t *testing.T) {
	original := SelectedMap{
		1: {101, 103, 102},
		7: {701},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	// JSON object keys must be strings for jsonb storage.
	var raw map[string][]int64
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("raw Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(raw["1"], []int64{101, 103, 102}) {
		t.Errorf("block 1 draw = %v, want preserved order [101 103 102]", raw["1"])
	}

	var decoded SelectedMap
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Errorf("round trip = %v, want %v", decoded, original)
	}
}

func TestSelectedMapBadKey(t *testing.T) {
	var m SelectedMap
	if err := json.Unmarshal([]byte(`{"abc":[1]}`), &m); err == nil {
		t.Fatal("expected error for non-numeric block key")
	}
}

func TestSelectedMapHelpers(t *testing.T) {
	m := SelectedMap{
		5: {1, 2, 3},
		2: {9},
		8: {},
	}

	if got := m.TotalQuestions(); got != 4 {
		t.Errorf("TotalQuestions() = %d, want 4", got)
	}
	if got := m.BlockIDs(); !reflect.DeepEqual(got, []int64{2, 5, 8}) {
		t.Errorf("BlockIDs() = %v, want [2 5 8]", got)
	}
}
