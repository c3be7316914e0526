package service

import (
	"testing"
	"time"

	"github.com/certifex/certifex-backend/internal/model"
)

func TestSessionIsLive(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	finished := base.Add(20 * time.Minute)

	tests := []struct {
		name string
		s    model.ExamSession
		now  time.Time
		want bool
	}{
		{
			name: "inside window",
			s:    model.ExamSession{StartedAt: base, EndsAt: base.Add(45 * time.Minute), Active: true},
			now:  base.Add(30 * time.Minute),
			want: true,
		},
		{
			name: "exactly at end",
			s:    model.ExamSession{StartedAt: base, EndsAt: base.Add(45 * time.Minute), Active: true},
			now:  base.Add(45 * time.Minute),
			want: false,
		},
		{
			name: "past end",
			s:    model.ExamSession{StartedAt: base, EndsAt: base.Add(45 * time.Minute), Active: true},
			now:  base.Add(46 * time.Minute),
			want: false,
		},
		{
			name: "finished",
			s:    model.ExamSession{StartedAt: base, EndsAt: base.Add(45 * time.Minute), Active: false, FinishedAt: &finished},
			now:  base.Add(30 * time.Minute),
			want: false,
		},
		{
			name: "force-closed",
			s:    model.ExamSession{StartedAt: base, EndsAt: base.Add(45 * time.Minute), Active: false},
			now:  base.Add(30 * time.Minute),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SessionIsLive(&tt.s, tt.now); got != tt.want {
				t.Errorf("SessionIsLive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionIsExpired(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	finished := base.Add(40 * time.Minute)

	s := model.ExamSession{StartedAt: base, EndsAt: base.Add(45 * time.Minute), Active: true}
	if SessionIsExpired(&s, base.Add(44*time.Minute)) {
		t.Error("session expired before its end time")
	}
	if !SessionIsExpired(&s, base.Add(45*time.Minute)) {
		t.Error("session not expired at its end time")
	}

	// A finished session never reports expired, even past its end.
	done := model.ExamSession{StartedAt: base, EndsAt: base.Add(45 * time.Minute), FinishedAt: &finished}
	if SessionIsExpired(&done, base.Add(2*time.Hour)) {
		t.Error("finished session reported expired")
	}
}

func TestSessionStatusDerivation(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	finished := base.Add(20 * time.Minute)

	s := model.ExamSession{StartedAt: base, EndsAt: base.Add(45 * time.Minute), Active: true}
	if got := s.Status(base.Add(10 * time.Minute)); got != model.SessionStatusActive {
		t.Errorf("status = %s, want active", got)
	}
	if got := s.Status(base.Add(50 * time.Minute)); got != model.SessionStatusExpired {
		t.Errorf("status = %s, want expired", got)
	}

	s.FinishedAt = &finished
	if got := s.Status(base.Add(50 * time.Minute)); got != model.SessionStatusCompleted {
		t.Errorf("status = %s, want completed", got)
	}
}
