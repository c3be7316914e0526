package service

import (
	"time"

	"github.com/certifex/certifex-backend/internal/model"
)

// Session expiry is lazy: nothing in the system closes sessions on a
// timer. These predicates are evaluated against the caller's clock at
// every write entry point, so a session past its end time is refused
// writes even though its row still looks open.

// SessionIsLive reports whether a session may still accept answers.
func SessionIsLive(s *model.ExamSession, now time.Time) bool {
	return s.FinishedAt == nil && s.Active && now.Before(s.EndsAt)
}

// SessionIsExpired reports whether a session ran out of time without
// being finished.
func SessionIsExpired(s *model.ExamSession, now time.Time) bool {
	return s.FinishedAt == nil && !now.Before(s.EndsAt)
}
