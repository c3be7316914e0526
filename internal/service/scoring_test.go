package service

import (
	"testing"

	"github.com/certifex/certifex-backend/internal/model"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{50.0, 50.0},
		{33.333333, 33.33},
		{66.666666, 66.67},
		{0.005, 0.01},
		{0, 0},
		{100, 100},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComputeScore(t *testing.T) {
	answers := []model.Answer{
		{QuestionID: 1, IsCorrect: true},
		{QuestionID: 2, IsCorrect: false},
	}

	// One of two answered correct.
	if got := ComputeScore(answers); got != 50.0 {
		t.Errorf("score = %v, want 50.0", got)
	}

	// One of three yields a repeating decimal, rounded to two places.
	three := append(answers, model.Answer{QuestionID: 3, IsCorrect: false})
	if got := ComputeScore(three); got != 33.33 {
		t.Errorf("score = %v, want 33.33", got)
	}

	if got := ComputeScore(nil); got != 0 {
		t.Errorf("score = %v, want 0 for empty ledger", got)
	}
}

func TestComputeScoreOverAnsweredOnly(t *testing.T) {
	// A single correct answer is 100% no matter how many questions the
	// session drew; skipped questions never enter the denominator.
	answers := []model.Answer{{QuestionID: 1, IsCorrect: true}}
	if got := ComputeScore(answers); got != 100.0 {
		t.Errorf("score = %v, want 100.0", got)
	}
}

func TestComputeBlockStats(t *testing.T) {
	questionBlocks := map[int64]int64{
		1: 10, 2: 10,
		3: 20,
		4: 30,
	}
	answers := []model.Answer{
		{QuestionID: 1, IsCorrect: true},
		{QuestionID: 2, IsCorrect: false},
		{QuestionID: 3, IsCorrect: true},
	}

	stats := ComputeBlockStats(answers, questionBlocks, []int64{10, 20, 30})

	// Block 30 has no answers and must be omitted.
	if len(stats) != 2 {
		t.Fatalf("got %d block stats, want 2", len(stats))
	}

	if stats[0].BlockID != 10 || stats[0].Total != 2 || stats[0].Correct != 1 || stats[0].Percent != 50.0 {
		t.Errorf("block 10 stats = %+v", stats[0])
	}
	if stats[1].BlockID != 20 || stats[1].Total != 1 || stats[1].Correct != 1 || stats[1].Percent != 100.0 {
		t.Errorf("block 20 stats = %+v", stats[1])
	}
}

func TestComputeBlockStatsTotalIsAnsweredCount(t *testing.T) {
	// Two questions belong to the block but only one was answered: the
	// block total is 1 and the single correct answer scores 100%.
	questionBlocks := map[int64]int64{1: 10, 2: 10}
	answers := []model.Answer{{QuestionID: 1, IsCorrect: true}}

	stats := ComputeBlockStats(answers, questionBlocks, []int64{10})
	if len(stats) != 1 {
		t.Fatalf("got %d block stats, want 1", len(stats))
	}
	if stats[0].Total != 1 || stats[0].Correct != 1 || stats[0].Percent != 100.0 {
		t.Errorf("block 10 stats = %+v, want total 1 percent 100.0", stats[0])
	}
}

func TestComputeBlockStatsOrder(t *testing.T) {
	questionBlocks := map[int64]int64{1: 10, 2: 20}
	answers := []model.Answer{
		{QuestionID: 2, IsCorrect: true},
		{QuestionID: 1, IsCorrect: true},
	}

	// Stats follow the supplied block order, not the answer order.
	stats := ComputeBlockStats(answers, questionBlocks, []int64{20, 10})
	if len(stats) != 2 || stats[0].BlockID != 20 || stats[1].BlockID != 10 {
		t.Errorf("unexpected order: %+v", stats)
	}
}

func TestComputeBlockStatsIgnoresUnknownQuestions(t *testing.T) {
	questionBlocks := map[int64]int64{1: 10}
	answers := []model.Answer{
		{QuestionID: 1, IsCorrect: true},
		{QuestionID: 99, IsCorrect: true},
	}

	stats := ComputeBlockStats(answers, questionBlocks, []int64{10})
	if len(stats) != 1 || stats[0].Correct != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
