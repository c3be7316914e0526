package service

import (
	"math"

	"github.com/certifex/certifex-backend/internal/model"
)

// Round2 rounds to two decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ComputeScore derives the final percentage from the answer ledger. The
// denominator is the number of answered questions; questions the
// candidate never touched are not part of the score. An empty ledger
// scores 0.0.
func ComputeScore(answers []model.Answer) float64 {
	if len(answers) == 0 {
		return 0
	}
	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}
	return Round2(float64(correct) / float64(len(answers)) * 100)
}

// ComputeBlockStats groups the ledger by block and produces per-block
// totals in the given block order. questionBlocks maps question ID to
// block ID. Each block's total is the count of distinct questions
// answered in it; blocks without a single answer are omitted.
func ComputeBlockStats(answers []model.Answer, questionBlocks map[int64]int64, blockOrder []int64) []model.BlockStat {
	type agg struct {
		answered int
		correct  int
	}
	byBlock := make(map[int64]*agg)
	for _, a := range answers {
		blockID, ok := questionBlocks[a.QuestionID]
		if !ok {
			continue
		}
		st := byBlock[blockID]
		if st == nil {
			st = &agg{}
			byBlock[blockID] = st
		}
		st.answered++
		if a.IsCorrect {
			st.correct++
		}
	}

	stats := make([]model.BlockStat, 0, len(byBlock))
	for _, blockID := range blockOrder {
		st, ok := byBlock[blockID]
		if !ok {
			continue
		}
		stats = append(stats, model.BlockStat{
			BlockID: blockID,
			Total:   st.answered,
			Correct: st.correct,
			Percent: Round2(float64(st.correct) / float64(st.answered) * 100),
		})
	}
	return stats
}
