package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certifex/certifex-backend/internal/model"
)

// ErrContentInUse is returned when a tree edit would delete a question or
// option that recorded answers already reference.
var ErrContentInUse = errors.New("content is referenced by recorded answers")

// OptionKey pairs an option with its question and correctness flag. Used
// to warm the per-exam answer-key cache.
type OptionKey struct {
	OptionID   int64
	QuestionID int64
	IsCorrect  bool
}

// ContentRepository handles blocks, questions and options.
type ContentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

// ListBlocks retrieves all blocks of an exam ordered by order_index.
func (r *ContentRepository) ListBlocks(ctx context.Context, examID int64) ([]model.Block, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, title, qty, order_index, enabled
		 FROM blocks WHERE exam_id = $1
		 ORDER BY order_index`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []model.Block
	for rows.Next() {
		var b model.Block
		if err := rows.Scan(&b.ID, &b.ExamID, &b.Title, &b.Qty, &b.OrderIndex, &b.Enabled); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// GetBlock retrieves one block.
func (r *ContentRepository) GetBlock(ctx context.Context, id int64) (*model.Block, error) {
	b := &model.Block{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, title, qty, order_index, enabled
		 FROM blocks WHERE id = $1`, id,
	).Scan(&b.ID, &b.ExamID, &b.Title, &b.Qty, &b.OrderIndex, &b.Enabled)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListEnabledQuestionIDs retrieves the IDs of enabled questions in a block,
// ordered by order_index. The session draw shuffles from this pool.
func (r *ContentRepository) ListEnabledQuestionIDs(ctx context.Context, blockID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM questions
		 WHERE block_id = $1 AND enabled = TRUE
		 ORDER BY order_index`, blockID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetQuestionsByIDs retrieves questions with their options, preserving the
// order of the given ID slice.
func (r *ContentRepository) GetQuestionsByIDs(ctx context.Context, ids []int64) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, block_id, code, text, order_index, enabled
		 FROM questions WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]*model.Question, len(ids))
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.BlockID, &q.Code, &q.Text, &q.OrderIndex, &q.Enabled); err != nil {
			return nil, err
		}
		byID[q.ID] = &q
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	optRows, err := r.pool.Query(ctx,
		`SELECT id, question_id, text, is_correct
		 FROM options WHERE question_id = ANY($1)
		 ORDER BY id`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var o model.Option
		if err := optRows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect); err != nil {
			return nil, err
		}
		if q, ok := byID[o.QuestionID]; ok {
			q.Options = append(q.Options, o)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			questions = append(questions, *q)
		}
	}
	return questions, nil
}

// GetOption retrieves one option.
func (r *ContentRepository) GetOption(ctx context.Context, id int64) (*model.Option, error) {
	o := &model.Option{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, question_id, text, is_correct
		 FROM options WHERE id = $1`, id,
	).Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListOptionKeys retrieves every option of an exam with its question and
// correctness flag, for warming the answer-key cache.
func (r *ContentRepository) ListOptionKeys(ctx context.Context, examID int64) ([]OptionKey, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.id, o.question_id, o.is_correct
		 FROM options o
		 JOIN questions q ON o.question_id = q.id
		 JOIN blocks b ON q.block_id = b.id
		 WHERE b.exam_id = $1`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []OptionKey
	for rows.Next() {
		var k OptionKey
		if err := rows.Scan(&k.OptionID, &k.QuestionID, &k.IsCorrect); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// GetTree retrieves the full editable content of an exam, correctness
// included.
func (r *ContentRepository) GetTree(ctx context.Context, examID int64) (*model.ContentTree, error) {
	blocks, err := r.ListBlocks(ctx, examID)
	if err != nil {
		return nil, err
	}

	tree := &model.ContentTree{Blocks: make([]model.ContentBlock, 0, len(blocks))}
	for _, b := range blocks {
		cb := model.ContentBlock{ID: b.ID, Title: b.Title, Qty: b.Qty, Enabled: b.Enabled}

		rows, err := r.pool.Query(ctx,
			`SELECT id, code, text, enabled
			 FROM questions WHERE block_id = $1
			 ORDER BY order_index`, b.ID,
		)
		if err != nil {
			return nil, err
		}
		var questions []model.ContentQuestion
		var questionIDs []int64
		for rows.Next() {
			var q model.ContentQuestion
			if err := rows.Scan(&q.ID, &q.Code, &q.Text, &q.Enabled); err != nil {
				rows.Close()
				return nil, err
			}
			questions = append(questions, q)
			questionIDs = append(questionIDs, q.ID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		if len(questionIDs) > 0 {
			optRows, err := r.pool.Query(ctx,
				`SELECT id, question_id, text, is_correct
				 FROM options WHERE question_id = ANY($1)
				 ORDER BY id`, questionIDs,
			)
			if err != nil {
				return nil, err
			}
			type opt struct {
				o       model.ContentOption
				qID     int64
				correct bool
			}
			var opts []opt
			for optRows.Next() {
				var (
					o       model.ContentOption
					qID     int64
					correct bool
				)
				if err := optRows.Scan(&o.ID, &qID, &o.Text, &correct); err != nil {
					optRows.Close()
					return nil, err
				}
				opts = append(opts, opt{o: o, qID: qID, correct: correct})
			}
			optRows.Close()
			if err := optRows.Err(); err != nil {
				return nil, err
			}
			for i := range questions {
				for _, op := range opts {
					if op.qID != questions[i].ID {
						continue
					}
					questions[i].Options = append(questions[i].Options, op.o)
					if op.correct {
						questions[i].CorrectOptionID = op.o.ID
					}
				}
			}
		}

		cb.Questions = questions
		tree.Blocks = append(tree.Blocks, cb)
	}
	return tree, nil
}

// ReplaceTree applies the editor tree as a whole-tree replacement inside
// one transaction. Existing entities are matched by ID and updated; zero-ID
// entities are inserted; entities absent from the tree are deleted. The
// delete is refused with ErrContentInUse when recorded answers reference a
// question or option that would go away, so finished results stay readable.
func (r *ContentRepository) ReplaceTree(ctx context.Context, examID int64, tree *model.ContentTree) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	keptBlocks := make(map[int64]bool)
	keptQuestions := make(map[int64]bool)
	keptOptions := make(map[int64]bool)

	for blockIdx := range tree.Blocks {
		cb := &tree.Blocks[blockIdx]
		if cb.ID > 0 {
			tag, err := tx.Exec(ctx,
				`UPDATE blocks SET title = $2, qty = $3, order_index = $4, enabled = $5
				 WHERE id = $1 AND exam_id = $6`,
				cb.ID, cb.Title, cb.Qty, blockIdx, cb.Enabled, examID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return pgx.ErrNoRows
			}
		} else {
			err := tx.QueryRow(ctx,
				`INSERT INTO blocks (exam_id, title, qty, order_index, enabled)
				 VALUES ($1, $2, $3, $4, $5)
				 RETURNING id`,
				examID, cb.Title, cb.Qty, blockIdx, cb.Enabled,
			).Scan(&cb.ID)
			if err != nil {
				return err
			}
		}
		keptBlocks[cb.ID] = true

		for qIdx := range cb.Questions {
			cq := &cb.Questions[qIdx]
			if cq.ID > 0 {
				tag, err := tx.Exec(ctx,
					`UPDATE questions SET code = $2, text = $3, order_index = $4, enabled = $5, block_id = $6
					 WHERE id = $1`,
					cq.ID, cq.Code, cq.Text, qIdx, cq.Enabled, cb.ID)
				if err != nil {
					return err
				}
				if tag.RowsAffected() == 0 {
					return pgx.ErrNoRows
				}
			} else {
				err := tx.QueryRow(ctx,
					`INSERT INTO questions (block_id, code, text, order_index, enabled)
					 VALUES ($1, $2, $3, $4, $5)
					 RETURNING id`,
					cb.ID, cq.Code, cq.Text, qIdx, cq.Enabled,
				).Scan(&cq.ID)
				if err != nil {
					return err
				}
			}
			keptQuestions[cq.ID] = true

			for oIdx := range cq.Options {
				co := &cq.Options[oIdx]
				if co.ID > 0 {
					tag, err := tx.Exec(ctx,
						`UPDATE options SET text = $2 WHERE id = $1 AND question_id = $3`,
						co.ID, co.Text, cq.ID)
					if err != nil {
						return err
					}
					if tag.RowsAffected() == 0 {
						return pgx.ErrNoRows
					}
				} else {
					err := tx.QueryRow(ctx,
						`INSERT INTO options (question_id, text, is_correct)
						 VALUES ($1, $2, FALSE)
						 RETURNING id`,
						cq.ID, co.Text,
					).Scan(&co.ID)
					if err != nil {
						return err
					}
				}
				keptOptions[co.ID] = true
			}

			correctID := cq.CorrectOptionID
			if correctID == 0 && cq.CorrectOptionIndex != nil && *cq.CorrectOptionIndex < len(cq.Options) {
				correctID = cq.Options[*cq.CorrectOptionIndex].ID
			}
			if _, err := tx.Exec(ctx,
				`UPDATE options SET is_correct = (id = $2) WHERE question_id = $1`,
				cq.ID, correctID); err != nil {
				return err
			}
		}
	}

	dropQuestions, dropOptions, dropBlocks, err := collectDrops(ctx, tx, examID, keptBlocks, keptQuestions, keptOptions)
	if err != nil {
		return err
	}

	if len(dropQuestions) > 0 || len(dropOptions) > 0 {
		var n int64
		err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM answers
			 WHERE question_id = ANY($1) OR option_id = ANY($2)`,
			dropQuestions, dropOptions,
		).Scan(&n)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrContentInUse
		}
	}

	if len(dropOptions) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM options WHERE id = ANY($1)`, dropOptions); err != nil {
			return err
		}
	}
	if len(dropQuestions) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM options WHERE question_id = ANY($1)`, dropQuestions); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE id = ANY($1)`, dropQuestions); err != nil {
			return err
		}
	}
	if len(dropBlocks) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM blocks WHERE id = ANY($1)`, dropBlocks); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// collectDrops lists the IDs present in the database but absent from the
// submitted tree. Questions of dropped blocks count as dropped questions.
func collectDrops(ctx context.Context, tx pgx.Tx, examID int64, keptBlocks, keptQuestions, keptOptions map[int64]bool) (questions, options, blocks []int64, err error) {
	rows, err := tx.Query(ctx,
		`SELECT b.id, q.id, o.id
		 FROM blocks b
		 LEFT JOIN questions q ON q.block_id = b.id
		 LEFT JOIN options o ON o.question_id = q.id
		 WHERE b.exam_id = $1`, examID,
	)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()

	blockSeen := make(map[int64]bool)
	questionSeen := make(map[int64]bool)
	for rows.Next() {
		var (
			blockID    int64
			questionID *int64
			optionID   *int64
		)
		if err := rows.Scan(&blockID, &questionID, &optionID); err != nil {
			return nil, nil, nil, err
		}
		if !keptBlocks[blockID] && !blockSeen[blockID] {
			blockSeen[blockID] = true
			blocks = append(blocks, blockID)
		}
		if questionID != nil && (!keptQuestions[*questionID] || !keptBlocks[blockID]) && !questionSeen[*questionID] {
			questionSeen[*questionID] = true
			questions = append(questions, *questionID)
		}
		if optionID != nil && questionID != nil && !questionSeen[*questionID] && !keptOptions[*optionID] {
			options = append(options, *optionID)
		}
	}
	return questions, options, blocks, rows.Err()
}
