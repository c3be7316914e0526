package model

// Block is an ordered, gradeable grouping of questions within an exam.
// Qty is the number of questions drawn from the block for each session.
// A disabled block is excluded from serving and from scoring denominators.
type Block struct {
	ID         int64  `json:"id"`
	ExamID     int64  `json:"exam_id"`
	Title      string `json:"title"`
	Qty        int    `json:"qty"`
	OrderIndex int    `json:"order_index"`
	Enabled    bool   `json:"enabled"`
}

// Question belongs to one block and owns an ordered set of options.
type Question struct {
	ID         int64    `json:"id"`
	BlockID    int64    `json:"block_id"`
	Code       string   `json:"code"`
	Text       string   `json:"text"`
	OrderIndex int      `json:"order_index"`
	Enabled    bool     `json:"enabled"`
	Options    []Option `json:"options,omitempty"`
}

// Option is one answer choice of a question. The admin content editor
// guarantees exactly one option per question carries IsCorrect=true; the
// exam engine trusts that invariant at scoring time.
type Option struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"-"`
}

// QuestionOut is the candidate-facing question shape: correctness flags
// are stripped from the options.
type QuestionOut struct {
	ID         int64       `json:"id"`
	Code       string      `json:"code"`
	Text       string      `json:"text"`
	OrderIndex int         `json:"order_index"`
	Options    []OptionOut `json:"options"`
}

// OptionOut is the candidate-facing option shape.
type OptionOut struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// BlockQuestionsOut is the response for serving one block of a session.
type BlockQuestionsOut struct {
	BlockID    int64         `json:"block_id"`
	BlockTitle string        `json:"block_title"`
	Qty        int           `json:"qty"`
	Questions  []QuestionOut `json:"questions"`
}

// ─── Admin content editor payloads ──────────────────────────────────

// ContentTree is the full editable exam content: blocks with nested
// questions and options. Returned by the admin editor and accepted back
// as a whole-tree replacement.
type ContentTree struct {
	Blocks []ContentBlock `json:"blocks"`
}

// ContentBlock is one block in the editor tree. A zero ID means "create".
type ContentBlock struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title" binding:"required,max=255"`
	Qty       int               `json:"qty" binding:"min=0"`
	Enabled   bool              `json:"enabled"`
	Questions []ContentQuestion `json:"questions" binding:"dive"`
}

// ContentQuestion is one question in the editor tree.
type ContentQuestion struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code" binding:"max=16"`
	Text            string          `json:"text" binding:"required,max=2000"`
	Enabled         bool            `json:"enabled"`
	Options         []ContentOption `json:"options" binding:"required,min=2,dive"`
	CorrectOptionID int64           `json:"correct_option_id"`
	// CorrectOptionIndex addresses the correct option by position when it
	// is newly created and has no ID yet. Ignored when CorrectOptionID is set.
	CorrectOptionIndex *int `json:"correct_option_index" binding:"omitempty,min=0"`
}

// ContentOption is one option in the editor tree.
type ContentOption struct {
	ID   int64  `json:"id"`
	Text string `json:"text" binding:"max=1000"`
}
