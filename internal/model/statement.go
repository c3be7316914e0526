package model

import (
	"time"
)

// Statement is a free-text message a user files with the administration.
type Statement struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateStatementRequest is the payload for filing a statement.
type CreateStatementRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

// StatementWithAuthor is the admin inbox row.
type StatementWithAuthor struct {
	Statement
	AuthorFirstName string `json:"author_first_name"`
	AuthorLastName  string `json:"author_last_name"`
	AuthorEmail     string `json:"author_email"`
}
