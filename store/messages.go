package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"candle-shop/models"

	"github.com/jmoiron/sqlx"
)

const messageColumns = `id, name, email, subject, body, created_at, replied_at`

// Messages keeps contact form submissions for the admin inbox
type Messages struct {
	db *sqlx.DB
}

// NewMessages creates the contact message inbox on db
func NewMessages(db *sqlx.DB) *Messages {
	return &Messages{db: db}
}

// Create stores a message and returns it with its id and timestamp
func (m *Messages) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Subject = strings.TrimSpace(msg.Subject)
	if msg.Name == "" || msg.Email == "" || strings.TrimSpace(msg.Body) == "" {
		return models.Message{}, fmt.Errorf("%w: name, email and body are required", ErrInvalidInput)
	}

	err := m.db.QueryRowxContext(ctx, `
		INSERT INTO messages (name, email, subject, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, msg.Name, msg.Email, msg.Subject, msg.Body).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return models.Message{}, storageErr("insert message", err)
	}
	return msg, nil
}

// List returns every message, newest first
func (m *Messages) List(ctx context.Context) ([]models.Message, error) {
	messages := []models.Message{}
	err := m.db.SelectContext(ctx, &messages,
		`SELECT `+messageColumns+` FROM messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, storageErr("select messages", err)
	}
	return messages, nil
}

// Get returns one message, ErrNotFound when the id is unknown
func (m *Messages) Get(ctx context.Context, id int64) (models.Message, error) {
	var msg models.Message
	err := m.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, fmt.Errorf("%w: message %d", ErrNotFound, id)
	}
	if err != nil {
		return models.Message{}, storageErr("select message", err)
	}
	return msg, nil
}

// MarkReplied stamps the time the last reply went out
func (m *Messages) MarkReplied(ctx context.Context, id int64) error {
	res, err := m.db.ExecContext(ctx, `UPDATE messages SET replied_at = now() WHERE id = $1`, id)
	if err != nil {
		return storageErr("mark message replied", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return storageErr("mark message replied", err)
	} else if n == 0 {
		return fmt.Errorf("%w: message %d", ErrNotFound, id)
	}
	return nil
}
