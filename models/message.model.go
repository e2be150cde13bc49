package models

import "time"

// Message is a contact form submission from the storefront
type Message struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name" validate:"required,max=100"`
	Email     string     `db:"email" json:"email" validate:"required,email,max=100"`
	Subject   string     `db:"subject" json:"subject" validate:"max=200"`
	Body      string     `db:"body" json:"body" validate:"required,max=5000"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	RepliedAt *time.Time `db:"replied_at" json:"replied_at"`
}
