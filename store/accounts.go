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

const userColumns = `id, name, email, password_hash, role, created_at`

const addressColumns = `id, user_id, name, address_line, city, zip, phone, is_default`

// Accounts persists accounts and their shipping addresses
type Accounts struct {
	db *sqlx.DB
}

// NewAccounts creates an account store on db
func NewAccounts(db *sqlx.DB) *Accounts {
	return &Accounts{db: db}
}

// CreateAccount registers a new account with the User role.
// Emails are unique regardless of case.
func (a *Accounts) CreateAccount(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
	}
	err := a.db.QueryRowxContext(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, user.Name, user.Email, user.PasswordHash, user.Role).Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return models.User{}, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if err != nil {
		return models.User{}, storageErr("insert user", err)
	}
	return user, nil
}

// EnsureAdmin creates the admin account or promotes and re-keys an existing
// account with the same email.
func (a *Accounts) EnsureAdmin(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	var user models.User
	err := a.db.GetContext(ctx, &user, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ((lower(email))) DO UPDATE
		SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role
		RETURNING `+userColumns,
		strings.TrimSpace(name), strings.TrimSpace(email), passwordHash, models.RoleAdmin)
	if err != nil {
		return models.User{}, storageErr("upsert admin", err)
	}
	return user, nil
}

// GetAccount loads an account by id
func (a *Accounts) GetAccount(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := a.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("%w: account %d", ErrNotFound, id)
	}
	if err != nil {
		return models.User{}, storageErr("select user", err)
	}
	return user, nil
}

// GetAccountByEmail loads an account by email, ignoring case
func (a *Accounts) GetAccountByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := a.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("%w: account %q", ErrNotFound, email)
	}
	if err != nil {
		return models.User{}, storageErr("select user by email", err)
	}
	return user, nil
}

// ListAddresses returns every address owned by the account in insertion order
func (a *Accounts) ListAddresses(ctx context.Context, accountID int64) ([]models.Address, error) {
	addresses := []models.Address{}
	err := a.db.SelectContext(ctx, &addresses,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY id`, accountID)
	if err != nil {
		return nil, storageErr("select addresses", err)
	}
	return addresses, nil
}

// planDefault decides the default flag of an address added next to existing
// siblings, and whether the siblings must lose theirs.
func planDefault(existing int, requested bool) (isDefault, clearOthers bool) {
	if existing == 0 {
		return true, false
	}
	return requested, requested
}

// AddAddress stores a new address for the account. The first address an
// account ever gets is default whatever the caller asked for; a new default
// clears the flag on every sibling. The account row is locked for the
// duration so concurrent adds for one account run one after the other, and
// the addresses_one_default index rejects anything that slips through.
func (a *Accounts) AddAddress(ctx context.Context, accountID int64, candidate models.Address) (models.Address, error) {
	candidate.ID = 0
	candidate.UserID = accountID

	err := withTx(ctx, a.db, func(tx *sqlx.Tx) error {
		var locked int64
		err := tx.GetContext(ctx, &locked, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, accountID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: account %d", ErrNotFound, accountID)
		}
		if err != nil {
			return storageErr("lock account", err)
		}

		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM addresses WHERE user_id = $1`, accountID); err != nil {
			return storageErr("count addresses", err)
		}

		var clearOthers bool
		candidate.IsDefault, clearOthers = planDefault(count, candidate.IsDefault)
		if clearOthers {
			if _, err := tx.ExecContext(ctx,
				`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, accountID); err != nil {
				return storageErr("clear default address", err)
			}
		}

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO addresses (user_id, name, address_line, city, zip, phone, is_default)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, candidate.UserID, candidate.Name, candidate.AddressLine, candidate.City,
			candidate.Zip, candidate.Phone, candidate.IsDefault).Scan(&candidate.ID)
		if err != nil {
			return storageErr("insert address", err)
		}
		return nil
	})
	if err != nil {
		return models.Address{}, err
	}
	return candidate, nil
}
