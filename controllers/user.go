package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"candle-shop/middleware"
	"candle-shop/models"
	"candle-shop/store"

	"github.com/sirupsen/logrus"
)

// AccountStore is the account persistence the user and address handlers need
type AccountStore interface {
	CreateAccount(ctx context.Context, name, email, passwordHash string) (models.User, error)
	GetAccount(ctx context.Context, id int64) (models.User, error)
	GetAccountByEmail(ctx context.Context, email string) (models.User, error)
	ListAddresses(ctx context.Context, accountID int64) ([]models.Address, error)
	AddAddress(ctx context.Context, accountID int64, candidate models.Address) (models.Address, error)
}

// PasswordHasher hashes and checks credentials
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenMinter issues bearer tokens
type TokenMinter interface {
	Mint(accountID int64, role string) (string, error)
}

// UserController handles registration, login and the profile
type UserController struct {
	Accounts AccountStore
	Hasher   PasswordHasher
	Tokens   TokenMinter
}

// NewUserController creates a new UserController
func NewUserController(accounts AccountStore, hasher PasswordHasher, tokens TokenMinter) *UserController {
	return &UserController{Accounts: accounts, Hasher: hasher, Tokens: tokens}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name" validate:"required,max=100"`
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,min=6,max=72"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validate.Struct(input); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	hashedPassword, err := uc.Hasher.Hash(input.Password)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.Accounts.CreateAccount(ctx, input.Name, input.Email, hashedPassword)
	if errors.Is(err, store.ErrConflict) {
		http.Error(w, "User already exists", http.StatusConflict)
		return
	}
	if err != nil {
		writeStoreError(w, r, err, "User not found")
		return
	}

	middleware.Logger(r.Context()).WithField("account_id", user.ID).Info("account registered")
	writeJSON(w, map[string]interface{}{
		"id":      user.ID,
		"message": "User registered successfully.",
	})
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := decodeJSON(w, r, &creds); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(creds); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.Accounts.GetAccountByEmail(ctx, strings.TrimSpace(creds.Email))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeStoreError(w, r, err, "Invalid credentials")
		return
	}
	if !uc.Hasher.Verify(creds.Password, user.PasswordHash) {
		middleware.Logger(r.Context()).WithField("account_id", user.ID).Warn("login rejected")
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := uc.Tokens.Mint(user.ID, user.Role)
	if err != nil {
		middleware.Logger(r.Context()).WithError(err).Error("mint token")
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	middleware.Logger(r.Context()).WithFields(logrus.Fields{"account_id": user.ID, "role": user.Role}).Info("login")
	writeJSON(w, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.Accounts.GetAccount(ctx, id.AccountID)
	if err != nil {
		writeStoreError(w, r, err, "User not found")
		return
	}
	writeJSON(w, user)
}
