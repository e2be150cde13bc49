package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Claims represents the JWT claims
type Claims struct {
	AccountID int64  `json:"uid"`
	Role      string `json:"role"`
	jwt.StandardClaims
}

// TokenIssuer mints and verifies HS256 bearer tokens
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewTokenIssuer creates an issuer signing with secret
func NewTokenIssuer(secret, issuer, audience string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

// Mint generates a token for an account
func (ti *TokenIssuer) Mint(accountID int64, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID: accountID,
		Role:      role,
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			Issuer:    ti.issuer,
			Audience:  ti.audience,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ti.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ti.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Verify parses a token and checks signature, expiry, issuer and audience
func (ti *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return ti.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.VerifyIssuer(ti.issuer, true) {
		return nil, errors.New("unexpected token issuer")
	}
	if !claims.VerifyAudience(ti.audience, true) {
		return nil, errors.New("unexpected token audience")
	}
	if claims.AccountID <= 0 {
		return nil, errors.New("token has no account")
	}
	return claims, nil
}
