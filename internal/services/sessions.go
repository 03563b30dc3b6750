package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/terraincognita07/vocalis/internal/db"
	"github.com/terraincognita07/vocalis/internal/models"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

var ErrSessionInvalid = errors.New("session invalid")

// SessionStore keeps server-side session records so any instance sharing the
// database can resolve a token.
type SessionStore interface {
	Create(ctx context.Context, accountID uint) (string, error)
	Lookup(ctx context.Context, token string) (uint, error)
	Delete(ctx context.Context, token string) error
}

type SessionRecordRepository interface {
	Create(session *models.Session) error
	FindActive(token string, now time.Time) (models.Session, error)
	Delete(token string) error
}

type DatabaseSessionStore struct {
	records SessionRecordRepository
	ttl     time.Duration
	now     func() time.Time
}

func NewDatabaseSessionStore(records SessionRecordRepository, ttl time.Duration) *DatabaseSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &DatabaseSessionStore{records: records, ttl: ttl, now: time.Now}
}

func (store *DatabaseSessionStore) Create(ctx context.Context, accountID uint) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := store.now().UTC()
	session := models.Session{
		Token:     uuid.NewString(),
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(store.ttl),
	}
	if err := store.records.Create(&session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return session.Token, nil
}

func (store *DatabaseSessionStore) Lookup(ctx context.Context, token string) (uint, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	session, err := store.records.FindActive(token, store.now().UTC())
	if errors.Is(err, db.ErrNotFound) {
		return 0, ErrSessionInvalid
	}
	if err != nil {
		return 0, err
	}
	return session.AccountID, nil
}

func (store *DatabaseSessionStore) Delete(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return store.records.Delete(token)
}

// SessionTokens signs session store tokens into the cookie value. The JWT id is
// the store token and the subject is the account id.
type SessionTokens struct {
	store  SessionStore
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewSessionTokens(store SessionStore, secret []byte, issuer string, ttl time.Duration) *SessionTokens {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionTokens{store: store, secret: secret, issuer: issuer, ttl: ttl}
}

func (tokens *SessionTokens) TTL() time.Duration {
	return tokens.ttl
}

func (tokens *SessionTokens) Issue(ctx context.Context, accountID uint) (string, time.Time, error) {
	sessionToken, err := tokens.store.Create(ctx, accountID)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(tokens.ttl)
	claims := jwt.RegisteredClaims{
		ID:        sessionToken,
		Subject:   strconv.FormatUint(uint64(accountID), 10),
		Issuer:    tokens.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokens.secret)
	if err != nil {
		_ = tokens.store.Delete(ctx, sessionToken)
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, expiresAt, nil
}

func (tokens *SessionTokens) parse(signed string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) {
		return tokens.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokens.issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrSessionInvalid
	}
	return claims, nil
}

// Resolve verifies the cookie value and returns the account it belongs to.
func (tokens *SessionTokens) Resolve(ctx context.Context, signed string) (uint, error) {
	claims, err := tokens.parse(signed)
	if err != nil {
		return 0, err
	}
	subject, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrSessionInvalid
	}

	accountID, err := tokens.store.Lookup(ctx, claims.ID)
	if err != nil {
		return 0, err
	}
	if uint64(accountID) != subject {
		return 0, ErrSessionInvalid
	}
	return accountID, nil
}

// Revoke removes the server-side session. Unparseable values are ignored.
func (tokens *SessionTokens) Revoke(ctx context.Context, signed string) error {
	claims, err := tokens.parse(signed)
	if err != nil {
		return nil
	}
	return tokens.store.Delete(ctx, claims.ID)
}
