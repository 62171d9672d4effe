package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hiredesk/internal/client/models"
	"github.com/dmitrijs2005/hiredesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hiredesk/internal/dbx"
	"github.com/dmitrijs2005/hiredesk/internal/logging"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// SQLiteStore persists the session in the local metadata table.
type SQLiteStore struct {
	db     *sql.DB
	repo   metadata.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewSQLiteStore(db *sql.DB, logger logging.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:     db,
		repo:   metadata.NewSQLiteRepository(db),
		logger: logger,
		now:    time.Now,
	}
}

func (s *SQLiteStore) GetToken(ctx context.Context) (string, bool) {
	raw, err := s.repo.Get(ctx, keyToken)
	if err != nil {
		s.logger.Warn(ctx, "session read failed", "error", err)
		return "", false
	}
	token := string(raw)
	if token == "" {
		return "", false
	}
	if expired(token, s.now()) {
		s.logger.Info(ctx, "stored token expired, clearing session")
		if err := s.ClearSession(ctx); err != nil {
			s.logger.Warn(ctx, "session clear failed", "error", err)
		}
		return "", false
	}
	return token, true
}

func (s *SQLiteStore) User(ctx context.Context) (models.User, bool) {
	if _, ok := s.GetToken(ctx); !ok {
		return models.User{}, false
	}
	raw, err := s.repo.Get(ctx, keyUser)
	if err != nil {
		s.logger.Warn(ctx, "session read failed", "error", err)
		return models.User{}, false
	}
	if raw == nil {
		return models.User{}, false
	}
	return models.UserFromJSON(raw), true
}

// SetSession writes token and profile in one transaction.
func (s *SQLiteStore) SetSession(ctx context.Context, token string, user models.User) error {
	if token == "" {
		return ErrEmptyToken
	}
	raw, err := encodeUser(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, keyUser, raw)
	})
}

func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	return s.repo.Delete(ctx, keyToken, keyUser)
}
