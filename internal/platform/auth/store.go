package auth

import (
	"context"
	"database/sql"
	"errors"

	"coachdesk-backend/internal/platform/db"
)

type Account struct {
	ID           string  `db:"id"`
	PasswordHash string  `db:"password_hash"`
	Role         string  `db:"role"`
	IsDisabled   bool    `db:"is_disabled"`
	StaffID      *string `db:"staffid"`
}

type AccountStore interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id string) (int64, error)
	UpdateID(ctx context.Context, oldID, newID string) (int64, error)
}

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) AccountStore {
	return &Store{db: conn}
}

func (s *Store) GetByID(ctx context.Context, id string) (*Account, error) {
	const q = `
SELECT id, password_hash, role, is_disabled, staffid
FROM auth_accounts
WHERE id = ?
LIMIT 1
`
	var a Account
	err := s.db.GetContext(ctx, &a, s.db.Rebind(q), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
INSERT INTO auth_accounts (id, password_hash, role, is_disabled, staffid)
VALUES (?, ?, ?, ?, ?)
`
	_, err := s.db.ExecContext(ctx, s.db.Rebind(q), a.ID, a.PasswordHash, a.Role, a.IsDisabled, a.StaffID)
	return err
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM auth_accounts WHERE id = ?`
	res, err := s.db.ExecContext(ctx, s.db.Rebind(q), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UpdateID(ctx context.Context, oldID, newID string) (int64, error) {
	const q = `UPDATE auth_accounts SET id = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, s.db.Rebind(q), newID, oldID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
