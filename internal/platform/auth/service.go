package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleCoach = "coach"
	RoleAdmin = "admin"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("authentication failed")
	ErrDisabled           = errors.New("account disabled")
	ErrInvalidRole        = errors.New("invalid role")
)

type AuthService interface {
	Login(ctx context.Context, id, password string) (string, error)
	Register(ctx context.Context, in RegisterInput) error
	Delete(ctx context.Context, id string) error
	ChangeID(ctx context.Context, oldID, newID string) error
}

type RegisterInput struct {
	ID       string
	Password string
	Role     string
	StaffID  *string
}

type Service struct {
	store  AccountStore
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func NewService(store AccountStore, secret []byte, ttl time.Duration) *Service {
	return &Service{
		store:  store,
		secret: secret,
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

func (s *Service) Login(ctx context.Context, id, password string) (string, error) {
	acct, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if acct == nil {
		return "", ErrInvalidCredentials
	}
	if acct.IsDisabled {
		return "", ErrDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":  acct.ID,
		"role": acct.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}
	if acct.StaffID != nil {
		claims["staff_id"] = *acct.StaffID
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if in.Role == "" {
		in.Role = RoleCoach
	}
	if in.Role != RoleCoach && in.Role != RoleAdmin {
		return ErrInvalidRole
	}

	exists, err := s.store.GetByID(ctx, in.ID)
	if err != nil {
		return err
	}
	if exists != nil {
		return ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return err
	}

	return s.store.Create(ctx, &Account{
		ID:           in.ID,
		PasswordHash: string(hash),
		Role:         in.Role,
		StaffID:      in.StaffID,
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ChangeID(ctx context.Context, oldID, newID string) error {
	old, err := s.store.GetByID(ctx, oldID)
	if err != nil {
		return err
	}
	if old == nil {
		return ErrNotFound
	}

	nw, err := s.store.GetByID(ctx, newID)
	if err != nil {
		return err
	}
	if nw != nil {
		return ErrAlreadyExists
	}

	updated, err := s.store.UpdateID(ctx, oldID, newID)
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}
