// Package users manages storefront accounts. Passwords are stored and compared
// as given.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/store"
)

var (
	ErrUserExists    = errors.New("user already exists")
	ErrUnknownEmail  = errors.New("user doesn't exist, please sign up")
	ErrWrongPassword = errors.New("password is incorrect")
	ErrInvalidUser   = errors.New("invalid user")
)

type Directory struct {
	writer *store.Writer
}

func NewDirectory(writer *store.Writer) *Directory {
	return &Directory{writer: writer}
}

// Signup registers a regular user. Emails are unique.
func (d *Directory) Signup(ctx context.Context, name, email, password string) (*domain.User, error) {
	return d.create(ctx, name, email, password, domain.RoleUser)
}

// EnsureAdmin creates an admin account for email unless one exists already.
// It reports whether an account was created.
func (d *Directory) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := d.create(ctx, name, email, password, domain.RoleAdmin)
	if errors.Is(err, ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *Directory) create(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	user := domain.User{
		UserID:   uuid.New().String(),
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
		Role:     role,
		Orders:   []domain.Order{},
	}
	if err := validate(user); err != nil {
		return nil, err
	}

	err := d.writer.Update(ctx, func(snap *domain.Snapshot) error {
		if findByEmail(snap, user.Email) >= 0 {
			return ErrUserExists
		}
		snap.Users = append(snap.Users, user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Login returns the profile of the user whose email and password match.
func (d *Directory) Login(ctx context.Context, email, password string) (*domain.Profile, error) {
	snap, err := d.writer.Read(ctx)
	if err != nil {
		return nil, err
	}

	idx := findByEmail(snap, strings.TrimSpace(email))
	if idx < 0 {
		return nil, ErrUnknownEmail
	}

	user := snap.Users[idx]
	if user.Password != password {
		return nil, ErrWrongPassword
	}

	profile := user.Profile()
	return &profile, nil
}

// Customers lists every non-admin user.
func (d *Directory) Customers(ctx context.Context) ([]domain.Profile, error) {
	return d.list(ctx, func(u *domain.User) bool { return !u.IsAdmin() })
}

func (d *Directory) All(ctx context.Context) ([]domain.Profile, error) {
	return d.list(ctx, func(*domain.User) bool { return true })
}

func (d *Directory) list(ctx context.Context, keep func(*domain.User) bool) ([]domain.Profile, error) {
	snap, err := d.writer.Read(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(snap.Users))
	for i := range snap.Users {
		if keep(&snap.Users[i]) {
			profiles = append(profiles, snap.Users[i].Profile())
		}
	}
	return profiles, nil
}

func findByEmail(snap *domain.Snapshot, email string) int {
	for i := range snap.Users {
		if strings.EqualFold(snap.Users[i].Email, email) {
			return i
		}
	}
	return -1
}

func validate(u domain.User) error {
	switch {
	case u.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidUser)
	case u.Email == "":
		return fmt.Errorf("%w: email is required", ErrInvalidUser)
	case u.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidUser)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("%w: email is malformed", ErrInvalidUser)
	}
	return nil
}
