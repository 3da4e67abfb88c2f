package identity

import (
	"context"
	"time"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
)

// User is a registered account. PasswordHash is a bcrypt hash.
type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Name         string      `json:"name"`
	Phone        string      `json:"phone,omitempty"`
	Role         domain.Role `json:"role"`
	Company      string      `json:"company,omitempty"`
	IsActive     bool        `json:"isActive"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (u *User) Principal() domain.Principal {
	return domain.Principal{ID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email}
}

// UserRepository stores accounts. Emails are unique; Create returns
// domain.ErrConflict for a taken email and lookups return domain.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

// SessionStore tracks live sessions by token id. Sessions expire after ttl.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}
