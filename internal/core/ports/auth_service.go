package ports

import (
	"context"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

// RegisterInput carries everything needed to create an account. RoleNames is
// optional; when empty the default USER role is assigned.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleNames []string
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Username     string `json:"username"`
	Email        string `json:"email"`
}

// AuthService orchestrates registration, login and token refresh.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// AuthorityResolver flattens a user's role memberships into the concrete
// authority set used for authorization decisions. Resolution always reads the
// current role/permission state; there is no cross-request caching.
type AuthorityResolver interface {
	Resolve(ctx context.Context, user *domain.User) ([]string, error)
}
