package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
	"github.com/toronto-opendata/auth-service/internal/core/ports"
)

// AuthService implements registration, login and token refresh on top of the
// credential store, the token service and the authority resolver.
type AuthService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	tokens   ports.TokenService
	resolver ports.AuthorityResolver
	throttle ports.LoginThrottle
	audit    ports.AuditPublisher
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	tokens ports.TokenService,
	resolver ports.AuthorityResolver,
	throttle ports.LoginThrottle,
	audit ports.AuditPublisher,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		roles:    roles,
		tokens:   tokens,
		resolver: resolver,
		throttle: throttle,
		audit:    audit,
		log:      log,
	}
}

// Register creates a new account. Role-name resolution is all-or-nothing: if
// any requested role does not exist, nothing is persisted. With no requested
// roles the default USER role is assigned. Username/email uniqueness is
// ultimately enforced by the store, so a concurrent duplicate registration
// loses with the same error as a sequential one.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	roleNames := in.RoleNames
	if len(roleNames) == 0 {
		roleNames = []string{domain.DefaultRoleName}
	}
	roleIDs := make([]string, 0, len(roleNames))
	for _, name := range roleNames {
		role, err := s.roles.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		roleIDs = append(roleIDs, role.ID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:              in.Username,
		Email:                 in.Email,
		PasswordHash:          string(hash),
		FirstName:             in.FirstName,
		LastName:              in.LastName,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
		CreatedAt:             now,
		UpdatedAt:             now,
		RoleIDs:               roleIDs,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Msg("user registered")
	s.publish(domain.AuthEvent{
		Username: created.Username,
		Action:   domain.AuditRegister,
		Outcome:  domain.OutcomeSuccess,
	})
	return created, nil
}

// Login authenticates a username/password pair and issues a token pair.
// Unknown username and wrong password are indistinguishable to the caller.
// Account-status flags are enforced here, not only at the transport layer.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.TokenPair, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if blocked, err := s.blocked(ctx, username); err == nil && blocked {
		s.publish(domain.AuthEvent{
			Username: username,
			Action:   domain.AuditLogin,
			Outcome:  domain.OutcomeFailure,
			Reason:   "throttled",
		})
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, s.loginFailure(ctx, username, "unknown user")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, s.loginFailure(ctx, username, "bad password")
	}

	if err := accountStatus(user); err != nil {
		s.publish(domain.AuthEvent{
			Username: username,
			Action:   domain.AuditLogin,
			Outcome:  domain.OutcomeFailure,
			Reason:   err.Error(),
		})
		return nil, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	user.UpdatedAt = now
	if _, err := s.users.Update(ctx, user); err != nil {
		// The token pair is already valid; a failed timestamp write is not
		// worth failing the login over.
		s.log.Warn().Err(err).Str("username", username).Msg("last-login update failed")
	}

	s.resetThrottle(ctx, username)
	s.publish(domain.AuthEvent{
		Username: username,
		Action:   domain.AuditLogin,
		Outcome:  domain.OutcomeSuccess,
	})
	return pair, nil
}

// Refresh validates a refresh token and issues a fresh pair. Authorities are
// re-resolved from the store, so role changes since the last login are
// honored. Access tokens presented here fail the class check and surface as
// ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, err := s.tokens.Validate(refreshToken, ports.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	// The user may have been deleted since the refresh token was issued; an
	// expected race, not an exceptional one.
	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if err := accountStatus(user); err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(domain.AuthEvent{
		Username: user.Username,
		Action:   domain.AuditRefresh,
		Outcome:  domain.OutcomeSuccess,
	})
	return pair, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *domain.User) (*ports.TokenPair, error) {
	authorities, err := s.resolver.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccessToken(user.Username, authorities)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user.Username)
	if err != nil {
		return nil, err
	}

	return &ports.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		Username:     user.Username,
		Email:        user.Email,
	}, nil
}

func (s *AuthService) loginFailure(ctx context.Context, username, reason string) error {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, username); err != nil {
			s.log.Warn().Err(err).Msg("throttle record failed")
		}
	}
	s.publish(domain.AuthEvent{
		Username: username,
		Action:   domain.AuditLogin,
		Outcome:  domain.OutcomeFailure,
		Reason:   reason,
	})
	return domain.ErrInvalidCredentials
}

// blocked consults the throttle, failing open when the backend is down: a
// degraded redis must not lock everyone out.
func (s *AuthService) blocked(ctx context.Context, username string) (bool, error) {
	if s.throttle == nil {
		return false, nil
	}
	blocked, err := s.throttle.Blocked(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Msg("throttle check failed")
		return false, err
	}
	return blocked, nil
}

func (s *AuthService) resetThrottle(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, username); err != nil {
		s.log.Warn().Err(err).Msg("throttle reset failed")
	}
}

func (s *AuthService) publish(event domain.AuthEvent) {
	if s.audit == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	s.audit.Publish(event)
}

// accountStatus maps status flags to their denial errors. Disabled wins over
// locked when both apply.
func accountStatus(user *domain.User) error {
	if !user.Enabled {
		return domain.ErrAccountDisabled
	}
	if !user.AccountNonLocked {
		return domain.ErrAccountLocked
	}
	if !user.AccountNonExpired || !user.CredentialsNonExpired {
		return domain.ErrAccountDisabled
	}
	return nil
}
