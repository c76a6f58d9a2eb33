package domain

import "time"

// User models an account in the authentication store. Role membership is held
// as an edge set of role ids rather than embedded Role values, so roles and
// users keep independent lifetimes.
type User struct {
	ID                    string     `json:"id" bson:"_id,omitempty"`
	Username              string     `json:"username" bson:"username"`
	Email                 string     `json:"email" bson:"email"`
	PasswordHash          string     `json:"-" bson:"password_hash"`
	FirstName             string     `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName              string     `json:"last_name,omitempty" bson:"last_name,omitempty"`
	Enabled               bool       `json:"enabled" bson:"enabled"`
	AccountNonExpired     bool       `json:"account_non_expired" bson:"account_non_expired"`
	AccountNonLocked      bool       `json:"account_non_locked" bson:"account_non_locked"`
	CredentialsNonExpired bool       `json:"credentials_non_expired" bson:"credentials_non_expired"`
	LastLogin             *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt             time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" bson:"updated_at"`
	RoleIDs               []string   `json:"role_ids" bson:"role_ids"`
}

// Active reports whether the account may authenticate: enabled, unlocked and
// not expired.
func (u *User) Active() bool {
	return u.Enabled && u.AccountNonExpired && u.AccountNonLocked && u.CredentialsNonExpired
}

// Principal is the resolved identity attached to a request after a bearer
// token validates. Authorities carry both role markers and permission names.
type Principal struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
	Enabled     bool     `json:"enabled"`
	Locked      bool     `json:"locked"`
}

// HasAuthority reports whether the principal holds the exact authority string.
func (p *Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}
