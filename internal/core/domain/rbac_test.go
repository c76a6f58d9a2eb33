package domain

import "testing"

func TestRoleAuthority(t *testing.T) {
	role := &Role{Name: "ADMIN"}
	if got := role.Authority(); got != "ROLE_ADMIN" {
		t.Fatalf("got %q", got)
	}
}

func TestPermissionName(t *testing.T) {
	cases := []struct {
		resource, action, want string
	}{
		{"datasets", "read", "READ_DATASETS"},
		{"users", "delete", "DELETE_USERS"},
		{"Reports", "Write", "WRITE_REPORTS"},
	}
	for _, tc := range cases {
		if got := PermissionName(tc.resource, tc.action); got != tc.want {
			t.Fatalf("PermissionName(%q, %q) = %q, want %q", tc.resource, tc.action, got, tc.want)
		}
	}
}

func TestUserActive(t *testing.T) {
	user := User{
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
	}
	if !user.Active() {
		t.Fatal("fully-flagged user not active")
	}

	for name, mutate := range map[string]func(*User){
		"disabled":            func(u *User) { u.Enabled = false },
		"expired":             func(u *User) { u.AccountNonExpired = false },
		"locked":              func(u *User) { u.AccountNonLocked = false },
		"credentials expired": func(u *User) { u.CredentialsNonExpired = false },
	} {
		u := user
		mutate(&u)
		if u.Active() {
			t.Fatalf("%s user reported active", name)
		}
	}
}

func TestPrincipalHasAuthority(t *testing.T) {
	p := &Principal{Authorities: []string{"ROLE_USER", "READ_DATASETS"}}
	if !p.HasAuthority("READ_DATASETS") {
		t.Fatal("expected match")
	}
	if p.HasAuthority("read_datasets") {
		t.Fatal("authority match must be exact")
	}
	if p.HasAuthority("WRITE_DATASETS") {
		t.Fatal("unexpected match")
	}
}
