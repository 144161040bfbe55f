package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func claimsFor(subject string, role Role) *CustomClaims {
	return &CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		Role:             role,
	}
}

func TestRolePredicates(t *testing.T) {
	admin := claimsFor("u1", RoleAdministrator)
	provider := claimsFor("u2", RoleProvider)
	analyst := claimsFor("u3", RoleAnalyst)

	if !IsAdministrator(admin) || IsAdministrator(provider) || IsAdministrator(analyst) {
		t.Error("IsAdministrator() misclassified a role")
	}
	if !IsProvider(provider) || IsProvider(admin) {
		t.Error("IsProvider() misclassified a role")
	}
	if !IsAnalyst(analyst) || IsAnalyst(admin) {
		t.Error("IsAnalyst() misclassified a role")
	}

	if IsAdministrator(nil) || IsProvider(nil) || IsAnalyst(nil) {
		t.Error("role predicates must be false for nil claims")
	}
}

func TestIsOwner(t *testing.T) {
	owner := claimsFor("u1", RoleProvider)

	if !IsOwner(owner, "u1") {
		t.Error("IsOwner() = false for the actual owner")
	}
	if IsOwner(owner, "u2") {
		t.Error("IsOwner() = true for a different owner")
	}
	if IsOwner(owner, "") {
		t.Error("IsOwner() = true for an empty owner ID")
	}
	if IsOwner(nil, "u1") {
		t.Error("IsOwner() = true for nil claims")
	}
}

func TestIsOwner_AdministratorGetsNoBypass(t *testing.T) {
	admin := claimsFor("admin-id", RoleAdministrator)

	if IsOwner(admin, "someone-else") {
		t.Error("administrators must not bypass ownership checks")
	}
}

func TestIsValidUsername(t *testing.T) {
	valid := []string{"alice", "a.b-c_d", "USER9"}
	invalid := []string{"", "has space", "sémаntics", "a/b"}

	for _, u := range valid {
		if !IsValidUsername(u) {
			t.Errorf("IsValidUsername(%q) = false, want true", u)
		}
	}
	for _, u := range invalid {
		if IsValidUsername(u) {
			t.Errorf("IsValidUsername(%q) = true, want false", u)
		}
	}
}

func TestIsValidRole(t *testing.T) {
	for _, r := range ValidRoles {
		if !IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = false, want true", r)
		}
	}
	if IsValidRole("superuser") || IsValidRole("") {
		t.Error("IsValidRole() accepted an unknown role")
	}
}
