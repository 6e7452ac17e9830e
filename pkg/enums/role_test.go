package enums

import "testing"

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"super_admin", "company_admin", "cooperative", "market"} {
		role, err := ParseRole(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if !role.IsValid() {
			t.Fatalf("parsed role %q reported invalid", raw)
		}
	}
	if _, err := ParseRole("admin"); err == nil {
		t.Fatal("unknown role should not parse")
	}
}

func TestRoleIsCompanyWide(t *testing.T) {
	for _, role := range []Role{RoleSuperAdmin, RoleCompanyAdmin, RoleCooperative} {
		if !role.IsCompanyWide() {
			t.Fatalf("%s should be company wide", role)
		}
	}
	if RoleMarket.IsCompanyWide() {
		t.Fatal("market role must be scoped to its market")
	}
}
