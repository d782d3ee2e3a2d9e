package utils

import (
	"reflect"
	"testing"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
)

func TestResolveRolesDeduplicatesPermissions(t *testing.T) {
	roles := []model.Role{
		{ID: 1, Name: "manager", Permissions: []model.Permission{
			{ID: 1, Code: "room:create", Description: "create rooms"},
			{ID: 2, Code: "room:update", Description: "update rooms"},
		}},
		{ID: 2, Name: "auditor", Permissions: []model.Permission{
			{ID: 2, Code: "room:update", Description: "update rooms"},
			{ID: 3, Code: "statistic:read", Description: "read statistics"},
		}},
	}

	names, perms := ResolveRoles(roles)

	if want := []string{"manager", "auditor"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = p.Code
	}
	if want := []string{"room:create", "room:update", "statistic:read"}; !reflect.DeepEqual(codes, want) {
		t.Fatalf("codes = %v, want %v", codes, want)
	}
}

func TestResolveRolesKeepsDuplicateNames(t *testing.T) {
	roles := []model.Role{{ID: 1, Name: "staff"}, {ID: 1, Name: "staff"}}
	names, perms := ResolveRoles(roles)
	if len(names) != 2 {
		t.Fatalf("names = %v, want the duplicate kept", names)
	}
	if len(perms) != 0 {
		t.Fatalf("perms = %v, want empty", perms)
	}
}

func TestResolveRolesEmpty(t *testing.T) {
	names, perms := ResolveRoles(nil)
	if len(names) != 0 || len(perms) != 0 {
		t.Fatalf("ResolveRoles(nil) = %v, %v, want empty", names, perms)
	}
}

func TestHasPermissionCodes(t *testing.T) {
	held := []model.Permission{{Code: "room:create"}, {Code: "user:list"}}

	if !HasPermissionCodes(held, nil) {
		t.Error("empty requirement must always pass")
	}
	if !HasPermissionCodes(held, []string{"user:list"}) {
		t.Error("single held code should pass")
	}
	if !HasPermissionCodes(held, []string{"room:create", "user:list"}) {
		t.Error("all held codes should pass")
	}
	if HasPermissionCodes(held, []string{"room:create", "room:delete"}) {
		t.Error("one missing code must fail the whole requirement")
	}
	if HasPermissionCodes(nil, []string{"room:create"}) {
		t.Error("no held codes must fail a non-empty requirement")
	}
}
