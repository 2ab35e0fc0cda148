package models

import "testing"

func TestRole_AtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		min      Role
		expected bool
	}{
		{"member meets member", RoleMember, RoleMember, true},
		{"member below mod", RoleMember, RoleMod, false},
		{"mod meets member", RoleMod, RoleMember, true},
		{"mod meets mod", RoleMod, RoleMod, true},
		{"mod below admin", RoleMod, RoleAdmin, false},
		{"admin meets mod", RoleAdmin, RoleMod, true},
		{"unknown never qualifies", Role("GUEST"), RoleMember, false},
		{"empty never qualifies", Role(""), RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.AtLeast(tt.min); got != tt.expected {
				t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.role, tt.min, got, tt.expected)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"MEMBER", RoleMember, false},
		{"mod", RoleMod, false},
		{" Admin ", RoleAdmin, false},
		{"superuser", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestAccount_IsModerator(t *testing.T) {
	var nilAccount *Account
	if nilAccount.IsModerator() {
		t.Error("nil account should not be a moderator")
	}
	if (&Account{Role: RoleMember}).IsModerator() {
		t.Error("member should not be a moderator")
	}
	if !(&Account{Role: RoleMod}).IsModerator() {
		t.Error("mod should be a moderator")
	}
	if !(&Account{Role: RoleAdmin}).IsModerator() {
		t.Error("admin should be a moderator")
	}
}
