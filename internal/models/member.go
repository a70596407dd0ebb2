package models

import (
	"fmt"
	"strings"
)

// MemberRole represents the role of a team member
type MemberRole string

const (
	RoleUXDesigner         MemberRole = "UX designer"
	RoleFrontendDeveloper  MemberRole = "frontend developer"
	RoleBackendDeveloper   MemberRole = "backend developer"
	RoleFullstackDeveloper MemberRole = "fullstack developer"
	RoleProjectManager     MemberRole = "project manager"
	RoleQAEngineer         MemberRole = "QA engineer"
)

// Roles lists every role in display order.
var Roles = []MemberRole{
	RoleUXDesigner,
	RoleFrontendDeveloper,
	RoleBackendDeveloper,
	RoleFullstackDeveloper,
	RoleProjectManager,
	RoleQAEngineer,
}

func (r MemberRole) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseMemberRole matches s case-insensitively against the known roles, so
// older records written as "Frontend Developer" still resolve.
func ParseMemberRole(s string) (MemberRole, error) {
	trimmed := strings.TrimSpace(s)
	for _, known := range Roles {
		if strings.EqualFold(trimmed, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown member role %q", s)
}

// TeamMember represents a person tasks can be assigned to
type TeamMember struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Role MemberRole `json:"role"`
}
