package models

import "gorm.io/gorm"

// Role of a user inside a workspace. Owner is kept for parity with the
// wire contract, but workspace ownership itself lives on Workspace.OwnerID
// and member-management is gated on that column, not on this value.
type Role int

const (
	RoleMember Role = 1
	RoleAdmin  Role = 2
	RoleOwner  Role = 3
)

func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin || r == RoleOwner
}

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleAdmin:
		return "admin"
	case RoleOwner:
		return "owner"
	}
	return "unknown"
}

type WorkspaceMembership struct {
	gorm.Model

	UserID      uint `gorm:"not null;uniqueIndex:idx_user_workspace"`
	WorkspaceID uint `gorm:"not null;uniqueIndex:idx_user_workspace"`
	Role        Role `gorm:"not null;default:1"`

	// Relationships
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Workspace Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
