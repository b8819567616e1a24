package models

import "gorm.io/gorm"

type Workspace struct {
	gorm.Model

	Title       string `gorm:"size:100;not null"`
	Description string
	OwnerID     uint `gorm:"not null;index"`

	// Relationships
	Owner       User                  `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Memberships []WorkspaceMembership `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks       []Task                `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
