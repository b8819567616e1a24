package models

import "gorm.io/gorm"

type Subtask struct {
	gorm.Model

	Title        string `gorm:"size:200;not null"`
	Description  string
	Status       Status `gorm:"not null;default:1"`
	ParentTaskID uint   `gorm:"not null;index"`
	AssigneeID   *uint  `gorm:"index"`

	// Relationships
	ParentTask Task  `gorm:"foreignKey:ParentTaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignee   *User `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
