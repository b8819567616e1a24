package models

import "gorm.io/gorm"

type Tag struct {
	gorm.Model

	Title       string `gorm:"size:50;not null;uniqueIndex:idx_tag_title_user"`
	Description string
	UserID      uint `gorm:"not null;uniqueIndex:idx_tag_title_user"`

	// Relationships
	User  User   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks []Task `gorm:"many2many:task_tags;"`
}
