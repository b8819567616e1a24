package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status int

const (
	StatusActive    Status = 1
	StatusCompleted Status = 2
	StatusOverdue   Status = 3
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusCompleted || s == StatusOverdue
}

type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Task struct {
	gorm.Model

	Title       string `gorm:"size:200;not null"`
	Description string
	DueDate     *datatypes.Date
	Deadline    *datatypes.Date
	Status      Status   `gorm:"not null;default:1"`
	Priority    Priority `gorm:"not null;default:1"`
	OwnerID     uint     `gorm:"not null;index"`
	WorkspaceID *uint    `gorm:"index"`

	// Relationships
	Owner     User       `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Workspace *Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignees []User     `gorm:"many2many:task_assignees;"`
	Tags      []Tag      `gorm:"many2many:task_tags;"`
	Subtasks  []Subtask  `gorm:"foreignKey:ParentTaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments  []Comment  `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// BeforeSave forces the overdue status on every write. The stored status is
// only as fresh as the last save; reads that need the truth use IsOverdue.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	t.Status = ResolveStatus(t.Status, t.DueDate, time.Now())
	return nil
}

// ResolveStatus returns Overdue when the due date has passed and the task is
// not completed, otherwise the status unchanged. Idempotent.
func ResolveStatus(status Status, due *datatypes.Date, now time.Time) Status {
	if duePassed(due, now) && status != StatusCompleted {
		return StatusOverdue
	}
	return status
}

// IsOverdue is the derived read-side check. It does not trust the stored
// status: a task whose due date passed without a save still reads true here.
func (t *Task) IsOverdue(now time.Time) bool {
	return duePassed(t.DueDate, now) && t.Status != StatusCompleted
}

func (t *Task) IsPersonal() bool {
	return t.WorkspaceID == nil
}

// duePassed compares calendar days in UTC: true iff due is strictly before
// today. Due today is not overdue.
func duePassed(due *datatypes.Date, now time.Time) bool {
	if due == nil {
		return false
	}
	d := time.Time(*due).UTC()
	dueDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	return dueDay.Before(today)
}
