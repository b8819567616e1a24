package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func date(t time.Time) *datatypes.Date {
	d := datatypes.Date(t)
	return &d
}

func TestResolveStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := date(now.AddDate(0, 0, -1))
	today := date(now)
	tomorrow := date(now.AddDate(0, 0, 1))

	tests := []struct {
		name   string
		status Status
		due    *datatypes.Date
		want   Status
	}{
		{"active past due is forced overdue", StatusActive, yesterday, StatusOverdue},
		{"completed past due stays completed", StatusCompleted, yesterday, StatusCompleted},
		{"overdue past due stays overdue", StatusOverdue, yesterday, StatusOverdue},
		{"active due today stays active", StatusActive, today, StatusActive},
		{"active due tomorrow stays active", StatusActive, tomorrow, StatusActive},
		{"active without due date stays active", StatusActive, nil, StatusActive},
		{"completed without due date stays completed", StatusCompleted, nil, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.status, tt.due, now))
		})
	}
}

func TestResolveStatusIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	due := date(now.AddDate(0, 0, -3))

	once := ResolveStatus(StatusActive, due, now)
	twice := ResolveStatus(once, due, now)

	assert.Equal(t, StatusOverdue, once)
	assert.Equal(t, once, twice)
}

func TestIsOverdueIgnoresStaleStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// The stored status can lag behind reality when the due date passed
	// without a save; the derived check must not trust it.
	stale := Task{Status: StatusActive, DueDate: date(now.AddDate(0, 0, -1))}
	assert.True(t, stale.IsOverdue(now))

	completed := Task{Status: StatusCompleted, DueDate: date(now.AddDate(0, 0, -1))}
	assert.False(t, completed.IsOverdue(now))

	future := Task{Status: StatusActive, DueDate: date(now.AddDate(0, 0, 1))}
	assert.False(t, future.IsOverdue(now))

	noDue := Task{Status: StatusActive}
	assert.False(t, noDue.IsOverdue(now))
}

func TestIsPersonal(t *testing.T) {
	wsID := uint(7)

	assert.True(t, (&Task{}).IsPersonal())
	assert.False(t, (&Task{WorkspaceID: &wsID}).IsPersonal())
}
