// Package authz is the visibility and authorization engine: it translates
// (principal, entity kind) into a filter predicate for list queries and
// answers instance-level allow/deny questions.
//
// A Predicate is a disjunction of relations between the principal and a row.
// It has two interchangeable evaluators with identical boolean semantics:
// Scope compiles it to SQL against the gorm session, Allows evaluates it
// in-process against a Subject snapshot.
package authz

import (
	"github.com/samber/lo"

	"github.com/Kirill-Alexeev/taskplanner/internal/models"
)

type Entity string

const (
	EntityTask       Entity = "task"
	EntitySubtask    Entity = "subtask"
	EntityComment    Entity = "comment"
	EntityWorkspace  Entity = "workspace"
	EntityTag        Entity = "tag"
	EntityMembership Entity = "membership"
)

// Relation names how a principal can be connected to a row. For subtasks and
// comments the relations are resolved through the parent task.
type Relation int

const (
	// RelOwner: principal owns the row (or its parent task, or the
	// workspace a membership row belongs to).
	RelOwner Relation = iota
	// RelAssignee: principal is among the (parent) task's assignees.
	RelAssignee
	// RelMember: principal is a member of the row's workspace.
	RelMember
	// RelSelf: the row is about the principal (membership rows).
	RelSelf
)

// Predicate is the visibility filter for one entity kind: the row is visible
// iff any relation in AnyOf holds between UserID and the row.
type Predicate struct {
	Entity Entity
	UserID uint
	AnyOf  []Relation
}

// VisibleTasks: owner, assignee, or member of the task's workspace. A task
// matching several clauses is still a single row (the SQL side uses EXISTS,
// not joins, so no duplicates arise).
func VisibleTasks(userID uint) Predicate {
	return Predicate{EntityTask, userID, []Relation{RelOwner, RelAssignee, RelMember}}
}

// VisibleWorkspaces: owner or member.
func VisibleWorkspaces(userID uint) Predicate {
	return Predicate{EntityWorkspace, userID, []Relation{RelOwner, RelMember}}
}

// VisibleSubtasks: owner or assignee of the parent task only. Workspace
// membership grants visibility of the task but not of its subtasks; the
// asymmetry with comments is part of the rule set, not an oversight.
func VisibleSubtasks(userID uint) Predicate {
	return Predicate{EntitySubtask, userID, []Relation{RelOwner, RelAssignee}}
}

// VisibleComments: owner, assignee, or workspace member of the task the
// comment hangs off. Wider than subtasks, see VisibleSubtasks.
func VisibleComments(userID uint) Predicate {
	return Predicate{EntityComment, userID, []Relation{RelOwner, RelAssignee, RelMember}}
}

// VisibleTags: strictly the owner's.
func VisibleTags(userID uint) Predicate {
	return Predicate{EntityTag, userID, []Relation{RelOwner}}
}

// VisibleMemberships: rows of workspaces the principal owns, plus the
// principal's own membership rows.
func VisibleMemberships(userID uint) Predicate {
	return Predicate{EntityMembership, userID, []Relation{RelOwner, RelSelf}}
}

// Subject is the relationship snapshot of one row, as consulted by Allows.
// OwnerID is the owning user (for subtasks and comments, the parent task's
// owner); AssigneeIDs the parent/own task's assignees; MemberIDs the members
// of the enclosing workspace, empty when there is none; SelfID the user a
// membership row is about.
type Subject struct {
	OwnerID     uint
	AssigneeIDs []uint
	MemberIDs   []uint
	SelfID      uint
}

// Allows reports whether any relation of the predicate holds for s.
func (p Predicate) Allows(s Subject) bool {
	for _, rel := range p.AnyOf {
		switch rel {
		case RelOwner:
			if s.OwnerID == p.UserID {
				return true
			}
		case RelAssignee:
			if lo.Contains(s.AssigneeIDs, p.UserID) {
				return true
			}
		case RelMember:
			if lo.Contains(s.MemberIDs, p.UserID) {
				return true
			}
		case RelSelf:
			if s.SelfID == p.UserID {
				return true
			}
		}
	}
	return false
}

// TaskSubject builds the Subject of a task. memberIDs are the members of the
// task's workspace and must be empty for personal tasks. Assignees must be
// preloaded.
func TaskSubject(t *models.Task, memberIDs []uint) Subject {
	return Subject{
		OwnerID:     t.OwnerID,
		AssigneeIDs: lo.Map(t.Assignees, func(u models.User, _ int) uint { return u.ID }),
		MemberIDs:   memberIDs,
	}
}

// CanCreateSubtask gates subtask creation: only the parent task's owner or
// one of its assignees. Workspace members who can merely see the task may
// not attach subtasks to it. Assignees must be preloaded.
func CanCreateSubtask(userID uint, parent *models.Task) bool {
	if parent.OwnerID == userID {
		return true
	}
	return lo.ContainsBy(parent.Assignees, func(u models.User) bool { return u.ID == userID })
}

// CanManageMembers gates add/remove of workspace members: the workspace
// owner only. Membership role is deliberately not consulted, an Admin-role
// member is denied like anyone else.
func CanManageMembers(userID uint, ws *models.Workspace) bool {
	return ws.OwnerID == userID
}
