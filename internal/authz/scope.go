package authz

import (
	"strings"

	"gorm.io/gorm"
)

// Per-entity SQL for each relation. Clauses use correlated EXISTS subqueries
// so the OR of several relations never multiplies rows; a task visible as
// both owner and assignee is one row without DISTINCT.
var relationSQL = map[Entity]map[Relation]string{
	EntityTask: {
		RelOwner:    "tasks.owner_id = ?",
		RelAssignee: "EXISTS (SELECT 1 FROM task_assignees ta WHERE ta.task_id = tasks.id AND ta.user_id = ?)",
		RelMember:   "(tasks.workspace_id IS NOT NULL AND EXISTS (SELECT 1 FROM workspace_memberships wm WHERE wm.workspace_id = tasks.workspace_id AND wm.user_id = ? AND wm.deleted_at IS NULL))",
	},
	EntityWorkspace: {
		RelOwner:  "workspaces.owner_id = ?",
		RelMember: "EXISTS (SELECT 1 FROM workspace_memberships wm WHERE wm.workspace_id = workspaces.id AND wm.user_id = ? AND wm.deleted_at IS NULL)",
	},
	EntitySubtask: {
		RelOwner:    "EXISTS (SELECT 1 FROM tasks t WHERE t.id = subtasks.parent_task_id AND t.owner_id = ? AND t.deleted_at IS NULL)",
		RelAssignee: "EXISTS (SELECT 1 FROM tasks t JOIN task_assignees ta ON ta.task_id = t.id WHERE t.id = subtasks.parent_task_id AND ta.user_id = ? AND t.deleted_at IS NULL)",
	},
	EntityComment: {
		RelOwner:    "EXISTS (SELECT 1 FROM tasks t WHERE t.id = comments.task_id AND t.owner_id = ? AND t.deleted_at IS NULL)",
		RelAssignee: "EXISTS (SELECT 1 FROM tasks t JOIN task_assignees ta ON ta.task_id = t.id WHERE t.id = comments.task_id AND ta.user_id = ? AND t.deleted_at IS NULL)",
		RelMember:   "EXISTS (SELECT 1 FROM tasks t JOIN workspace_memberships wm ON wm.workspace_id = t.workspace_id WHERE t.id = comments.task_id AND wm.user_id = ? AND t.deleted_at IS NULL AND wm.deleted_at IS NULL)",
	},
	EntityTag: {
		RelOwner: "tags.user_id = ?",
	},
	EntityMembership: {
		RelOwner: "EXISTS (SELECT 1 FROM workspaces w WHERE w.id = workspace_memberships.workspace_id AND w.owner_id = ? AND w.deleted_at IS NULL)",
		RelSelf:  "workspace_memberships.user_id = ?",
	},
}

// Scope compiles the predicate into a gorm scope usable on list and single
// row queries alike: db.Scopes(authz.Scope(p)).Find(...). An unknown
// entity/relation pair compiles to a match-nothing filter rather than an
// unfiltered one.
func Scope(p Predicate) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		clauses := make([]string, 0, len(p.AnyOf))
		args := make([]interface{}, 0, len(p.AnyOf))

		for _, rel := range p.AnyOf {
			sql, ok := relationSQL[p.Entity][rel]
			if !ok {
				continue
			}
			clauses = append(clauses, sql)
			args = append(args, p.UserID)
		}

		if len(clauses) == 0 {
			return db.Where("1 = 0")
		}

		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}
