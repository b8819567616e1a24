package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kirill-Alexeev/taskplanner/internal/models"
	"github.com/Kirill-Alexeev/taskplanner/internal/types"
)

func TestAddMemberOwnerOnly(t *testing.T) {
	r := setupServer(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")
	carol := registerUser(t, r, "carol")
	dave := registerUser(t, r, "dave")

	ws := createWorkspace(t, r, alice.Token, "team")

	// Owner adds bob with the Admin role.
	w := addMember(t, r, alice.Token, ws.ID, bob.ID, int(models.RoleAdmin))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Even an Admin-role member is denied: the gate checks ownership, not
	// role. The workspace is visible to bob, so this is 403, not 404.
	w = addMember(t, r, bob.Token, ws.ID, carol.ID, int(models.RoleMember))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// An outsider cannot even see the workspace.
	w = addMember(t, r, dave.Token, ws.ID, carol.ID, int(models.RoleMember))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddMemberValidation(t *testing.T) {
	r := setupServer(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	ws := createWorkspace(t, r, alice.Token, "team")

	w := addMember(t, r, alice.Token, ws.ID, 9999, int(models.RoleMember))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, fieldError(t, w, "user_id"))

	w = addMember(t, r, alice.Token, ws.ID, bob.ID, int(models.RoleOwner))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, fieldError(t, w, "role"))

	w = addMember(t, r, alice.Token, ws.ID, bob.ID, int(models.RoleMember))
	require.Equal(t, http.StatusCreated, w.Code)

	w = addMember(t, r, alice.Token, ws.ID, bob.ID, int(models.RoleMember))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, fieldError(t, w, "user_id"))
}

func TestWorkspaceVisibility(t *testing.T) {
	r := setupServer(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")
	carol := registerUser(t, r, "carol")

	ws := createWorkspace(t, r, alice.Token, "team")

	w := addMember(t, r, alice.Token, ws.ID, bob.ID, int(models.RoleMember))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/workspaces/%d", ws.ID), nil, bob.Token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/workspaces/%d", ws.ID), nil, carol.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/workspaces", nil, carol.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var workspaces []types.WorkspaceResponse
	decodeBody(t, w, &workspaces)
	assert.Empty(t, workspaces)
}

func TestWorkspaceDetailMembers(t *testing.T) {
	r := setupServer(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	ws := createWorkspace(t, r, alice.Token, "team")

	w := addMember(t, r, alice.Token, ws.ID, bob.ID, int(models.RoleMember))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/workspaces/%d", ws.ID), nil, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)

	var detail types.WorkspaceDetailResponse
	decodeBody(t, w, &detail)
	assert.Equal(t, 1, detail.MembersCount)
	require.Len(t, detail.Members, 1)
	assert.Equal(t, bob.ID, detail.Members[0].User.ID)
	assert.Equal(t, int(models.RoleMember), detail.Members[0].Role)
}

func TestMembershipLeaveRevokesTaskVisibility(t *testing.T) {
	r := setupServer(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	ws := createWorkspace(t, r, alice.Token, "team")
	task := createTask(t, r, alice.Token, gin.H{"title": "shared", "workspace": ws.ID})

	w := addMember(t, r, alice.Token, ws.ID, bob.ID, int(models.RoleMember))
	require.Equal(t, http.StatusCreated, w.Code)

	var membership types.MembershipResponse
	decodeBody(t, w, &membership)

	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)

	// bob leaves; his row is visible to him, so he may delete it.
	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/memberships/%d", membership.ID), nil, bob.Token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil, bob.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteWorkspaceHidesTaskChildren(t *testing.T) {
	r := setupServer(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	ws := createWorkspace(t, r, alice.Token, "team")
	task := createTask(t, r, alice.Token, gin.H{
		"title":     "doomed",
		"workspace": ws.ID,
		"assignees": []uint{bob.ID},
	})

	w := doRequest(t, r, http.MethodPost, "/api/subtasks", gin.H{"title": "step", "parent_task": task.ID}, alice.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	var subtask types.SubtaskResponse
	decodeBody(t, w, &subtask)

	w = doRequest(t, r, http.MethodPost, "/api/comments", gin.H{"task": task.ID, "text": "bye"}, alice.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	var comment types.CommentResponse
	decodeBody(t, w, &comment)

	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/workspaces/%d", ws.ID), nil, alice.Token)
	require.Equal(t, http.StatusNoContent, w.Code)

	// The cascade soft-deletes the task; its children must disappear with
	// it for the ex-assignee, not just the task itself.
	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil, bob.Token)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/subtasks", nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var subtasks []types.SubtaskResponse
	decodeBody(t, w, &subtasks)
	assert.NotContains(t, lo.Map(subtasks, func(s types.SubtaskResponse, _ int) uint { return s.ID }), subtask.ID)

	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/subtasks/%d", subtask.ID), nil, bob.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/comments", nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var comments []types.CommentResponse
	decodeBody(t, w, &comments)
	assert.NotContains(t, lo.Map(comments, func(c types.CommentResponse, _ int) uint { return c.ID }), comment.ID)
}

func TestMembershipDeleteByOwnerAndOutsider(t *testing.T) {
	r := setupServer(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")
	carol := registerUser(t, r, "carol")

	ws := createWorkspace(t, r, alice.Token, "team")

	w := addMember(t, r, alice.Token, ws.ID, bob.ID, int(models.RoleMember))
	require.Equal(t, http.StatusCreated, w.Code)

	var membership types.MembershipResponse
	decodeBody(t, w, &membership)

	// An unrelated user cannot see the row.
	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/memberships/%d", membership.ID), nil, carol.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The workspace owner can remove anyone.
	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/memberships/%d", membership.ID), nil, alice.Token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestListMemberships(t *testing.T) {
	r := setupServer(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	ws := createWorkspace(t, r, alice.Token, "team")

	w := addMember(t, r, alice.Token, ws.ID, bob.ID, int(models.RoleMember))
	require.Equal(t, http.StatusCreated, w.Code)

	for _, tok := range []string{alice.Token, bob.Token} {
		w = doRequest(t, r, http.MethodGet, "/api/memberships", nil, tok)
		require.Equal(t, http.StatusOK, w.Code)
		var memberships []types.MembershipResponse
		decodeBody(t, w, &memberships)
		require.Len(t, memberships, 1)
		assert.Equal(t, bob.ID, memberships[0].User.ID)
	}
}

func TestWorkspaceUpdateByMember(t *testing.T) {
	r := setupServer(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	ws := createWorkspace(t, r, alice.Token, "team")

	w := addMember(t, r, alice.Token, ws.ID, bob.ID, int(models.RoleMember))
	require.Equal(t, http.StatusCreated, w.Code)

	// Visibility implies mutability everywhere except the two explicit
	// gates, so a plain member may rename the workspace.
	w = doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/workspaces/%d", ws.ID), gin.H{"title": "renamed"}, bob.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated types.WorkspaceResponse
	decodeBody(t, w, &updated)
	assert.Equal(t, "renamed", updated.Title)
}
