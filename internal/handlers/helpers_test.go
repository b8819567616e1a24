package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Kirill-Alexeev/taskplanner/db"
	"github.com/Kirill-Alexeev/taskplanner/internal/auth"
	"github.com/Kirill-Alexeev/taskplanner/internal/router"
	"github.com/Kirill-Alexeev/taskplanner/internal/types"
)

// setupServer wires the full router against a fresh in-memory database.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	auth.SetJWTSecretForTests("handlers-test-secret")

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same :memory: database.
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	db.DB = gdb

	return router.NewRouter()
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}

// fieldError extracts the per-field validation detail of a 400 response.
func fieldError(t *testing.T, w *httptest.ResponseRecorder, field string) string {
	t.Helper()

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, w, &body)
	return body.Errors[field]
}

type account struct {
	ID    uint
	Token string
}

func registerUser(t *testing.T, r *gin.Engine, username string) account {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "password123",
		"password_confirm": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		User  types.UserResponse `json:"user"`
		Token string             `json:"token"`
	}
	decodeBody(t, w, &body)
	require.NotEmpty(t, body.Token)

	return account{ID: body.User.ID, Token: body.Token}
}

func createWorkspace(t *testing.T, r *gin.Engine, token, title string) types.WorkspaceResponse {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, "/api/workspaces", gin.H{"title": title}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ws types.WorkspaceResponse
	decodeBody(t, w, &ws)
	return ws
}

func createTask(t *testing.T, r *gin.Engine, token string, body gin.H) types.TaskResponse {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, "/api/tasks", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var task types.TaskResponse
	decodeBody(t, w, &task)
	return task
}

func addMember(t *testing.T, r *gin.Engine, token string, workspaceID, userID uint, role int) *httptest.ResponseRecorder {
	t.Helper()

	return doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/workspaces/%d/members", workspaceID), gin.H{
		"user_id": userID,
		"role":    role,
	}, token)
}

func listTasks(t *testing.T, r *gin.Engine, token, path string) []types.TaskResponse {
	t.Helper()

	w := doRequest(t, r, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tasks []types.TaskResponse
	decodeBody(t, w, &tasks)
	return tasks
}

func dateOffset(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}
