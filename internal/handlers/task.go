package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kirill-Alexeev/taskplanner/db"
	"github.com/Kirill-Alexeev/taskplanner/internal/authz"
	"github.com/Kirill-Alexeev/taskplanner/internal/models"
	"github.com/Kirill-Alexeev/taskplanner/internal/types"
	"github.com/Kirill-Alexeev/taskplanner/internal/utils"
)

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description"`
	WorkspaceID *uint   `json:"workspace"`
	DueDate     *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Deadline    *string `json:"deadline" binding:"omitempty,datetime=2006-01-02"`
	Priority    *int    `json:"priority"`
	Tags        []uint  `json:"tags"`
	Assignees   []uint  `json:"assignees"`
}

type UpdateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Deadline    *string `json:"deadline" binding:"omitempty,datetime=2006-01-02"`
	Status      *int    `json:"status"`
	Priority    *int    `json:"priority"`
	Tags        *[]uint `json:"tags"`
	Assignees   *[]uint `json:"assignees"`
}

type ChangeStatusRequest struct {
	Status int `json:"status" binding:"required"`
}

// scopedTasks is the base query for every task read: the visibility
// predicate plus the preloads task serialization needs.
func scopedTasks(userID uint) *gorm.DB {
	return db.DB.
		Scopes(authz.Scope(authz.VisibleTasks(userID))).
		Preload("Owner").
		Preload("Assignees").
		Preload("Tags").
		Preload("Subtasks").
		Preload("Comments")
}

// findVisibleTask resolves a task id through the principal's predicate.
// Rows outside the predicate and nonexistent ids both answer 404.
func findVisibleTask(ctx *gin.Context, userID uint, taskID uint) (*models.Task, bool) {
	var task models.Task

	if err := scopedTasks(userID).Where("tasks.id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			log.Printf("Failed to fetch task: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return nil, false
	}

	return &task, true
}

// resolveAssignees loads the requested users; every id must exist.
func resolveAssignees(ctx *gin.Context, ids []uint) ([]models.User, bool) {
	if len(ids) == 0 {
		return []models.User{}, true
	}

	var users []models.User

	if err := db.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		log.Printf("Failed to fetch assignees: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}

	if len(users) != len(lo.Uniq(ids)) {
		ctx.JSON(http.StatusBadRequest, validationError("assignees", "One or more assignees do not exist"))
		return nil, false
	}

	return users, true
}

// resolveTags loads the requested tags restricted to the principal's own.
// A foreign tag id is indistinguishable from a nonexistent one.
func resolveTags(ctx *gin.Context, userID uint, ids []uint) ([]models.Tag, bool) {
	if len(ids) == 0 {
		return []models.Tag{}, true
	}

	var tags []models.Tag

	if err := db.DB.Where("user_id = ? AND id IN ?", userID, ids).Find(&tags).Error; err != nil {
		log.Printf("Failed to fetch tags: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}

	if len(tags) != len(lo.Uniq(ids)) {
		ctx.JSON(http.StatusBadRequest, validationError("tags", "One or more tags do not exist"))
		return nil, false
	}

	return tags, true
}

func CreateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateTaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	if req.WorkspaceID != nil {
		var workspace models.Workspace
		if err := db.DB.First(&workspace, *req.WorkspaceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusBadRequest, validationError("workspace", "Workspace does not exist"))
			} else {
				log.Printf("Failed to fetch workspace: %v", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}
	}

	priority := models.PriorityLow
	if req.Priority != nil {
		priority = models.Priority(*req.Priority)
		if !priority.Valid() {
			ctx.JSON(http.StatusBadRequest, validationError("priority", "Invalid priority"))
			return
		}
	}

	assignees, ok := resolveAssignees(ctx, req.Assignees)
	if !ok {
		return
	}

	tags, ok := resolveTags(ctx, userID, req.Tags)
	if !ok {
		return
	}

	// Owner comes from the principal, never from the request body.
	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     parseDate(req.DueDate),
		Deadline:    parseDate(req.Deadline),
		Status:      models.StatusActive,
		Priority:    priority,
		OwnerID:     userID,
		WorkspaceID: req.WorkspaceID,
		Assignees:   assignees,
		Tags:        tags,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		log.Printf("Failed to create task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	created, ok := findVisibleTask(ctx, userID, task.ID)
	if !ok {
		return
	}

	ctx.JSON(http.StatusCreated, types.NewTaskResponse(created, time.Now()))
}

func ListTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var tasks []models.Task

	if err := scopedTasks(userID).Find(&tasks).Error; err != nil {
		log.Printf("Failed to list tasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	ctx.JSON(http.StatusOK, taskListResponse(tasks))
}

// PersonalTasks lists visible tasks that have no workspace.
func PersonalTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var tasks []models.Task

	if err := scopedTasks(userID).Where("tasks.workspace_id IS NULL").Find(&tasks).Error; err != nil {
		log.Printf("Failed to list personal tasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	ctx.JSON(http.StatusOK, taskListResponse(tasks))
}

// WorkspaceTasks lists visible tasks of one workspace.
func WorkspaceTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	raw := ctx.Query("workspace_id")

	if raw == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "workspace_id parameter required"})
		return
	}

	workspaceID, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workspace_id"})
		return
	}

	var tasks []models.Task

	if err := scopedTasks(userID).Where("tasks.workspace_id = ?", workspaceID).Find(&tasks).Error; err != nil {
		log.Printf("Failed to list workspace tasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	ctx.JSON(http.StatusOK, taskListResponse(tasks))
}

func GetTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, ok := parseIDParam(ctx, "task_id")
	if !ok {
		return
	}

	task, ok := findVisibleTask(ctx, userID, taskID)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponse(task, time.Now()))
}

func UpdateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, ok := parseIDParam(ctx, "task_id")
	if !ok {
		return
	}

	task, ok := findVisibleTask(ctx, userID, taskID)
	if !ok {
		return
	}

	var req UpdateTaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	task.Title = req.Title
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueDate != nil {
		task.DueDate = parseDate(req.DueDate)
	}
	if req.Deadline != nil {
		task.Deadline = parseDate(req.Deadline)
	}
	if req.Status != nil {
		status := models.Status(*req.Status)
		if !status.Valid() {
			ctx.JSON(http.StatusBadRequest, validationError("status", "Invalid status"))
			return
		}
		task.Status = status
	}
	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		if !priority.Valid() {
			ctx.JSON(http.StatusBadRequest, validationError("priority", "Invalid priority"))
			return
		}
		task.Priority = priority
	}

	if req.Assignees != nil {
		assignees, ok := resolveAssignees(ctx, *req.Assignees)
		if !ok {
			return
		}
		if err := db.DB.Model(task).Association("Assignees").Replace(assignees); err != nil {
			log.Printf("Failed to update assignees: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
			return
		}
	}

	if req.Tags != nil {
		tags, ok := resolveTags(ctx, userID, *req.Tags)
		if !ok {
			return
		}
		if err := db.DB.Model(task).Association("Tags").Replace(tags); err != nil {
			log.Printf("Failed to update tags: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
			return
		}
	}

	if err := db.DB.Omit(clause.Associations).Save(task).Error; err != nil {
		log.Printf("Failed to update task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	updated, ok := findVisibleTask(ctx, userID, task.ID)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponse(updated, time.Now()))
}

// ChangeTaskStatus flips the status only; the save hook may immediately
// force it back to Overdue when the due date has passed.
func ChangeTaskStatus(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, ok := parseIDParam(ctx, "task_id")
	if !ok {
		return
	}

	task, ok := findVisibleTask(ctx, userID, taskID)
	if !ok {
		return
	}

	var req ChangeStatusRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	status := models.Status(req.Status)
	if !status.Valid() {
		ctx.JSON(http.StatusBadRequest, validationError("status", "Invalid status"))
		return
	}

	task.Status = status

	if err := db.DB.Omit(clause.Associations).Save(task).Error; err != nil {
		log.Printf("Failed to change task status: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "Status updated"})
}

func DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, ok := parseIDParam(ctx, "task_id")
	if !ok {
		return
	}

	task, ok := findVisibleTask(ctx, userID, taskID)
	if !ok {
		return
	}

	if err := db.DB.Select(clause.Associations).Delete(task).Error; err != nil {
		log.Printf("Failed to delete task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func taskListResponse(tasks []models.Task) []types.TaskResponse {
	now := time.Now()
	return lo.Map(tasks, func(t models.Task, _ int) types.TaskResponse {
		return types.NewTaskResponse(&t, now)
	})
}
