package handlers

import (
	"errors"
	"log"
	"net/http"

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

type CreateSubtaskRequest struct {
	Title        string `json:"title" binding:"required,max=200"`
	Description  string `json:"description"`
	ParentTaskID uint   `json:"parent_task" binding:"required"`
	AssigneeID   *uint  `json:"assignee"`
}

type UpdateSubtaskRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description *string `json:"description"`
	Status      *int    `json:"status"`
	AssigneeID  *uint   `json:"assignee"`
}

func scopedSubtasks(userID uint) *gorm.DB {
	return db.DB.
		Scopes(authz.Scope(authz.VisibleSubtasks(userID))).
		Preload("Assignee")
}

func findVisibleSubtask(ctx *gin.Context, userID uint, subtaskID uint) (*models.Subtask, bool) {
	var subtask models.Subtask

	if err := scopedSubtasks(userID).Where("subtasks.id = ?", subtaskID).First(&subtask).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
		} else {
			log.Printf("Failed to fetch subtask: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subtask"})
		}
		return nil, false
	}

	return &subtask, true
}

// CreateSubtask distinguishes the two denial paths: a parent task outside
// the principal's visibility answers 404, a visible parent the principal
// neither owns nor is assigned to answers 403.
func CreateSubtask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateSubtaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	parent, ok := findVisibleTask(ctx, userID, req.ParentTaskID)
	if !ok {
		return
	}

	if !authz.CanCreateSubtask(userID, parent) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "No access to this task"})
		return
	}

	if req.AssigneeID != nil {
		var assignee models.User
		if err := db.DB.First(&assignee, *req.AssigneeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusBadRequest, validationError("assignee", "Assignee does not exist"))
			} else {
				log.Printf("Failed to fetch assignee: %v", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}
	}

	subtask := models.Subtask{
		Title:        req.Title,
		Description:  req.Description,
		Status:       models.StatusActive,
		ParentTaskID: parent.ID,
		AssigneeID:   req.AssigneeID,
	}

	if err := db.DB.Create(&subtask).Error; err != nil {
		log.Printf("Failed to create subtask: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subtask"})
		return
	}

	created, ok := findVisibleSubtask(ctx, userID, subtask.ID)
	if !ok {
		return
	}

	ctx.JSON(http.StatusCreated, types.NewSubtaskResponse(created))
}

func ListSubtasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var subtasks []models.Subtask

	if err := scopedSubtasks(userID).Find(&subtasks).Error; err != nil {
		log.Printf("Failed to list subtasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subtasks"})
		return
	}

	ctx.JSON(http.StatusOK, lo.Map(subtasks, func(s models.Subtask, _ int) types.SubtaskResponse {
		return types.NewSubtaskResponse(&s)
	}))
}

func GetSubtask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	subtaskID, ok := parseIDParam(ctx, "subtask_id")
	if !ok {
		return
	}

	subtask, ok := findVisibleSubtask(ctx, userID, subtaskID)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, types.NewSubtaskResponse(subtask))
}

func UpdateSubtask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	subtaskID, ok := parseIDParam(ctx, "subtask_id")
	if !ok {
		return
	}

	subtask, ok := findVisibleSubtask(ctx, userID, subtaskID)
	if !ok {
		return
	}

	var req UpdateSubtaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	subtask.Title = req.Title
	if req.Description != nil {
		subtask.Description = *req.Description
	}
	if req.Status != nil {
		status := models.Status(*req.Status)
		if !status.Valid() {
			ctx.JSON(http.StatusBadRequest, validationError("status", "Invalid status"))
			return
		}
		subtask.Status = status
	}
	if req.AssigneeID != nil {
		var assignee models.User
		if err := db.DB.First(&assignee, *req.AssigneeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusBadRequest, validationError("assignee", "Assignee does not exist"))
			} else {
				log.Printf("Failed to fetch assignee: %v", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}
		subtask.AssigneeID = req.AssigneeID
	}

	if err := db.DB.Omit(clause.Associations).Save(subtask).Error; err != nil {
		log.Printf("Failed to update subtask: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subtask"})
		return
	}

	updated, ok := findVisibleSubtask(ctx, userID, subtask.ID)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, types.NewSubtaskResponse(updated))
}

func DeleteSubtask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	subtaskID, ok := parseIDParam(ctx, "subtask_id")
	if !ok {
		return
	}

	subtask, ok := findVisibleSubtask(ctx, userID, subtaskID)
	if !ok {
		return
	}

	if err := db.DB.Delete(subtask).Error; err != nil {
		log.Printf("Failed to delete subtask: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subtask"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
