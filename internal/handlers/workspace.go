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

type WorkspaceRequest struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description"`
}

type AddMemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	Role   *int `json:"role"`
}

func scopedWorkspaces(userID uint) *gorm.DB {
	return db.DB.
		Scopes(authz.Scope(authz.VisibleWorkspaces(userID))).
		Preload("Owner").
		Preload("Memberships")
}

func findVisibleWorkspace(ctx *gin.Context, userID uint, workspaceID uint) (*models.Workspace, bool) {
	var workspace models.Workspace

	if err := scopedWorkspaces(userID).Where("workspaces.id = ?", workspaceID).First(&workspace).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		} else {
			log.Printf("Failed to fetch workspace: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workspace"})
		}
		return nil, false
	}

	return &workspace, true
}

// CreateWorkspace makes the principal the implicit owner; no membership row
// is written for them.
func CreateWorkspace(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req WorkspaceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	workspace := models.Workspace{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     userID,
	}

	if err := db.DB.Create(&workspace).Error; err != nil {
		log.Printf("Failed to create workspace: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
		return
	}

	created, ok := findVisibleWorkspace(ctx, userID, workspace.ID)
	if !ok {
		return
	}

	ctx.JSON(http.StatusCreated, types.NewWorkspaceResponse(created))
}

func ListWorkspaces(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var workspaces []models.Workspace

	if err := scopedWorkspaces(userID).Find(&workspaces).Error; err != nil {
		log.Printf("Failed to list workspaces: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workspaces"})
		return
	}

	ctx.JSON(http.StatusOK, lo.Map(workspaces, func(w models.Workspace, _ int) types.WorkspaceResponse {
		return types.NewWorkspaceResponse(&w)
	}))
}

// GetWorkspace returns the detail shape with the member list.
func GetWorkspace(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspaceID, ok := parseIDParam(ctx, "workspace_id")
	if !ok {
		return
	}

	var workspace models.Workspace

	err = scopedWorkspaces(userID).
		Preload("Memberships.User").
		Where("workspaces.id = ?", workspaceID).
		First(&workspace).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		} else {
			log.Printf("Failed to fetch workspace: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workspace"})
		}
		return
	}

	ctx.JSON(http.StatusOK, types.NewWorkspaceDetailResponse(&workspace))
}

func UpdateWorkspace(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspaceID, ok := parseIDParam(ctx, "workspace_id")
	if !ok {
		return
	}

	workspace, ok := findVisibleWorkspace(ctx, userID, workspaceID)
	if !ok {
		return
	}

	var req WorkspaceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	workspace.Title = req.Title
	workspace.Description = req.Description

	if err := db.DB.Omit(clause.Associations).Save(workspace).Error; err != nil {
		log.Printf("Failed to update workspace: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update workspace"})
		return
	}

	ctx.JSON(http.StatusOK, types.NewWorkspaceResponse(workspace))
}

func DeleteWorkspace(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspaceID, ok := parseIDParam(ctx, "workspace_id")
	if !ok {
		return
	}

	workspace, ok := findVisibleWorkspace(ctx, userID, workspaceID)
	if !ok {
		return
	}

	if err := db.DB.Select(clause.Associations).Delete(workspace).Error; err != nil {
		log.Printf("Failed to delete workspace: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete workspace"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// AddMember is the owner-only gate of the workspace surface. A member with
// the Admin role is denied like any other non-owner; visibility of the
// workspace is established first, so the denial is a 403, not a 404.
func AddMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspaceID, ok := parseIDParam(ctx, "workspace_id")
	if !ok {
		return
	}

	workspace, ok := findVisibleWorkspace(ctx, userID, workspaceID)
	if !ok {
		return
	}

	if !authz.CanManageMembers(userID, workspace) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can add members"})
		return
	}

	var req AddMemberRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	role := models.RoleMember
	if req.Role != nil {
		role = models.Role(*req.Role)
		if !role.Valid() || role == models.RoleOwner {
			ctx.JSON(http.StatusBadRequest, validationError("role", "Invalid role"))
			return
		}
	}

	var user models.User

	if err := db.DB.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, validationError("user_id", "User does not exist"))
		} else {
			log.Printf("Failed to fetch user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	membership := models.WorkspaceMembership{
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
		Role:        role,
	}

	if err := db.DB.Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, validationError("user_id", "User is already a member of this workspace"))
			return
		}
		log.Printf("Failed to add member: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	membership.User = user

	ctx.JSON(http.StatusCreated, types.NewMembershipResponse(&membership))
}
