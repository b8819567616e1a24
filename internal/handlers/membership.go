package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/Kirill-Alexeev/taskplanner/db"
	"github.com/Kirill-Alexeev/taskplanner/internal/authz"
	"github.com/Kirill-Alexeev/taskplanner/internal/models"
	"github.com/Kirill-Alexeev/taskplanner/internal/types"
	"github.com/Kirill-Alexeev/taskplanner/internal/utils"
)

func scopedMemberships(userID uint) *gorm.DB {
	return db.DB.
		Scopes(authz.Scope(authz.VisibleMemberships(userID))).
		Preload("User")
}

// ListMemberships returns rows of workspaces the principal owns plus the
// principal's own memberships.
func ListMemberships(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var memberships []models.WorkspaceMembership

	if err := scopedMemberships(userID).Find(&memberships).Error; err != nil {
		log.Printf("Failed to list memberships: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve memberships"})
		return
	}

	ctx.JSON(http.StatusOK, lo.Map(memberships, func(m models.WorkspaceMembership, _ int) types.MembershipResponse {
		return types.NewMembershipResponse(&m)
	}))
}

// DeleteMembership removes a member: the workspace owner can remove anyone,
// a member can remove their own row (leave the workspace).
func DeleteMembership(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	membershipID, ok := parseIDParam(ctx, "membership_id")
	if !ok {
		return
	}

	var membership models.WorkspaceMembership

	err = scopedMemberships(userID).
		Where("workspace_memberships.id = ?", membershipID).
		First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Membership not found"})
		} else {
			log.Printf("Failed to fetch membership: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve membership"})
		}
		return
	}

	if err := db.DB.Delete(&membership).Error; err != nil {
		log.Printf("Failed to delete membership: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete membership"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
