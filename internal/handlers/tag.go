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

type TagRequest struct {
	Title       string `json:"title" binding:"required,max=50"`
	Description string `json:"description"`
}

func scopedTags(userID uint) *gorm.DB {
	return db.DB.Scopes(authz.Scope(authz.VisibleTags(userID)))
}

func findVisibleTag(ctx *gin.Context, userID uint, tagID uint) (*models.Tag, bool) {
	var tag models.Tag

	if err := scopedTags(userID).Where("tags.id = ?", tagID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		} else {
			log.Printf("Failed to fetch tag: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tag"})
		}
		return nil, false
	}

	return &tag, true
}

func CreateTag(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req TagRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	tag := models.Tag{
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
	}

	if err := db.DB.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, validationError("title", "You already have a tag with this title"))
			return
		}
		log.Printf("Failed to create tag: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tag"})
		return
	}

	ctx.JSON(http.StatusCreated, types.NewTagResponse(&tag))
}

func ListTags(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var tags []models.Tag

	if err := scopedTags(userID).Find(&tags).Error; err != nil {
		log.Printf("Failed to list tags: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tags"})
		return
	}

	ctx.JSON(http.StatusOK, lo.Map(tags, func(t models.Tag, _ int) types.TagResponse {
		return types.NewTagResponse(&t)
	}))
}

func GetTag(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tagID, ok := parseIDParam(ctx, "tag_id")
	if !ok {
		return
	}

	tag, ok := findVisibleTag(ctx, userID, tagID)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, types.NewTagResponse(tag))
}

func UpdateTag(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tagID, ok := parseIDParam(ctx, "tag_id")
	if !ok {
		return
	}

	tag, ok := findVisibleTag(ctx, userID, tagID)
	if !ok {
		return
	}

	var req TagRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	tag.Title = req.Title
	tag.Description = req.Description

	if err := db.DB.Omit(clause.Associations).Save(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, validationError("title", "You already have a tag with this title"))
			return
		}
		log.Printf("Failed to update tag: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tag"})
		return
	}

	ctx.JSON(http.StatusOK, types.NewTagResponse(tag))
}

func DeleteTag(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tagID, ok := parseIDParam(ctx, "tag_id")
	if !ok {
		return
	}

	tag, ok := findVisibleTag(ctx, userID, tagID)
	if !ok {
		return
	}

	if err := db.DB.Select(clause.Associations).Delete(tag).Error; err != nil {
		log.Printf("Failed to delete tag: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tag"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
