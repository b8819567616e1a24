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

type CreateCommentRequest struct {
	TaskID uint   `json:"task" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

type UpdateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

func scopedComments(userID uint) *gorm.DB {
	return db.DB.
		Scopes(authz.Scope(authz.VisibleComments(userID))).
		Preload("Author")
}

func findVisibleComment(ctx *gin.Context, userID uint, commentID uint) (*models.Comment, bool) {
	var comment models.Comment

	if err := scopedComments(userID).Where("comments.id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			log.Printf("Failed to fetch comment: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		}
		return nil, false
	}

	return &comment, true
}

// CreateComment requires the target task to be visible; the author is
// always the principal.
func CreateComment(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateCommentRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	task, ok := findVisibleTask(ctx, userID, req.TaskID)
	if !ok {
		return
	}

	comment := models.Comment{
		TaskID:   task.ID,
		AuthorID: userID,
		Text:     req.Text,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		log.Printf("Failed to create comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	created, ok := findVisibleComment(ctx, userID, comment.ID)
	if !ok {
		return
	}

	ctx.JSON(http.StatusCreated, types.NewCommentResponse(created))
}

func ListComments(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var comments []models.Comment

	if err := scopedComments(userID).Find(&comments).Error; err != nil {
		log.Printf("Failed to list comments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	ctx.JSON(http.StatusOK, lo.Map(comments, func(c models.Comment, _ int) types.CommentResponse {
		return types.NewCommentResponse(&c)
	}))
}

func GetComment(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, ok := parseIDParam(ctx, "comment_id")
	if !ok {
		return
	}

	comment, ok := findVisibleComment(ctx, userID, commentID)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, types.NewCommentResponse(comment))
}

func UpdateComment(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, ok := parseIDParam(ctx, "comment_id")
	if !ok {
		return
	}

	comment, ok := findVisibleComment(ctx, userID, commentID)
	if !ok {
		return
	}

	var req UpdateCommentRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	comment.Text = req.Text

	if err := db.DB.Omit(clause.Associations).Save(comment).Error; err != nil {
		log.Printf("Failed to update comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	ctx.JSON(http.StatusOK, types.NewCommentResponse(comment))
}

func DeleteComment(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, ok := parseIDParam(ctx, "comment_id")
	if !ok {
		return
	}

	comment, ok := findVisibleComment(ctx, userID, commentID)
	if !ok {
		return
	}

	if err := db.DB.Delete(comment).Error; err != nil {
		log.Printf("Failed to delete comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
