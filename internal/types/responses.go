package types

import (
	"time"

	"github.com/samber/lo"
	"gorm.io/datatypes"

	"github.com/Kirill-Alexeev/taskplanner/internal/models"
)

const dateLayout = "2006-01-02"

// DateString renders a nullable calendar date as YYYY-MM-DD.
func DateString(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := time.Time(*d).UTC().Format(dateLayout)
	return &s
}

type UserResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	Bio         string    `json:"bio"`
	DateOfBirth *string   `json:"date_of_birth"`
	PhotoURL    string    `json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullNameOrUsername(),
		Phone:       u.Phone,
		Bio:         u.Bio,
		DateOfBirth: DateString(u.DateOfBirth),
		PhotoURL:    u.PhotoURL,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type TagResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UserID      uint   `json:"user"`
}

func NewTagResponse(t *models.Tag) TagResponse {
	return TagResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		UserID:      t.UserID,
	}
}

// TaskResponse carries both the stored status (as of the last save) and the
// derived is_overdue flag, which is recomputed on every read and is the one
// consumers should trust.
type TaskResponse struct {
	ID            uint           `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Owner         UserResponse   `json:"owner"`
	WorkspaceID   *uint          `json:"workspace"`
	DueDate       *string        `json:"due_date"`
	Deadline      *string        `json:"deadline"`
	Status        int            `json:"status"`
	Priority      int            `json:"priority"`
	Tags          []TagResponse  `json:"tags"`
	Assignees     []UserResponse `json:"assignees"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	IsOverdue     bool           `json:"is_overdue"`
	IsPersonal    bool           `json:"is_personal"`
	SubtasksCount int            `json:"subtasks_count"`
	CommentsCount int            `json:"comments_count"`
}

// NewTaskResponse expects Owner, Assignees, Tags, Subtasks and Comments to
// be preloaded.
func NewTaskResponse(t *models.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Owner:       NewUserResponse(&t.Owner),
		WorkspaceID: t.WorkspaceID,
		DueDate:     DateString(t.DueDate),
		Deadline:    DateString(t.Deadline),
		Status:      int(t.Status),
		Priority:    int(t.Priority),
		Tags: lo.Map(t.Tags, func(tag models.Tag, _ int) TagResponse {
			return NewTagResponse(&tag)
		}),
		Assignees: lo.Map(t.Assignees, func(u models.User, _ int) UserResponse {
			return NewUserResponse(&u)
		}),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		IsOverdue:     t.IsOverdue(now),
		IsPersonal:    t.IsPersonal(),
		SubtasksCount: len(t.Subtasks),
		CommentsCount: len(t.Comments),
	}
}

type SubtaskResponse struct {
	ID           uint          `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Status       int           `json:"status"`
	ParentTaskID uint          `json:"parent_task"`
	Assignee     *UserResponse `json:"assignee"`
	CreatedAt    time.Time     `json:"created_at"`
}

func NewSubtaskResponse(s *models.Subtask) SubtaskResponse {
	resp := SubtaskResponse{
		ID:           s.ID,
		Title:        s.Title,
		Description:  s.Description,
		Status:       int(s.Status),
		ParentTaskID: s.ParentTaskID,
		CreatedAt:    s.CreatedAt,
	}
	if s.Assignee != nil {
		u := NewUserResponse(s.Assignee)
		resp.Assignee = &u
	}
	return resp
}

type CommentResponse struct {
	ID        uint         `json:"id"`
	TaskID    uint         `json:"task"`
	Author    UserResponse `json:"author"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func NewCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		Author:    NewUserResponse(&c.Author),
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type MembershipResponse struct {
	ID          uint         `json:"id"`
	User        UserResponse `json:"user"`
	WorkspaceID uint         `json:"workspace"`
	Role        int          `json:"role"`
	JoinedAt    time.Time    `json:"joined_at"`
}

func NewMembershipResponse(m *models.WorkspaceMembership) MembershipResponse {
	return MembershipResponse{
		ID:          m.ID,
		User:        NewUserResponse(&m.User),
		WorkspaceID: m.WorkspaceID,
		Role:        int(m.Role),
		JoinedAt:    m.CreatedAt,
	}
}

type WorkspaceResponse struct {
	ID           uint         `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Owner        UserResponse `json:"owner"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	MembersCount int          `json:"members_count"`
}

// NewWorkspaceResponse expects Owner and Memberships preloaded.
func NewWorkspaceResponse(w *models.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:           w.ID,
		Title:        w.Title,
		Description:  w.Description,
		Owner:        NewUserResponse(&w.Owner),
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
		MembersCount: len(w.Memberships),
	}
}

type WorkspaceDetailResponse struct {
	WorkspaceResponse
	Members []MembershipResponse `json:"members"`
}

// NewWorkspaceDetailResponse additionally expects Memberships.User
// preloaded.
func NewWorkspaceDetailResponse(w *models.Workspace) WorkspaceDetailResponse {
	return WorkspaceDetailResponse{
		WorkspaceResponse: NewWorkspaceResponse(w),
		Members: lo.Map(w.Memberships, func(m models.WorkspaceMembership, _ int) MembershipResponse {
			return NewMembershipResponse(&m)
		}),
	}
}
