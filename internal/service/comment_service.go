package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
	"github.com/SaneeshInter/project-management-sub002/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

type CommentResponse struct {
	ID         string  `json:"id"`
	ProjectID  string  `json:"project_id"`
	AuthorID   *string `json:"author_id"`
	AuthorName string  `json:"author_name,omitempty"`
	Body       string  `json:"body"`
	CreatedAt  string  `json:"created_at"`
}

// --- Interface ---

type CommentService interface {
	CreateComment(ctx context.Context, projectID string, actorID string, req CreateCommentRequest) (*CommentResponse, error)
	ListComments(ctx context.Context, projectID string, page, limit int) ([]CommentResponse, int64, error)
	DeleteComment(ctx context.Context, id string, actorID string, actorRole string) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	projectRepo repository.ProjectRepository
}

func NewCommentService(commentRepo repository.CommentRepository, projectRepo repository.ProjectRepository) CommentService {
	return &commentService{commentRepo: commentRepo, projectRepo: projectRepo}
}

// --- Implementation ---

func (s *commentService) CreateComment(ctx context.Context, projectID string, actorID string, req CreateCommentRequest) (*CommentResponse, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id: %w", err)
	}
	if _, err := s.projectRepo.FindByID(ctx, pid); err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}

	comment := &model.Comment{
		ProjectID: pid,
		AuthorID:  parseActor(actorID),
		Body:      req.Body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	resp := toCommentResponse(comment)
	return &resp, nil
}

func (s *commentService) ListComments(ctx context.Context, projectID string, page, limit int) ([]CommentResponse, int64, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid project id: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	comments, total, err := s.commentRepo.ListForProject(ctx, pid, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}

	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}
	return out, total, nil
}

// DeleteComment allows the author or an admin to remove a comment.
func (s *commentService) DeleteComment(ctx context.Context, id string, actorID string, actorRole string) error {
	cid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid comment id: %w", err)
	}
	comment, err := s.commentRepo.FindByID(ctx, cid)
	if err != nil {
		return fmt.Errorf("comment not found: %w", err)
	}

	if actorRole != model.RoleAdmin {
		actor := parseActor(actorID)
		if actor == nil || comment.AuthorID == nil || *comment.AuthorID != *actor {
			return errors.New("only the author or an admin can delete a comment")
		}
	}

	return s.commentRepo.Delete(ctx, cid)
}

// --- helpers ---

func toCommentResponse(c *model.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID.String(),
		ProjectID: c.ProjectID.String(),
		Body:      c.Body,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if c.AuthorID != nil {
		v := c.AuthorID.String()
		resp.AuthorID = &v
	}
	if c.Author != nil {
		resp.AuthorName = c.Author.Username
	}
	return resp
}
