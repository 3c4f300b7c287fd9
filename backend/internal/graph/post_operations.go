package graph

import (
	"context"

	"go.uber.org/zap"

	"socialgraph/backend/internal/query"
	"socialgraph/backend/internal/state"
	apperrors "socialgraph/backend/pkg/errors"
)

// ============================================================================
// Post Operations
// ============================================================================

// ListPosts returns every post in insertion order
func (r *Repository) ListPosts(ctx context.Context) ([]state.Post, error) {
	return r.db.Posts.FindMany(ctx, query.All[state.Post]())
}

// GetPost returns the post with id or a NotFound error
func (r *Repository) GetPost(ctx context.Context, id string) (state.Post, error) {
	p, found, err := r.db.Posts.FindOne(ctx, query.Eq(state.PostID, id))
	if err != nil {
		return state.Post{}, err
	}
	if !found {
		return state.Post{}, apperrors.NewNotFound("post", id)
	}
	return p, nil
}

// GetPostByUser returns the first post written by userID
func (r *Repository) GetPostByUser(ctx context.Context, userID string) (state.Post, error) {
	p, found, err := r.db.Posts.FindOne(ctx, query.Eq(state.PostUserID, userID))
	if err != nil {
		return state.Post{}, err
	}
	if !found {
		return state.Post{}, apperrors.NewNotFound("post", "userId="+userID)
	}
	return p, nil
}

// CreatePost stores a post for an existing user
func (r *Repository) CreatePost(ctx context.Context, in NewPost) (state.Post, error) {
	post := state.Post{
		Title:   in.Title,
		Content: in.Content,
		UserID:  in.UserID,
	}
	if err := post.Validate(); err != nil {
		return state.Post{}, invalid(err)
	}

	var created state.Post
	err := r.tx(ctx, "create post", func(ctx context.Context) error {
		if _, err := r.GetUser(ctx, in.UserID); err != nil {
			return err
		}

		var err error
		created, err = r.db.Posts.Create(ctx, post)
		return err
	})
	if err != nil {
		return state.Post{}, err
	}

	r.logger.Info("Post created", zap.String("post_id", created.ID), zap.String("user_id", created.UserID))
	return created, nil
}

// ChangePost patches a post
func (r *Repository) ChangePost(ctx context.Context, id string, patch state.PostPatch) (state.Post, error) {
	p, err := r.db.Posts.Change(ctx, id, func(p *state.Post) error {
		patch.Apply(p)
		return nil
	})
	if err != nil {
		return state.Post{}, err
	}

	r.logger.Info("Post updated", zap.String("post_id", id))
	return p, nil
}

// ChangePostByUser patches the first post written by userID
func (r *Repository) ChangePostByUser(ctx context.Context, userID string, patch state.PostPatch) (state.Post, error) {
	var updated state.Post
	err := r.tx(ctx, "change post by user", func(ctx context.Context) error {
		p, err := r.GetPostByUser(ctx, userID)
		if err != nil {
			return err
		}
		updated, err = r.ChangePost(ctx, p.ID, patch)
		return inconsistent("change post by user", "post vanished", err)
	})
	if err != nil {
		return state.Post{}, err
	}
	return updated, nil
}

// DeletePost removes a post
func (r *Repository) DeletePost(ctx context.Context, id string) (state.Post, error) {
	p, err := r.db.Posts.Delete(ctx, id)
	if err != nil {
		return state.Post{}, err
	}

	r.logger.Info("Post deleted", zap.String("post_id", id), zap.String("user_id", p.UserID))
	return p, nil
}
