package graph

import (
	"context"

	"go.uber.org/zap"

	"socialgraph/backend/internal/query"
	"socialgraph/backend/internal/state"
	apperrors "socialgraph/backend/pkg/errors"
)

// ============================================================================
// User Operations
// ============================================================================

// ListUsers returns every user in insertion order
func (r *Repository) ListUsers(ctx context.Context) ([]state.User, error) {
	return r.db.Users.FindMany(ctx, query.All[state.User]())
}

// GetUser returns the user with id or a NotFound error
func (r *Repository) GetUser(ctx context.Context, id string) (state.User, error) {
	u, found, err := r.db.Users.FindOne(ctx, query.Eq(state.UserID, id))
	if err != nil {
		return state.User{}, err
	}
	if !found {
		return state.User{}, apperrors.NewNotFound("user", id)
	}
	return u, nil
}

// CreateUser stores a new user with no subscriptions
func (r *Repository) CreateUser(ctx context.Context, in NewUser) (state.User, error) {
	u, err := r.db.Users.Create(ctx, state.User{
		FirstName:           in.FirstName,
		LastName:            in.LastName,
		Email:               in.Email,
		SubscribedToUserIDs: state.NewIDSet(),
	})
	if err != nil {
		return state.User{}, err
	}

	r.logger.Info("User created", zap.String("user_id", u.ID))
	return u, nil
}

// ChangeUser patches the scalar fields of a user
func (r *Repository) ChangeUser(ctx context.Context, id string, patch state.UserPatch) (state.User, error) {
	u, err := r.db.Users.Change(ctx, id, func(u *state.User) error {
		patch.Apply(u)
		return nil
	})
	if err != nil {
		return state.User{}, err
	}

	r.logger.Info("User updated", zap.String("user_id", id))
	return u, nil
}

// DeleteUser removes a user together with everything that points at it:
// the user's id is stripped from every subscriber, the user's profile is
// deleted, the user's posts are deleted according to the cascade policy,
// and finally the user itself is removed.
func (r *Repository) DeleteUser(ctx context.Context, id string) (*DeleteUserResult, error) {
	const op = "delete user"
	result := &DeleteUserResult{}

	err := r.tx(ctx, op, func(ctx context.Context) error {
		if _, err := r.GetUser(ctx, id); err != nil {
			return err
		}

		subscribers, err := r.db.Users.FindMany(ctx, query.Contains(state.UserSubscribedTo, id))
		if err != nil {
			return err
		}
		for _, s := range subscribers {
			_, err := r.db.Users.Change(ctx, s.ID, func(u *state.User) error {
				u.SubscribedToUserIDs = u.SubscribedToUserIDs.Without(id)
				return nil
			})
			if err != nil {
				return inconsistent(op, "subscriber vanished", err)
			}
			result.UnsubscribedUserIDs = append(result.UnsubscribedUserIDs, s.ID)
		}

		profile, found, err := r.db.Profiles.FindOne(ctx, query.Eq(state.ProfileUserID, id))
		if err != nil {
			return err
		}
		if found {
			if _, err := r.db.Profiles.Delete(ctx, profile.ID); err != nil {
				return inconsistent(op, "profile vanished", err)
			}
			result.ProfileID = profile.ID
		}

		posts, err := r.postsToCascade(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range posts {
			if _, err := r.db.Posts.Delete(ctx, p.ID); err != nil {
				return inconsistent(op, "post vanished", err)
			}
			result.PostIDs = append(result.PostIDs, p.ID)
		}

		removed, err := r.db.Users.Delete(ctx, id)
		if err != nil {
			return inconsistent(op, "user vanished", err)
		}
		result.User = removed
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("User deleted",
		zap.String("user_id", id),
		zap.Int("unsubscribed", len(result.UnsubscribedUserIDs)),
		zap.Bool("profile_removed", result.ProfileID != ""),
		zap.Int("posts_removed", len(result.PostIDs)),
		zap.Stringer("cascade", r.cascade))
	return result, nil
}

func (r *Repository) postsToCascade(ctx context.Context, userID string) ([]state.Post, error) {
	byAuthor := query.Eq(state.PostUserID, userID)
	if r.cascade == CascadeAllPosts {
		return r.db.Posts.FindMany(ctx, byAuthor)
	}
	first, found, err := r.db.Posts.FindOne(ctx, byAuthor)
	if err != nil || !found {
		return nil, err
	}
	return []state.Post{first}, nil
}
