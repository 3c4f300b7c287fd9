package graph

import (
	"context"

	"go.uber.org/zap"

	"socialgraph/backend/internal/state"
	apperrors "socialgraph/backend/pkg/errors"
)

// ============================================================================
// User-to-User Subscription Operations
// ============================================================================

// ToggleSubscription flips the edge from user id to user targetID. Only the
// acting user's own set is modified. Returns the acting user.
func (r *Repository) ToggleSubscription(ctx context.Context, id, targetID string) (state.User, error) {
	if id == targetID {
		return state.User{}, apperrors.NewValidationFailed("userId", "user cannot subscribe to itself")
	}

	var (
		updated state.User
		added   bool
	)
	err := r.tx(ctx, "toggle subscription", func(ctx context.Context) error {
		if _, err := r.GetUser(ctx, id); err != nil {
			return err
		}
		if _, err := r.GetUser(ctx, targetID); err != nil {
			return err
		}

		var err error
		updated, err = r.db.Users.Change(ctx, id, func(u *state.User) error {
			u.SubscribedToUserIDs, added = u.SubscribedToUserIDs.Toggle(targetID)
			return nil
		})
		return inconsistent("toggle subscription", "user vanished", err)
	})
	if err != nil {
		return state.User{}, err
	}

	r.logger.Info("Subscription toggled",
		zap.String("user_id", id),
		zap.String("target_id", targetID),
		zap.Bool("subscribed", added))
	return updated, nil
}

// SubscribeTo makes subscriberID a subscriber of userID by adding userID to
// subscriberID's set. Adding an existing edge is a no-op. Returns the
// subscriber.
func (r *Repository) SubscribeTo(ctx context.Context, userID, subscriberID string) (state.User, error) {
	if userID == subscriberID {
		return state.User{}, apperrors.NewValidationFailed("userId", "user cannot subscribe to itself")
	}

	var updated state.User
	err := r.tx(ctx, "subscribe", func(ctx context.Context) error {
		if _, err := r.GetUser(ctx, userID); err != nil {
			return err
		}
		if _, err := r.GetUser(ctx, subscriberID); err != nil {
			return err
		}

		var err error
		updated, err = r.db.Users.Change(ctx, subscriberID, func(u *state.User) error {
			u.SubscribedToUserIDs = u.SubscribedToUserIDs.Union(state.NewIDSet(userID))
			return nil
		})
		return inconsistent("subscribe", "subscriber vanished", err)
	})
	if err != nil {
		return state.User{}, err
	}

	r.logger.Info("User subscribed",
		zap.String("user_id", userID),
		zap.String("subscriber_id", subscriberID))
	return updated, nil
}

// UnsubscribeFrom removes userID from subscriberID's set. It fails with a
// validation error when the edge does not exist. Returns the subscriber.
func (r *Repository) UnsubscribeFrom(ctx context.Context, userID, subscriberID string) (state.User, error) {
	var updated state.User
	err := r.tx(ctx, "unsubscribe", func(ctx context.Context) error {
		subscriber, err := r.GetUser(ctx, subscriberID)
		if err != nil {
			return err
		}
		if !subscriber.SubscribedToUserIDs.Contains(userID) {
			return apperrors.NewValidationFailed("userId", "user is not subscribed to "+userID)
		}

		updated, err = r.db.Users.Change(ctx, subscriberID, func(u *state.User) error {
			u.SubscribedToUserIDs = u.SubscribedToUserIDs.Difference(state.NewIDSet(userID))
			return nil
		})
		return inconsistent("unsubscribe", "subscriber vanished", err)
	})
	if err != nil {
		return state.User{}, err
	}

	r.logger.Info("User unsubscribed",
		zap.String("user_id", userID),
		zap.String("subscriber_id", subscriberID))
	return updated, nil
}
