package graph

import (
	"context"

	"socialgraph/backend/internal/query"
	"socialgraph/backend/internal/state"
	"socialgraph/backend/internal/store"
)

// Resolver computes relational fields on demand. Every call reads the store
// afresh; nothing is cached or batched across calls.
type Resolver struct {
	db *store.DB
}

// NewResolver creates a resolver over db
func NewResolver(db *store.DB) *Resolver {
	return &Resolver{db: db}
}

// Profile returns the user's profile, or nil when the user has none
func (r *Resolver) Profile(ctx context.Context, user state.User) (*state.Profile, error) {
	p, found, err := r.db.Profiles.FindOne(ctx, query.Eq(state.ProfileUserID, user.ID))
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// Posts returns every post written by the user
func (r *Resolver) Posts(ctx context.Context, user state.User) ([]state.Post, error) {
	return r.db.Posts.FindMany(ctx, query.Eq(state.PostUserID, user.ID))
}

// MemberType returns the tier of the user's profile, or nil without a profile
func (r *Resolver) MemberType(ctx context.Context, user state.User) (*state.MemberType, error) {
	p, err := r.Profile(ctx, user)
	if err != nil || p == nil {
		return nil, err
	}
	return r.ProfileMemberType(ctx, *p)
}

// ProfileMemberType returns the tier referenced by a profile
func (r *Resolver) ProfileMemberType(ctx context.Context, profile state.Profile) (*state.MemberType, error) {
	m, found, err := r.db.MemberTypes.FindOne(ctx, query.Eq(state.MemberTypeKey, string(profile.MemberTypeID)))
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

// SubscribedTo returns the users this user follows
func (r *Resolver) SubscribedTo(ctx context.Context, user state.User) ([]state.User, error) {
	return r.db.Users.FindMany(ctx, query.In(state.UserID, user.SubscribedToUserIDs.Slice()))
}

// Subscribers returns the users that follow this user
func (r *Resolver) Subscribers(ctx context.Context, user state.User) ([]state.User, error) {
	return r.db.Users.FindMany(ctx, query.Contains(state.UserSubscribedTo, user.ID))
}

// Owner returns the user a profile or post belongs to, or nil once removed
func (r *Resolver) Owner(ctx context.Context, userID string) (*state.User, error) {
	u, found, err := r.db.Users.FindOne(ctx, query.Eq(state.UserID, userID))
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}
