package graph

import (
	"context"

	"go.uber.org/zap"

	"socialgraph/backend/internal/query"
	"socialgraph/backend/internal/state"
	apperrors "socialgraph/backend/pkg/errors"
)

// ============================================================================
// Member Type Operations
// ============================================================================

// ListMemberTypes returns the seeded tiers
func (r *Repository) ListMemberTypes(ctx context.Context) ([]state.MemberType, error) {
	return r.db.MemberTypes.FindMany(ctx, query.All[state.MemberType]())
}

// GetMemberType returns the tier with id or a NotFound error
func (r *Repository) GetMemberType(ctx context.Context, id string) (state.MemberType, error) {
	m, found, err := r.db.MemberTypes.FindOne(ctx, query.Eq(state.MemberTypeKey, id))
	if err != nil {
		return state.MemberType{}, err
	}
	if !found {
		return state.MemberType{}, apperrors.NewNotFound("memberType", id)
	}
	return m, nil
}

// UpdateMemberType patches the policy of an existing tier
func (r *Repository) UpdateMemberType(ctx context.Context, id string, patch state.MemberTypePatch) (state.MemberType, error) {
	tier, err := state.ParseMemberTypeID(id)
	if err != nil {
		return state.MemberType{}, apperrors.NewValidationFailed("id", err.Error())
	}
	if err := patch.Validate(); err != nil {
		return state.MemberType{}, invalid(err)
	}

	var updated state.MemberType
	err = r.tx(ctx, "update member type", func(ctx context.Context) error {
		var err error
		updated, err = r.db.MemberTypes.Change(ctx, string(tier), func(m *state.MemberType) error {
			patch.Apply(m)
			return nil
		})
		return err
	})
	if err != nil {
		return state.MemberType{}, err
	}

	r.logger.Info("Member type updated",
		zap.String("member_type", id),
		zap.Int("discount", updated.Discount),
		zap.Int("month_posts_limit", updated.MonthPostsLimit))
	return updated, nil
}
