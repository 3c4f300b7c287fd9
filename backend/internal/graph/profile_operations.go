package graph

import (
	"context"

	"go.uber.org/zap"

	"socialgraph/backend/internal/query"
	"socialgraph/backend/internal/state"
	apperrors "socialgraph/backend/pkg/errors"
)

// ============================================================================
// Profile Operations
// ============================================================================

// ListProfiles returns every profile in insertion order
func (r *Repository) ListProfiles(ctx context.Context) ([]state.Profile, error) {
	return r.db.Profiles.FindMany(ctx, query.All[state.Profile]())
}

// GetProfile returns the profile with id or a NotFound error
func (r *Repository) GetProfile(ctx context.Context, id string) (state.Profile, error) {
	p, found, err := r.db.Profiles.FindOne(ctx, query.Eq(state.ProfileID, id))
	if err != nil {
		return state.Profile{}, err
	}
	if !found {
		return state.Profile{}, apperrors.NewNotFound("profile", id)
	}
	return p, nil
}

// CreateProfile stores a profile for an existing user that has none yet
func (r *Repository) CreateProfile(ctx context.Context, in NewProfile) (state.Profile, error) {
	profile := state.Profile{
		Avatar:       in.Avatar,
		Sex:          in.Sex,
		Birthday:     in.Birthday,
		Country:      in.Country,
		Street:       in.Street,
		City:         in.City,
		MemberTypeID: in.MemberTypeID,
		UserID:       in.UserID,
	}
	if err := profile.Validate(); err != nil {
		return state.Profile{}, invalid(err)
	}

	var created state.Profile
	err := r.tx(ctx, "create profile", func(ctx context.Context) error {
		if err := r.checkMemberType(ctx, in.MemberTypeID); err != nil {
			return err
		}
		if _, err := r.GetUser(ctx, in.UserID); err != nil {
			return err
		}
		_, exists, err := r.db.Profiles.FindOne(ctx, query.Eq(state.ProfileUserID, in.UserID))
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewValidationFailed("userId", "user already has a profile")
		}

		created, err = r.db.Profiles.Create(ctx, profile)
		return err
	})
	if err != nil {
		return state.Profile{}, err
	}

	r.logger.Info("Profile created",
		zap.String("profile_id", created.ID),
		zap.String("user_id", created.UserID),
		zap.String("member_type", string(created.MemberTypeID)))
	return created, nil
}

// UpdateProfile patches a profile. A new member type must be valid.
func (r *Repository) UpdateProfile(ctx context.Context, id string, patch state.ProfilePatch) (state.Profile, error) {
	if err := patch.Validate(); err != nil {
		return state.Profile{}, invalid(err)
	}

	var updated state.Profile
	err := r.tx(ctx, "update profile", func(ctx context.Context) error {
		if patch.MemberTypeID != nil {
			if err := r.checkMemberType(ctx, *patch.MemberTypeID); err != nil {
				return err
			}
		}

		var err error
		updated, err = r.db.Profiles.Change(ctx, id, func(p *state.Profile) error {
			patch.Apply(p)
			return nil
		})
		return err
	})
	if err != nil {
		return state.Profile{}, err
	}

	r.logger.Info("Profile updated", zap.String("profile_id", id))
	return updated, nil
}

// ChangeProfileByUser patches the profile owned by userID
func (r *Repository) ChangeProfileByUser(ctx context.Context, userID string, patch state.ProfilePatch) (state.Profile, error) {
	var updated state.Profile
	err := r.tx(ctx, "change profile by user", func(ctx context.Context) error {
		p, found, err := r.db.Profiles.FindOne(ctx, query.Eq(state.ProfileUserID, userID))
		if err != nil {
			return err
		}
		if !found {
			return apperrors.NewNotFound("profile", "userId="+userID)
		}
		updated, err = r.UpdateProfile(ctx, p.ID, patch)
		return inconsistent("change profile by user", "profile vanished", err)
	})
	if err != nil {
		return state.Profile{}, err
	}
	return updated, nil
}

// DeleteProfile removes a profile
func (r *Repository) DeleteProfile(ctx context.Context, id string) (state.Profile, error) {
	p, err := r.db.Profiles.Delete(ctx, id)
	if err != nil {
		return state.Profile{}, err
	}

	r.logger.Info("Profile deleted", zap.String("profile_id", id), zap.String("user_id", p.UserID))
	return p, nil
}

func (r *Repository) checkMemberType(ctx context.Context, id state.MemberTypeID) error {
	if !id.Valid() {
		return apperrors.NewValidationFailed("memberTypeId", state.ErrInvalidMemberType{Value: string(id)}.Error())
	}
	_, found, err := r.db.MemberTypes.FindOne(ctx, query.Eq(state.MemberTypeKey, string(id)))
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFound("memberType", string(id))
	}
	return nil
}
