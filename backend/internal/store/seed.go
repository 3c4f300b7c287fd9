package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"socialgraph/backend/internal/query"
	"socialgraph/backend/internal/state"
	apperrors "socialgraph/backend/pkg/errors"
)

//go:embed seed/member_types.yaml
var defaultSeed []byte

// Fixture describes records to load into a DB. Users are referenced by ref
// because their ids are generated on load.
type Fixture struct {
	MemberTypes []FixtureMemberType `yaml:"memberTypes"`
	Users       []FixtureUser       `yaml:"users"`
}

type FixtureMemberType struct {
	ID              string `yaml:"id"`
	Discount        int    `yaml:"discount"`
	MonthPostsLimit int    `yaml:"monthPostsLimit"`
}

type FixtureUser struct {
	Ref          string          `yaml:"ref"`
	FirstName    string          `yaml:"firstName"`
	LastName     string          `yaml:"lastName"`
	Email        string          `yaml:"email"`
	SubscribedTo []string        `yaml:"subscribedTo"`
	Profile      *FixtureProfile `yaml:"profile"`
	Posts        []FixturePost   `yaml:"posts"`
}

type FixtureProfile struct {
	Avatar       string `yaml:"avatar"`
	Sex          string `yaml:"sex"`
	Birthday     int    `yaml:"birthday"`
	Country      string `yaml:"country"`
	Street       string `yaml:"street"`
	City         string `yaml:"city"`
	MemberTypeID string `yaml:"memberTypeId"`
}

type FixturePost struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// DefaultFixture returns the built-in member type seed
func DefaultFixture() (*Fixture, error) {
	return ParseFixture(defaultSeed)
}

// LoadFixtureFile reads and parses a YAML fixture from disk
func LoadFixtureFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes and validates a YAML fixture
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks member type ids and user references
func (f *Fixture) Validate() error {
	for _, mt := range f.MemberTypes {
		if _, err := state.ParseMemberTypeID(mt.ID); err != nil {
			return apperrors.NewValidationFailed("memberTypes.id", err.Error())
		}
		policy := state.MemberTypePatch{Discount: &mt.Discount, MonthPostsLimit: &mt.MonthPostsLimit}
		if err := policy.Validate(); err != nil {
			return fixtureInvalid("memberTypes", err)
		}
	}

	refs := make(map[string]bool, len(f.Users))
	for _, u := range f.Users {
		if u.Ref == "" {
			return apperrors.NewValidationFailed("users.ref", "cannot be empty")
		}
		if refs[u.Ref] {
			return apperrors.NewValidationFailed("users.ref", "duplicate ref "+u.Ref)
		}
		refs[u.Ref] = true
		if u.Profile != nil {
			if _, err := state.ParseMemberTypeID(u.Profile.MemberTypeID); err != nil {
				return apperrors.NewValidationFailed("users.profile.memberTypeId", err.Error())
			}
			if err := (state.ProfilePatch{Birthday: &u.Profile.Birthday}).Validate(); err != nil {
				return fixtureInvalid("users.profile", err)
			}
		}
	}
	for _, u := range f.Users {
		for _, target := range u.SubscribedTo {
			if !refs[target] {
				return apperrors.NewValidationFailed("users.subscribedTo", "unknown ref "+target)
			}
			if target == u.Ref {
				return apperrors.NewValidationFailed("users.subscribedTo", "user cannot subscribe to itself")
			}
		}
	}
	return nil
}

func fixtureInvalid(prefix string, err error) error {
	var e state.ErrInvalidEntity
	if errors.As(err, &e) {
		return apperrors.NewValidationFailed(prefix+"."+e.Field, e.Reason)
	}
	return err
}

// Load writes the fixture into db. Member types are upserted; users, their
// profiles and posts are always created. Returns the generated id per ref.
func (db *DB) Load(ctx context.Context, f *Fixture) (map[string]string, error) {
	for _, mt := range f.MemberTypes {
		if err := db.upsertMemberType(ctx, mt); err != nil {
			return nil, err
		}
	}

	ids := make(map[string]string, len(f.Users))
	for _, fu := range f.Users {
		u, err := db.Users.Create(ctx, state.User{
			FirstName: fu.FirstName,
			LastName:  fu.LastName,
			Email:     fu.Email,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", fu.Ref, err)
		}
		ids[fu.Ref] = u.ID

		if fu.Profile != nil {
			_, err := db.Profiles.Create(ctx, state.Profile{
				Avatar:       fu.Profile.Avatar,
				Sex:          fu.Profile.Sex,
				Birthday:     fu.Profile.Birthday,
				Country:      fu.Profile.Country,
				Street:       fu.Profile.Street,
				City:         fu.Profile.City,
				MemberTypeID: state.MemberTypeID(fu.Profile.MemberTypeID),
				UserID:       u.ID,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to seed profile for %s: %w", fu.Ref, err)
			}
		}
		for _, fp := range fu.Posts {
			if _, err := db.Posts.Create(ctx, state.Post{Title: fp.Title, Content: fp.Content, UserID: u.ID}); err != nil {
				return nil, fmt.Errorf("failed to seed post for %s: %w", fu.Ref, err)
			}
		}
	}

	for _, fu := range f.Users {
		if len(fu.SubscribedTo) == 0 {
			continue
		}
		targets := make([]string, 0, len(fu.SubscribedTo))
		for _, ref := range fu.SubscribedTo {
			targets = append(targets, ids[ref])
		}
		_, err := db.Users.Change(ctx, ids[fu.Ref], func(u *state.User) error {
			u.SubscribedToUserIDs = u.SubscribedToUserIDs.Union(state.NewIDSet(targets...))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed subscriptions for %s: %w", fu.Ref, err)
		}
	}

	db.logger.Info("Fixture loaded",
		zap.Int("member_types", len(f.MemberTypes)),
		zap.Int("users", len(f.Users)))
	return ids, nil
}

func (db *DB) upsertMemberType(ctx context.Context, mt FixtureMemberType) error {
	_, found, err := db.MemberTypes.FindOne(ctx, query.Eq(state.MemberTypeKey, mt.ID))
	if err != nil {
		return err
	}
	if found {
		_, err = db.MemberTypes.Change(ctx, mt.ID, func(m *state.MemberType) error {
			m.Discount = mt.Discount
			m.MonthPostsLimit = mt.MonthPostsLimit
			return nil
		})
		return err
	}
	_, err = db.MemberTypes.Insert(ctx, state.MemberType{
		ID:              state.MemberTypeID(mt.ID),
		Discount:        mt.Discount,
		MonthPostsLimit: mt.MonthPostsLimit,
	})
	return err
}
