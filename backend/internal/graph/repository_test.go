package graph

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialgraph/backend/internal/query"
	"socialgraph/backend/internal/state"
	"socialgraph/backend/internal/store"
	apperrors "socialgraph/backend/pkg/errors"
)

func newTestRepository(t *testing.T, opts ...Option) *Repository {
	t.Helper()
	db := store.New()
	f, err := store.DefaultFixture()
	require.NoError(t, err)
	_, err = db.Load(context.Background(), f)
	require.NoError(t, err)
	return NewRepository(db, opts...)
}

func createUser(t *testing.T, r *Repository, name string) state.User {
	t.Helper()
	u, err := r.CreateUser(context.Background(), NewUser{FirstName: name, LastName: "Test", Email: name + "@example.com"})
	require.NoError(t, err)
	return u
}

func TestToggleSubscriptionTwiceRestoresSet(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	a := createUser(t, r, "a")
	b := createUser(t, r, "b")

	u, err := r.ToggleSubscription(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, u.SubscribedToUserIDs.Slice())

	u, err = r.ToggleSubscription(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, u.SubscribedToUserIDs.Slice())

	// the target's own set is never touched
	target, err := r.GetUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, target.SubscribedToUserIDs.Len())
}

func TestToggleSubscriptionValidation(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	a := createUser(t, r, "a")

	_, err := r.ToggleSubscription(ctx, a.ID, a.ID)
	assert.True(t, apperrors.IsValidation(err))

	_, err = r.ToggleSubscription(ctx, "ghost", a.ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = r.ToggleSubscription(ctx, a.ID, "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestConcurrentTogglesDoNotLoseEdges(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	a := createUser(t, r, "a")

	var targets []string
	for i := 0; i < 20; i++ {
		targets = append(targets, createUser(t, r, fmt.Sprintf("t%d", i)).ID)
	}

	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			_, err := r.ToggleSubscription(ctx, a.ID, target)
			assert.NoError(t, err)
		}(target)
	}
	wg.Wait()

	u, err := r.GetUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, len(targets), u.SubscribedToUserIDs.Len())
	assert.ElementsMatch(t, targets, u.SubscribedToUserIDs.Slice())
}

func TestSubscribeToDirection(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	a := createUser(t, r, "a")
	b := createUser(t, r, "b")

	// subscribeTo on path user A with body userId B makes B follow A
	updated, err := r.SubscribeTo(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, updated.ID)
	assert.Equal(t, []string{a.ID}, updated.SubscribedToUserIDs.Slice())

	aAfter, err := r.GetUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, aAfter.SubscribedToUserIDs.Len())

	// subscribing again never duplicates
	updated, err = r.SubscribeTo(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, updated.SubscribedToUserIDs.Slice())
}

func TestSubscribeUnsubscribeRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	a := createUser(t, r, "a")
	b := createUser(t, r, "b")
	c := createUser(t, r, "c")
	_, err := r.SubscribeTo(ctx, c.ID, b.ID)
	require.NoError(t, err)

	before, _ := r.GetUser(ctx, b.ID)

	_, err = r.SubscribeTo(ctx, a.ID, b.ID)
	require.NoError(t, err)
	after, err := r.UnsubscribeFrom(ctx, a.ID, b.ID)
	require.NoError(t, err)

	assert.Equal(t, before.SubscribedToUserIDs.Slice(), after.SubscribedToUserIDs.Slice())
}

func TestUnsubscribeErrors(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	a := createUser(t, r, "a")
	b := createUser(t, r, "b")

	_, err := r.UnsubscribeFrom(ctx, a.ID, b.ID)
	assert.True(t, apperrors.IsValidation(err), "not subscribed")

	_, err = r.UnsubscribeFrom(ctx, a.ID, "ghost")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = r.SubscribeTo(ctx, a.ID, a.ID)
	assert.True(t, apperrors.IsValidation(err))

	_, err = r.SubscribeTo(ctx, "ghost", b.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateProfileRules(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	u := createUser(t, r, "u")

	_, err := r.CreateProfile(ctx, NewProfile{UserID: u.ID, MemberTypeID: "premium"})
	assert.True(t, apperrors.IsValidation(err))
	profiles, _ := r.ListProfiles(ctx)
	assert.Empty(t, profiles, "a rejected profile is never stored")

	_, err = r.CreateProfile(ctx, NewProfile{UserID: "ghost", MemberTypeID: state.MemberTypeBasic})
	assert.True(t, apperrors.IsNotFound(err))

	p, err := r.CreateProfile(ctx, NewProfile{UserID: u.ID, MemberTypeID: state.MemberTypeBasic, City: "Oslo"})
	require.NoError(t, err)
	assert.Equal(t, "Oslo", p.City)

	_, err = r.CreateProfile(ctx, NewProfile{UserID: u.ID, MemberTypeID: state.MemberTypeBusiness})
	assert.True(t, apperrors.IsValidation(err), "second profile for the same user")

	profiles, _ = r.ListProfiles(ctx)
	assert.Len(t, profiles, 1)
}

func TestConcurrentCreateProfileKeepsOnePerUser(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	u := createUser(t, r, "u")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.CreateProfile(ctx, NewProfile{UserID: u.ID, MemberTypeID: state.MemberTypeBasic})
		}()
	}
	wg.Wait()

	profiles, err := r.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	u := createUser(t, r, "u")
	p, err := r.CreateProfile(ctx, NewProfile{UserID: u.ID, MemberTypeID: state.MemberTypeBasic})
	require.NoError(t, err)

	bad := state.MemberTypeID("gold")
	_, err = r.UpdateProfile(ctx, p.ID, state.ProfilePatch{MemberTypeID: &bad})
	assert.True(t, apperrors.IsValidation(err))

	business := state.MemberTypeBusiness
	city := "Bergen"
	updated, err := r.ChangeProfileByUser(ctx, u.ID, state.ProfilePatch{MemberTypeID: &business, City: &city})
	require.NoError(t, err)
	assert.Equal(t, state.MemberTypeBusiness, updated.MemberTypeID)
	assert.Equal(t, "Bergen", updated.City)
	assert.Equal(t, u.ID, updated.UserID)

	_, err = r.ChangeProfileByUser(ctx, "ghost", state.ProfilePatch{City: &city})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = r.UpdateProfile(ctx, "missing", state.ProfilePatch{City: &city})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreatePostRequiresUser(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	_, err := r.CreatePost(ctx, NewPost{Title: "t", UserID: "ghost"})
	assert.True(t, apperrors.IsNotFound(err))

	u := createUser(t, r, "u")
	first, err := r.CreatePost(ctx, NewPost{Title: "one", Content: "c", UserID: u.ID})
	require.NoError(t, err)
	_, err = r.CreatePost(ctx, NewPost{Title: "two", Content: "c", UserID: u.ID})
	require.NoError(t, err)

	title := "edited"
	changed, err := r.ChangePostByUser(ctx, u.ID, state.PostPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, first.ID, changed.ID)
	assert.Equal(t, "edited", changed.Title)
}

func TestUpdateMemberType(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	limit := 5

	_, err := r.UpdateMemberType(ctx, "platinum", state.MemberTypePatch{MonthPostsLimit: &limit})
	assert.True(t, apperrors.IsValidation(err))

	m, err := r.UpdateMemberType(ctx, "basic", state.MemberTypePatch{MonthPostsLimit: &limit})
	require.NoError(t, err)
	assert.Equal(t, 5, m.MonthPostsLimit)
	assert.Equal(t, 0, m.Discount)

	empty := NewRepository(store.New())
	_, err = empty.UpdateMemberType(ctx, "basic", state.MemberTypePatch{MonthPostsLimit: &limit})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestIntFieldsStayWithin32Bits(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	u := createUser(t, r, "u")
	tooBig := 5000000000

	_, err := r.CreateProfile(ctx, NewProfile{UserID: u.ID, MemberTypeID: state.MemberTypeBasic, Birthday: tooBig})
	require.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "birthday: out of 32-bit integer range", apperrors.MessageOf(err))
	profiles, _ := r.ListProfiles(ctx)
	assert.Empty(t, profiles)

	p, err := r.CreateProfile(ctx, NewProfile{UserID: u.ID, MemberTypeID: state.MemberTypeBasic, Birthday: 1990})
	require.NoError(t, err)
	_, err = r.UpdateProfile(ctx, p.ID, state.ProfilePatch{Birthday: &tooBig})
	assert.True(t, apperrors.IsValidation(err))
	stored, err := r.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1990, stored.Birthday)

	_, err = r.UpdateMemberType(ctx, "basic", state.MemberTypePatch{Discount: &tooBig})
	require.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "discount: out of 32-bit integer range", apperrors.MessageOf(err))
	_, err = r.UpdateMemberType(ctx, "basic", state.MemberTypePatch{MonthPostsLimit: &tooBig})
	assert.True(t, apperrors.IsValidation(err))
	m, err := r.GetMemberType(ctx, "basic")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Discount)
}

func TestCreateRequiresOwnerID(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)

	_, err := r.CreatePost(ctx, NewPost{Title: "t"})
	require.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "userId: cannot be empty", apperrors.MessageOf(err))

	_, err = r.CreateProfile(ctx, NewProfile{MemberTypeID: state.MemberTypeBasic})
	assert.True(t, apperrors.IsValidation(err))
}

func TestDeleteUserCascade(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	a := createUser(t, r, "a")
	b := createUser(t, r, "b")
	c := createUser(t, r, "c")

	_, err := r.ToggleSubscription(ctx, b.ID, a.ID)
	require.NoError(t, err)
	_, err = r.ToggleSubscription(ctx, c.ID, a.ID)
	require.NoError(t, err)
	_, err = r.ToggleSubscription(ctx, c.ID, b.ID)
	require.NoError(t, err)
	_, err = r.CreateProfile(ctx, NewProfile{UserID: a.ID, MemberTypeID: state.MemberTypeBasic})
	require.NoError(t, err)
	first, err := r.CreatePost(ctx, NewPost{Title: "P1", UserID: a.ID})
	require.NoError(t, err)
	second, err := r.CreatePost(ctx, NewPost{Title: "P2", UserID: a.ID})
	require.NoError(t, err)

	result, err := r.DeleteUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, result.User.ID)
	assert.ElementsMatch(t, []string{b.ID, c.ID}, result.UnsubscribedUserIDs)
	assert.NotEmpty(t, result.ProfileID)
	assert.Equal(t, []string{first.ID}, result.PostIDs)

	_, err = r.GetUser(ctx, a.ID)
	assert.True(t, apperrors.IsNotFound(err))

	stripped, err := r.db.Users.FindMany(ctx, query.Contains(state.UserSubscribedTo, a.ID))
	require.NoError(t, err)
	assert.Empty(t, stripped)

	cAfter, _ := r.GetUser(ctx, c.ID)
	assert.Equal(t, []string{b.ID}, cAfter.SubscribedToUserIDs.Slice())

	profiles, _ := r.ListProfiles(ctx)
	assert.Empty(t, profiles)

	// only the first post goes with the author by default
	posts, _ := r.ListPosts(ctx)
	require.Len(t, posts, 1)
	assert.Equal(t, second.ID, posts[0].ID)
}

func TestDeleteUserCascadeAllPosts(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t, WithCascadePolicy(CascadeAllPosts))
	a := createUser(t, r, "a")
	other := createUser(t, r, "other")
	for i := 0; i < 3; i++ {
		_, err := r.CreatePost(ctx, NewPost{Title: "p", UserID: a.ID})
		require.NoError(t, err)
	}
	keep, err := r.CreatePost(ctx, NewPost{Title: "keep", UserID: other.ID})
	require.NoError(t, err)

	result, err := r.DeleteUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, result.PostIDs, 3)

	posts, _ := r.ListPosts(ctx)
	require.Len(t, posts, 1)
	assert.Equal(t, keep.ID, posts[0].ID)
}

func TestDeleteUserMissing(t *testing.T) {
	r := newTestRepository(t)
	_, err := r.DeleteUser(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

// vanishingPosts deletes a post behind the caller's back right before the
// caller tries to delete it.
type vanishingPosts struct {
	store.EntityStore[state.Post]
}

func (v vanishingPosts) Delete(ctx context.Context, id string) (state.Post, error) {
	if _, err := v.EntityStore.Delete(ctx, id); err != nil {
		return state.Post{}, err
	}
	return v.EntityStore.Delete(ctx, id)
}

func TestDeleteUserVanishedStepIsConflict(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	a := createUser(t, r, "a")
	_, err := r.CreatePost(ctx, NewPost{Title: "p", UserID: a.ID})
	require.NoError(t, err)

	r.db.Posts = vanishingPosts{EntityStore: r.db.Posts}

	_, err = r.DeleteUser(ctx, a.ID)
	assert.True(t, apperrors.IsConflict(err))

	// later steps were not applied
	_, err = r.GetUser(ctx, a.ID)
	assert.NoError(t, err)
}
