package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialgraph/backend/internal/query"
	"socialgraph/backend/internal/state"
	apperrors "socialgraph/backend/pkg/errors"
)

func newUsers() *Collection[state.User] {
	return NewCollection[state.User]("user", zap.NewNop())
}

func TestCollectionCreateAssignsFreshIDs(t *testing.T) {
	ctx := context.Background()
	users := newUsers()

	a, err := users.Create(ctx, state.User{ID: "ignored", FirstName: "A"})
	require.NoError(t, err)
	b, err := users.Create(ctx, state.User{FirstName: "B"})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, "ignored", a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, users.Len())
}

func TestCollectionFindManyInsertionOrder(t *testing.T) {
	ctx := context.Background()
	users := newUsers()

	all, err := users.FindMany(ctx, query.All[state.User]())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	var created []string
	for _, name := range []string{"c", "a", "b"} {
		u, err := users.Create(ctx, state.User{FirstName: name})
		require.NoError(t, err)
		created = append(created, u.ID)
	}

	all, err = users.FindMany(ctx, query.All[state.User]())
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, u := range all {
		assert.Equal(t, created[i], u.ID)
	}
}

func TestCollectionFindOneNoMatch(t *testing.T) {
	users := newUsers()
	u, found, err := users.FindOne(context.Background(), query.Eq(state.UserID, "missing"))
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, u.ID)
}

func TestCollectionChange(t *testing.T) {
	ctx := context.Background()
	users := newUsers()
	u, err := users.Create(ctx, state.User{FirstName: "Old"})
	require.NoError(t, err)

	changed, err := users.Change(ctx, u.ID, func(u *state.User) error {
		u.FirstName = "New"
		u.ID = "hijacked"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "New", changed.FirstName)
	assert.Equal(t, u.ID, changed.ID)

	_, err = users.Change(ctx, "missing", func(*state.User) error { return nil })
	assert.True(t, apperrors.IsNotFound(err))

	// a failing mutator leaves the entity untouched
	_, err = users.Change(ctx, u.ID, func(u *state.User) error {
		u.FirstName = "Broken"
		return apperrors.NewValidationFailed("firstName", "rejected")
	})
	assert.True(t, apperrors.IsValidation(err))
	got, _, _ := users.FindOne(ctx, query.Eq(state.UserID, u.ID))
	assert.Equal(t, "New", got.FirstName)
}

func TestCollectionDelete(t *testing.T) {
	ctx := context.Background()
	users := newUsers()
	a, _ := users.Create(ctx, state.User{FirstName: "A"})
	b, _ := users.Create(ctx, state.User{FirstName: "B"})

	removed, err := users.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", removed.FirstName)

	_, err = users.Delete(ctx, a.ID)
	assert.True(t, apperrors.IsNotFound(err))

	all, _ := users.FindMany(ctx, nil)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestCollectionReturnsClones(t *testing.T) {
	ctx := context.Background()
	users := newUsers()
	u, _ := users.Create(ctx, state.User{SubscribedToUserIDs: state.NewIDSet("x")})

	got, _, _ := users.FindOne(ctx, query.Eq(state.UserID, u.ID))
	got.SubscribedToUserIDs = got.SubscribedToUserIDs.With("y")
	got.FirstName = "mutated"

	again, _, _ := users.FindOne(ctx, query.Eq(state.UserID, u.ID))
	assert.Equal(t, []string{"x"}, again.SubscribedToUserIDs.Slice())
	assert.Empty(t, again.FirstName)
}

func TestCollectionInsert(t *testing.T) {
	ctx := context.Background()
	mts := NewCollection[state.MemberType]("memberType", zap.NewNop())

	_, err := mts.Insert(ctx, state.MemberType{ID: state.MemberTypeBasic})
	require.NoError(t, err)

	_, err = mts.Insert(ctx, state.MemberType{ID: state.MemberTypeBasic})
	assert.True(t, apperrors.IsConflict(err))

	_, err = mts.Insert(ctx, state.MemberType{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCollectionHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newUsers().FindMany(ctx, nil)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeContext))
}

func TestRunInTransactionSerializes(t *testing.T) {
	db := New()
	var active, maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.RunInTransaction(context.Background(), "test", func(context.Context) error {
				n := atomic.AddInt32(&active, 1)
				for {
					m := atomic.LoadInt32(&maxActive)
					if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
}

func TestRunInTransactionNestedRunsInline(t *testing.T) {
	db := New()
	ran := false
	err := db.RunInTransaction(context.Background(), "outer", func(ctx context.Context) error {
		return db.RunInTransaction(ctx, "inner", func(context.Context) error {
			ran = true
			return nil
		})
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRunInTransactionCancelledWhileWaiting(t *testing.T) {
	db := New()
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = db.RunInTransaction(context.Background(), "holder", func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := db.RunInTransaction(ctx, "waiter", func(context.Context) error { return nil })
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeContext))
	close(release)
}

func TestDefaultFixture(t *testing.T) {
	ctx := context.Background()
	db := New()
	f, err := DefaultFixture()
	require.NoError(t, err)

	_, err = db.Load(ctx, f)
	require.NoError(t, err)

	basic, found, err := db.MemberTypes.FindOne(ctx, query.Eq(state.MemberTypeKey, "basic"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0, basic.Discount)
	assert.Equal(t, 20, basic.MonthPostsLimit)
	assert.Equal(t, 2, db.MemberTypes.Len())

	// loading again upserts instead of failing
	_, err = db.Load(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 2, db.MemberTypes.Len())
}

func TestLoadFixtureFile(t *testing.T) {
	ctx := context.Background()
	db := New()
	base, err := DefaultFixture()
	require.NoError(t, err)
	_, err = db.Load(ctx, base)
	require.NoError(t, err)

	f, err := LoadFixtureFile("testdata/community.yaml")
	require.NoError(t, err)
	ids, err := db.Load(ctx, f)
	require.NoError(t, err)

	ann, found, _ := db.Users.FindOne(ctx, query.Eq(state.UserID, ids["ann"]))
	require.True(t, found)
	assert.Equal(t, []string{ids["bob"]}, ann.SubscribedToUserIDs.Slice())

	posts, _ := db.Posts.FindMany(ctx, query.Eq(state.PostUserID, ids["ann"]))
	assert.Len(t, posts, 2)

	profile, found, _ := db.Profiles.FindOne(ctx, query.Eq(state.ProfileUserID, ids["ann"]))
	require.True(t, found)
	assert.Equal(t, state.MemberTypeBusiness, profile.MemberTypeID)
}

func TestParseFixtureRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown member type", "memberTypes:\n  - id: gold\n"},
		{"duplicate ref", "users:\n  - ref: a\n  - ref: a\n"},
		{"dangling subscription", "users:\n  - ref: a\n    subscribedTo: [b]\n"},
		{"self subscription", "users:\n  - ref: a\n    subscribedTo: [a]\n"},
		{"bad profile tier", "users:\n  - ref: a\n    profile:\n      memberTypeId: gold\n"},
		{"birthday out of range", "users:\n  - ref: a\n    profile:\n      memberTypeId: basic\n      birthday: 5000000000\n"},
		{"discount out of range", "memberTypes:\n  - id: basic\n    discount: 5000000000\n"},
		{"not yaml", "users: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixture([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseFixtureNamesOutOfRangeField(t *testing.T) {
	_, err := ParseFixture([]byte("memberTypes:\n  - id: business\n    monthPostsLimit: -5000000000\n"))
	require.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "memberTypes.monthPostsLimit: out of 32-bit integer range", apperrors.MessageOf(err))
}
