package graphql

import (
	"context"

	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/state"
	apperrors "socialgraph/backend/pkg/errors"
)

// NewSocialGraphExecutor builds an executor over the embedded schema with
// every social graph resolver bound.
func NewSocialGraphExecutor(repo *graph.Repository, rel *graph.Resolver) (*Executor, error) {
	schema, err := DefaultSchema()
	if err != nil {
		return nil, err
	}
	e := NewExecutor(schema)
	bindQueries(e, repo)
	bindMutations(e, repo)
	bindObjects(e, rel)
	bindResultTypes(e)
	return e, nil
}

// orNull turns a NotFound lookup into null.
func orNull(v interface{}, err error) (interface{}, error) {
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func bindQueries(e *Executor, repo *graph.Repository) {
	e.Resolve("Query.users", func(ctx context.Context, _ ResolveParams) (interface{}, error) {
		return repo.ListUsers(ctx)
	})
	e.Resolve("Query.user", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return orNull(repo.GetUser(ctx, argString(p.Args, "id")))
	})
	e.Resolve("Query.profiles", func(ctx context.Context, _ ResolveParams) (interface{}, error) {
		return repo.ListProfiles(ctx)
	})
	e.Resolve("Query.profile", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return orNull(repo.GetProfile(ctx, argString(p.Args, "id")))
	})
	e.Resolve("Query.posts", func(ctx context.Context, _ ResolveParams) (interface{}, error) {
		return repo.ListPosts(ctx)
	})
	e.Resolve("Query.post", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return orNull(repo.GetPost(ctx, argString(p.Args, "id")))
	})
	e.Resolve("Query.postByUser", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return orNull(repo.GetPostByUser(ctx, argString(p.Args, "userId")))
	})
	e.Resolve("Query.memberTypes", func(ctx context.Context, _ ResolveParams) (interface{}, error) {
		return repo.ListMemberTypes(ctx)
	})
	e.Resolve("Query.memberType", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return orNull(repo.GetMemberType(ctx, argString(p.Args, "id")))
	})
}

func bindMutations(e *Executor, repo *graph.Repository) {
	e.Resolve("Mutation.addUsers", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return mutationResult(repo.CreateUser(ctx, newUser(p.Args)))
	})
	e.Resolve("Mutation.addUserInputType", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return mutationResult(repo.CreateUser(ctx, newUser(argObject(p.Args, "input"))))
	})
	e.Resolve("Mutation.changeUsers", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		patch := state.UserPatch{
			FirstName: argOptString(p.Args, "firstName"),
			LastName:  argOptString(p.Args, "lastName"),
			Email:     argOptString(p.Args, "email"),
		}
		return mutationResult(repo.ChangeUser(ctx, argString(p.Args, "id"), patch))
	})
	e.Resolve("Mutation.subscribedToUser", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return mutationResult(repo.ToggleSubscription(ctx, argString(p.Args, "id"), argString(p.Args, "userId")))
	})

	e.Resolve("Mutation.addPost", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return mutationResult(repo.CreatePost(ctx, graph.NewPost{
			Title:   argString(p.Args, "title"),
			Content: argString(p.Args, "content"),
			UserID:  argString(p.Args, "userId"),
		}))
	})
	e.Resolve("Mutation.changePost", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		patch := state.PostPatch{
			Title:   argOptString(p.Args, "title"),
			Content: argOptString(p.Args, "content"),
		}
		return mutationResult(repo.ChangePostByUser(ctx, argString(p.Args, "userId"), patch))
	})

	e.Resolve("Mutation.addProfile", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		birthday, err := argInt(p.Args, "birthday")
		if err != nil {
			return mutationResult(nil, apperrors.NewValidationFailed("birthday", err.Error()))
		}
		return mutationResult(repo.CreateProfile(ctx, graph.NewProfile{
			Avatar:       argString(p.Args, "avatar"),
			Sex:          argString(p.Args, "sex"),
			Birthday:     birthday,
			Country:      argString(p.Args, "country"),
			Street:       argString(p.Args, "street"),
			City:         argString(p.Args, "city"),
			MemberTypeID: state.MemberTypeID(argString(p.Args, "memberTypeId")),
			UserID:       argString(p.Args, "userId"),
		}))
	})
	e.Resolve("Mutation.changeProfile", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		birthday, err := argOptInt(p.Args, "birthday")
		if err != nil {
			return mutationResult(nil, apperrors.NewValidationFailed("birthday", err.Error()))
		}
		patch := state.ProfilePatch{
			Avatar:   argOptString(p.Args, "avatar"),
			Sex:      argOptString(p.Args, "sex"),
			Birthday: birthday,
			Country:  argOptString(p.Args, "country"),
			Street:   argOptString(p.Args, "street"),
			City:     argOptString(p.Args, "city"),
		}
		if raw := argOptString(p.Args, "memberTypeId"); raw != nil {
			id := state.MemberTypeID(*raw)
			patch.MemberTypeID = &id
		}
		return mutationResult(repo.ChangeProfileByUser(ctx, argString(p.Args, "userId"), patch))
	})

	e.Resolve("Mutation.updateMemberTypes", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return updateMemberType(ctx, repo, p.Args)
	})
	e.Resolve("Mutation.updateMemberTypeInput", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return updateMemberType(ctx, repo, argObject(p.Args, "input"))
	})
}

func newUser(args map[string]interface{}) graph.NewUser {
	return graph.NewUser{
		FirstName: argString(args, "firstName"),
		LastName:  argString(args, "lastName"),
		Email:     argString(args, "email"),
	}
}

func updateMemberType(ctx context.Context, repo *graph.Repository, args map[string]interface{}) (interface{}, error) {
	discount, err := argOptInt(args, "discount")
	if err != nil {
		return mutationResult(nil, apperrors.NewValidationFailed("discount", err.Error()))
	}
	limit, err := argOptInt(args, "monthPostsLimit")
	if err != nil {
		return mutationResult(nil, apperrors.NewValidationFailed("monthPostsLimit", err.Error()))
	}
	patch := state.MemberTypePatch{Discount: discount, MonthPostsLimit: limit}
	return mutationResult(repo.UpdateMemberType(ctx, argString(args, "id"), patch))
}

func bindObjects(e *Executor, rel *graph.Resolver) {
	// User
	e.Resolve("User.id", userField(func(u state.User) interface{} { return u.ID }))
	e.Resolve("User.firstName", userField(func(u state.User) interface{} { return u.FirstName }))
	e.Resolve("User.lastName", userField(func(u state.User) interface{} { return u.LastName }))
	e.Resolve("User.email", userField(func(u state.User) interface{} { return u.Email }))
	e.Resolve("User.subscribedToUserIds", userField(func(u state.User) interface{} { return u.SubscribedToUserIDs.Slice() }))
	e.Resolve("User.profile", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return rel.Profile(ctx, p.Source.(state.User))
	})
	e.Resolve("User.posts", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return rel.Posts(ctx, p.Source.(state.User))
	})
	e.Resolve("User.memberType", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return rel.MemberType(ctx, p.Source.(state.User))
	})
	e.Resolve("User.subscribedToUser", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return rel.SubscribedTo(ctx, p.Source.(state.User))
	})
	e.Resolve("User.userSubscribedTo", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return rel.Subscribers(ctx, p.Source.(state.User))
	})

	// Profile
	e.Resolve("Profile.id", profileField(func(p state.Profile) interface{} { return p.ID }))
	e.Resolve("Profile.avatar", profileField(func(p state.Profile) interface{} { return p.Avatar }))
	e.Resolve("Profile.sex", profileField(func(p state.Profile) interface{} { return p.Sex }))
	e.Resolve("Profile.birthday", profileField(func(p state.Profile) interface{} { return p.Birthday }))
	e.Resolve("Profile.country", profileField(func(p state.Profile) interface{} { return p.Country }))
	e.Resolve("Profile.street", profileField(func(p state.Profile) interface{} { return p.Street }))
	e.Resolve("Profile.city", profileField(func(p state.Profile) interface{} { return p.City }))
	e.Resolve("Profile.memberTypeId", profileField(func(p state.Profile) interface{} { return string(p.MemberTypeID) }))
	e.Resolve("Profile.userId", profileField(func(p state.Profile) interface{} { return p.UserID }))
	e.Resolve("Profile.user", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return rel.Owner(ctx, p.Source.(state.Profile).UserID)
	})
	e.Resolve("Profile.memberType", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return rel.ProfileMemberType(ctx, p.Source.(state.Profile))
	})

	// Post
	e.Resolve("Post.id", postField(func(p state.Post) interface{} { return p.ID }))
	e.Resolve("Post.title", postField(func(p state.Post) interface{} { return p.Title }))
	e.Resolve("Post.content", postField(func(p state.Post) interface{} { return p.Content }))
	e.Resolve("Post.userId", postField(func(p state.Post) interface{} { return p.UserID }))
	e.Resolve("Post.user", func(ctx context.Context, p ResolveParams) (interface{}, error) {
		return rel.Owner(ctx, p.Source.(state.Post).UserID)
	})

	// MemberType
	e.Resolve("MemberType.id", memberTypeField(func(m state.MemberType) interface{} { return string(m.ID) }))
	e.Resolve("MemberType.discount", memberTypeField(func(m state.MemberType) interface{} { return m.Discount }))
	e.Resolve("MemberType.monthPostsLimit", memberTypeField(func(m state.MemberType) interface{} { return m.MonthPostsLimit }))

	// MutationError
	e.Resolve("MutationError.kind", func(_ context.Context, p ResolveParams) (interface{}, error) {
		return p.Source.(MutationError).Kind, nil
	})
	e.Resolve("MutationError.message", func(_ context.Context, p ResolveParams) (interface{}, error) {
		return p.Source.(MutationError).Message, nil
	})
}

func bindResultTypes(e *Executor) {
	resolve := func(v interface{}) string {
		switch v.(type) {
		case state.User:
			return "User"
		case state.Profile:
			return "Profile"
		case state.Post:
			return "Post"
		case state.MemberType:
			return "MemberType"
		case MutationError:
			return "MutationError"
		default:
			return ""
		}
	}
	for _, union := range []string{"UserResult", "ProfileResult", "PostResult", "MemberTypeResult"} {
		e.ResolveType(union, resolve)
	}
}

func userField(get func(state.User) interface{}) FieldResolver {
	return func(_ context.Context, p ResolveParams) (interface{}, error) {
		return get(p.Source.(state.User)), nil
	}
}

func profileField(get func(state.Profile) interface{}) FieldResolver {
	return func(_ context.Context, p ResolveParams) (interface{}, error) {
		return get(p.Source.(state.Profile)), nil
	}
}

func postField(get func(state.Post) interface{}) FieldResolver {
	return func(_ context.Context, p ResolveParams) (interface{}, error) {
		return get(p.Source.(state.Post)), nil
	}
}

func memberTypeField(get func(state.MemberType) interface{}) FieldResolver {
	return func(_ context.Context, p ResolveParams) (interface{}, error) {
		return get(p.Source.(state.MemberType)), nil
	}
}
