package state

import "socialgraph/backend/internal/query"

// Predicate keys. Lookups name fields through these instead of strings.
var (
	UserID = query.Key[User]{Name: "id", Get: func(u User) string { return u.ID }}

	UserSubscribedTo = query.SetKey[User]{
		Name: "subscribedToUserIds",
		Get:  func(u User) query.Membership { return u.SubscribedToUserIDs },
	}

	ProfileID     = query.Key[Profile]{Name: "id", Get: func(p Profile) string { return p.ID }}
	ProfileUserID = query.Key[Profile]{Name: "userId", Get: func(p Profile) string { return p.UserID }}

	PostID     = query.Key[Post]{Name: "id", Get: func(p Post) string { return p.ID }}
	PostUserID = query.Key[Post]{Name: "userId", Get: func(p Post) string { return p.UserID }}

	MemberTypeKey = query.Key[MemberType]{Name: "id", Get: func(m MemberType) string { return string(m.ID) }}
)
