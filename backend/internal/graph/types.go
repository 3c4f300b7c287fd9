package graph

import "socialgraph/backend/internal/state"

// ============================================================================
// Operation Inputs
// ============================================================================

// CascadePolicy decides which posts are removed together with their author
type CascadePolicy int

const (
	// CascadeFirstPost removes only the first post of the user
	CascadeFirstPost CascadePolicy = iota
	// CascadeAllPosts removes every post of the user
	CascadeAllPosts
)

func (p CascadePolicy) String() string {
	if p == CascadeAllPosts {
		return "all_posts"
	}
	return "first_post"
}

// NewUser holds the fields of a user to create
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
}

// NewProfile holds the fields of a profile to create
type NewProfile struct {
	Avatar       string
	Sex          string
	Birthday     int
	Country      string
	Street       string
	City         string
	MemberTypeID state.MemberTypeID
	UserID       string
}

// NewPost holds the fields of a post to create
type NewPost struct {
	Title   string
	Content string
	UserID  string
}

// DeleteUserResult reports what a cascading user deletion removed
type DeleteUserResult struct {
	User                state.User
	UnsubscribedUserIDs []string
	ProfileID           string
	PostIDs             []string
}
