package state

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// MemberTypeID identifies a membership tier. The set of tiers is closed.
type MemberTypeID string

const (
	MemberTypeBasic    MemberTypeID = "basic"
	MemberTypeBusiness MemberTypeID = "business"
)

// MemberTypeIDs lists every valid tier in seed order.
var MemberTypeIDs = []MemberTypeID{MemberTypeBasic, MemberTypeBusiness}

// Valid reports whether id is one of the known tiers
func (id MemberTypeID) Valid() bool {
	return slices.Contains(MemberTypeIDs, id)
}

// ParseMemberTypeID validates a raw tier id
func ParseMemberTypeID(raw string) (MemberTypeID, error) {
	id := MemberTypeID(raw)
	if !id.Valid() {
		return "", ErrInvalidMemberType{Value: raw}
	}
	return id, nil
}

// User is a member of the social graph
type User struct {
	ID                  string `json:"id"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Email               string `json:"email"`
	SubscribedToUserIDs IDSet  `json:"subscribedToUserIds"`
}

// Profile holds the personal details of exactly one user
type Profile struct {
	ID           string       `json:"id"`
	Avatar       string       `json:"avatar"`
	Sex          string       `json:"sex"`
	Birthday     int          `json:"birthday"`
	Country      string       `json:"country"`
	Street       string       `json:"street"`
	City         string       `json:"city"`
	MemberTypeID MemberTypeID `json:"memberTypeId"`
	UserID       string       `json:"userId"`
}

// Post is authored by a single user
type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  string `json:"userId"`
}

// MemberType is the policy attached to a tier
type MemberType struct {
	ID              MemberTypeID `json:"id"`
	Discount        int          `json:"discount"`
	MonthPostsLimit int          `json:"monthPostsLimit"`
}

func (u User) EntityID() string { return u.ID }

func (u User) WithID(id string) User {
	u.ID = id
	return u
}

// Clone returns a copy that shares no mutable state with u
func (u User) Clone() User {
	u.SubscribedToUserIDs = u.SubscribedToUserIDs.Clone()
	return u
}

func (p Profile) EntityID() string { return p.ID }

func (p Profile) WithID(id string) Profile {
	p.ID = id
	return p
}

func (p Profile) Clone() Profile { return p }

func (p Post) EntityID() string { return p.ID }

func (p Post) WithID(id string) Post {
	p.ID = id
	return p
}

func (p Post) Clone() Post { return p }

func (m MemberType) EntityID() string { return string(m.ID) }

func (m MemberType) WithID(id string) MemberType {
	m.ID = MemberTypeID(id)
	return m
}

func (m MemberType) Clone() MemberType { return m }

// Validate checks fields required on creation
func (p *Profile) Validate() error {
	if p.UserID == "" {
		return ErrInvalidEntity{Entity: "profile", Field: "userId", Reason: "cannot be empty"}
	}
	if !p.MemberTypeID.Valid() {
		return ErrInvalidEntity{Entity: "profile", Field: "memberTypeId", Reason: ErrInvalidMemberType{Value: string(p.MemberTypeID)}.Error()}
	}
	return checkInt32("profile", "birthday", p.Birthday)
}

// Validate checks fields required on creation
func (p *Post) Validate() error {
	if p.UserID == "" {
		return ErrInvalidEntity{Entity: "post", Field: "userId", Reason: "cannot be empty"}
	}
	return nil
}

// checkInt32 rejects values the GraphQL Int scalar cannot carry
func checkInt32(entity, field string, v int) error {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return ErrInvalidEntity{Entity: entity, Field: field, Reason: "out of 32-bit integer range"}
	}
	return nil
}

// Errors

type ErrInvalidMemberType struct {
	Value string
}

func (e ErrInvalidMemberType) Error() string {
	names := make([]string, len(MemberTypeIDs))
	for i, id := range MemberTypeIDs {
		names[i] = string(id)
	}
	return fmt.Sprintf("invalid member type %q: must be one of %s", e.Value, strings.Join(names, ", "))
}

// ErrInvalidEntity names the field that failed validation
type ErrInvalidEntity struct {
	Entity string
	Field  string
	Reason string
}

func (e ErrInvalidEntity) Error() string {
	return fmt.Sprintf("invalid %s: %s - %s", e.Entity, e.Field, e.Reason)
}
