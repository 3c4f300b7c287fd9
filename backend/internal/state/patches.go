package state

// UserPatch is a partial update of a user. Subscriptions are managed through
// the subscription operations only.
type UserPatch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}

func (p UserPatch) Apply(u *User) {
	setString(&u.FirstName, p.FirstName)
	setString(&u.LastName, p.LastName)
	setString(&u.Email, p.Email)
}

// ProfilePatch is a partial update of a profile. The owner cannot change.
type ProfilePatch struct {
	Avatar       *string       `json:"avatar"`
	Sex          *string       `json:"sex"`
	Birthday     *int          `json:"birthday"`
	Country      *string       `json:"country"`
	Street       *string       `json:"street"`
	City         *string       `json:"city"`
	MemberTypeID *MemberTypeID `json:"memberTypeId"`
}

// Validate checks the numeric fields a patch sets
func (p ProfilePatch) Validate() error {
	if p.Birthday != nil {
		return checkInt32("profile", "birthday", *p.Birthday)
	}
	return nil
}

func (p ProfilePatch) Apply(pr *Profile) {
	setString(&pr.Avatar, p.Avatar)
	setString(&pr.Sex, p.Sex)
	setString(&pr.Country, p.Country)
	setString(&pr.Street, p.Street)
	setString(&pr.City, p.City)
	if p.Birthday != nil {
		pr.Birthday = *p.Birthday
	}
	if p.MemberTypeID != nil {
		pr.MemberTypeID = *p.MemberTypeID
	}
}

// PostPatch is a partial update of a post. The author cannot change.
type PostPatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (p PostPatch) Apply(post *Post) {
	setString(&post.Title, p.Title)
	setString(&post.Content, p.Content)
}

// MemberTypePatch is a partial update of a tier's policy
type MemberTypePatch struct {
	Discount        *int `json:"discount"`
	MonthPostsLimit *int `json:"monthPostsLimit"`
}

// Validate checks the numeric fields a patch sets
func (p MemberTypePatch) Validate() error {
	if p.Discount != nil {
		if err := checkInt32("memberType", "discount", *p.Discount); err != nil {
			return err
		}
	}
	if p.MonthPostsLimit != nil {
		return checkInt32("memberType", "monthPostsLimit", *p.MonthPostsLimit)
	}
	return nil
}

func (p MemberTypePatch) Apply(m *MemberType) {
	if p.Discount != nil {
		m.Discount = *p.Discount
	}
	if p.MonthPostsLimit != nil {
		m.MonthPostsLimit = *p.MonthPostsLimit
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
