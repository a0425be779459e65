package entity

import "time"

// Contact is an address-book entry owned by a single user.
// Birthday keeps the full date; only month and day matter for recurrence.
type Contact struct {
	ID        int64
	UserID    int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  *time.Time
	ExtraInfo *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactFilter narrows a contact listing. Empty fields are ignored;
// non-empty ones match as case-insensitive substrings.
type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
}

// ContactPatch carries a partial update. Nil fields are left unchanged.
type ContactPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Birthday  *time.Time
	ExtraInfo *string
}

// Apply copies every non-nil field of p onto c.
func (p ContactPatch) Apply(c *Contact) {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Birthday != nil {
		b := *p.Birthday
		c.Birthday = &b
	}
	if p.ExtraInfo != nil {
		e := *p.ExtraInfo
		c.ExtraInfo = &e
	}
}
