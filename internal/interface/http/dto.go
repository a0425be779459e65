package handlers

import (
	"time"

	"github.com/oksasatya/go-contactbook/internal/domain/birthday"
	"github.com/oksasatya/go-contactbook/internal/domain/entity"
)

const dateLayout = "2006-01-02"

type contactResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  *string   `json:"birthday"`
	ExtraInfo *string   `json:"extra_info"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type upcomingBirthdayResponse struct {
	contactResponse
	NextBirthday string `json:"next_birthday"`
}

func toContactResponse(c entity.Contact) contactResponse {
	var bday *string
	if c.Birthday != nil {
		s := c.Birthday.Format(dateLayout)
		bday = &s
	}
	return contactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Birthday:  bday,
		ExtraInfo: c.ExtraInfo,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toContactList(cs []entity.Contact) []contactResponse {
	out := make([]contactResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toContactResponse(c))
	}
	return out
}

func toUpcomingList(ms []birthday.Match) []upcomingBirthdayResponse {
	out := make([]upcomingBirthdayResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, upcomingBirthdayResponse{
			contactResponse: toContactResponse(m.Contact),
			NextBirthday:    m.Next.Format(dateLayout),
		})
	}
	return out
}

// parseDate parses an optional YYYY-MM-DD string into a UTC date.
func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, *s, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
