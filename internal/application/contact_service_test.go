package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	"github.com/oksasatya/go-contactbook/internal/mocks"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func strp(s string) *string { return &s }

func newContactFixture(t *testing.T) (*ContactService, *mocks.MockContactRepository, *mocks.MockContactIndex) {
	t.Helper()
	contacts := mocks.NewMockContactRepository()
	index := &mocks.MockContactIndex{}
	svc := NewContactService(contacts, index, nil)
	svc.now = func() time.Time { return time.Date(2024, 12, 30, 15, 0, 0, 0, time.UTC) }
	return svc, contacts, index
}

func TestContactService_CreateAssignsOwner(t *testing.T) {
	svc, _, index := newContactFixture(t)

	c, err := svc.Create(context.Background(), 7, entity.Contact{ID: 99, UserID: 1, FirstName: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.UserID)
	assert.NotEqual(t, int64(99), c.ID)
	assert.Equal(t, []int64{c.ID}, index.Indexed)

	_, err = svc.Create(context.Background(), 7, entity.Contact{FirstName: "Other", Email: "ann@example.com"})
	assert.ErrorIs(t, err, errs.ErrConflict)

	_, err = svc.Create(context.Background(), 8, entity.Contact{FirstName: "Ann", Email: "ann@example.com"})
	assert.NoError(t, err, "email is unique per owner only")
}

func TestContactService_OwnerIsolation(t *testing.T) {
	svc, _, _ := newContactFixture(t)
	c, err := svc.Create(context.Background(), 1, entity.Contact{FirstName: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, c.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = svc.Update(context.Background(), 2, c.ID, entity.ContactPatch{FirstName: strp("Eve")})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), 2, c.ID), errs.ErrNotFound)

	got, err := svc.Get(context.Background(), 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)

	list, err := svc.List(context.Background(), 2, entity.ContactFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestContactService_UpdateIsPartial(t *testing.T) {
	svc, _, index := newContactFixture(t)
	c, err := svc.Create(context.Background(), 1, entity.Contact{
		FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Phone: "123",
		Birthday: date(1990, 3, 4), ExtraInfo: strp("friend"),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 1, entity.Contact{FirstName: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), 1, c.ID, entity.ContactPatch{Phone: strp("456")})
	require.NoError(t, err)
	assert.Equal(t, "456", got.Phone)
	assert.Equal(t, "Ann", got.FirstName)
	assert.Equal(t, "Lee", got.LastName)
	require.NotNil(t, got.Birthday)
	assert.Equal(t, time.March, got.Birthday.Month())
	assert.Equal(t, "friend", *got.ExtraInfo)
	assert.Contains(t, index.Indexed, c.ID)

	_, err = svc.Update(context.Background(), 1, c.ID, entity.ContactPatch{Email: strp("bob@example.com")})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestContactService_DeleteRemovesFromIndex(t *testing.T) {
	svc, _, index := newContactFixture(t)
	c, err := svc.Create(context.Background(), 1, entity.Contact{FirstName: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 1, c.ID))
	assert.Equal(t, []int64{c.ID}, index.Removed)
	_, err = svc.Get(context.Background(), 1, c.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestContactService_ListClampsLimit(t *testing.T) {
	svc, contacts, _ := newContactFixture(t)
	var gotLimit, gotOffset int
	contacts.ListFunc = func(_ context.Context, _ int64, _ entity.ContactFilter, limit, offset int) ([]entity.Contact, error) {
		gotLimit, gotOffset = limit, offset
		return nil, nil
	}

	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{limit: 0, offset: 0, wantLimit: 100, wantOffset: 0},
		{limit: 5, offset: 3, wantLimit: 5, wantOffset: 3},
		{limit: 5000, offset: -1, wantLimit: 1000, wantOffset: 0},
	}
	for _, tt := range tests {
		_, err := svc.List(context.Background(), 1, entity.ContactFilter{}, tt.limit, tt.offset)
		require.NoError(t, err)
		assert.Equal(t, tt.wantLimit, gotLimit)
		assert.Equal(t, tt.wantOffset, gotOffset)
	}
}

func TestContactService_ListFilters(t *testing.T) {
	svc, _, _ := newContactFixture(t)
	for _, c := range []entity.Contact{
		{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com"},
		{FirstName: "Joanna", LastName: "Smith", Email: "jo@corp.test"},
		{FirstName: "Bob", LastName: "Annis", Email: "bob@example.com"},
	} {
		_, err := svc.Create(context.Background(), 1, c)
		require.NoError(t, err)
	}

	got, err := svc.List(context.Background(), 1, entity.ContactFilter{FirstName: "ANN"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ann", got[0].FirstName)
	assert.Equal(t, "Joanna", got[1].FirstName)

	got, err = svc.List(context.Background(), 1, entity.ContactFilter{Email: "example", LastName: "ann"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bob", got[0].FirstName)
}

func TestContactService_UpcomingBirthdays(t *testing.T) {
	svc, _, _ := newContactFixture(t)
	// today is 2024-12-30
	for _, c := range []entity.Contact{
		{FirstName: "NewYear", Email: "a@x.test", Birthday: date(1980, 1, 1)},
		{FirstName: "Today", Email: "b@x.test", Birthday: date(1991, 12, 30)},
		{FirstName: "Yesterday", Email: "c@x.test", Birthday: date(1985, 12, 29)},
		{FirstName: "Jan4", Email: "d@x.test", Birthday: date(2000, 1, 4)},
		{FirstName: "NoBirthday", Email: "e@x.test"},
		{FirstName: "Jan2", Email: "f@x.test", Birthday: date(1970, 1, 2)},
	} {
		_, err := svc.Create(context.Background(), 1, c)
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), 2, entity.Contact{FirstName: "Foreign", Email: "g@x.test", Birthday: date(1990, 12, 31)})
	require.NoError(t, err)

	got, err := svc.UpcomingBirthdays(context.Background(), 1, 3, 0, 0)
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, m := range got {
		names = append(names, m.Contact.FirstName)
	}
	assert.Equal(t, []string{"Today", "NewYear", "Jan2"}, names)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), got[2].Next)

	got, err = svc.UpcomingBirthdays(context.Background(), 1, 0, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Today", got[0].Contact.FirstName)

	got, err = svc.UpcomingBirthdays(context.Background(), 1, 7, 2, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "NewYear", got[0].Contact.FirstName)
	assert.Equal(t, "Jan2", got[1].Contact.FirstName)
}

func TestContactService_Search(t *testing.T) {
	svc, _, index := newContactFixture(t)
	ann, err := svc.Create(context.Background(), 1, entity.Contact{FirstName: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	foreign, err := svc.Create(context.Background(), 2, entity.Contact{FirstName: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	var gotOwner int64
	var gotSize int
	index.SearchFunc = func(_ context.Context, ownerID int64, q string, size int) ([]int64, error) {
		gotOwner, gotSize = ownerID, size
		return []int64{ann.ID, foreign.ID, 12345}, nil
	}

	got, err := svc.Search(context.Background(), 1, "ann", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ann.ID, got[0].ID)
	assert.Equal(t, int64(1), gotOwner)
	assert.Equal(t, DefaultSearchSize, gotSize)

	index.SearchFunc = func(context.Context, int64, string, int) ([]int64, error) { return nil, assert.AnError }
	_, err = svc.Search(context.Background(), 1, "ann", 5)
	assert.ErrorIs(t, err, errs.ErrUpstream)

	svc.Index = nil
	got, err = svc.Search(context.Background(), 1, "ann", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
