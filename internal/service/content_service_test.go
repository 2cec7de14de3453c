package service

import (
	"testing"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":               "hello-world",
		"  Café in São Paulo!  ":    "cafe-in-sao-paulo",
		"Multiple   spaces -- here": "multiple-spaces-here",
		"under_score":               "under-score",
		"!!!":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func newBlog(f *fixture) *BlogService {
	return NewBlogService(repository.NewBlogRepository(f.db), f.notify, nil)
}

func TestBlogSlugsAreUnique(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "staff@example.com")
	blog := newBlog(f)

	a, err := blog.CreatePost(author, PostInput{Title: strPtr("Beach Days")})
	require.NoError(t, err)
	b, err := blog.CreatePost(author, PostInput{Title: strPtr("Beach Days")})
	require.NoError(t, err)
	assert.Equal(t, "beach-days", a.Slug)
	assert.Equal(t, "beach-days-1", b.Slug)
	assert.Equal(t, domain.PostDraft, a.Status)

	_, err = blog.CreatePost(author, PostInput{Title: strPtr("  ")})
	assert.ErrorIs(t, err, ErrEmptyTitle)
	_, err = blog.CreatePost(author, PostInput{Title: strPtr("x"), Status: strPtr("live")})
	assert.ErrorIs(t, err, ErrInvalidPostState)
}

func TestBlogDraftsHiddenFromPublic(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "staff@example.com")
	reader := f.user(t, "reader@example.com")
	blog := newBlog(f)

	p, err := blog.CreatePost(author, PostInput{Title: strPtr("Coming Soon")})
	require.NoError(t, err)
	_, err = blog.GetPost(p.Slug, false)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = blog.GetPost(p.Slug, true)
	assert.NoError(t, err)

	updated, err := blog.UpdatePost(p.Slug, PostInput{Status: strPtr(domain.PostPublished)})
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedAt)

	list, err := blog.ListPosts(false, domain.PostDraft, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	unread, err := repository.NewNotificationRepository(f.db).UnreadCount(reader.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestBlogReactionToggle(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "staff@example.com")
	reader := f.user(t, "reader@example.com")
	blog := newBlog(f)
	p, err := blog.CreatePost(author, PostInput{Title: strPtr("Hello"), Status: strPtr(domain.PostPublished)})
	require.NoError(t, err)

	res, err := blog.React(p.Slug, reader, "like")
	require.NoError(t, err)
	assert.Equal(t, "created", res.Action)
	res, err = blog.React(p.Slug, reader, "love")
	require.NoError(t, err)
	assert.Equal(t, "updated", res.Action)

	sum, err := blog.Reactions(p.Slug, false)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.Summary["love"])

	res, err = blog.React(p.Slug, reader, "love")
	require.NoError(t, err)
	assert.Equal(t, "removed", res.Action)

	_, err = blog.React(p.Slug, reader, "angry")
	assert.ErrorIs(t, err, ErrInvalidReaction)
}

func TestBlogCommentsAreOwned(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "staff@example.com")
	reader := f.user(t, "reader@example.com")
	blog := newBlog(f)
	p, err := blog.CreatePost(author, PostInput{Title: strPtr("Hello"), Status: strPtr(domain.PostPublished)})
	require.NoError(t, err)

	c, err := blog.AddComment(p.Slug, reader, nil, "Nice one")
	require.NoError(t, err)
	_, err = blog.UpdateComment(c.ID, author.ID, "hijack")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	edited, err := blog.UpdateComment(c.ID, reader.ID, "Nice one!")
	require.NoError(t, err)
	assert.Equal(t, "Nice one!", edited.Content)
	assert.NoError(t, blog.DeleteComment(c.ID, reader.ID))
}

func TestReviewRules(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	f.walletWith(t, u, 100000)
	f.fixedPackage(t, "PKG-1", 100000)
	reviews := NewReviewService(repository.NewReviewRepository(f.db), f.packages, f.bookRepo)

	_, err := reviews.Create(u.ID, "PKG-1", 5, "great")
	assert.ErrorIs(t, err, ErrReviewNotBooked)

	b := f.booking(t, u, "PKG-1", fixedNow)
	_, err = f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodWallet)
	require.NoError(t, err)

	_, err = reviews.Create(u.ID, "PKG-1", 6, "")
	assert.ErrorIs(t, err, ErrInvalidRating)
	rv, err := reviews.Create(u.ID, "PKG-1", 4, "great")
	require.NoError(t, err)
	_, err = reviews.Create(u.ID, "PKG-1", 5, "again")
	assert.ErrorIs(t, err, ErrReviewExists)

	list, err := reviews.List("PKG-1")
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
	require.NotNil(t, list.AverageRating)
	assert.InDelta(t, 4.0, *list.AverageRating, 0.001)

	_, err = reviews.Update(rv.ID, u.ID+1, 1, "")
	assert.ErrorIs(t, err, ErrReviewNotFound)
	require.NoError(t, reviews.Delete(rv.ID, u.ID))

	list, err = reviews.List("PKG-1")
	require.NoError(t, err)
	assert.Nil(t, list.AverageRating)
}

func TestSaveAndUnsavePackage(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	f.fixedPackage(t, "PKG-1", 1000)
	catalog := NewCatalogService(f.packages, repository.NewSavedPackageRepository(f.db), repository.NewCatalogRepository(f.db))

	_, err := catalog.Save(u.ID, "PKG-1")
	require.NoError(t, err)
	_, err = catalog.Save(u.ID, "PKG-1")
	assert.ErrorIs(t, err, ErrAlreadySaved)

	saved, err := catalog.SavedPackages(u.ID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].IsSaved)

	detail, err := catalog.Package("PKG-1", u.ID)
	require.NoError(t, err)
	assert.True(t, detail.Package.IsSaved)
	anon, err := catalog.Package("PKG-1", 0)
	require.NoError(t, err)
	assert.False(t, anon.Package.IsSaved)

	_, err = catalog.Unsave(u.ID, "PKG-1")
	require.NoError(t, err)
	saved, err = catalog.SavedPackages(u.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)

	_, err = catalog.Save(u.ID, "MISSING")
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestSearchCountryPlaces(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Create(&[]models.Location{
		{Title: "Lekki Beach", Type: "beach", State: "Lagos", Country: "Nigeria"},
		{Title: "Yankari", Type: "park", State: "Bauchi", Country: "Nigeria"},
		{Title: "Diani", Type: "beach", State: "Kwale", Country: "Kenya"},
	}).Error)
	catalog := NewCatalogService(f.packages, repository.NewSavedPackageRepository(f.db), repository.NewCatalogRepository(f.db))

	got, err := catalog.SearchCountryPlaces("ng", "beach, park")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = catalog.SearchCountryPlaces("zz", "beach")
	assert.ErrorIs(t, err, ErrCountryCode)
	_, err = catalog.SearchCountryPlaces("", "")
	assert.ErrorIs(t, err, ErrLocationParams)
}

func TestSupportTicketLifecycle(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	other := f.user(t, "other@example.com")
	support := NewSupportService(repository.NewSupportRepository(f.db))

	_, err := support.Create(u.ID, "Refund", "urgent", "help")
	assert.ErrorIs(t, err, ErrInvalidPriority)

	tk, err := support.Create(u.ID, "Refund", "", "Where is my refund?")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, tk.Priority)

	_, err = support.Get(tk.ID, other.ID, false)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	_, err = support.Reply(tk.ID, other.ID, true, "Looking into it")
	require.NoError(t, err)
	require.NoError(t, support.Close(tk.ID, u.ID, false))
	_, err = support.Reply(tk.ID, u.ID, false, "thanks")
	assert.ErrorIs(t, err, ErrTicketClosed)
}

func TestCruiseRequestsAreForcedToCruise(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	repo := repository.NewPersonalisedBookingRepository(f.db)
	personal := NewPersonalisedService(repo)
	cruises := NewCruiseService(repo)

	wedding, err := personal.Create(u.ID, RequestInput{EventType: "wedding", DateFrom: fixedNow, DateTo: fixedNow.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, wedding.Adults)

	cruise, err := cruises.Create(u.ID, RequestInput{EventType: "wedding", CruiseType: "luxury", DateFrom: fixedNow, DateTo: fixedNow.AddDate(0, 0, 7)})
	require.NoError(t, err)
	assert.Equal(t, domain.EventCruise, cruise.EventType)

	list, err := cruises.List(u.ID, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = cruises.Get(wedding.ID, u.ID, false)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	_, err = personal.Create(u.ID, RequestInput{EventType: "rave", DateFrom: fixedNow, DateTo: fixedNow})
	assert.ErrorIs(t, err, ErrInvalidEventType)
	_, err = personal.Create(u.ID, RequestInput{EventType: "wedding", DateFrom: fixedNow, DateTo: fixedNow.AddDate(0, 0, -1)})
	assert.ErrorIs(t, err, ErrRequestDates)

	// status changes from customers are ignored
	upd, err := personal.Update(wedding.ID, u.ID, false, RequestInput{EventType: "wedding", DateFrom: fixedNow, DateTo: fixedNow, Status: strPtr(domain.RequestApproved)})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, upd.Status)
	upd, err = personal.Update(wedding.ID, u.ID, true, RequestInput{EventType: "wedding", DateFrom: fixedNow, DateTo: fixedNow, Status: strPtr(domain.RequestApproved)})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, upd.Status)
}

func TestContactForwardsAndAcknowledges(t *testing.T) {
	f := newFixture(t)
	contact := NewContactService(repository.NewContactRepository(f.db), NewMailService(f.cfg, f.mail))

	err := contact.Submit(t.Context(), &models.Contact{Fullname: "Ada", Message: "hi"})
	assert.ErrorIs(t, err, ErrContactIncomplete)
	assert.Empty(t, f.mail.Sent)

	c := &models.Contact{Fullname: "Ada Obi", Email: "ada@example.com", Subject: "Groups", Message: "Do you take groups of 20?"}
	require.NoError(t, contact.Submit(t.Context(), c))
	assert.NotZero(t, c.ID)
	assert.Equal(t, domain.RequestPending, c.Status)

	require.Len(t, f.mail.Sent, 2)
	assert.Equal(t, []string{f.cfg.SMTP.AdminEmail}, f.mail.Sent[0].To)
	assert.Equal(t, "ada@example.com", f.mail.Sent[0].ReplyTo)
	assert.Contains(t, f.mail.Sent[0].Text, "Do you take groups of 20?")
	assert.Equal(t, []string{"ada@example.com"}, f.mail.Sent[1].To)
}
