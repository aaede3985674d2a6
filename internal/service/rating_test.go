package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/sneakerbase/internal/events"
	"github.com/templui/sneakerbase/internal/model"
	"github.com/templui/sneakerbase/internal/repository"
	"github.com/templui/sneakerbase/internal/validation"
)

func ratingInput(design, comfort, quality, value, sizing int) AddRatingInput {
	return AddRatingInput{
		RatingDesign:  design,
		RatingComfort: comfort,
		RatingQuality: quality,
		RatingValue:   value,
		Sizing:        sizing,
	}
}

func countRatings(t *testing.T, env *testEnv) int {
	t.Helper()
	var count int
	require.NoError(t, env.db.Get(&count, `SELECT COUNT(*) FROM ratings`))
	return count
}

func listingFor(t *testing.T, env *testEnv, id string) *model.SneakerListing {
	t.Helper()
	all, err := env.sneakers.ListAll(context.Background())
	require.NoError(t, err)
	for _, l := range all {
		if l.ID == id {
			return l
		}
	}
	t.Fatalf("sneaker %s not listed", id)
	return nil
}

func TestCanModify(t *testing.T) {
	rating := &model.Rating{AuthorID: "u1"}

	assert.True(t, CanModify(&model.User{ID: "u1"}, rating))
	assert.False(t, CanModify(&model.User{ID: "u2"}, rating))
	assert.False(t, CanModify(nil, rating))
	assert.False(t, CanModify(&model.User{ID: "u1"}, nil))
	assert.False(t, CanModify(&model.User{}, &model.Rating{}))
}

func TestAddRatingChecks(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	sneakerID, err := env.sneakers.Create(ctx, "idp|alice", CreateSneakerInput{Name: "Air Jordan 1", Brand: "Nike", ImageStorageID: env.uploadedImage(t)})
	require.NoError(t, err)

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := env.ratings.Add("", sneakerID, ratingInput(5, 5, 5, 5, 0))
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("no user record", func(t *testing.T) {
		_, err := env.ratings.Add("idp|ghost", sneakerID, ratingInput(5, 5, 5, 5, 0))
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	_, err = env.users.EnsureUser("idp|bob")
	require.NoError(t, err)

	t.Run("missing sneaker", func(t *testing.T) {
		_, err := env.ratings.Add("idp|bob", "missing", ratingInput(5, 5, 5, 5, 0))
		assert.ErrorIs(t, err, repository.ErrSneakerNotFound)
		assert.Equal(t, 0, countRatings(t, env))
	})

	t.Run("out of bounds persists nothing", func(t *testing.T) {
		cases := []AddRatingInput{
			ratingInput(0, 3, 3, 3, 0),
			ratingInput(3, 6, 3, 3, 0),
			ratingInput(3, 3, -1, 3, 0),
			ratingInput(3, 3, 3, 9, 0),
			ratingInput(3, 3, 3, 3, -3),
			ratingInput(3, 3, 3, 3, 3),
		}
		for _, in := range cases {
			_, err := env.ratings.Add("idp|bob", sneakerID, in)
			var verr *validation.Error
			assert.ErrorAs(t, err, &verr)
		}
		assert.Equal(t, 0, countRatings(t, env))
	})

	t.Run("same author may rate twice", func(t *testing.T) {
		_, err := env.ratings.Add("idp|bob", sneakerID, ratingInput(3, 3, 3, 3, 0))
		require.NoError(t, err)
		_, err = env.ratings.Add("idp|bob", sneakerID, ratingInput(4, 4, 4, 4, 1))
		require.NoError(t, err)
		assert.Equal(t, 2, countRatings(t, env))
	})
}

func TestRatingLifecycleScenario(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.users.EnsureUser("idp|alice")
	require.NoError(t, err)
	_, err = env.users.EnsureUser("idp|bob")
	require.NoError(t, err)
	_, err = env.users.EnsureUser("idp|carol")
	require.NoError(t, err)

	sneakerID, err := env.sneakers.Create(ctx, "idp|alice", CreateSneakerInput{Name: "Air Jordan 1", Brand: "Nike", ImageStorageID: env.uploadedImage(t)})
	require.NoError(t, err)
	require.NotEmpty(t, sneakerID)

	listing := listingFor(t, env, sneakerID)
	assert.Equal(t, 0, listing.RatingsCount)
	assert.Equal(t, 0.0, listing.AvgRating)

	firstID, err := env.ratings.Add("idp|alice", sneakerID, ratingInput(5, 4, 5, 3, 0))
	require.NoError(t, err)

	ratings, err := env.ratings.ListForSneaker(sneakerID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, firstID, ratings[0].ID)

	listing = listingFor(t, env, sneakerID)
	assert.Equal(t, 1, listing.RatingsCount)
	assert.InDelta(t, 4.25, listing.AvgRating, 1e-9)

	secondID, err := env.ratings.Add("idp|bob", sneakerID, ratingInput(1, 1, 1, 1, -2))
	require.NoError(t, err)

	listing = listingFor(t, env, sneakerID)
	assert.Equal(t, 2, listing.RatingsCount)
	assert.InDelta(t, 2.625, listing.AvgRating, 1e-9)

	detail, err := env.sneakers.ByID(ctx, sneakerID)
	require.NoError(t, err)
	assert.InDelta(t, listing.AvgRating, detail.AvgRating, 1e-9)

	require.NoError(t, env.ratings.Delete("idp|bob", secondID))

	listing = listingFor(t, env, sneakerID)
	assert.Equal(t, 1, listing.RatingsCount)
	assert.InDelta(t, 4.25, listing.AvgRating, 1e-9)

	err = env.ratings.Delete("idp|carol", firstID)
	assert.ErrorIs(t, err, ErrForbidden)

	ratings, err = env.ratings.ListForSneaker(sneakerID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, firstID, ratings[0].ID)
}

func TestRatingEvents(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.users.EnsureUser("idp|alice")
	require.NoError(t, err)
	sneakerID, err := env.sneakers.Create(ctx, "idp|alice", CreateSneakerInput{Name: "Samba", ImageStorageID: env.uploadedImage(t)})
	require.NoError(t, err)

	ratingID, err := env.ratings.Add("idp|alice", sneakerID, ratingInput(4, 4, 4, 4, 0))
	require.NoError(t, err)
	assert.Equal(t, events.Event{Type: events.RatingAdded, ID: ratingID, SneakerID: sneakerID}, withoutTime(env.events.last()))

	_, err = env.ratings.Add("idp|alice", sneakerID, ratingInput(9, 4, 4, 4, 0))
	require.Error(t, err)
	assert.Equal(t, 2, env.events.count())

	require.NoError(t, env.ratings.Delete("idp|alice", ratingID))
	assert.Equal(t, events.Event{Type: events.RatingDeleted, ID: ratingID, SneakerID: sneakerID}, withoutTime(env.events.last()))
	assert.Equal(t, 3, env.events.count())
}

func withoutTime(event events.Event) events.Event {
	event.At = time.Time{}
	return event
}

func TestDeleteRatingChecks(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.users.EnsureUser("idp|alice")
	require.NoError(t, err)
	sneakerID, err := env.sneakers.Create(ctx, "idp|alice", CreateSneakerInput{Name: "Samba", ImageStorageID: env.uploadedImage(t)})
	require.NoError(t, err)
	ratingID, err := env.ratings.Add("idp|alice", sneakerID, ratingInput(3, 3, 3, 3, 0))
	require.NoError(t, err)

	assert.ErrorIs(t, env.ratings.Delete("", ratingID), ErrUnauthenticated)
	assert.ErrorIs(t, env.ratings.Delete("idp|ghost", ratingID), repository.ErrUserNotFound)
	assert.ErrorIs(t, env.ratings.Delete("idp|alice", "missing"), repository.ErrRatingNotFound)
	assert.Equal(t, 1, countRatings(t, env))
}

func TestListMyRatings(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	mine, err := env.ratings.ListMine("")
	require.NoError(t, err)
	assert.NotNil(t, mine)
	assert.Empty(t, mine)

	mine, err = env.ratings.ListMine("idp|ghost")
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = env.users.EnsureUser("idp|alice")
	require.NoError(t, err)
	_, err = env.users.EnsureUser("idp|bob")
	require.NoError(t, err)
	sneakerID, err := env.sneakers.Create(ctx, "idp|alice", CreateSneakerInput{Name: "Samba", ImageStorageID: env.uploadedImage(t)})
	require.NoError(t, err)

	aliceRating, err := env.ratings.Add("idp|alice", sneakerID, ratingInput(3, 3, 3, 3, 0))
	require.NoError(t, err)
	_, err = env.ratings.Add("idp|bob", sneakerID, ratingInput(2, 2, 2, 2, 1))
	require.NoError(t, err)

	mine, err = env.ratings.ListMine("idp|alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, aliceRating, mine[0].ID)
}
