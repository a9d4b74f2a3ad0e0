package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videotube/pkg/models"
	"videotube/pkg/query"
)

func firstPage(t *testing.T) query.Params {
	t.Helper()
	p, err := query.Window(query.Raw{})
	require.NoError(t, err)
	return p
}

func TestCommentService(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	owner := seedUser(t, s, "quinn")
	other := seedUser(t, s, "rita")
	video := seedVideo(t, s, owner, "talk", true)
	draft := seedVideo(t, s, owner, "draft", false)
	svc := NewCommentService(s)

	_, err := svc.Add(ctx, video.ID, other.ID, "   ")
	assertStatus(t, err, http.StatusBadRequest, "Content is required")

	_, err = svc.Add(ctx, draft.ID, other.ID, "sneaky")
	assertStatus(t, err, http.StatusForbidden, "")

	_, err = svc.List(ctx, draft.ID, other.ID, firstPage(t))
	assertStatus(t, err, http.StatusForbidden, "")

	comment, err := svc.Add(ctx, video.ID, other.ID, " great talk ")
	require.NoError(t, err)
	assert.Equal(t, "great talk", comment.Content)

	_, err = svc.Update(ctx, comment.ID, owner.ID, "edited")
	assertStatus(t, err, http.StatusForbidden, "You are not allowed to update this comment")
	err = svc.Delete(ctx, comment.ID, owner.ID)
	assertStatus(t, err, http.StatusForbidden, "You are not allowed to delete this comment")

	updated, err := svc.Update(ctx, comment.ID, other.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	page, err := svc.List(ctx, video.ID, owner.ID, firstPage(t))
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalDocs)

	require.NoError(t, svc.Delete(ctx, comment.ID, other.ID))
	err = svc.Delete(ctx, comment.ID, other.ID)
	assertStatus(t, err, http.StatusNotFound, "Comment not found")
}

func TestTweetService(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	author := seedUser(t, s, "sam")
	other := seedUser(t, s, "tina")
	svc := NewTweetService(s)

	tweet, err := svc.Create(ctx, author.ID, "hello world")
	require.NoError(t, err)
	_, err = svc.Create(ctx, author.ID, "second post")
	require.NoError(t, err)

	p, err := query.Parse(query.Raw{Query: "HELLO"}, query.TweetSorts)
	require.NoError(t, err)
	page, err := svc.ListUser(ctx, author.ID, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalDocs)

	_, err = svc.ListUser(ctx, "7f1a0c9e-1111-4f4f-9999-000000000000", firstPage(t))
	assertStatus(t, err, http.StatusNotFound, "User not found")

	_, err = svc.Update(ctx, tweet.ID, other.ID, "hijack")
	assertStatus(t, err, http.StatusForbidden, "You are not allowed to update this tweet")

	require.NoError(t, svc.Delete(ctx, tweet.ID, author.ID))
	_, err = s.GetTweetByID(ctx, tweet.ID)
	assert.Error(t, err)
}

func TestLikeService_Targets(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	owner := seedUser(t, s, "uma")
	fan := seedUser(t, s, "vic")
	draft := seedVideo(t, s, owner, "draft", false)
	svc := NewLikeService(s)

	_, err := svc.Toggle(ctx, models.LikeVideo, draft.ID, fan.ID)
	assertStatus(t, err, http.StatusForbidden, "")

	_, err = svc.Toggle(ctx, models.LikeTweet, "7f1a0c9e-1111-4f4f-9999-000000000000", fan.ID)
	assertStatus(t, err, http.StatusNotFound, "Tweet not found")

	_, err = svc.Toggle(ctx, models.LikeComment, "7f1a0c9e-1111-4f4f-9999-000000000000", fan.ID)
	assertStatus(t, err, http.StatusNotFound, "Comment not found")

	liked, err := svc.Toggle(ctx, models.LikeVideo, draft.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	page, err := svc.LikedVideos(ctx, owner.ID, firstPage(t))
	require.NoError(t, err)
	require.Len(t, page.Docs, 1)
	assert.Equal(t, draft.ID, page.Docs[0].Video.ID)
}

func TestProperty_ToggleTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	owner := seedUser(t, s, "wes")
	fan := seedUser(t, s, "xena")
	video := seedVideo(t, s, owner, "loop", true)
	likes := NewLikeService(s)
	subs := NewSubscriptionService(s)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("like toggles alternate and pairs cancel out", prop.ForAll(
		func(n int) bool {
			_, err := s.FindLike(ctx, models.LikeVideo, video.ID, fan.ID)
			before := err == nil
			state := before
			for i := 0; i < n; i++ {
				liked, err := likes.Toggle(ctx, models.LikeVideo, video.ID, fan.ID)
				if err != nil || liked == state {
					return false
				}
				state = liked
			}
			return (n%2 == 0) == (state == before)
		},
		gen.IntRange(1, 6),
	))

	properties.Property("subscription toggles alternate and pairs cancel out", prop.ForAll(
		func(n int) bool {
			_, err := s.FindSubscription(ctx, fan.ID, owner.ID)
			before := err == nil
			state := before
			for i := 0; i < n; i++ {
				subscribed, err := subs.Toggle(ctx, owner.ID, fan.ID)
				if err != nil || subscribed == state {
					return false
				}
				state = subscribed
			}
			return (n%2 == 0) == (state == before)
		},
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t)
}

func TestSubscriptionService(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	channel := seedUser(t, s, "yara")
	fan := seedUser(t, s, "zed")
	svc := NewSubscriptionService(s)

	_, err := svc.Toggle(ctx, fan.ID, fan.ID)
	assertStatus(t, err, http.StatusBadRequest, "You cannot subscribe to yourself")

	_, err = svc.Toggle(ctx, "7f1a0c9e-1111-4f4f-9999-000000000000", fan.ID)
	assertStatus(t, err, http.StatusNotFound, "Channel not found")

	subscribed, err := svc.Toggle(ctx, channel.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)

	subscribers, err := svc.Subscribers(ctx, channel.ID, firstPage(t))
	require.NoError(t, err)
	require.Len(t, subscribers.Docs, 1)
	assert.Equal(t, "zed", subscribers.Docs[0].User.Username)

	channels, err := svc.Channels(ctx, fan.ID, firstPage(t))
	require.NoError(t, err)
	require.Len(t, channels.Docs, 1)
	assert.Equal(t, "yara", channels.Docs[0].User.Username)
}

func TestPlaylistService(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	owner := seedUser(t, s, "abe")
	other := seedUser(t, s, "bea")
	video := seedVideo(t, s, owner, "song", true)
	svc := NewPlaylistService(s)

	_, err := svc.Create(ctx, owner.ID, " ", "")
	assertStatus(t, err, http.StatusBadRequest, "Playlist name is required")

	playlist, err := svc.Create(ctx, owner.ID, "mix", "road trip")
	require.NoError(t, err)

	_, err = svc.AddVideo(ctx, playlist.ID, video.ID, other.ID)
	assertStatus(t, err, http.StatusForbidden, "You are not allowed to modify this playlist")

	view, err := svc.AddVideo(ctx, playlist.ID, video.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.VideoCount)

	_, err = svc.AddVideo(ctx, playlist.ID, video.ID, owner.ID)
	assertStatus(t, err, http.StatusBadRequest, "Video already in playlist")

	updated, err := svc.Update(ctx, playlist.ID, owner.ID, "", "new description")
	require.NoError(t, err)
	assert.Equal(t, "mix", updated.Name)
	assert.Equal(t, "new description", updated.Description)

	view, err = svc.RemoveVideo(ctx, playlist.ID, video.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), view.VideoCount)

	_, err = svc.RemoveVideo(ctx, playlist.ID, video.ID, owner.ID)
	assertStatus(t, err, http.StatusBadRequest, "Video is not in the playlist")

	page, err := svc.ListUser(ctx, owner.ID, other.ID, firstPage(t))
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalDocs)

	err = svc.Delete(ctx, playlist.ID, other.ID)
	assertStatus(t, err, http.StatusForbidden, "")
	require.NoError(t, svc.Delete(ctx, playlist.ID, owner.ID))
	_, err = svc.Get(ctx, playlist.ID, owner.ID)
	assertStatus(t, err, http.StatusNotFound, "Playlist not found")
}

func TestPlaylistService_HidesDraftsOfOthers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	creator := seedUser(t, s, "cora")
	viewer := seedUser(t, s, "dev")
	secret := seedVideo(t, s, creator, "secret", true)
	own := seedVideo(t, s, viewer, "mine", false)
	svc := NewPlaylistService(s)
	videos := NewVideoService(s, &mockMedia{})

	playlist, err := svc.Create(ctx, viewer.ID, "later", "")
	require.NoError(t, err)
	_, err = svc.AddVideo(ctx, playlist.ID, secret.ID, viewer.ID)
	require.NoError(t, err)
	_, err = svc.AddVideo(ctx, playlist.ID, own.ID, viewer.ID)
	require.NoError(t, err)

	toggled, err := videos.TogglePublish(ctx, secret.ID, creator.ID)
	require.NoError(t, err)
	require.False(t, toggled.IsPublished)

	view, err := svc.Get(ctx, playlist.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{own.ID}, view.Videos)
	assert.Equal(t, int64(1), view.VideoCount)
	require.Len(t, view.VideoDetails, 1)
	assert.Equal(t, own.ID, view.VideoDetails[0].ID)

	// The creator still sees their own draft; the viewer's draft is hidden.
	view, err = svc.Get(ctx, playlist.ID, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{secret.ID}, view.Videos)
	require.Len(t, view.VideoDetails, 1)
	assert.Equal(t, secret.ID, view.VideoDetails[0].ID)

	page, err := svc.ListUser(ctx, viewer.ID, viewer.ID, firstPage(t))
	require.NoError(t, err)
	require.Len(t, page.Docs, 1)
	for _, v := range page.Docs[0].VideoDetails {
		assert.NotEqual(t, secret.ID, v.ID)
	}
	assert.Equal(t, int64(1), page.Docs[0].VideoCount)
}

func TestDashboardService(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	owner := seedUser(t, s, "cal")
	seedVideo(t, s, owner, "one", true)
	seedVideo(t, s, owner, "two", false)
	svc := NewDashboardService(s)

	stats, err := svc.Stats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalVideos)

	page, err := svc.Videos(ctx, owner.ID, firstPage(t))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalDocs)
}
