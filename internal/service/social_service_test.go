package service

import (
	"context"
	"testing"

	"vidtube/internal/cache"
	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type socialFixture struct {
	db            *gorm.DB
	events        *eventRecorder
	comments      *CommentService
	likes         *LikeService
	tweets        *TweetService
	subscriptions *SubscriptionService
	playlists     *PlaylistService
	dashboard     *DashboardService
}

func newSocialFixture(t *testing.T) *socialFixture {
	t.Helper()
	db := setupServiceDB(t)
	events := newEventRecorder()
	users := repository.NewUserRepository(db)
	videos := repository.NewVideoRepository(db)
	comments := repository.NewCommentRepository(db)
	tweets := repository.NewTweetRepository(db)
	return &socialFixture{
		db:            db,
		events:        events,
		comments:      NewCommentService(comments, videos, events),
		likes:         NewLikeService(repository.NewLikeRepository(db), videos, comments, tweets, events),
		tweets:        NewTweetService(tweets, users),
		subscriptions: NewSubscriptionService(repository.NewSubscriptionRepository(db), users, events),
		playlists:     NewPlaylistService(repository.NewPlaylistRepository(db), videos),
		dashboard:     NewDashboardService(repository.NewDashboardRepository(db), videos, users),
	}
}

func TestCommentService(t *testing.T) {
	t.Parallel()
	f := newSocialFixture(t)
	ctx := context.Background()
	owner := seedUser(t, f.db, "owner")
	viewer := seedUser(t, f.db, "viewer")
	video := seedVideo(t, f.db, owner, "intro", true)
	draft := seedVideo(t, f.db, owner, "draft", false)

	t.Run("unpublished video", func(t *testing.T) {
		_, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: viewer.ID, VideoID: draft.ID, Content: "hi"})
		assertStatus(t, err, 403)
		_, err = f.comments.ListComments(ctx, ListCommentsInput{VideoID: draft.ID})
		assertStatus(t, err, 403)
	})

	t.Run("missing video", func(t *testing.T) {
		_, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: viewer.ID, VideoID: 999, Content: "hi"})
		assertStatus(t, err, 404)
	})

	t.Run("empty content", func(t *testing.T) {
		_, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: viewer.ID, VideoID: video.ID, Content: "   "})
		assertValidationError(t, err)
	})

	_, err := f.comments.ListComments(ctx, ListCommentsInput{VideoID: video.ID})
	assertStatus(t, err, 404)

	comment, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: viewer.ID, VideoID: video.ID, Content: " nice video "})
	require.NoError(t, err)
	assert.Equal(t, "nice video", comment.Content)

	events := f.events.For(owner.ID)
	require.Len(t, events, 1)
	assert.Equal(t, notifications.EventCommentCreated, events[0].Type)
	assert.Equal(t, viewer.ID, events[0].ActorID)

	_, err = f.comments.CreateComment(ctx, CreateCommentInput{UserID: owner.ID, VideoID: video.ID, Content: "thanks"})
	require.NoError(t, err)
	assert.Len(t, f.events.For(owner.ID), 1, "commenting on your own video notifies nobody")

	listed, err := f.comments.ListComments(ctx, ListCommentsInput{VideoID: video.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	_, err = f.comments.UpdateComment(ctx, UpdateCommentInput{UserID: owner.ID, CommentID: comment.ID, Content: "hijack"})
	assertStatus(t, err, 403)

	updated, err := f.comments.UpdateComment(ctx, UpdateCommentInput{UserID: viewer.ID, CommentID: comment.ID, Content: "great video"})
	require.NoError(t, err)
	assert.Equal(t, "great video", updated.Content)

	assertStatus(t, f.comments.DeleteComment(ctx, owner.ID, comment.ID), 403)
	require.NoError(t, f.comments.DeleteComment(ctx, viewer.ID, comment.ID))
	assertStatus(t, f.comments.DeleteComment(ctx, viewer.ID, comment.ID), 404)
}

func TestLikeService(t *testing.T) {
	t.Parallel()
	f := newSocialFixture(t)
	ctx := context.Background()
	owner := seedUser(t, f.db, "owner")
	fan := seedUser(t, f.db, "fan")
	video := seedVideo(t, f.db, owner, "clip", true)
	draft := seedVideo(t, f.db, owner, "draft", false)

	_, err := f.likes.ToggleVideoLike(ctx, fan.ID, draft.ID)
	assertStatus(t, err, 403)
	_, err = f.likes.ToggleVideoLike(ctx, fan.ID, 999)
	assertStatus(t, err, 404)

	_, err = f.likes.LikedVideos(ctx, fan.ID)
	assertStatus(t, err, 404)

	res, err := f.likes.ToggleVideoLike(ctx, fan.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{Liked: true, TotalLikes: 1}, res)

	events := f.events.For(owner.ID)
	require.Len(t, events, 1)
	assert.Equal(t, notifications.EventLikeAdded, events[0].Type)

	liked, err := f.likes.LikedVideos(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	require.NotNil(t, liked[0].Video)
	assert.Equal(t, video.ID, liked[0].Video.ID)

	res, err = f.likes.ToggleVideoLike(ctx, fan.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{Liked: false, TotalLikes: 0}, res)
	assert.Len(t, f.events.For(owner.ID), 1, "unliking sends nothing")

	// Liking your own content counts but does not notify.
	res, err = f.likes.ToggleVideoLike(ctx, owner.ID, video.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Len(t, f.events.For(owner.ID), 1)

	tweet, err := f.tweets.CreateTweet(ctx, CreateTweetInput{UserID: owner.ID, Content: "hello"})
	require.NoError(t, err)
	res, err = f.likes.ToggleTweetLike(ctx, fan.ID, tweet.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	tweets, err := f.likes.LikedTweets(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	assert.Equal(t, "hello", tweets[0].Tweet.Content)

	comment, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: owner.ID, VideoID: video.ID, Content: "pinned"})
	require.NoError(t, err)
	_, err = f.likes.ToggleCommentLike(ctx, fan.ID, comment.ID)
	require.NoError(t, err)
	comments, err := f.likes.LikedComments(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "pinned", comments[0].Comment.Content)

	_, err = f.likes.ToggleCommentLike(ctx, fan.ID, 999)
	assertStatus(t, err, 404)
}

func TestTweetService(t *testing.T) {
	t.Parallel()
	f := newSocialFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "author")
	other := seedUser(t, f.db, "other")

	_, err := f.tweets.CreateTweet(ctx, CreateTweetInput{UserID: author.ID, Content: "  "})
	assertValidationError(t, err)

	_, err = f.tweets.UserTweets(ctx, "")
	assertValidationError(t, err)
	_, err = f.tweets.UserTweets(ctx, "ghost")
	assertStatus(t, err, 404)
	_, err = f.tweets.UserTweets(ctx, "author")
	assertStatus(t, err, 404)

	tweet, err := f.tweets.CreateTweet(ctx, CreateTweetInput{UserID: author.ID, Content: "first"})
	require.NoError(t, err)

	list, err := f.tweets.UserTweets(ctx, "Author")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.tweets.UpdateTweet(ctx, UpdateTweetInput{UserID: other.ID, TweetID: tweet.ID, Content: "mine now"})
	assertStatus(t, err, 403)

	updated, err := f.tweets.UpdateTweet(ctx, UpdateTweetInput{UserID: author.ID, TweetID: tweet.ID, Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	deleted, err := f.tweets.DeleteTweet(ctx, author.ID, tweet.ID)
	require.NoError(t, err)
	assert.Equal(t, tweet.ID, deleted.ID)

	_, err = f.tweets.DeleteTweet(ctx, author.ID, tweet.ID)
	assertStatus(t, err, 404)
}

func TestSubscriptionService(t *testing.T) {
	t.Parallel()
	f := newSocialFixture(t)
	ctx := context.Background()
	channel := seedUser(t, f.db, "channel")
	fan := seedUser(t, f.db, "fan")

	_, err := f.subscriptions.ToggleSubscription(ctx, fan.ID, 999)
	assertStatus(t, err, 404)

	_, err = f.subscriptions.ToggleSubscription(ctx, channel.ID, channel.ID)
	assertValidationError(t, err)

	_, err = f.subscriptions.ChannelSubscribers(ctx, ListSubscriptionsInput{UserID: channel.ID})
	assertStatus(t, err, 404)
	_, err = f.subscriptions.SubscribedChannels(ctx, ListSubscriptionsInput{UserID: 999})
	assertStatus(t, err, 404)

	subscribed, err := f.subscriptions.ToggleSubscription(ctx, fan.ID, channel.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)

	events := f.events.For(channel.ID)
	require.Len(t, events, 1)
	assert.Equal(t, notifications.EventSubscriberAdded, events[0].Type)

	subs, err := f.subscriptions.ChannelSubscribers(ctx, ListSubscriptionsInput{UserID: channel.ID})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.NotNil(t, subs[0].Subscriber)
	assert.Equal(t, "fan", subs[0].Subscriber.Username)

	channels, err := f.subscriptions.SubscribedChannels(ctx, ListSubscriptionsInput{UserID: fan.ID})
	require.NoError(t, err)
	require.Len(t, channels, 1)
	require.NotNil(t, channels[0].Channel)
	assert.Equal(t, "channel", channels[0].Channel.Username)

	subscribed, err = f.subscriptions.ToggleSubscription(ctx, fan.ID, channel.ID)
	require.NoError(t, err)
	assert.False(t, subscribed)
	assert.Len(t, f.events.For(channel.ID), 1)
}

func TestPlaylistService(t *testing.T) {
	t.Parallel()
	f := newSocialFixture(t)
	ctx := context.Background()
	owner := seedUser(t, f.db, "curator")
	other := seedUser(t, f.db, "other")
	v1 := seedVideo(t, f.db, owner, "one", true)
	v2 := seedVideo(t, f.db, other, "two", true)

	_, err := f.playlists.CreatePlaylist(ctx, CreatePlaylistInput{UserID: owner.ID, Name: "mix"})
	assertValidationError(t, err)

	_, err = f.playlists.UserPlaylists(ctx, owner.ID)
	assertStatus(t, err, 404)

	playlist, err := f.playlists.CreatePlaylist(ctx, CreatePlaylistInput{UserID: owner.ID, Name: "mix", Description: "favourites"})
	require.NoError(t, err)
	assert.Empty(t, playlist.Videos)

	_, err = f.playlists.CreatePlaylist(ctx, CreatePlaylistInput{UserID: owner.ID, Name: "mix", Description: "again"})
	assertStatus(t, err, 409)

	_, err = f.playlists.AddVideo(ctx, PlaylistVideoInput{UserID: other.ID, PlaylistID: playlist.ID, VideoID: v1.ID})
	assertStatus(t, err, 403)
	_, err = f.playlists.AddVideo(ctx, PlaylistVideoInput{UserID: owner.ID, PlaylistID: playlist.ID, VideoID: 999})
	assertStatus(t, err, 404)

	_, err = f.playlists.AddVideo(ctx, PlaylistVideoInput{UserID: owner.ID, PlaylistID: playlist.ID, VideoID: v2.ID})
	require.NoError(t, err)
	got, err := f.playlists.AddVideo(ctx, PlaylistVideoInput{UserID: owner.ID, PlaylistID: playlist.ID, VideoID: v1.ID})
	require.NoError(t, err)
	require.Len(t, got.Videos, 2)
	assert.Equal(t, v2.ID, got.Videos[0].ID)
	assert.Equal(t, v1.ID, got.Videos[1].ID)

	got, err = f.playlists.AddVideo(ctx, PlaylistVideoInput{UserID: owner.ID, PlaylistID: playlist.ID, VideoID: v2.ID})
	require.NoError(t, err)
	assert.Len(t, got.Videos, 2, "adding twice is a no-op")

	got, err = f.playlists.RemoveVideo(ctx, PlaylistVideoInput{UserID: owner.ID, PlaylistID: playlist.ID, VideoID: v2.ID})
	require.NoError(t, err)
	require.Len(t, got.Videos, 1)
	_, err = f.playlists.RemoveVideo(ctx, PlaylistVideoInput{UserID: owner.ID, PlaylistID: playlist.ID, VideoID: v2.ID})
	assertStatus(t, err, 404)

	_, err = f.playlists.UpdatePlaylist(ctx, UpdatePlaylistInput{UserID: owner.ID, PlaylistID: playlist.ID})
	assertValidationError(t, err)
	updated, err := f.playlists.UpdatePlaylist(ctx, UpdatePlaylistInput{UserID: owner.ID, PlaylistID: playlist.ID, Name: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "favourites", updated.Description)

	all, err := f.playlists.UserPlaylists(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assertStatus(t, f.playlists.DeletePlaylist(ctx, other.ID, playlist.ID), 403)
	require.NoError(t, f.playlists.DeletePlaylist(ctx, owner.ID, playlist.ID))
	_, err = f.playlists.GetPlaylist(ctx, playlist.ID)
	assertStatus(t, err, 404)
}

func TestDashboardService(t *testing.T) {
	t.Parallel()
	f := newSocialFixture(t)
	ctx := context.Background()
	creator := seedUser(t, f.db, "creator")
	fan := seedUser(t, f.db, "fan")

	_, err := f.dashboard.ChannelVideos(ctx, creator.ID)
	assertStatus(t, err, 404)

	video := seedVideo(t, f.db, creator, "hit", true)
	seedVideo(t, f.db, creator, "wip", false)
	require.NoError(t, f.db.Model(&models.Video{}).Where("id = ?", video.ID).Update("views", 12).Error)

	_, err = f.likes.ToggleVideoLike(ctx, fan.ID, video.ID)
	require.NoError(t, err)
	_, err = f.comments.CreateComment(ctx, CreateCommentInput{UserID: fan.ID, VideoID: video.ID, Content: "wow"})
	require.NoError(t, err)
	_, err = f.subscriptions.ToggleSubscription(ctx, fan.ID, creator.ID)
	require.NoError(t, err)
	_, err = f.tweets.CreateTweet(ctx, CreateTweetInput{UserID: creator.ID, Content: "new upload"})
	require.NoError(t, err)

	stats, err := f.dashboard.ChannelStats(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, "creator", stats.User.Username)
	assert.Equal(t, models.VideoStats{TotalVideos: 2, TotalViews: 12, TotalLikes: 1, TotalComments: 1}, stats.VideoStats)
	assert.Equal(t, models.TweetStats{TotalTweets: 1}, stats.TweetStats)
	assert.Equal(t, int64(1), stats.TotalSubscribers)

	videos, err := f.dashboard.ChannelVideos(ctx, creator.ID)
	require.NoError(t, err)
	assert.Len(t, videos, 2)

	_, err = f.dashboard.ChannelStats(ctx, 999)
	assertStatus(t, err, 404)
}

func TestOwnershipCheckedBeforePayload(t *testing.T) {
	t.Parallel()
	f := newSocialFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")
	video := seedVideo(t, f.db, alice, "clip", true)

	comment, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: alice.ID, VideoID: video.ID, Content: "first"})
	require.NoError(t, err)
	tweet, err := f.tweets.CreateTweet(ctx, CreateTweetInput{UserID: alice.ID, Content: "hello"})
	require.NoError(t, err)
	playlist, err := f.playlists.CreatePlaylist(ctx, CreatePlaylistInput{UserID: alice.ID, Name: "mine", Description: "d"})
	require.NoError(t, err)

	t.Run("comment", func(t *testing.T) {
		_, err := f.comments.UpdateComment(ctx, UpdateCommentInput{UserID: bob.ID, CommentID: comment.ID})
		assertStatus(t, err, 403)
		_, err = f.comments.UpdateComment(ctx, UpdateCommentInput{UserID: alice.ID, CommentID: comment.ID})
		assertValidationError(t, err)
	})

	t.Run("tweet", func(t *testing.T) {
		_, err := f.tweets.UpdateTweet(ctx, UpdateTweetInput{UserID: bob.ID, TweetID: tweet.ID, Content: "   "})
		assertStatus(t, err, 403)
		_, err = f.tweets.UpdateTweet(ctx, UpdateTweetInput{UserID: alice.ID, TweetID: tweet.ID, Content: "   "})
		assertValidationError(t, err)
	})

	t.Run("playlist", func(t *testing.T) {
		_, err := f.playlists.UpdatePlaylist(ctx, UpdatePlaylistInput{UserID: bob.ID, PlaylistID: playlist.ID})
		assertStatus(t, err, 403)
		_, err = f.playlists.UpdatePlaylist(ctx, UpdatePlaylistInput{UserID: alice.ID, PlaylistID: playlist.ID})
		assertValidationError(t, err)

		_, err = f.playlists.AddVideo(ctx, PlaylistVideoInput{UserID: bob.ID, PlaylistID: playlist.ID, VideoID: 999})
		assertStatus(t, err, 403)
		_, err = f.playlists.RemoveVideo(ctx, PlaylistVideoInput{UserID: bob.ID, PlaylistID: playlist.ID, VideoID: 999})
		assertStatus(t, err, 403)
	})
}

// Not parallel: it installs the package-wide cache client.
func TestDashboardService_StatsFollowActivity(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	f := newSocialFixture(t)
	ctx := context.Background()
	creator := seedUser(t, f.db, "creator")
	fan := seedUser(t, f.db, "fan")
	video := seedVideo(t, f.db, creator, "hit", true)

	stats := func() *models.ChannelStats {
		t.Helper()
		s, err := f.dashboard.ChannelStats(ctx, creator.ID)
		require.NoError(t, err)
		return s
	}

	assert.Zero(t, stats().VideoStats.TotalLikes)
	require.True(t, mr.Exists(cache.ChannelStatsKey(creator.ID)))

	_, err := f.likes.ToggleVideoLike(ctx, fan.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats().VideoStats.TotalLikes)

	_, err = f.likes.ToggleVideoLike(ctx, fan.ID, video.ID)
	require.NoError(t, err)
	assert.Zero(t, stats().VideoStats.TotalLikes)

	comment, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: fan.ID, VideoID: video.ID, Content: "wow"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats().VideoStats.TotalComments)

	require.NoError(t, f.comments.DeleteComment(ctx, fan.ID, comment.ID))
	assert.Zero(t, stats().VideoStats.TotalComments)

	tweet, err := f.tweets.CreateTweet(ctx, CreateTweetInput{UserID: creator.ID, Content: "new upload"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats().TweetStats.TotalTweets)

	_, err = f.tweets.DeleteTweet(ctx, creator.ID, tweet.ID)
	require.NoError(t, err)
	assert.Zero(t, stats().TweetStats.TotalTweets)
}
