package models

// VideoStats aggregates a channel's videos.
type VideoStats struct {
	TotalVideos   int64 `json:"totalVideos"`
	TotalViews    int64 `json:"totalViews"`
	TotalLikes    int64 `json:"totalLikes"`
	TotalComments int64 `json:"totalComments"`
}

// TweetStats aggregates a channel's tweets.
type TweetStats struct {
	TotalTweets int64 `json:"totalTweets"`
	TotalLikes  int64 `json:"totalLikes"`
}

// ChannelStats is the creator dashboard summary.
type ChannelStats struct {
	User             *Owner     `json:"user"`
	VideoStats       VideoStats `json:"videoStats"`
	TweetStats       TweetStats `json:"tweetStats"`
	TotalSubscribers int64      `json:"totalSubscribers"`
}
