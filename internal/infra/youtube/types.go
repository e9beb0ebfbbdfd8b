package youtube

import "time"

type VideoSnippet struct {
	Title        string
	Description  string
	ChannelID    string
	ChannelTitle string
	PublishedAt  time.Time
	Tags         []string
	CategoryID   string
	Language     string
}

type VideoStatistics struct {
	ViewCount    uint64
	LikeCount    uint64
	CommentCount uint64
}

type VideoContentDetails struct {
	Duration   string
	Definition string
	Caption    bool
}

// VideoDetails is the normalized videos.list item.
type VideoDetails struct {
	ID             string
	Snippet        VideoSnippet
	Statistics     VideoStatistics
	ContentDetails VideoContentDetails
}

type ChannelSnippet struct {
	Title       string
	Description string
	CustomURL   string
	Country     string
	PublishedAt time.Time
}

type ChannelStatistics struct {
	ViewCount             uint64
	SubscriberCount       uint64
	VideoCount            uint64
	HiddenSubscriberCount bool
}

type ChannelContentDetails struct {
	UploadsPlaylistID string
}

// ChannelDetails is the normalized channels.list item.
type ChannelDetails struct {
	ID             string
	Snippet        ChannelSnippet
	Statistics     ChannelStatistics
	ContentDetails ChannelContentDetails
}

type Comment struct {
	ID          string
	Author      string
	Text        string
	LikeCount   int64
	ReplyCount  int64
	PublishedAt time.Time
}
