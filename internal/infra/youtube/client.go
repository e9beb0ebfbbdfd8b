// Package youtube wraps the YouTube Data API v3 calls the analyzer needs.
package youtube

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

const (
	DefaultMaxComments = 50
	maxPageSize        = 100
)

var detailParts = []string{"snippet", "statistics", "contentDetails"}

// Client holds no state beyond the API service handle.
type Client struct {
	svc    *ytapi.Service
	logger *zap.Logger
}

// NewClient builds a client authenticated with apiKey. Extra options are appended,
// which is how tests point it at a local endpoint.
func NewClient(ctx context.Context, apiKey string, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube: api key is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := ytapi.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}
	return &Client{svc: svc, logger: logger.Named("youtube")}, nil
}

// GetVideoDetails fetches snippet, statistics and content details for one video.
func (c *Client) GetVideoDetails(ctx context.Context, videoID string) (*VideoDetails, error) {
	start := time.Now()
	resp, err := c.svc.Videos.List(detailParts).Id(videoID).Context(ctx).Do()
	observeCall("videos.list", err, start)
	if err != nil {
		c.logger.Warn("videos.list failed", zap.String("video_id", videoID), zap.Error(err))
		return nil, classify("videos.list", err)
	}
	if len(resp.Items) == 0 || resp.Items[0] == nil {
		return nil, fmt.Errorf("videos.list %s: %w", videoID, ErrNotFound)
	}
	return videoFromAPI(resp.Items[0]), nil
}

// GetChannelDetails is the channel counterpart of GetVideoDetails.
func (c *Client) GetChannelDetails(ctx context.Context, channelID string) (*ChannelDetails, error) {
	start := time.Now()
	resp, err := c.svc.Channels.List(detailParts).Id(channelID).Context(ctx).Do()
	observeCall("channels.list", err, start)
	if err != nil {
		c.logger.Warn("channels.list failed", zap.String("channel_id", channelID), zap.Error(err))
		return nil, classify("channels.list", err)
	}
	if len(resp.Items) == 0 || resp.Items[0] == nil {
		return nil, fmt.Errorf("channels.list %s: %w", channelID, ErrNotFound)
	}
	return channelFromAPI(resp.Items[0]), nil
}

// GetComments returns up to maxResults top-level comments ordered by relevance.
// It keeps requesting pages until maxResults are collected or the upstream runs out.
func (c *Client) GetComments(ctx context.Context, videoID string, maxResults int) ([]Comment, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxComments
	}

	comments := make([]Comment, 0, maxResults)
	pageToken := ""
	for len(comments) < maxResults {
		pageSize := min(maxResults-len(comments), maxPageSize)

		call := c.svc.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).
			MaxResults(int64(pageSize)).
			Order("relevance").
			TextFormat("plainText").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		start := time.Now()
		resp, err := call.Do()
		observeCall("commentThreads.list", err, start)
		if err != nil {
			if hasReason(err, reasonCommentsDisabled) {
				c.logger.Debug("comments disabled", zap.String("video_id", videoID))
				return comments, nil
			}
			c.logger.Warn("commentThreads.list failed", zap.String("video_id", videoID), zap.Error(err))
			return nil, classify("commentThreads.list", err)
		}

		for _, thread := range resp.Items {
			if cm, ok := commentFromAPI(thread); ok {
				comments = append(comments, cm)
				if len(comments) == maxResults {
					break
				}
			}
		}

		if resp.NextPageToken == "" || len(resp.Items) == 0 {
			break
		}
		pageToken = resp.NextPageToken
	}
	return comments, nil
}

func videoFromAPI(v *ytapi.Video) *VideoDetails {
	out := &VideoDetails{ID: v.Id}
	if s := v.Snippet; s != nil {
		out.Snippet = VideoSnippet{
			Title:        s.Title,
			Description:  s.Description,
			ChannelID:    s.ChannelId,
			ChannelTitle: s.ChannelTitle,
			PublishedAt:  parseTime(s.PublishedAt),
			Tags:         s.Tags,
			CategoryID:   s.CategoryId,
			Language:     s.DefaultLanguage,
		}
	}
	if st := v.Statistics; st != nil {
		out.Statistics = VideoStatistics{
			ViewCount:    st.ViewCount,
			LikeCount:    st.LikeCount,
			CommentCount: st.CommentCount,
		}
	}
	if cd := v.ContentDetails; cd != nil {
		out.ContentDetails = VideoContentDetails{
			Duration:   cd.Duration,
			Definition: cd.Definition,
			Caption:    cd.Caption == "true",
		}
	}
	return out
}

func channelFromAPI(ch *ytapi.Channel) *ChannelDetails {
	out := &ChannelDetails{ID: ch.Id}
	if s := ch.Snippet; s != nil {
		out.Snippet = ChannelSnippet{
			Title:       s.Title,
			Description: s.Description,
			CustomURL:   s.CustomUrl,
			Country:     s.Country,
			PublishedAt: parseTime(s.PublishedAt),
		}
	}
	if st := ch.Statistics; st != nil {
		out.Statistics = ChannelStatistics{
			ViewCount:             st.ViewCount,
			SubscriberCount:       st.SubscriberCount,
			VideoCount:            st.VideoCount,
			HiddenSubscriberCount: st.HiddenSubscriberCount,
		}
	}
	if cd := ch.ContentDetails; cd != nil && cd.RelatedPlaylists != nil {
		out.ContentDetails = ChannelContentDetails{UploadsPlaylistID: cd.RelatedPlaylists.Uploads}
	}
	return out
}

func commentFromAPI(t *ytapi.CommentThread) (Comment, bool) {
	if t == nil || t.Snippet == nil || t.Snippet.TopLevelComment == nil || t.Snippet.TopLevelComment.Snippet == nil {
		return Comment{}, false
	}
	s := t.Snippet.TopLevelComment.Snippet
	text := s.TextOriginal
	if text == "" {
		text = s.TextDisplay
	}
	return Comment{
		ID:          t.Snippet.TopLevelComment.Id,
		Author:      s.AuthorDisplayName,
		Text:        text,
		LikeCount:   s.LikeCount,
		ReplyCount:  t.Snippet.TotalReplyCount,
		PublishedAt: parseTime(s.PublishedAt),
	}, true
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
