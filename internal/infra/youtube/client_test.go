package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "test-key", zap.NewNop(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func apiError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": reason,
			"errors":  []map[string]any{{"reason": reason, "message": reason}},
		},
	})
}

func TestGetVideoDetails(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/youtube/v3/videos", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.ElementsMatch(t, []string{"snippet", "statistics", "contentDetails"}, r.URL.Query()["part"])

		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{{
				"id": "abc123",
				"snippet": map[string]any{
					"title":        "Example Video",
					"channelTitle": "Example Channel",
					"publishedAt":  "2024-05-01T10:00:00Z",
					"tags":         []string{"go", "testing"},
				},
				"statistics":     map[string]any{"viewCount": "1200", "likeCount": "30", "commentCount": "4"},
				"contentDetails": map[string]any{"duration": "PT4M13S", "definition": "hd", "caption": "true"},
			}},
		})
	}))

	v, err := c.GetVideoDetails(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", v.ID)
	assert.Equal(t, "Example Video", v.Snippet.Title)
	assert.Equal(t, "Example Channel", v.Snippet.ChannelTitle)
	assert.Equal(t, 2024, v.Snippet.PublishedAt.Year())
	assert.Equal(t, uint64(1200), v.Statistics.ViewCount)
	assert.Equal(t, uint64(30), v.Statistics.LikeCount)
	assert.Equal(t, "PT4M13S", v.ContentDetails.Duration)
	assert.True(t, v.ContentDetails.Caption)
}

func TestGetVideoDetailsNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
	}))

	_, err := c.GetVideoDetails(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetVideoDetailsUpstreamFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiError(w, http.StatusForbidden, "quotaExceeded")
	}))

	_, err := c.GetVideoDetails(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestGetChannelDetails(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/youtube/v3/channels", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{{
				"id":         "UC123",
				"snippet":    map[string]any{"title": "Gophers", "customUrl": "@gophers"},
				"statistics": map[string]any{"subscriberCount": "900", "videoCount": "12", "viewCount": "50000"},
				"contentDetails": map[string]any{
					"relatedPlaylists": map[string]any{"uploads": "UU123"},
				},
			}},
		})
	}))

	ch, err := c.GetChannelDetails(context.Background(), "UC123")
	require.NoError(t, err)
	assert.Equal(t, "Gophers", ch.Snippet.Title)
	assert.Equal(t, uint64(900), ch.Statistics.SubscriberCount)
	assert.Equal(t, "UU123", ch.ContentDetails.UploadsPlaylistID)
}

func threads(prefix string, n int) []map[string]any {
	items := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%d", prefix, i)
		items = append(items, map[string]any{
			"id": id,
			"snippet": map[string]any{
				"totalReplyCount": 1,
				"topLevelComment": map[string]any{
					"id": id,
					"snippet": map[string]any{
						"authorDisplayName": "viewer",
						"textOriginal":      "comment " + id,
						"likeCount":         i,
					},
				},
			},
		})
	}
	return items
}

func TestGetCommentsPaginatesUntilLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/youtube/v3/commentThreads", r.URL.Path)
		calls.Add(1)
		size, _ := strconv.Atoi(r.URL.Query().Get("maxResults"))
		switch r.URL.Query().Get("pageToken") {
		case "":
			assert.Equal(t, 5, size)
			writeJSON(w, http.StatusOK, map[string]any{"items": threads("p1", 3), "nextPageToken": "page2"})
		case "page2":
			assert.Equal(t, 2, size)
			writeJSON(w, http.StatusOK, map[string]any{"items": threads("p2", 2), "nextPageToken": "page3"})
		default:
			t.Errorf("unexpected page token %q", r.URL.Query().Get("pageToken"))
		}
	}))

	comments, err := c.GetComments(context.Background(), "abc123", 5)
	require.NoError(t, err)
	assert.Len(t, comments, 5)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "comment p1-0", comments[0].Text)
	assert.Equal(t, "comment p2-1", comments[4].Text)
}

func TestGetCommentsStopsWhenUpstreamExhausted(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": threads("only", 2)})
	}))

	comments, err := c.GetComments(context.Background(), "abc123", 0)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}

func TestGetCommentsDisabled(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiError(w, http.StatusForbidden, reasonCommentsDisabled)
	}))

	comments, err := c.GetComments(context.Background(), "abc123", 10)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestGetCommentsVideoNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiError(w, http.StatusNotFound, "videoNotFound")
	}))

	_, err := c.GetComments(context.Background(), "nope", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", nil)
	assert.Error(t, err)
}
