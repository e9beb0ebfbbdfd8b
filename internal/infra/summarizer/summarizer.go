// Package summarizer turns fetched YouTube data into the text stored on an analysis.
package summarizer

import (
	"context"
	"fmt"
	"strings"

	"tubelens-api/internal/infra/youtube"
)

// Input is everything the analyzer fetched upstream. Exactly one of Video or Channel is set.
type Input struct {
	Video    *youtube.VideoDetails
	Channel  *youtube.ChannelDetails
	Comments []youtube.Comment
}

func (in Input) Title() string {
	switch {
	case in.Video != nil:
		return in.Video.Snippet.Title
	case in.Channel != nil:
		return in.Channel.Snippet.Title
	}
	return ""
}

type Summarizer interface {
	Summarize(ctx context.Context, in Input) (string, error)
}

const maxQuotedComments = 3

// Metadata builds a summary from counters and top comments without any external call.
type Metadata struct{}

func (Metadata) Summarize(_ context.Context, in Input) (string, error) {
	var b strings.Builder

	switch {
	case in.Video != nil:
		v := in.Video
		fmt.Fprintf(&b, "%q", orDefault(v.Snippet.Title, v.ID))
		if v.Snippet.ChannelTitle != "" {
			fmt.Fprintf(&b, " by %s", v.Snippet.ChannelTitle)
		}
		if !v.Snippet.PublishedAt.IsZero() {
			fmt.Fprintf(&b, ", published %s", v.Snippet.PublishedAt.Format("2006-01-02"))
		}
		fmt.Fprintf(&b, ". %d views, %d likes, %d comments.",
			v.Statistics.ViewCount, v.Statistics.LikeCount, v.Statistics.CommentCount)
		if v.ContentDetails.Duration != "" {
			fmt.Fprintf(&b, " Duration %s.", v.ContentDetails.Duration)
		}
		if len(v.Snippet.Tags) > 0 {
			fmt.Fprintf(&b, " Tags: %s.", strings.Join(v.Snippet.Tags, ", "))
		}
	case in.Channel != nil:
		ch := in.Channel
		fmt.Fprintf(&b, "Channel %q", orDefault(ch.Snippet.Title, ch.ID))
		if ch.Snippet.Country != "" {
			fmt.Fprintf(&b, " (%s)", ch.Snippet.Country)
		}
		b.WriteString(".")
		if ch.Statistics.HiddenSubscriberCount {
			b.WriteString(" Subscriber count hidden,")
		} else {
			fmt.Fprintf(&b, " %d subscribers,", ch.Statistics.SubscriberCount)
		}
		fmt.Fprintf(&b, " %d videos, %d total views.", ch.Statistics.VideoCount, ch.Statistics.ViewCount)
	default:
		return "", fmt.Errorf("summarizer: nothing to summarize")
	}

	if n := min(len(in.Comments), maxQuotedComments); n > 0 {
		b.WriteString(" Top comments:")
		for _, c := range in.Comments[:n] {
			fmt.Fprintf(&b, " %q", truncate(oneLine(c.Text), 140))
		}
		b.WriteString(".")
	}
	return b.String(), nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
