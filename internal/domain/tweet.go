package domain

import (
	"time"
)

// TweetID is a unique identifier for a tweet within the archive.
type TweetID string

// String returns the string representation of the TweetID.
func (id TweetID) String() string {
	return string(id)
}

// Tweet represents a single tweet parsed from the archive.
//
// ReplyToTweet may reference a tweet that is not present in the archive
// (a reply to someone else, or a deleted tweet). That is normal, not
// corruption, and consumers must tolerate it.
type Tweet struct {
	ID           TweetID
	AuthorID     UserID
	CreatedAt    time.Time
	Text         string
	Entities     []URLEntity // ordered by span offset
	Media        []MediaItem
	ReplyToTweet TweetID // empty if not a reply
	ReplyToUser  UserID  // empty if not a reply
}

// IsReply reports whether the tweet replies to another tweet.
func (t *Tweet) IsReply() bool {
	return t.ReplyToTweet != ""
}

// URLEntity is a shortened-URL span embedded in tweet or DM text.
//
// Start and End are Unicode code point offsets into the text, as indexed
// by the archive. The shortened token is not unique across the archive;
// offsets are the authoritative way to locate a span.
type URLEntity struct {
	Start       int
	End         int
	URL         string // shortened token, e.g. https://t.co/abc123
	ExpandedURL string
	DisplayURL  string
}

// MediaKind classifies a media attachment.
type MediaKind string

const (
	MediaKindImage    MediaKind = "image"
	MediaKindVideo    MediaKind = "video"
	MediaKindAnimated MediaKind = "animated_gif"
)

// MediaItem is a media attachment reference carried by a tweet or DM.
//
// LocalPath is filled in by the media locator; an empty LocalPath with
// Missing set means the archive does not contain the file.
type MediaItem struct {
	Key        string // media key, unique per owning tweet/message
	Kind       MediaKind
	SourceURL  string // remote URL recorded in the archive
	Filename   string // basename under the archive media folder
	LocalPath  string
	Missing    bool
	UpgradeURL string // best-quality remote location, empty if unknown
}
