package domain

import (
	"time"
)

// DocumentModel is the fully resolved, renderer-agnostic representation
// of an archive: every text span has been through URL expansion exactly
// once, every media reference either carries a valid local path or is
// marked missing, and every user reference is either a handle or an
// explicit placeholder.
//
// The builder owns this structure outright; nothing in it aliases
// upstream resolution state.
type DocumentModel struct {
	Owner         ResolvedUser       `json:"owner"`
	Threads       []ThreadUnit       `json:"threads"`
	Conversations []ConversationUnit `json:"conversations"`
	Following     []ResolvedUser     `json:"following,omitempty"`
	Followers     []ResolvedUser     `json:"followers,omitempty"`
	Likes         []LikeUnit         `json:"likes,omitempty"`
}

// ResolvedUser is a user reference after handle resolution. Handle is
// never empty: unresolved users get the "unknown user <id>" placeholder.
type ResolvedUser struct {
	ID         UserID           `json:"id"`
	Handle     string           `json:"handle"`
	Provenance HandleProvenance `json:"provenance"`
}

// ThreadUnit is one reply chain of owner tweets, root first, in
// chronological order. A tweet replying outside the owner's tweet set is
// a thread of length one.
type ThreadUnit struct {
	RootID TweetID         `json:"root_id"`
	Tweets []ResolvedTweet `json:"tweets"`
}

// StartedAt returns the root tweet's timestamp, the zero time for an
// empty thread.
func (t ThreadUnit) StartedAt() time.Time {
	if len(t.Tweets) == 0 {
		return time.Time{}
	}
	return t.Tweets[0].CreatedAt
}

// ResolvedTweet is a tweet after URL, handle, and media resolution.
type ResolvedTweet struct {
	ID           TweetID         `json:"id"`
	Author       ResolvedUser    `json:"author"`
	CreatedAt    time.Time       `json:"created_at"`
	Text         string          `json:"text"` // shortened URLs already expanded
	Links        []ResolvedLink  `json:"links,omitempty"`
	Media        []ResolvedMedia `json:"media,omitempty"`
	ReplyToTweet TweetID         `json:"reply_to_tweet,omitempty"`
	ReplyToUser  *ResolvedUser   `json:"reply_to_user,omitempty"`
}

// ResolvedLink is an expanded URL retained alongside the text for
// renderers that want anchors instead of bare URLs.
type ResolvedLink struct {
	URL     string `json:"url"`
	Display string `json:"display,omitempty"`
}

// ResolvedMedia is a media reference after location and optional
// upgrade. Exactly one of LocalPath or Missing is meaningful.
type ResolvedMedia struct {
	Key        string    `json:"key"`
	Kind       MediaKind `json:"kind"`
	LocalPath  string    `json:"local_path,omitempty"`
	Missing    bool      `json:"missing,omitempty"`
	SourceURL  string    `json:"source_url,omitempty"`
	UpgradeURL string    `json:"upgrade_url,omitempty"`
}

// ConversationUnit is one DM conversation with resolved participants and
// messages in total order by (timestamp, id), system messages included.
type ConversationUnit struct {
	ID           ConversationID      `json:"id"`
	Participants []ResolvedUser      `json:"participants"` // deterministic display order
	Group        bool                `json:"group,omitempty"`
	Messages     []ResolvedDMMessage `json:"messages"`
}

// ResolvedDMMessage is a DM after resolution, or a participant event
// surfaced as a system message.
type ResolvedDMMessage struct {
	ID        string          `json:"id"`
	Kind      DMEventKind     `json:"kind"`
	Sender    ResolvedUser    `json:"sender"`
	CreatedAt time.Time       `json:"created_at"`
	Text      string          `json:"text"`
	Links     []ResolvedLink  `json:"links,omitempty"`
	Media     []ResolvedMedia `json:"media,omitempty"`
	Affected  []ResolvedUser  `json:"affected,omitempty"`
}

// LikeUnit is a liked tweet, as far as the archive records it.
type LikeUnit struct {
	TweetID TweetID `json:"tweet_id"`
	Text    string  `json:"text,omitempty"`
	URL     string  `json:"url,omitempty"`
}
