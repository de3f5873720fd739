package document

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/calehart/unspool/internal/assemble"
	"github.com/calehart/unspool/internal/domain"
)

func sampleInput() Input {
	created := time.Date(2022, 3, 14, 12, 0, 0, 0, time.UTC)
	return Input{
		Owner: domain.User{ID: "42", Handle: "alice", Owner: true},
		Threads: []assemble.Thread{{
			RootID: "100",
			Tweets: []domain.Tweet{{
				ID:        "100",
				AuthorID:  "42",
				CreatedAt: created,
				Text:      "look https://t.co/x here",
				Entities: []domain.URLEntity{
					{Start: 5, End: 19, URL: "https://t.co/x", ExpandedURL: "https://example.org/page", DisplayURL: "example.org/page"},
				},
				Media: []domain.MediaItem{
					{Key: "m1", Kind: domain.MediaKindImage, LocalPath: "/archive/media/100-a.jpg"},
				},
			}, {
				ID:           "101",
				AuthorID:     "42",
				CreatedAt:    created.Add(time.Minute),
				Text:         "reply",
				ReplyToTweet: "100",
				ReplyToUser:  "77",
			}},
		}},
		Conversations: []domain.DMConversation{{
			ID:           "42-99",
			Participants: []domain.UserID{"42", "99"},
			Messages: []domain.DMMessage{{
				ID:        "m-1",
				Kind:      domain.DMEventMessage,
				SenderID:  "99",
				CreatedAt: created,
				Text:      "hi",
			}},
		}},
		Handles: map[domain.UserID]domain.HandleEntry{
			"42": {UserID: "42", Handle: "alice", Provenance: domain.ProvenanceArchive},
			"99": {UserID: "99", Handle: "bob", Provenance: domain.ProvenanceRemote},
		},
		Following: []domain.UserID{"99", "77"},
		Likes:     []domain.LikeUnit{{TweetID: "500", Text: "liked"}},
	}
}

func TestBuild(t *testing.T) {
	model, warnings := Build(sampleInput())
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	if model.Owner.Handle != "alice" {
		t.Errorf("owner handle = %q", model.Owner.Handle)
	}

	tw := model.Threads[0].Tweets[0]
	if tw.Text != "look https://example.org/page here" {
		t.Errorf("expanded text = %q", tw.Text)
	}
	if len(tw.Links) != 1 || tw.Links[0].URL != "https://example.org/page" {
		t.Errorf("links = %+v", tw.Links)
	}
	if len(tw.Media) != 1 || tw.Media[0].LocalPath != "/archive/media/100-a.jpg" {
		t.Errorf("media = %+v", tw.Media)
	}

	reply := model.Threads[0].Tweets[1]
	if reply.ReplyToUser == nil || reply.ReplyToUser.Handle != "unknown user 77" {
		t.Errorf("reply-to user = %+v, want placeholder", reply.ReplyToUser)
	}

	conv := model.Conversations[0]
	if conv.Messages[0].Sender.Handle != "bob" {
		t.Errorf("sender = %+v", conv.Messages[0].Sender)
	}
	// Participants come back sorted by id.
	if conv.Participants[0].ID != "42" || conv.Participants[1].ID != "99" {
		t.Errorf("participants = %+v", conv.Participants)
	}
}

func TestBuild_PlaceholderForUnknownUsers(t *testing.T) {
	model, _ := Build(sampleInput())

	for _, u := range model.Following {
		if u.Handle == "" {
			t.Errorf("empty handle for %s", u.ID)
		}
		if u.ID == "77" && u.Handle != "unknown user 77" {
			t.Errorf("handle for 77 = %q, want placeholder", u.Handle)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	first, _ := Build(sampleInput())
	second, _ := Build(sampleInput())

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two builds of the same input produced different bytes")
	}
}

func TestBuild_DoesNotAliasInput(t *testing.T) {
	in := sampleInput()
	model, _ := Build(in)

	in.Likes[0].Text = "mutated"
	in.Threads[0].Tweets[0].Media[0].LocalPath = "mutated"

	if model.Likes[0].Text != "liked" {
		t.Error("model aliases the input likes slice")
	}
	if model.Threads[0].Tweets[0].Media[0].LocalPath != "/archive/media/100-a.jpg" {
		t.Error("model aliases the input media slice")
	}
}

func TestBuild_MalformedSpanSurfacesWarning(t *testing.T) {
	in := sampleInput()
	in.Threads[0].Tweets[0].Entities = []domain.URLEntity{
		{Start: 2, End: 500, ExpandedURL: "https://bad.example"},
	}

	model, warnings := Build(in)
	if model.Threads[0].Tweets[0].Text != "look https://t.co/x here" {
		t.Errorf("text = %q, want original preserved", model.Threads[0].Tweets[0].Text)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want 1", warnings)
	}
}
