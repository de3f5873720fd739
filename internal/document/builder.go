// Package document merges the resolved and assembled pieces of an
// archive into the final renderer-agnostic model.
package document

import (
	"fmt"
	"sort"

	"github.com/calehart/unspool/internal/assemble"
	"github.com/calehart/unspool/internal/domain"
	"github.com/calehart/unspool/internal/resolve"
)

// Input collects everything the builder folds into a DocumentModel.
// Media items inside the threads and conversations are expected to be
// located (and optionally upgraded) already.
type Input struct {
	Owner         domain.User
	Threads       []assemble.Thread
	Conversations []domain.DMConversation
	Handles       map[domain.UserID]domain.HandleEntry
	Following     []domain.UserID
	Followers     []domain.UserID
	Likes         []domain.LikeUnit
}

// Build produces the document model. It is a pure function of its
// input: same input, byte-identical model. Nothing in the returned
// model aliases the input; callers may keep mutating their copies.
func Build(in Input) (*domain.DocumentModel, []string) {
	b := &builder{handles: in.Handles}

	model := &domain.DocumentModel{
		Owner:         b.user(in.Owner.ID),
		Threads:       make([]domain.ThreadUnit, 0, len(in.Threads)),
		Conversations: make([]domain.ConversationUnit, 0, len(in.Conversations)),
		Following:     b.users(in.Following),
		Followers:     b.users(in.Followers),
		Likes:         copyLikes(in.Likes),
	}
	if in.Owner.Handle != "" {
		model.Owner.Handle = in.Owner.Handle
		model.Owner.Provenance = domain.ProvenanceArchive
	}

	for _, thread := range in.Threads {
		unit := domain.ThreadUnit{
			RootID: thread.RootID,
			Tweets: make([]domain.ResolvedTweet, 0, len(thread.Tweets)),
		}
		for _, t := range thread.Tweets {
			unit.Tweets = append(unit.Tweets, b.tweet(t))
		}
		model.Threads = append(model.Threads, unit)
	}

	for _, conv := range in.Conversations {
		model.Conversations = append(model.Conversations, b.conversation(conv))
	}

	return model, b.warnings
}

type builder struct {
	handles  map[domain.UserID]domain.HandleEntry
	warnings []string
}

// user resolves an id to a displayable user, falling back to the
// explicit placeholder so no consumer ever sees an empty handle.
func (b *builder) user(id domain.UserID) domain.ResolvedUser {
	if entry, ok := b.handles[id]; ok && entry.Known() {
		return domain.ResolvedUser{ID: id, Handle: entry.Handle, Provenance: entry.Provenance}
	}
	return domain.ResolvedUser{
		ID:         id,
		Handle:     fmt.Sprintf("unknown user %s", id),
		Provenance: domain.ProvenanceUnresolved,
	}
}

func (b *builder) users(ids []domain.UserID) []domain.ResolvedUser {
	if len(ids) == 0 {
		return nil
	}
	sorted := make([]domain.UserID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	users := make([]domain.ResolvedUser, 0, len(sorted))
	for _, id := range sorted {
		users = append(users, b.user(id))
	}
	return users
}

func (b *builder) tweet(t domain.Tweet) domain.ResolvedTweet {
	text, links, warnings := resolve.ExpandText(t.Text, t.Entities)
	for _, w := range warnings {
		b.warnings = append(b.warnings, fmt.Sprintf("tweet %s: %s", t.ID, w))
	}

	resolved := domain.ResolvedTweet{
		ID:           t.ID,
		Author:       b.user(t.AuthorID),
		CreatedAt:    t.CreatedAt,
		Text:         text,
		Links:        links,
		Media:        b.media(t.Media),
		ReplyToTweet: t.ReplyToTweet,
	}
	if t.ReplyToUser != "" {
		u := b.user(t.ReplyToUser)
		resolved.ReplyToUser = &u
	}
	return resolved
}

func (b *builder) media(items []domain.MediaItem) []domain.ResolvedMedia {
	if len(items) == 0 {
		return nil
	}
	media := make([]domain.ResolvedMedia, 0, len(items))
	for _, m := range items {
		media = append(media, domain.ResolvedMedia{
			Key:        m.Key,
			Kind:       m.Kind,
			LocalPath:  m.LocalPath,
			Missing:    m.Missing,
			SourceURL:  m.SourceURL,
			UpgradeURL: m.UpgradeURL,
		})
	}
	return media
}

func (b *builder) conversation(conv domain.DMConversation) domain.ConversationUnit {
	unit := domain.ConversationUnit{
		ID:           conv.ID,
		Participants: b.users(conv.Participants),
		Group:        conv.Group,
		Messages:     make([]domain.ResolvedDMMessage, 0, len(conv.Messages)),
	}

	for _, m := range conv.Messages {
		text, links, warnings := resolve.ExpandText(m.Text, m.Entities)
		for _, w := range warnings {
			b.warnings = append(b.warnings, fmt.Sprintf("message %s: %s", m.ID, w))
		}

		resolved := domain.ResolvedDMMessage{
			ID:        m.ID,
			Kind:      m.Kind,
			CreatedAt: m.CreatedAt,
			Text:      text,
			Links:     links,
			Media:     b.media(m.Media),
			Affected:  b.users(m.Affected),
		}
		if m.SenderID != "" {
			resolved.Sender = b.user(m.SenderID)
		}
		unit.Messages = append(unit.Messages, resolved)
	}
	return unit
}

func copyLikes(likes []domain.LikeUnit) []domain.LikeUnit {
	if len(likes) == 0 {
		return nil
	}
	out := make([]domain.LikeUnit, len(likes))
	copy(out, likes)
	return out
}
