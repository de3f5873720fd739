package assemble

import (
	"sort"

	"github.com/calehart/unspool/internal/domain"
)

// Conversations orders raw DM conversations for presentation: messages
// in total order by (timestamp, id) with participant events interleaved
// where they happened, participants deduplicated and id-sorted, and the
// conversations themselves sorted by id. The input is not modified.
func Conversations(convs []domain.DMConversation) []domain.DMConversation {
	out := make([]domain.DMConversation, 0, len(convs))
	for _, conv := range convs {
		out = append(out, orderConversation(conv))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func orderConversation(conv domain.DMConversation) domain.DMConversation {
	messages := make([]domain.DMMessage, len(conv.Messages))
	copy(messages, conv.Messages)
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return compareNumericIDs(messages[i].ID, messages[j].ID) < 0
	})

	// Everyone who ever appears is a participant, including users only
	// seen in join/leave events.
	seen := make(map[domain.UserID]bool)
	var participants []domain.UserID
	add := func(id domain.UserID) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		participants = append(participants, id)
	}
	for _, id := range conv.Participants {
		add(id)
	}
	for _, m := range messages {
		add(m.SenderID)
		for _, id := range m.Affected {
			add(id)
		}
	}
	sort.Slice(participants, func(i, j int) bool {
		return compareNumericIDs(participants[i].String(), participants[j].String()) < 0
	})

	return domain.DMConversation{
		ID:           conv.ID,
		Participants: participants,
		Messages:     messages,
		Group:        conv.Group,
	}
}
