// Package assemble orders the loaded archive records into presentable
// units: reply chains of the owner's tweets and totally ordered DM
// conversations.
package assemble

import (
	"fmt"
	"sort"

	"github.com/calehart/unspool/internal/domain"
)

// Thread is one reply chain of owner tweets, root first, the rest in
// chronological order.
type Thread struct {
	RootID domain.TweetID
	Tweets []domain.Tweet
}

// compareNumericIDs orders decimal id strings numerically: shorter
// strings are smaller, equal lengths compare lexicographically.
func compareNumericIDs(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Threads groups tweets into reply chains. A tweet whose parent is not
// in the set starts its own thread, so replies to other accounts (or to
// deleted tweets) become threads of length one plus any replies the
// owner made to them. Reply cycles, which a corrupted archive can
// contain, are broken at the lowest-id tweet with a warning.
func Threads(tweets []domain.Tweet) ([]Thread, []string) {
	byID := make(map[domain.TweetID]domain.Tweet, len(tweets))
	for _, t := range tweets {
		byID[t.ID] = t
	}

	children := make(map[domain.TweetID][]domain.TweetID)
	var roots []domain.TweetID
	for _, t := range tweets {
		if t.IsReply() {
			if _, ok := byID[t.ReplyToTweet]; ok {
				children[t.ReplyToTweet] = append(children[t.ReplyToTweet], t.ID)
				continue
			}
		}
		roots = append(roots, t.ID)
	}

	var warnings []string
	visited := make(map[domain.TweetID]bool, len(tweets))

	var threads []Thread
	build := func(root domain.TweetID) {
		var collected []domain.Tweet
		stack := []domain.TweetID{root}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[id] {
				continue
			}
			visited[id] = true
			collected = append(collected, byID[id])
			stack = append(stack, children[id]...)
		}

		// Root stays first; everything under it reads in time order.
		rest := collected[1:]
		sort.Slice(rest, func(i, j int) bool {
			if !rest[i].CreatedAt.Equal(rest[j].CreatedAt) {
				return rest[i].CreatedAt.Before(rest[j].CreatedAt)
			}
			return compareNumericIDs(rest[i].ID.String(), rest[j].ID.String()) < 0
		})

		threads = append(threads, Thread{RootID: root, Tweets: collected})
	}

	sort.Slice(roots, func(i, j int) bool {
		return compareNumericIDs(roots[i].String(), roots[j].String()) < 0
	})
	for _, root := range roots {
		build(root)
	}

	// Tweets still unvisited sit on reply cycles with no natural root.
	var orphaned []domain.TweetID
	for _, t := range tweets {
		if !visited[t.ID] {
			orphaned = append(orphaned, t.ID)
		}
	}
	sort.Slice(orphaned, func(i, j int) bool {
		return compareNumericIDs(orphaned[i].String(), orphaned[j].String()) < 0
	})
	for _, id := range orphaned {
		if visited[id] {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("reply cycle broken at tweet %s", id))
		build(id)
	}

	sort.Slice(threads, func(i, j int) bool {
		ti, tj := threads[i].Tweets[0], threads[j].Tweets[0]
		if !ti.CreatedAt.Equal(tj.CreatedAt) {
			return ti.CreatedAt.Before(tj.CreatedAt)
		}
		return compareNumericIDs(ti.ID.String(), tj.ID.String()) < 0
	})

	return threads, warnings
}
