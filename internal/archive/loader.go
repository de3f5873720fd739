package archive

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/calehart/unspool/internal/domain"
)

// tweetTimeLayout is the created_at format used by tweet records.
// Example: Tue Mar 19 14:05:17 +0000 2019
const tweetTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

// Result holds everything the loader extracted from the archive.
type Result struct {
	Owner         domain.User
	Tweets        []domain.Tweet
	Conversations []domain.DMConversation
	Following     []domain.UserID
	Followers     []domain.UserID
	Likes         []domain.LikeUnit

	// Handles maps user ids to handles embedded in the archive itself
	// (reply metadata, mentions, the owner account).
	Handles map[domain.UserID]string

	// MediaDirs lists the archive folders that hold media files, in
	// probe order.
	MediaDirs []string

	Skipped  int
	Warnings []string
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) skip(op, record string, reason error) {
	r.Skipped++
	r.warnf("%s", domain.NewRecordError(op, record, reason).Error())
}

// layout names the concrete files of one detected archive variant.
type layout struct {
	tweetFiles    []string
	tweetMediaDir string
	dmFiles       []string
	dmMediaDirs   []string
	accountFile   string
	followingFile string
	followerFile  string
	likeFile      string
}

// Loader reads one archive directory.
type Loader struct {
	root   string
	logger *slog.Logger
}

// NewLoader creates a loader for the archive rooted at root.
func NewLoader(root string, logger *slog.Logger) *Loader {
	return &Loader{root: root, logger: logger}
}

// detectLayout probes the known archive layout variants. File and folder
// names changed across export versions: tweet.js vs tweets.js vs
// tweets-part*.js, tweet_media vs tweets_media. Absence of any tweet
// file, or of account.js, means the layout is unrecognized.
func detectLayout(root string) (*layout, error) {
	dataDir := filepath.Join(root, "data")
	if fi, err := os.Stat(dataDir); err != nil || !fi.IsDir() {
		return nil, &domain.SchemaError{Missing: "data directory"}
	}

	lay := &layout{}

	for _, pattern := range []string{"tweet.js", "tweets.js", "tweets-part*.js"} {
		matches, _ := filepath.Glob(filepath.Join(dataDir, pattern))
		lay.tweetFiles = append(lay.tweetFiles, matches...)
	}
	if len(lay.tweetFiles) == 0 {
		return nil, &domain.SchemaError{Missing: "tweet.js (or tweets.js, tweets-part*.js)"}
	}

	accountFile := filepath.Join(dataDir, "account.js")
	if _, err := os.Stat(accountFile); err != nil {
		return nil, &domain.SchemaError{Missing: "account.js"}
	}
	lay.accountFile = accountFile

	for _, name := range []string{"tweet_media", "tweets_media"} {
		dir := filepath.Join(dataDir, name)
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			lay.tweetMediaDir = dir
			break
		}
	}

	for _, name := range []string{"direct-messages.js", "direct-messages-group.js"} {
		f := filepath.Join(dataDir, name)
		if _, err := os.Stat(f); err == nil {
			lay.dmFiles = append(lay.dmFiles, f)
		}
	}
	for _, name := range []string{"direct_messages_media", "direct_messages_group_media"} {
		dir := filepath.Join(dataDir, name)
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			lay.dmMediaDirs = append(lay.dmMediaDirs, dir)
		}
	}

	for name, dst := range map[string]*string{
		"following.js": &lay.followingFile,
		"follower.js":  &lay.followerFile,
		"like.js":      &lay.likeFile,
	} {
		f := filepath.Join(dataDir, name)
		if _, err := os.Stat(f); err == nil {
			*dst = f
		}
	}

	return lay, nil
}

// MediaDirs returns the media folders of the archive at root, in probe
// order, without loading any records.
func MediaDirs(root string) ([]string, error) {
	lay, err := detectLayout(root)
	if err != nil {
		return nil, err
	}
	dirs := append([]string{}, lay.dmMediaDirs...)
	if lay.tweetMediaDir != "" {
		dirs = append([]string{lay.tweetMediaDir}, dirs...)
	}
	return dirs, nil
}

// Load parses the archive. It fails only when the layout itself is
// unrecognized; individual malformed records are skipped and counted.
func (l *Loader) Load() (*Result, error) {
	lay, err := detectLayout(l.root)
	if err != nil {
		return nil, err
	}

	res := &Result{Handles: make(map[domain.UserID]string)}
	res.MediaDirs = append([]string{}, lay.dmMediaDirs...)
	if lay.tweetMediaDir != "" {
		res.MediaDirs = append([]string{lay.tweetMediaDir}, res.MediaDirs...)
	} else {
		res.warnf("no tweet media folder found under %s; all tweet media will be reported missing", l.root)
	}

	owner, err := l.loadAccount(lay.accountFile)
	if err != nil {
		return nil, err
	}
	res.Owner = owner
	if owner.Handle != "" {
		res.Handles[owner.ID] = owner.Handle
	}

	for _, f := range lay.tweetFiles {
		if err := l.loadTweets(f, res); err != nil {
			return nil, err
		}
	}

	for _, f := range lay.dmFiles {
		if err := l.loadDMs(f, res); err != nil {
			return nil, err
		}
	}

	if lay.followingFile != "" {
		res.Following = l.loadAccountIDs(lay.followingFile, "following", res)
	}
	if lay.followerFile != "" {
		res.Followers = l.loadAccountIDs(lay.followerFile, "follower", res)
	}
	if lay.likeFile != "" {
		res.Likes = l.loadLikes(lay.likeFile, res)
	}

	l.logger.Info("archive loaded",
		"tweets", len(res.Tweets),
		"conversations", len(res.Conversations),
		"following", len(res.Following),
		"followers", len(res.Followers),
		"likes", len(res.Likes),
		"skipped", res.Skipped,
	)

	return res, nil
}

// loadAccount extracts the archive owner from account.js.
func (l *Loader) loadAccount(file string) (domain.User, error) {
	data, err := readJSFile(file)
	if err != nil {
		return domain.User{}, err
	}

	var records []struct {
		Account struct {
			Username  string `json:"username"`
			AccountID string `json:"accountId"`
		} `json:"account"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return domain.User{}, fmt.Errorf("parse %s: %w", file, err)
	}
	if len(records) == 0 || records[0].Account.Username == "" {
		return domain.User{}, &domain.SchemaError{Missing: "account.username"}
	}

	acc := records[0].Account
	return domain.User{
		ID:     domain.UserID(acc.AccountID),
		Handle: acc.Username,
		Owner:  true,
	}, nil
}

// Raw tweet records. Newer exports wrap each tweet in {"tweet": {...}},
// older ones store it bare; both are accepted.

type rawIndices []string

// span decodes the ["start","end"] code point offsets of an entity.
func (ix rawIndices) span() (start, end int, ok bool) {
	if len(ix) != 2 {
		return 0, 0, false
	}
	start, err1 := strconv.Atoi(ix[0])
	end, err2 := strconv.Atoi(ix[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return start, end, true
}

type rawURLEntity struct {
	URL         string     `json:"url"`
	ExpandedURL string     `json:"expanded_url"`
	DisplayURL  string     `json:"display_url"`
	Indices     rawIndices `json:"indices"`
}

type rawMention struct {
	IDStr      string      `json:"id_str"`
	ID         json.Number `json:"id"`
	ScreenName string      `json:"screen_name"`
}

func (m rawMention) userID() string {
	if m.IDStr != "" {
		return m.IDStr
	}
	return m.ID.String()
}

type rawVariant struct {
	Bitrate string `json:"bitrate"`
	URL     string `json:"url"`
}

type rawMedia struct {
	IDStr     string `json:"id_str"`
	Type      string `json:"type"`
	MediaURL  string `json:"media_url_https"`
	MediaHTTP string `json:"media_url"`
	URL       string `json:"url"`
	VideoInfo *struct {
		Variants []rawVariant `json:"variants"`
	} `json:"video_info"`
}

type rawEntities struct {
	URLs         []rawURLEntity `json:"urls"`
	Media        []rawMedia     `json:"media"`
	UserMentions []rawMention   `json:"user_mentions"`
}

type rawTweet struct {
	IDStr               string       `json:"id_str"`
	CreatedAt           string       `json:"created_at"`
	FullText            string       `json:"full_text"`
	Entities            *rawEntities `json:"entities"`
	ExtendedEntities    *rawEntities `json:"extended_entities"`
	InReplyToStatusID   string       `json:"in_reply_to_status_id_str"`
	InReplyToUserIDStr  string       `json:"in_reply_to_user_id_str"`
	InReplyToUserID     json.Number  `json:"in_reply_to_user_id"`
	InReplyToScreenName string       `json:"in_reply_to_screen_name"`
}

func (t *rawTweet) replyUserID() string {
	if t.InReplyToUserIDStr != "" {
		return t.InReplyToUserIDStr
	}
	return t.InReplyToUserID.String()
}

// loadTweets parses one tweet file into res.
func (l *Loader) loadTweets(file string, res *Result) error {
	data, err := readJSFile(file)
	if err != nil {
		return err
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}

	for _, rec := range records {
		var wrapper struct {
			Tweet *rawTweet `json:"tweet"`
		}
		raw := &rawTweet{}
		if err := json.Unmarshal(rec, &wrapper); err == nil && wrapper.Tweet != nil {
			raw = wrapper.Tweet
		} else if err := json.Unmarshal(rec, raw); err != nil {
			res.skip("parse tweet", "", domain.ErrMalformedRecord)
			continue
		}

		tweet, ok := l.convertTweet(raw, res)
		if !ok {
			continue
		}
		res.Tweets = append(res.Tweets, tweet)
	}

	return nil
}

func (l *Loader) convertTweet(raw *rawTweet, res *Result) (domain.Tweet, bool) {
	if raw.IDStr == "" {
		res.skip("convert tweet", "", fmt.Errorf("%w: no id_str", domain.ErrMalformedRecord))
		return domain.Tweet{}, false
	}

	createdAt, err := time.Parse(tweetTimeLayout, raw.CreatedAt)
	if err != nil {
		// A few very old exports use RFC 3339 timestamps.
		createdAt, err = time.Parse(time.RFC3339, raw.CreatedAt)
	}
	if err != nil {
		res.skip("convert tweet", raw.IDStr, fmt.Errorf("%w: bad created_at %q", domain.ErrMalformedRecord, raw.CreatedAt))
		return domain.Tweet{}, false
	}

	tweet := domain.Tweet{
		ID:           domain.TweetID(raw.IDStr),
		AuthorID:     res.Owner.ID,
		CreatedAt:    createdAt.UTC(),
		Text:         raw.FullText,
		ReplyToTweet: domain.TweetID(raw.InReplyToStatusID),
	}

	if id := raw.replyUserID(); id != "" && !strings.HasPrefix(id, "-") {
		tweet.ReplyToUser = domain.UserID(id)
		if raw.InReplyToScreenName != "" {
			res.Handles[tweet.ReplyToUser] = raw.InReplyToScreenName
		}
	}

	var urls []rawURLEntity
	var media []rawMedia
	if raw.Entities != nil {
		urls = raw.Entities.URLs
		media = raw.Entities.Media
		for _, m := range raw.Entities.UserMentions {
			id := m.userID()
			if id == "" || strings.HasPrefix(id, "-") || m.ScreenName == "" {
				continue
			}
			res.Handles[domain.UserID(id)] = m.ScreenName
		}
	}
	if raw.ExtendedEntities != nil && len(raw.ExtendedEntities.Media) > 0 {
		media = raw.ExtendedEntities.Media
	}

	for _, u := range urls {
		start, end, ok := u.Indices.span()
		if !ok {
			res.warnf("tweet %s: url entity %q has unusable indices, span dropped", raw.IDStr, u.URL)
			start, end = -1, -1 // resolver skips out-of-bounds spans
		}
		tweet.Entities = append(tweet.Entities, domain.URLEntity{
			Start:       start,
			End:         end,
			URL:         u.URL,
			ExpandedURL: u.ExpandedURL,
			DisplayURL:  u.DisplayURL,
		})
	}

	// Pre-t.co tweets carry their links as plain words in the text with
	// no entity metadata at all. Synthesize entities for them so URL
	// expansion and rendering see a uniform shape.
	if len(tweet.Entities) == 0 && len(media) == 0 {
		tweet.Entities = synthesizeEntities(tweet.Text)
	}

	for _, m := range media {
		item, ok := convertMedia(raw.IDStr, m)
		if !ok {
			res.warnf("tweet %s: media entity without media_url, dropped", raw.IDStr)
			continue
		}
		tweet.Media = append(tweet.Media, item)
	}

	return tweet, true
}

// convertMedia maps a raw media entity onto a MediaItem. The archive
// stores media files as <tweet_id>-<remote basename>.
func convertMedia(ownerID string, m rawMedia) (domain.MediaItem, bool) {
	src := m.MediaURL
	if src == "" {
		src = m.MediaHTTP
	}
	if src == "" {
		return domain.MediaItem{}, false
	}

	base := path.Base(src)
	item := domain.MediaItem{
		Key:       m.IDStr,
		SourceURL: src,
		Filename:  ownerID + "-" + base,
	}
	if item.Key == "" {
		item.Key = ownerID + "-" + base
	}

	switch m.Type {
	case "video":
		item.Kind = domain.MediaKindVideo
	case "animated_gif":
		item.Kind = domain.MediaKindAnimated
	default:
		item.Kind = domain.MediaKindImage
	}

	// Videos record their playable variants inline; the best one is the
	// highest bitrate. A bitrate of 0 is valid.
	if m.VideoInfo != nil {
		bestBitrate := -1
		for _, v := range m.VideoInfo.Variants {
			if v.Bitrate == "" || v.URL == "" {
				continue
			}
			bitrate, err := strconv.Atoi(v.Bitrate)
			if err != nil {
				continue
			}
			if bitrate > bestBitrate {
				bestBitrate = bitrate
				item.UpgradeURL = v.URL
			}
		}
	}

	return item, true
}

// synthesizeEntities scans tweet text for bare links and builds URL
// entities for them, shortening the display text the way Twitter does.
// Offsets are code points, matching archive-native entities.
func synthesizeEntities(text string) []domain.URLEntity {
	var entities []domain.URLEntity
	offset := 0 // code point offset of the current word
	for _, field := range strings.SplitAfter(text, " ") {
		word := strings.TrimRight(field, " ")
		if word != "" && !strings.HasSuffix(word, "…") {
			if u, err := url.Parse(word); err == nil && u.Scheme != "" && u.Host != "" {
				entities = append(entities, domain.URLEntity{
					Start:       offset,
					End:         offset + utf8.RuneCountInString(word),
					URL:         word,
					ExpandedURL: word,
					DisplayURL:  shortDisplayURL(u),
				})
			}
		}
		offset += utf8.RuneCountInString(field)
	}
	return entities
}

// shortDisplayURL imitates Twitter's display form: strip a leading www.
// and truncate long paths.
func shortDisplayURL(u *url.URL) string {
	host := strings.TrimPrefix(u.Host, "www.")
	pathPart := u.Path
	if u.RawQuery != "" {
		pathPart += "?" + u.RawQuery
	}
	if len(pathPart) >= 15 {
		pathPart = pathPart[:15] + "…"
	}
	return host + pathPart
}

// Raw DM records.

type rawDMURL struct {
	URL      string `json:"url"`
	Expanded string `json:"expanded"`
	Display  string `json:"display"`
}

type rawMessageCreate struct {
	ID        string     `json:"id"`
	SenderID  string     `json:"senderId"`
	Text      string     `json:"text"`
	CreatedAt string     `json:"createdAt"`
	URLs      []rawDMURL `json:"urls"`
	MediaURLs []string   `json:"mediaUrls"`
}

type rawParticipantEvent struct {
	UserIDs          []string `json:"userIds"`
	InitiatingUserID string   `json:"initiatingUserId"`
	CreatedAt        string   `json:"createdAt"`
}

type rawDMEntry struct {
	MessageCreate     *rawMessageCreate    `json:"messageCreate"`
	ParticipantsJoin  *rawParticipantEvent `json:"participantsJoin"`
	ParticipantsLeave *rawParticipantEvent `json:"participantsLeave"`
}

// loadDMs parses one direct-message file into res.
func (l *Loader) loadDMs(file string, res *Result) error {
	data, err := readJSFile(file)
	if err != nil {
		return err
	}

	var records []struct {
		DMConversation *struct {
			ConversationID string       `json:"conversationId"`
			Messages       []rawDMEntry `json:"messages"`
		} `json:"dmConversation"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}

	for _, rec := range records {
		if rec.DMConversation == nil || rec.DMConversation.ConversationID == "" {
			res.skip("parse conversation", "", fmt.Errorf("%w: no dmConversation.conversationId", domain.ErrMalformedRecord))
			continue
		}

		conv := domain.DMConversation{
			ID: domain.ConversationID(rec.DMConversation.ConversationID),
		}
		participants := make(map[domain.UserID]struct{})

		// One-on-one conversation ids are "<user1>-<user2>".
		idParts := strings.Split(rec.DMConversation.ConversationID, "-")
		if len(idParts) == 2 {
			participants[domain.UserID(idParts[0])] = struct{}{}
			participants[domain.UserID(idParts[1])] = struct{}{}
		} else {
			conv.Group = true
		}

		for _, entry := range rec.DMConversation.Messages {
			msg, ok := l.convertDMEntry(conv.ID, entry, res)
			if !ok {
				continue
			}
			conv.Messages = append(conv.Messages, msg)
			if msg.SenderID != "" {
				participants[msg.SenderID] = struct{}{}
			}
			for _, id := range msg.Affected {
				participants[id] = struct{}{}
			}
		}

		for id := range participants {
			conv.Participants = append(conv.Participants, id)
		}
		if len(conv.Participants) > 2 {
			conv.Group = true
		}

		res.Conversations = append(res.Conversations, conv)
	}

	return nil
}

func (l *Loader) convertDMEntry(convID domain.ConversationID, entry rawDMEntry, res *Result) (domain.DMMessage, bool) {
	switch {
	case entry.MessageCreate != nil:
		return l.convertDMMessage(convID, entry.MessageCreate, res)
	case entry.ParticipantsJoin != nil:
		return convertParticipantEvent(domain.DMEventParticipantJoin, entry.ParticipantsJoin, convID, res)
	case entry.ParticipantsLeave != nil:
		return convertParticipantEvent(domain.DMEventParticipantLeave, entry.ParticipantsLeave, convID, res)
	default:
		// Other event kinds (reactions, joinConversation snapshots) are
		// not part of the message sequence.
		return domain.DMMessage{}, false
	}
}

func (l *Loader) convertDMMessage(convID domain.ConversationID, mc *rawMessageCreate, res *Result) (domain.DMMessage, bool) {
	if mc.ID == "" || mc.SenderID == "" || mc.CreatedAt == "" {
		res.skip("convert message", string(convID), domain.ErrMalformedRecord)
		return domain.DMMessage{}, false
	}
	createdAt, err := time.Parse(time.RFC3339, mc.CreatedAt)
	if err != nil {
		res.skip("convert message", mc.ID, fmt.Errorf("%w: bad createdAt %q", domain.ErrMalformedRecord, mc.CreatedAt))
		return domain.DMMessage{}, false
	}

	msg := domain.DMMessage{
		ID:        mc.ID,
		Kind:      domain.DMEventMessage,
		SenderID:  domain.UserID(mc.SenderID),
		CreatedAt: createdAt.UTC(),
		Text:      mc.Text,
	}

	msg.Entities = dmEntities(mc.Text, mc.URLs)

	for _, mediaURL := range mc.MediaURLs {
		base := path.Base(mediaURL)
		if base == "" || base == "." || base == "/" {
			continue
		}
		kind := domain.MediaKindImage
		switch strings.ToLower(path.Ext(base)) {
		case ".mp4", ".mpg", ".mov":
			kind = domain.MediaKindVideo
		case ".gif":
			kind = domain.MediaKindAnimated
		}
		msg.Media = append(msg.Media, domain.MediaItem{
			Key:       mc.ID + "-" + base,
			Kind:      kind,
			SourceURL: mediaURL,
			Filename:  mc.ID + "-" + base,
		})
	}

	return msg, true
}

func convertParticipantEvent(kind domain.DMEventKind, ev *rawParticipantEvent, convID domain.ConversationID, res *Result) (domain.DMMessage, bool) {
	if ev.CreatedAt == "" || len(ev.UserIDs) == 0 {
		res.skip("convert participant event", string(convID), domain.ErrMalformedRecord)
		return domain.DMMessage{}, false
	}
	createdAt, err := time.Parse(time.RFC3339, ev.CreatedAt)
	if err != nil {
		res.skip("convert participant event", string(convID), fmt.Errorf("%w: bad createdAt %q", domain.ErrMalformedRecord, ev.CreatedAt))
		return domain.DMMessage{}, false
	}

	msg := domain.DMMessage{
		ID:        string(kind) + "-" + ev.CreatedAt,
		Kind:      kind,
		SenderID:  domain.UserID(ev.InitiatingUserID),
		CreatedAt: createdAt.UTC(),
	}
	for _, id := range ev.UserIDs {
		msg.Affected = append(msg.Affected, domain.UserID(id))
	}
	return msg, true
}

// dmEntities builds offset spans for DM url entities. Unlike tweets, DM
// records carry no indices, so spans are recovered by scanning the text
// left to right; repeated tokens map to successive occurrences.
func dmEntities(text string, urls []rawDMURL) []domain.URLEntity {
	if len(urls) == 0 {
		return nil
	}

	runes := []rune(text)
	searchFrom := 0
	var entities []domain.URLEntity
	for _, u := range urls {
		if u.URL == "" || u.Expanded == "" {
			continue
		}
		start := indexRunes(runes, []rune(u.URL), searchFrom)
		if start < 0 {
			// Token not present in the text; without an offset the span
			// cannot be applied.
			continue
		}
		end := start + len([]rune(u.URL))
		entities = append(entities, domain.URLEntity{
			Start:       start,
			End:         end,
			URL:         u.URL,
			ExpandedURL: u.Expanded,
			DisplayURL:  u.Display,
		})
		searchFrom = end
	}
	return entities
}

// indexRunes finds needle in haystack at or after from, in code points.
func indexRunes(haystack, needle []rune, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// loadAccountIDs reads a following.js or follower.js style file, where
// each record nests an accountId under a key named after the list.
func (l *Loader) loadAccountIDs(file, key string, res *Result) []domain.UserID {
	data, err := readJSFile(file)
	if err != nil {
		res.warnf("read %s list: %v", key, err)
		return nil
	}

	var records []map[string]struct {
		AccountID string `json:"accountId"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		res.warnf("parse %s list: %v", key, err)
		return nil
	}

	var ids []domain.UserID
	for _, rec := range records {
		entry, ok := rec[key]
		if !ok || entry.AccountID == "" {
			res.skip("parse "+key, "", domain.ErrMalformedRecord)
			continue
		}
		ids = append(ids, domain.UserID(entry.AccountID))
	}
	return ids
}

// loadLikes reads like.js. Likes are best-effort: the archive often
// truncates their text.
func (l *Loader) loadLikes(file string, res *Result) []domain.LikeUnit {
	data, err := readJSFile(file)
	if err != nil {
		res.warnf("read likes: %v", err)
		return nil
	}

	var records []struct {
		Like struct {
			TweetID     string `json:"tweetId"`
			FullText    string `json:"fullText"`
			ExpandedURL string `json:"expandedUrl"`
		} `json:"like"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		res.warnf("parse likes: %v", err)
		return nil
	}

	var likes []domain.LikeUnit
	for _, rec := range records {
		if rec.Like.TweetID == "" {
			res.skip("parse like", "", domain.ErrMalformedRecord)
			continue
		}
		likes = append(likes, domain.LikeUnit{
			TweetID: domain.TweetID(rec.Like.TweetID),
			Text:    rec.Like.FullText,
			URL:     rec.Like.ExpandedURL,
		})
	}
	return likes
}
