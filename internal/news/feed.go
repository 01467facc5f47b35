package news

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"climateguard/models"
)

// DefaultFeedCategory is used for feeds configured without a category.
const DefaultFeedCategory = "research"

// Feed is one configured RSS or Atom source.
type Feed struct {
	URL      string
	Category string
}

// ParseFeeds reads a comma separated list of "url" or "category=url" entries.
func ParseFeeds(list string) []Feed {
	var out []Feed
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f := Feed{URL: part, Category: DefaultFeedCategory}
		if cat, url, ok := strings.Cut(part, "="); ok && !strings.Contains(cat, "/") {
			f = Feed{URL: strings.TrimSpace(url), Category: strings.TrimSpace(cat)}
		}
		out = append(out, f)
	}
	return out
}

// Ingest fetches one feed and merges items not seen before (by id or link).
// It returns how many were added.
func (s *Service) Ingest(ctx context.Context, f Feed) (int, error) {
	feed, err := s.parser.ParseURLWithContext(f.URL, ctx)
	if err != nil {
		return 0, fmt.Errorf("parse feed %s: %w", f.URL, err)
	}

	now := s.now()
	items := make([]models.ClimateNews, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil || strings.TrimSpace(it.Title) == "" {
			continue
		}
		items = append(items, fromItem(feed, it, f.Category, now))
	}

	added := s.add(items)
	s.metrics.ObserveFeedItems(f.URL, added)
	s.log.WithField("feed", f.URL).WithField("added", added).Info("news feed ingested")
	return added, nil
}

// IngestAll ingests every feed, logging failures and carrying on.
func (s *Service) IngestAll(ctx context.Context, feeds []Feed) int {
	total := 0
	for _, f := range feeds {
		n, err := s.Ingest(ctx, f)
		if err != nil {
			s.log.WithError(err).Warn("news feed ingest failed")
			continue
		}
		total += n
	}
	return total
}

func fromItem(feed *gofeed.Feed, it *gofeed.Item, category string, now time.Time) models.ClimateNews {
	published := now
	switch {
	case it.PublishedParsed != nil:
		published = *it.PublishedParsed
	case it.UpdatedParsed != nil:
		published = *it.UpdatedParsed
	}

	key := it.GUID
	if key == "" {
		key = it.Link
	}
	if key == "" {
		key = it.Title
	}
	sum := sha1.Sum([]byte(key))

	content := it.Description
	if content == "" {
		content = it.Content
	}
	source := feed.Title
	if it.Author != nil && it.Author.Name != "" && source == "" {
		source = it.Author.Name
	}

	return models.ClimateNews{
		ID:          "feed_" + hex.EncodeToString(sum[:8]),
		Title:       strings.TrimSpace(it.Title),
		Content:     strings.TrimSpace(content),
		Source:      source,
		URL:         it.Link,
		Category:    category,
		Severity:    severityOf(it.Title + " " + content),
		PublishedAt: published,
		CreatedAt:   now,
	}
}

// severityOf grades a story by the alert vocabulary in its text.
func severityOf(text string) models.NewsSeverity {
	t := strings.ToLower(text)
	for _, w := range []string{"evacuat", "emergency", "red flag"} {
		if strings.Contains(t, w) {
			return models.NewsCritical
		}
	}
	for _, w := range []string{"warning", "advisory", "watch"} {
		if strings.Contains(t, w) {
			return models.NewsWarning
		}
	}
	return models.NewsInfo
}
