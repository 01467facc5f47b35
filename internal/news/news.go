// Package news serves climate news: a seeded set of local stories plus items
// ingested from RSS and Atom feeds.
package news

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	"climateguard/internal/metrics"
	"climateguard/models"
)

// MaxItems bounds the store; the oldest items are dropped first.
const MaxItems = 200

// Filter narrows List. Zero values mean "any"; Limit 0 means no limit.
type Filter struct {
	Category string
	Severity models.NewsSeverity
	Location string
	Limit    int
}

type Service struct {
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	parser  *gofeed.Parser
	now     func() time.Time

	mu    sync.RWMutex
	items []models.ClimateNews
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithParser(p *gofeed.Parser) Option    { return func(s *Service) { s.parser = p } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func NewService(log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.parser == nil {
		s.parser = gofeed.NewParser()
	}
	s.items = seed(s.now())
	return s
}

// List returns matching items, newest first.
func (s *Service) List(f Filter) []models.ClimateNews {
	s.mu.RLock()
	out := make([]models.ClimateNews, 0, len(s.items))
	loc := strings.ToLower(f.Location)
	for _, n := range s.items {
		if f.Category != "" && n.Category != f.Category {
			continue
		}
		if f.Severity != "" && n.Severity != f.Severity {
			continue
		}
		if loc != "" && !strings.Contains(strings.ToLower(n.Location), loc) {
			continue
		}
		out = append(out, n)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.ClimateNews) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func (s *Service) ByCategory(category string) []models.ClimateNews {
	return s.List(Filter{Category: category, Limit: 10})
}

// Urgent returns the five newest warnings.
func (s *Service) Urgent() []models.ClimateNews {
	return s.List(Filter{Severity: models.NewsWarning, Limit: 5})
}

func (s *Service) Local(location string) []models.ClimateNews {
	return s.List(Filter{Location: location, Limit: 8})
}

func (s *Service) add(items []models.ClimateNews) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, n := range items {
		dup := slices.ContainsFunc(s.items, func(e models.ClimateNews) bool {
			return e.ID == n.ID || (n.URL != "" && e.URL == n.URL)
		})
		if dup {
			continue
		}
		s.items = append(s.items, n)
		added++
	}
	if len(s.items) > MaxItems {
		slices.SortStableFunc(s.items, func(a, b models.ClimateNews) int {
			return b.PublishedAt.Compare(a.PublishedAt)
		})
		s.items = s.items[:MaxItems]
	}
	return added
}

var categories = []struct{ id, label string }{
	{"local_action", "Local Action"},
	{"weather_alert", "Weather Alerts"},
	{"renewable_energy", "Renewable Energy"},
	{"research", "Research & Studies"},
	{"safety_alert", "Safety Alerts"},
	{"clean_transport", "Clean Transportation"},
	{"energy_efficiency", "Energy Efficiency"},
}

func Categories() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.id
	}
	return out
}

// CategoryDisplayName returns the label for a category, or the id itself.
func CategoryDisplayName(category string) string {
	for _, c := range categories {
		if c.id == category {
			return c.label
		}
	}
	return category
}

func SeverityColor(s models.NewsSeverity) string {
	switch s {
	case models.NewsCritical:
		return "#ef4444"
	case models.NewsWarning:
		return "#f59e0b"
	default:
		return "#3b82f6"
	}
}

func SeverityIcon(s models.NewsSeverity) string {
	switch s {
	case models.NewsCritical:
		return "🚨"
	case models.NewsWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}
