// Package community owns the shared volunteer project catalog: generation,
// per-user membership, location search and environment-aware ranking.
package community

import (
	"cmp"
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"climateguard/models"
)

const (
	SyncInterval          = 5 * time.Minute
	DefaultSearchRadiusKm = 50.0
	DefaultMaxDistanceKm  = 25.0
	MaxRecommended        = 10
)

var (
	ErrProjectNotFound = errors.New("community: project not found")
	ErrProjectFull     = errors.New("community: project is full")
	ErrAlreadyJoined   = errors.New("community: already joined this project")
	ErrNotJoined       = errors.New("community: not joined to this project")
)

// Remote lists projects persisted outside the process.
type Remote interface {
	ActiveProjects(ctx context.Context) ([]models.CommunityProject, error)
}

// Catalog is safe for concurrent use. Participant counts live here; the
// remote side only contributes projects the catalog has not seen yet.
type Catalog struct {
	log      logrus.FieldLogger
	remote   Remote
	now      func() time.Time
	rng      Rand
	poolSize int
	interval time.Duration

	mu        sync.Mutex
	projects  []models.CommunityProject
	generated bool
	joined    map[string]map[string]struct{}
	lastSync  time.Time
}

type Option func(*Catalog)

func WithRemote(r Remote) Option              { return func(c *Catalog) { c.remote = r } }
func WithClock(now func() time.Time) Option   { return func(c *Catalog) { c.now = now } }
func WithRand(r Rand) Option                  { return func(c *Catalog) { c.rng = r } }
func WithPoolSize(n int) Option               { return func(c *Catalog) { c.poolSize = n } }
func WithSyncInterval(d time.Duration) Option { return func(c *Catalog) { c.interval = d } }
func WithProjects(p ...models.CommunityProject) Option {
	return func(c *Catalog) {
		c.projects = append(c.projects, p...)
		c.generated = true
	}
}

func NewCatalog(log logrus.FieldLogger, opts ...Option) *Catalog {
	c := &Catalog{
		log:      log,
		now:      time.Now,
		poolSize: DefaultPoolSize,
		interval: SyncInterval,
		joined:   make(map[string]map[string]struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	if c.rng == nil {
		seed := uint64(c.now().UnixNano())
		c.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return c
}

// Projects returns every project as seen by userID from origin: joined flag
// set, distance in miles, nearest first and then by date.
func (c *Catalog) Projects(ctx context.Context, userID string, origin models.Coordinates) ([]models.CommunityProject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.sync(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureGenerated(origin)

	out := c.viewLocked(userID, origin)
	slices.SortStableFunc(out, func(a, b models.CommunityProject) int {
		if d := cmp.Compare(a.Distance, b.Distance); d != 0 {
			return d
		}
		return cmp.Compare(a.Date, b.Date)
	})
	return out, nil
}

// Project returns one project as seen by userID.
func (c *Catalog) Project(userID, id string) (models.CommunityProject, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return models.CommunityProject{}, ErrProjectNotFound
	}
	p := c.projects[i]
	p.IsJoined = c.isJoinedLocked(userID, id)
	return p, nil
}

func (c *Catalog) Join(userID, projectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(projectID)
	if i < 0 {
		return ErrProjectNotFound
	}
	if c.isJoinedLocked(userID, projectID) {
		return ErrAlreadyJoined
	}
	if c.projects[i].Full() {
		return ErrProjectFull
	}
	c.projects[i].Participants++
	c.setJoinedLocked(userID, projectID, true)
	return nil
}

func (c *Catalog) Leave(userID, projectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(projectID)
	if i < 0 {
		return ErrProjectNotFound
	}
	if !c.isJoinedLocked(userID, projectID) {
		return ErrNotJoined
	}
	c.projects[i].Participants = max(0, c.projects[i].Participants-1)
	c.setJoinedLocked(userID, projectID, false)
	return nil
}

// BatchJoin joins each id in order and partitions the ids by outcome.
func (c *Catalog) BatchJoin(userID string, ids []string) (successful, failed []string) {
	for _, id := range ids {
		if err := c.Join(userID, id); err != nil {
			failed = append(failed, id)
			continue
		}
		successful = append(successful, id)
	}
	return successful, failed
}

// Restore replaces userID's joined set with ids loaded from persistence.
// Participant counts are left alone: persisted counts already include them.
func (c *Catalog) Restore(userID string, ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	c.joined[userID] = set
}

// Joined lists the project ids userID has joined, sorted.
func (c *Catalog) Joined(userID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.joined[userID]))
	for id := range c.joined[userID] {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Add creates a user project at the front of the catalog. The organizer is
// joined automatically and counts as its first participant.
func (c *Catalog) Add(in models.ProjectInput, organizerID, organizerName string, at models.Coordinates) models.CommunityProject {
	now := c.now()
	p := models.CommunityProject{
		ID:              uuid.NewString(),
		Title:           in.Title,
		Description:     orDefault(in.Description, "Join this community environmental initiative"),
		Type:            in.Type,
		Participants:    1,
		MaxParticipants: in.MaxParticipants,
		Date:            orDefault(in.Date, now.AddDate(0, 0, 7).Format("2006-01-02")),
		Time:            orDefault(in.Time, "10:00 AM"),
		Location:        orDefault(in.Location, "Local Community Center"),
		Coordinates:     at,
		Impact:          orDefault(in.ImpactGoal, "Environmental impact"),
		Organizer:       orDefault(organizerName, "You"),
		OrganizerID:     organizerID,
		Difficulty:      in.Difficulty,
		Duration:        orDefault(in.Duration, "2-3 hours"),
		Requirements:    in.Requirements,
		ImageURL:        ImageURL(in.Type),
		Status:          models.ProjectActive,
		CreatedAt:       now,
		IsJoined:        true,
	}
	if p.Type == "" {
		p.Type = models.ProjectTreePlanting
		p.ImageURL = ImageURL(p.Type)
	}
	if p.MaxParticipants <= 0 {
		p.MaxParticipants = 20
	}
	if p.Difficulty == "" {
		p.Difficulty = models.DifficultyModerate
	}
	if len(p.Requirements) == 0 {
		p.Requirements = slices.Clone(CommonRequirements)
	}
	if in.Coordinates != nil {
		p.Coordinates = *in.Coordinates
	}

	c.mu.Lock()
	stored := p
	stored.IsJoined = false
	c.projects = slices.Insert(c.projects, 0, stored)
	c.setJoinedLocked(organizerID, p.ID, true)
	c.mu.Unlock()
	return p
}

// Search returns projects within radiusKm of at that match f, nearest first.
func (c *Catalog) Search(ctx context.Context, userID string, at models.Coordinates, radiusKm float64, f models.ProjectFilters) ([]models.CommunityProject, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultSearchRadiusKm
	}
	all, err := c.Projects(ctx, userID, at)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, p := range all {
		if Haversine(at, p.Coordinates)*KmPerMile > radiusKm {
			continue
		}
		if Matches(p, f) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b models.CommunityProject) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return out, nil
}

// Recommended picks up to ten nearby projects matching prefs, favouring
// close projects with many free spots.
func (c *Catalog) Recommended(ctx context.Context, userID string, at models.Coordinates, prefs models.ProjectPreferences) ([]models.CommunityProject, error) {
	radius := prefs.MaxDistance
	if radius <= 0 {
		radius = DefaultMaxDistanceKm
	}
	nearby, err := c.Search(ctx, userID, at, radius, models.ProjectFilters{Difficulty: prefs.Difficulty})
	if err != nil {
		return nil, err
	}
	if len(prefs.PreferredTypes) > 0 {
		nearby = slices.DeleteFunc(nearby, func(p models.CommunityProject) bool {
			return !slices.Contains(prefs.PreferredTypes, p.Type)
		})
	}
	slices.SortStableFunc(nearby, func(a, b models.CommunityProject) int {
		return cmp.Compare(recommendScore(b), recommendScore(a))
	})
	if len(nearby) > MaxRecommended {
		nearby = nearby[:MaxRecommended]
	}
	return nearby, nil
}

func recommendScore(p models.CommunityProject) float64 {
	d := p.Distance
	if d == 0 {
		d = 1
	}
	return p.Availability() / d
}

// Stats summarises the catalog as seen from origin.
func (c *Catalog) Stats(ctx context.Context, origin models.Coordinates) (models.CommunityStats, error) {
	all, err := c.Projects(ctx, "", origin)
	if err != nil {
		return models.CommunityStats{}, err
	}
	return Summarize(all), nil
}

// Summarize derives community statistics from a project list.
func Summarize(projects []models.CommunityProject) models.CommunityStats {
	var participants, trees, treesPlanted, waste int
	for _, p := range projects {
		participants += p.Participants
		switch p.Type {
		case models.ProjectTreePlanting:
			trees++
			treesPlanted += p.Participants * 6
		case models.ProjectCleanup:
			waste += p.Participants * 35
		}
	}
	return models.CommunityStats{
		TotalProjects:    len(projects),
		ActiveVolunteers: int(float64(participants) * 0.75),
		CarbonSaved:      int(float64(trees) * 2.5 * 150),
		TreesPlanted:     treesPlanted,
		WasteCollected:   waste,
	}
}

// Matches applies the non-spatial filters.
func Matches(p models.CommunityProject, f models.ProjectFilters) bool {
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Difficulty != "" && p.Difficulty != f.Difficulty {
		return false
	}
	if f.MaxParticipants > 0 && p.MaxParticipants > f.MaxParticipants {
		return false
	}
	if f.AvailableOnly && p.Full() {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Location), q)
	}
	return true
}

// sync merges remote projects at most once per interval. The remote call
// runs outside the lock; a failure keeps the local catalog serving.
func (c *Catalog) sync(ctx context.Context) {
	if c.remote == nil {
		return
	}
	c.mu.Lock()
	now := c.now()
	if !c.lastSync.IsZero() && now.Sub(c.lastSync) < c.interval {
		c.mu.Unlock()
		return
	}
	c.lastSync = now
	c.mu.Unlock()

	remote, err := c.remote.ActiveProjects(ctx)
	if err != nil {
		c.log.WithError(err).Warn("project sync failed, serving local catalog")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	added := 0
	for _, p := range remote {
		if c.indexLocked(p.ID) >= 0 {
			continue
		}
		p.IsJoined, p.Distance = false, 0
		if p.ImageURL == "" {
			p.ImageURL = ImageURL(p.Type)
		}
		c.projects = append(c.projects, p)
		added++
	}
	c.log.WithFields(logrus.Fields{"remote": len(remote), "added": added}).Debug("projects synced")
}

func (c *Catalog) ensureGenerated(origin models.Coordinates) {
	if c.generated {
		return
	}
	c.projects = append(c.projects, Generate(origin, c.now(), c.rng, c.poolSize)...)
	c.generated = true
	c.log.WithField("count", c.poolSize).Info("generated community projects")
}

func (c *Catalog) viewLocked(userID string, origin models.Coordinates) []models.CommunityProject {
	out := make([]models.CommunityProject, len(c.projects))
	for i, p := range c.projects {
		p.Requirements = slices.Clone(p.Requirements)
		p.IsJoined = c.isJoinedLocked(userID, p.ID)
		p.Distance = round1(Haversine(origin, p.Coordinates))
		out[i] = p
	}
	return out
}

func (c *Catalog) indexLocked(id string) int {
	return slices.IndexFunc(c.projects, func(p models.CommunityProject) bool { return p.ID == id })
}

func (c *Catalog) isJoinedLocked(userID, projectID string) bool {
	_, ok := c.joined[userID][projectID]
	return ok
}

func (c *Catalog) setJoinedLocked(userID, projectID string, on bool) {
	set := c.joined[userID]
	if set == nil {
		set = make(map[string]struct{})
		c.joined[userID] = set
	}
	if on {
		set[projectID] = struct{}{}
	} else {
		delete(set, projectID)
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
