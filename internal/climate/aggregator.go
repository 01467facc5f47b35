// Package climate aggregates one user's climate state: environment reading,
// alerts, nearby projects, profile, actions, emergency kit and monthly goals.
package climate

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"climateguard/internal/achievement"
	"climateguard/internal/assistant"
	"climateguard/internal/community"
	"climateguard/internal/metrics"
	"climateguard/internal/store"
	"climateguard/models"
)

const (
	ErrMsgEnvironment = "Unable to load current environmental conditions. Using cached data."
	ErrMsgLoad        = "Failed to load user data. Using demo mode."
	ErrMsgInitialize  = "Failed to initialize user profile. Please try again."

	WelcomeAchievement = "Welcome to ClimateGuard!"
	joinHours          = 3

	// MaxChatMessages bounds the assistant history kept per user.
	MaxChatMessages = 50
)

var (
	ErrNoProfile = errors.New("climate: no profile for user")
	ErrBusy      = errors.New("climate: initialization already in progress")
)

type Phase string

const (
	PhaseChecking     Phase = "checking-onboarding"
	PhaseOnboarded    Phase = "onboarded"
	PhaseNotOnboarded Phase = "not-onboarded"
)

// Locator resolves and forgets the user's location.
type Locator interface {
	CurrentLocation(ctx context.Context) (models.Location, error)
	Invalidate()
}

// Environment produces readings for the user's location.
type Environment interface {
	Fetch(ctx context.Context) (models.EnvironmentalReading, error)
	History(ctx context.Context, days int) ([]models.HistoricalPoint, error)
	Invalidate(ctx context.Context)
}

// FixReporter accepts a device position reported by the client.
type FixReporter interface {
	Report(lat, lon float64) error
}

// ClientIPSetter records the address the user's requests come from. SetIP
// reports whether the stored address changed.
type ClientIPSetter interface {
	SetIP(ip string) bool
}

// Deps are shared by every aggregator of the process.
type Deps struct {
	Store   store.Backend
	Catalog *community.Catalog
	Log     logrus.FieldLogger
	Metrics *metrics.Metrics
	Now     func() time.Time
	// MinRefresh defaults to MinRefreshInterval.
	MinRefresh time.Duration
}

// Sources are owned by a single user.
type Sources struct {
	Location    Locator
	Environment Environment
	Fix         FixReporter
	ClientIP    ClientIPSetter
}

// State is a point-in-time copy of the aggregated state.
type State struct {
	Environment    *models.EnvironmentalReading `json:"environment"`
	Projects       []models.CommunityProject    `json:"projects"`
	Stats          *models.CommunityStats       `json:"stats"`
	Alerts         []models.Alert               `json:"alerts"`
	Profile        *models.UserProfile          `json:"profile"`
	Actions        []models.UserAction          `json:"actions"`
	Kit            []models.EmergencyKitItem    `json:"kit"`
	Goals          []models.MonthlyGoal         `json:"goals"`
	JoinedProjects []string                     `json:"joinedProjects"`
	Phase          Phase                        `json:"phase"`
	Onboarded      bool                         `json:"isOnboarded"`
	Loading        bool                         `json:"loading"`
	Error          string                       `json:"error,omitempty"`
}

// Aggregator is safe for concurrent use. Network and storage calls run
// outside the state lock.
type Aggregator struct {
	userID   string
	store    store.Backend
	catalog  *community.Catalog
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	now      func() time.Time
	src      Sources
	throttle *Throttle
	initing  atomic.Bool

	// crediting serializes read-modify-write updates of profile counters.
	crediting sync.Mutex

	mu    sync.RWMutex
	state State
	chat  []assistant.Message
}

func New(userID string, d Deps, src Sources) *Aggregator {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MinRefresh <= 0 {
		d.MinRefresh = MinRefreshInterval
	}
	return &Aggregator{
		userID:   userID,
		store:    d.Store,
		catalog:  d.Catalog,
		log:      d.Log.WithField("user_id", userID),
		metrics:  d.Metrics,
		now:      d.Now,
		src:      src,
		throttle: NewThrottle(d.MinRefresh, d.Now),
		state:    State{Phase: PhaseChecking},
	}
}

func (a *Aggregator) UserID() string { return a.userID }

// Load restores a returning user. It reports ErrNoProfile when the user has
// never onboarded.
func (a *Aggregator) Load(ctx context.Context) error {
	a.update(func(s *State) { s.Phase, s.Loading = PhaseChecking, true })
	defer a.update(func(s *State) { s.Loading = false })

	p, err := a.store.Profile(ctx, a.userID)
	if err != nil {
		a.update(func(s *State) {
			s.Phase, s.Onboarded = PhaseNotOnboarded, false
			if !errors.Is(err, store.ErrNotFound) {
				s.Error = ErrMsgLoad
			}
		})
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoProfile
		}
		a.log.WithError(err).Error("loading profile failed")
		return err
	}

	a.update(func(s *State) {
		s.Profile = &p
		s.Phase, s.Onboarded = PhaseOnboarded, true
	})
	a.loadUserData(ctx, p)

	joined, err := a.store.Memberships(ctx, a.userID)
	if err != nil {
		a.log.WithError(err).Warn("loading memberships failed")
	}
	a.catalog.Restore(a.userID, joined)
	a.update(func(s *State) { s.JoinedProjects = a.catalog.Joined(a.userID) })

	a.Refresh(ctx)
	return nil
}

// InitializeUser onboards the user under name. Concurrent calls get ErrBusy.
func (a *Aggregator) InitializeUser(ctx context.Context, name string) (models.UserProfile, error) {
	if !a.initing.CompareAndSwap(false, true) {
		return models.UserProfile{}, ErrBusy
	}
	defer a.initing.Store(false)

	a.update(func(s *State) { s.Loading, s.Error = true, "" })
	defer a.update(func(s *State) { s.Loading = false })

	where := "Unknown Location"
	if loc, err := a.src.Location.CurrentLocation(ctx); err == nil && loc.Address != "" {
		where = loc.Address
	}

	now := a.now()
	p, err := a.store.CreateProfile(ctx, models.UserProfile{
		ID:                   a.userID,
		Name:                 name,
		Location:             where,
		JoinDate:             now.Format("2006-01-02"),
		Level:                1,
		Achievements:         []string{WelcomeAchievement},
		NotificationsEnabled: true,
		LocationSharing:      true,
		OnboardingCompleted:  true,
		CreatedAt:            now,
		UpdatedAt:            now,
	})
	if err != nil {
		a.update(func(s *State) { s.Error = ErrMsgInitialize })
		a.log.WithError(err).Error("creating profile failed")
		return models.UserProfile{}, err
	}

	a.update(func(s *State) { s.Profile = &p })
	a.loadUserData(ctx, p)
	a.Refresh(ctx)
	a.update(func(s *State) { s.Phase, s.Onboarded = PhaseOnboarded, true })
	a.log.WithField("location", where).Info("user onboarded")
	return p, nil
}

// loadUserData reads actions, kit and goals, seeding kit and goals when the
// user has none.
func (a *Aggregator) loadUserData(ctx context.Context, p models.UserProfile) {
	now := a.now()

	actions, err := a.store.Actions(ctx, a.userID)
	if err != nil {
		a.log.WithError(err).Warn("loading actions failed")
	}

	kit, err := a.store.Kit(ctx, a.userID)
	if err != nil {
		a.log.WithError(err).Warn("loading emergency kit failed")
	}
	if len(kit) == 0 {
		kit = DefaultKit(a.userID, now)
		if err := a.store.SaveKit(ctx, kit); err != nil {
			a.log.WithError(err).Warn("seeding emergency kit failed")
		}
	}

	goals, err := a.store.Goals(ctx, a.userID, models.MonthKey(now))
	if err != nil {
		a.log.WithError(err).Warn("loading monthly goals failed")
	}
	if len(goals) == 0 {
		goals = achievement.DefaultGoals(a.userID, now)
	}
	goals = achievement.ProjectGoals(goals, p)
	if err := a.store.SaveGoals(ctx, goals); err != nil {
		a.log.WithError(err).Warn("saving monthly goals failed")
	}

	a.update(func(s *State) {
		s.Actions = actions
		s.Kit = kit
		s.Goals = goals
	})
}

// Refresh reloads the environment, alerts, projects and community stats.
// It reports false when it was skipped because another refresh is running
// or the previous one started less than the minimum interval ago.
func (a *Aggregator) Refresh(ctx context.Context) bool {
	ok, reason := a.throttle.Begin()
	if !ok {
		a.metrics.ObserveRefresh(reason)
		a.log.WithField("reason", reason).Debug("refresh skipped")
		return false
	}
	defer a.throttle.End()

	a.update(func(s *State) { s.Loading, s.Error = true, "" })
	defer a.update(func(s *State) { s.Loading = false })

	outcome := "ok"
	reading, err := a.src.Environment.Fetch(ctx)
	if err != nil {
		outcome = "stale"
		a.log.WithError(err).Warn("environment fetch failed, keeping previous reading")
		a.update(func(s *State) { s.Error = ErrMsgEnvironment })
	} else {
		alerts := Alerts(reading, a.now())
		a.update(func(s *State) {
			s.Environment = &reading
			s.Alerts = alerts
		})
	}

	origin := a.origin()
	var (
		projects    []models.CommunityProject
		stats       models.CommunityStats
		projectsErr error
		statsErr    error
	)
	var g errgroup.Group
	g.Go(func() error {
		projects, projectsErr = a.catalog.Projects(ctx, a.userID, origin)
		return nil
	})
	g.Go(func() error {
		stats, statsErr = a.catalog.Stats(ctx, origin)
		return nil
	})
	_ = g.Wait()

	if projectsErr != nil {
		a.log.WithError(projectsErr).Warn("loading projects failed")
	} else {
		joined := a.catalog.Joined(a.userID)
		a.update(func(s *State) {
			s.Projects = projects
			s.JoinedProjects = joined
		})
	}
	if statsErr != nil {
		a.log.WithError(statsErr).Warn("loading community stats failed")
	} else {
		a.update(func(s *State) { s.Stats = &stats })
	}

	a.metrics.ObserveRefresh(outcome)
	return true
}

func (a *Aggregator) origin() models.Coordinates {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state.Environment != nil {
		return a.state.Environment.Location.Coordinates()
	}
	return models.DefaultLocation().Coordinates()
}

// ReportLocation records a device fix and drops the cached location and
// reading so the next refresh uses it.
func (a *Aggregator) ReportLocation(ctx context.Context, lat, lon float64) error {
	if a.src.Fix == nil {
		return errors.New("climate: no device location source")
	}
	if err := a.src.Fix.Report(lat, lon); err != nil {
		return err
	}
	a.Invalidate(ctx)
	return nil
}

// ReportClientIP records the caller's address for IP geolocation. A changed
// address drops the resolved location; the cached reading is kept.
func (a *Aggregator) ReportClientIP(ip string) {
	if a.src.ClientIP == nil || ip == "" {
		return
	}
	if a.src.ClientIP.SetIP(ip) {
		a.src.Location.Invalidate()
	}
}

// Invalidate forgets the resolved location and the cached reading.
func (a *Aggregator) Invalidate(ctx context.Context) {
	a.src.Location.Invalidate()
	a.src.Environment.Invalidate(ctx)
}

func (a *Aggregator) History(ctx context.Context, days int) ([]models.HistoricalPoint, error) {
	return a.src.Environment.History(ctx, days)
}

func (a *Aggregator) profile() (models.UserProfile, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state.Profile == nil {
		return models.UserProfile{}, false
	}
	return *a.state.Profile, true
}

// JoinProject joins the project in the shared catalog, mirrors the
// participation to the store and credits the user one action and three
// volunteer hours.
func (a *Aggregator) JoinProject(ctx context.Context, projectID string) bool {
	if _, ok := a.profile(); !ok {
		return false
	}
	if err := a.catalog.Join(a.userID, projectID); err != nil {
		a.metrics.ObserveMembership("join", false)
		a.log.WithError(err).WithField("project_id", projectID).Info("join rejected")
		return false
	}
	a.metrics.ObserveMembership("join", true)
	a.joined(ctx, projectID)
	return true
}

// BatchJoin joins every id in order. Each successful join is credited like
// JoinProject; the rest are returned as failed.
func (a *Aggregator) BatchJoin(ctx context.Context, ids []string) (successful, failed []string) {
	if _, ok := a.profile(); !ok {
		return nil, slices.Clone(ids)
	}
	successful, failed = a.catalog.BatchJoin(a.userID, ids)
	for _, id := range successful {
		a.metrics.ObserveMembership("join", true)
		a.joined(ctx, id)
	}
	for range failed {
		a.metrics.ObserveMembership("join", false)
	}
	if len(failed) > 0 {
		a.log.WithField("failed", failed).Info("batch join partially rejected")
	}
	return successful, failed
}

// joined runs the bookkeeping that follows a successful catalog join.
func (a *Aggregator) joined(ctx context.Context, projectID string) {
	now := a.now()
	err := a.store.JoinProject(ctx, models.ProjectParticipation{
		UserID:    a.userID,
		ProjectID: projectID,
		JoinedAt:  now,
	})
	if err != nil && !errors.Is(err, store.ErrDuplicate) {
		a.log.WithError(err).Warn("mirroring participation failed")
	}

	project, _ := a.catalog.Project(a.userID, projectID)
	a.update(func(s *State) {
		s.Projects = replaceProject(s.Projects, project)
		if !slices.Contains(s.JoinedProjects, projectID) {
			s.JoinedProjects = append(s.JoinedProjects, projectID)
		}
	})

	a.credit(ctx, func(p models.UserProfile) models.ProfileUpdate {
		actions := p.ActionsCompleted + 1
		hours := p.VolunteerHours + joinHours
		return models.ProfileUpdate{ActionsCompleted: &actions, VolunteerHours: &hours}
	})

	a.recordAction(ctx, models.ActionInput{
		ActionType:    project.Type.ActionType(),
		Description:   "Joined project: " + project.Title,
		ImpactValue:   1,
		ImpactUnit:    "project joined",
		Location:      project.Location,
		DateCompleted: now.Format("2006-01-02"),
		ProjectID:     projectID,
	})
}

func (a *Aggregator) LeaveProject(ctx context.Context, projectID string) bool {
	if _, ok := a.profile(); !ok {
		return false
	}
	if err := a.catalog.Leave(a.userID, projectID); err != nil {
		a.metrics.ObserveMembership("leave", false)
		a.log.WithError(err).WithField("project_id", projectID).Info("leave rejected")
		return false
	}
	a.metrics.ObserveMembership("leave", true)

	if err := a.store.LeaveProject(ctx, a.userID, projectID); err != nil && !errors.Is(err, store.ErrNotFound) {
		a.log.WithError(err).Warn("mirroring leave failed")
	}

	project, _ := a.catalog.Project(a.userID, projectID)
	a.update(func(s *State) {
		s.Projects = replaceProject(s.Projects, project)
		s.JoinedProjects = slices.DeleteFunc(s.JoinedProjects, func(id string) bool { return id == projectID })
	})
	return true
}

// replaceProject swaps the catalog view of p into list, keeping the
// distance computed for the list.
func replaceProject(list []models.CommunityProject, p models.CommunityProject) []models.CommunityProject {
	out := slices.Clone(list)
	for i := range out {
		if out[i].ID == p.ID {
			p.Distance = out[i].Distance
			out[i] = p
		}
	}
	return out
}

func (a *Aggregator) DismissAlert(alertID string) bool {
	dismissed := false
	a.update(func(s *State) {
		n := len(s.Alerts)
		s.Alerts = slices.DeleteFunc(slices.Clone(s.Alerts), func(al models.Alert) bool { return al.ID == alertID })
		dismissed = len(s.Alerts) < n
	})
	return dismissed
}

// UpdateUserProfile persists u. Monthly goals are recomputed when u changes
// a tracked stat.
func (a *Aggregator) UpdateUserProfile(ctx context.Context, u models.ProfileUpdate) bool {
	if _, ok := a.profile(); !ok {
		return false
	}
	p, err := a.store.UpdateProfile(ctx, a.userID, u, a.now())
	if err != nil {
		a.log.WithError(err).Error("updating profile failed")
		return false
	}
	a.update(func(s *State) { s.Profile = &p })
	if u.TouchesStats() {
		a.UpdateMonthlyGoals(ctx)
	}
	return true
}

// AddUserAction logs an action and credits it to the profile. Only tree
// planting adds its impact to the carbon saved.
func (a *Aggregator) AddUserAction(ctx context.Context, in models.ActionInput) (models.UserAction, bool) {
	if _, ok := a.profile(); !ok {
		return models.UserAction{}, false
	}
	act, ok := a.recordAction(ctx, in)
	if !ok {
		return models.UserAction{}, false
	}

	a.credit(ctx, func(p models.UserProfile) models.ProfileUpdate {
		actions := p.ActionsCompleted + 1
		carbon := p.CarbonSaved
		if in.ActionType == models.ActionTreePlanting {
			carbon += in.ImpactValue
		}
		return models.ProfileUpdate{ActionsCompleted: &actions, CarbonSaved: &carbon}
	})
	return act, true
}

// credit builds an update from the latest profile and persists it while
// holding the credit lock, so concurrent credits never overwrite each other.
func (a *Aggregator) credit(ctx context.Context, fn func(models.UserProfile) models.ProfileUpdate) bool {
	a.crediting.Lock()
	defer a.crediting.Unlock()
	p, ok := a.profile()
	if !ok {
		return false
	}
	return a.UpdateUserProfile(ctx, fn(p))
}

func (a *Aggregator) recordAction(ctx context.Context, in models.ActionInput) (models.UserAction, bool) {
	now := a.now()
	act := models.UserAction{
		UserID:        a.userID,
		ActionType:    in.ActionType,
		Description:   in.Description,
		ImpactValue:   in.ImpactValue,
		ImpactUnit:    in.ImpactUnit,
		Location:      in.Location,
		DateCompleted: in.DateCompleted,
		ProjectID:     in.ProjectID,
		CreatedAt:     now,
	}
	if act.ImpactUnit == "" {
		act.ImpactUnit = in.ActionType.ImpactUnit()
	}
	if act.DateCompleted == "" {
		act.DateCompleted = now.Format("2006-01-02")
	}
	act.ID = uuid.NewString()
	if err := a.store.AddAction(ctx, act); err != nil {
		a.log.WithError(err).Error("recording action failed")
		return models.UserAction{}, false
	}
	if err := a.store.AddRecentAction(ctx, models.RecentAction{
		ID:          uuid.NewString(),
		UserID:      a.userID,
		ActionType:  string(act.ActionType),
		Description: act.Description,
		CreatedAt:   now,
	}); err != nil {
		a.log.WithError(err).Warn("recording recent action failed")
	}

	a.update(func(s *State) { s.Actions = append([]models.UserAction{act}, s.Actions...) })
	return act, true
}

func (a *Aggregator) UpdateEmergencyKit(ctx context.Context, itemID string, u models.KitUpdate) bool {
	if _, ok := a.profile(); !ok {
		return false
	}
	item, err := a.store.UpdateKitItem(ctx, a.userID, itemID, u, a.now())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.log.WithError(err).Error("updating emergency kit failed")
		}
		return false
	}
	a.update(func(s *State) {
		s.Kit = slices.Clone(s.Kit)
		for i := range s.Kit {
			if s.Kit[i].ID == itemID {
				s.Kit[i] = item
			}
		}
	})
	return true
}

// AddProject publishes a user-created project organized by this user. The
// organizer is its first participant.
func (a *Aggregator) AddProject(ctx context.Context, in models.ProjectInput) (models.CommunityProject, bool) {
	p, ok := a.profile()
	if !ok {
		return models.CommunityProject{}, false
	}
	project := a.catalog.Add(in, a.userID, p.Name, a.origin())
	if err := a.store.AddProject(ctx, project); err != nil {
		a.log.WithError(err).Warn("mirroring project failed")
	}
	if err := a.store.JoinProject(ctx, models.ProjectParticipation{
		UserID:    a.userID,
		ProjectID: project.ID,
		JoinedAt:  project.CreatedAt,
	}); err != nil && !errors.Is(err, store.ErrDuplicate) {
		a.log.WithError(err).Warn("mirroring organizer participation failed")
	}

	a.update(func(s *State) {
		s.Projects = append([]models.CommunityProject{project}, s.Projects...)
		s.JoinedProjects = append(s.JoinedProjects, project.ID)
	})
	a.log.WithField("project_id", project.ID).Info("project created")
	return project, true
}

// UpdateMonthlyGoals projects the goals from the current profile.
func (a *Aggregator) UpdateMonthlyGoals(ctx context.Context) bool {
	var (
		goals []models.MonthlyGoal
		ok    bool
	)
	a.update(func(s *State) {
		if s.Profile == nil {
			return
		}
		s.Goals = achievement.ProjectGoals(s.Goals, *s.Profile)
		goals, ok = s.Goals, true
	})
	if !ok {
		return false
	}
	if err := a.store.SaveGoals(ctx, goals); err != nil {
		a.log.WithError(err).Warn("saving monthly goals failed")
	}
	return true
}

// AIRecommendations is empty until both a profile and a reading exist.
func (a *Aggregator) AIRecommendations() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state.Profile == nil || a.state.Environment == nil {
		return []string{}
	}
	r := *a.state.Environment
	return assistant.Recommendations(&r)
}

// AchievementsView is the user's achievement standing. Totals and the next
// goal always cover the whole catalog.
type AchievementsView struct {
	Achievements []models.AchievementStatus            `json:"achievements"`
	Earned       []string                              `json:"earned"`
	TotalPoints  int                                   `json:"totalPoints"`
	Next         models.AchievementProgress            `json:"next"`
	Stats        achievement.Stats                     `json:"stats"`
	Categories   map[models.AchievementCategory]string `json:"categories"`
}

// Achievements evaluates the catalog for the user. A non-empty category
// narrows the listed achievements to that category.
func (a *Aggregator) Achievements(category models.AchievementCategory) (AchievementsView, bool) {
	s := a.Snapshot()
	if s.Profile == nil {
		return AchievementsView{}, false
	}
	stats := achievement.Collect(*s.Profile, s.Actions, len(s.JoinedProjects))
	earned := achievement.Eligible(stats)
	ids := achievement.EarnedIDs(stats)
	list := achievement.Evaluate(stats)
	if category != "" {
		in := achievement.ByCategory(category)
		list = slices.DeleteFunc(list, func(st models.AchievementStatus) bool {
			return !slices.ContainsFunc(in, func(c models.Achievement) bool { return c.ID == st.ID })
		})
	}
	return AchievementsView{
		Achievements: list,
		Earned:       ids,
		TotalPoints:  achievement.TotalPoints(earned),
		Next:         achievement.ProgressToNext(stats, ids),
		Stats:        stats,
		Categories:   achievement.Categories(),
	}, true
}

// Chat answers text from the current conditions and keeps the exchange.
func (a *Aggregator) Chat(text string) (assistant.Response, []assistant.Message) {
	s := a.Snapshot()
	c := assistant.Conditions{Reading: s.Environment, Profile: s.Profile}

	a.mu.Lock()
	defer a.mu.Unlock()
	history, resp := assistant.Chat(a.chat, text, c, a.now())
	if n := len(history); n > MaxChatMessages {
		history = slices.Clone(history[n-MaxChatMessages:])
	}
	a.chat = history
	return resp, slices.Clone(history)
}

// Snapshot copies the state; slices and pointers in it are not shared.
func (a *Aggregator) Snapshot() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.state
	if s.Environment != nil {
		e := *s.Environment
		s.Environment = &e
	}
	if s.Stats != nil {
		st := *s.Stats
		s.Stats = &st
	}
	if s.Profile != nil {
		p := *s.Profile
		p.Achievements = slices.Clone(p.Achievements)
		s.Profile = &p
	}
	s.Projects = slices.Clone(s.Projects)
	s.Alerts = slices.Clone(s.Alerts)
	s.Actions = slices.Clone(s.Actions)
	s.Kit = slices.Clone(s.Kit)
	s.Goals = slices.Clone(s.Goals)
	s.JoinedProjects = slices.Clone(s.JoinedProjects)
	return s
}

func (a *Aggregator) update(fn func(*State)) {
	a.mu.Lock()
	fn(&a.state)
	a.mu.Unlock()
}
