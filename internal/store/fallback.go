package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"climateguard/internal/metrics"
	"climateguard/models"
)

const ConnectTimeout = 5 * time.Second

// Connector dials the remote backend.
type Connector func(ctx context.Context) (Backend, error)

// Fallback implements Backend. The remote connection is attempted once, on
// first use; without a connector every call goes straight to the mirror.
type Fallback struct {
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	mirror  *Memory
	connect Connector

	once   sync.Once
	remote Backend
}

func NewFallback(log logrus.FieldLogger, m *metrics.Metrics, mirror *Memory, connect Connector) *Fallback {
	if mirror == nil {
		mirror = NewMemory()
	}
	return &Fallback{log: log, metrics: m, mirror: mirror, connect: connect}
}

// Connected reports whether the remote backend answered the connection
// attempt. It triggers the attempt when none was made yet.
func (f *Fallback) Connected(ctx context.Context) bool { return f.backend(ctx) != nil }

func (f *Fallback) backend(ctx context.Context) Backend {
	f.once.Do(func() {
		if f.connect == nil {
			f.log.Info("no remote backend configured, using in-memory store")
			return
		}
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ConnectTimeout)
		defer cancel()
		b, err := f.connect(cctx)
		if err != nil {
			f.log.WithError(err).Warn("remote backend unavailable, using in-memory store")
			return
		}
		f.remote = b
		f.log.Info("connected to remote backend")
	})
	return f.remote
}

// answered reports whether err is a result rather than a backend failure.
func answered(err error) bool {
	return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate)
}

func call[T any](ctx context.Context, f *Fallback, op string, fn func(Backend) (T, error)) (T, error) {
	if b := f.backend(ctx); b != nil {
		v, err := fn(b)
		if answered(err) {
			return v, err
		}
		f.log.WithError(err).WithField("op", op).Warn("remote backend failed, answering from mirror")
		f.metrics.ObserveFallback(op)
	}
	return fn(f.mirror)
}

func exec(ctx context.Context, f *Fallback, op string, fn func(Backend) error) error {
	_, err := call(ctx, f, op, func(b Backend) (struct{}, error) { return struct{}{}, fn(b) })
	return err
}

func (f *Fallback) CreateProfile(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	return call(ctx, f, "create_profile", func(b Backend) (models.UserProfile, error) { return b.CreateProfile(ctx, p) })
}

func (f *Fallback) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	return call(ctx, f, "profile", func(b Backend) (models.UserProfile, error) { return b.Profile(ctx, userID) })
}

func (f *Fallback) UpdateProfile(ctx context.Context, userID string, u models.ProfileUpdate, at time.Time) (models.UserProfile, error) {
	return call(ctx, f, "update_profile", func(b Backend) (models.UserProfile, error) {
		return b.UpdateProfile(ctx, userID, u, at)
	})
}

func (f *Fallback) Profiles(ctx context.Context, limit int) ([]models.UserProfile, error) {
	return call(ctx, f, "profiles", func(b Backend) ([]models.UserProfile, error) { return b.Profiles(ctx, limit) })
}

func (f *Fallback) Actions(ctx context.Context, userID string) ([]models.UserAction, error) {
	return call(ctx, f, "actions", func(b Backend) ([]models.UserAction, error) { return b.Actions(ctx, userID) })
}

func (f *Fallback) AddAction(ctx context.Context, a models.UserAction) error {
	return exec(ctx, f, "add_action", func(b Backend) error { return b.AddAction(ctx, a) })
}

func (f *Fallback) RecentActions(ctx context.Context, userID string) ([]models.RecentAction, error) {
	return call(ctx, f, "recent_actions", func(b Backend) ([]models.RecentAction, error) { return b.RecentActions(ctx, userID) })
}

func (f *Fallback) AddRecentAction(ctx context.Context, a models.RecentAction) error {
	return exec(ctx, f, "add_recent_action", func(b Backend) error { return b.AddRecentAction(ctx, a) })
}

func (f *Fallback) JoinProject(ctx context.Context, p models.ProjectParticipation) error {
	return exec(ctx, f, "join_project", func(b Backend) error { return b.JoinProject(ctx, p) })
}

func (f *Fallback) LeaveProject(ctx context.Context, userID, projectID string) error {
	return exec(ctx, f, "leave_project", func(b Backend) error { return b.LeaveProject(ctx, userID, projectID) })
}

func (f *Fallback) Participations(ctx context.Context, userID string) ([]models.ProjectParticipation, error) {
	return call(ctx, f, "participations", func(b Backend) ([]models.ProjectParticipation, error) {
		return b.Participations(ctx, userID)
	})
}

func (f *Fallback) Memberships(ctx context.Context, userID string) ([]string, error) {
	return call(ctx, f, "memberships", func(b Backend) ([]string, error) { return b.Memberships(ctx, userID) })
}

func (f *Fallback) Kit(ctx context.Context, userID string) ([]models.EmergencyKitItem, error) {
	return call(ctx, f, "kit", func(b Backend) ([]models.EmergencyKitItem, error) { return b.Kit(ctx, userID) })
}

func (f *Fallback) SaveKit(ctx context.Context, items []models.EmergencyKitItem) error {
	return exec(ctx, f, "save_kit", func(b Backend) error { return b.SaveKit(ctx, items) })
}

func (f *Fallback) UpdateKitItem(ctx context.Context, userID, itemID string, u models.KitUpdate, at time.Time) (models.EmergencyKitItem, error) {
	return call(ctx, f, "update_kit_item", func(b Backend) (models.EmergencyKitItem, error) {
		return b.UpdateKitItem(ctx, userID, itemID, u, at)
	})
}

func (f *Fallback) Goals(ctx context.Context, userID, month string) ([]models.MonthlyGoal, error) {
	return call(ctx, f, "goals", func(b Backend) ([]models.MonthlyGoal, error) { return b.Goals(ctx, userID, month) })
}

func (f *Fallback) SaveGoals(ctx context.Context, goals []models.MonthlyGoal) error {
	return exec(ctx, f, "save_goals", func(b Backend) error { return b.SaveGoals(ctx, goals) })
}

func (f *Fallback) AddProject(ctx context.Context, p models.CommunityProject) error {
	return exec(ctx, f, "add_project", func(b Backend) error { return b.AddProject(ctx, p) })
}

func (f *Fallback) ActiveProjects(ctx context.Context) ([]models.CommunityProject, error) {
	return call(ctx, f, "active_projects", func(b Backend) ([]models.CommunityProject, error) { return b.ActiveProjects(ctx) })
}

// Close disconnects the remote backend, if any.
func (f *Fallback) Close(ctx context.Context) error {
	f.once.Do(func() {})
	if c, ok := f.remote.(interface{ Close(context.Context) error }); ok {
		return c.Close(ctx)
	}
	return nil
}
