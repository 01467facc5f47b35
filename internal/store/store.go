// Package store persists profiles, actions, memberships, kits, goals and
// user-created projects. A Fallback routes every call to the remote backend
// when one is reachable and answers from the in-memory mirror otherwise.
package store

import (
	"context"
	"errors"
	"time"

	"climateguard/models"
)

const (
	MaxActions       = 50
	MaxRecentActions = 10
	MaxProfiles      = 50
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: already exists")
)

// Backend is implemented by Mongo and Memory with the same semantics.
type Backend interface {
	CreateProfile(ctx context.Context, p models.UserProfile) (models.UserProfile, error)
	Profile(ctx context.Context, userID string) (models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, u models.ProfileUpdate, at time.Time) (models.UserProfile, error)
	// Profiles lists at most limit profiles, highest level first.
	Profiles(ctx context.Context, limit int) ([]models.UserProfile, error)

	// Actions returns the newest MaxActions actions by completion date.
	Actions(ctx context.Context, userID string) ([]models.UserAction, error)
	AddAction(ctx context.Context, a models.UserAction) error
	RecentActions(ctx context.Context, userID string) ([]models.RecentAction, error)
	AddRecentAction(ctx context.Context, a models.RecentAction) error

	// JoinProject records the participation and the group membership.
	// ErrDuplicate when the user already participates.
	JoinProject(ctx context.Context, p models.ProjectParticipation) error
	LeaveProject(ctx context.Context, userID, projectID string) error
	Participations(ctx context.Context, userID string) ([]models.ProjectParticipation, error)
	Memberships(ctx context.Context, userID string) ([]string, error)

	Kit(ctx context.Context, userID string) ([]models.EmergencyKitItem, error)
	SaveKit(ctx context.Context, items []models.EmergencyKitItem) error
	UpdateKitItem(ctx context.Context, userID, itemID string, u models.KitUpdate, at time.Time) (models.EmergencyKitItem, error)

	Goals(ctx context.Context, userID, month string) ([]models.MonthlyGoal, error)
	SaveGoals(ctx context.Context, goals []models.MonthlyGoal) error

	AddProject(ctx context.Context, p models.CommunityProject) error
	ActiveProjects(ctx context.Context) ([]models.CommunityProject, error)
}

var (
	_ Backend = (*Memory)(nil)
	_ Backend = (*Mongo)(nil)
	_ Backend = (*Fallback)(nil)
)
