package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"climateguard/models"
)

// Memory is the process-local mirror. The zero value is not usable; call
// NewMemory.
type Memory struct {
	mu             sync.RWMutex
	profiles       map[string]models.UserProfile
	actions        map[string][]models.UserAction
	recent         map[string][]models.RecentAction
	participations []models.ProjectParticipation
	memberships    map[string][]string
	kits           map[string][]models.EmergencyKitItem
	goals          map[string][]models.MonthlyGoal
	projects       []models.CommunityProject
}

func NewMemory() *Memory {
	return &Memory{
		profiles:    make(map[string]models.UserProfile),
		actions:     make(map[string][]models.UserAction),
		recent:      make(map[string][]models.RecentAction),
		memberships: make(map[string][]string),
		kits:        make(map[string][]models.EmergencyKitItem),
		goals:       make(map[string][]models.MonthlyGoal),
	}
}

func (m *Memory) CreateProfile(_ context.Context, p models.UserProfile) (models.UserProfile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Achievements = slices.Clone(p.Achievements)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID]; ok {
		return models.UserProfile{}, ErrDuplicate
	}
	m.profiles[p.ID] = p
	return p, nil
}

func (m *Memory) Profile(_ context.Context, userID string) (models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return models.UserProfile{}, ErrNotFound
	}
	p.Achievements = slices.Clone(p.Achievements)
	return p, nil
}

func (m *Memory) UpdateProfile(_ context.Context, userID string, u models.ProfileUpdate, at time.Time) (models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return models.UserProfile{}, ErrNotFound
	}
	p = u.Apply(p, at)
	m.profiles[userID] = p
	p.Achievements = slices.Clone(p.Achievements)
	return p, nil
}

func (m *Memory) Profiles(_ context.Context, limit int) ([]models.UserProfile, error) {
	m.mu.RLock()
	out := make([]models.UserProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.UserProfile) int {
		if c := cmp.Compare(b.Level, a.Level); c != 0 {
			return c
		}
		if c := cmp.Compare(b.ActionsCompleted, a.ActionsCompleted); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Actions(_ context.Context, userID string) ([]models.UserAction, error) {
	m.mu.RLock()
	out := slices.Clone(m.actions[userID])
	m.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.UserAction) int {
		if c := cmp.Compare(b.DateCompleted, a.DateCompleted); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > MaxActions {
		out = out[:MaxActions]
	}
	return out, nil
}

func (m *Memory) AddAction(_ context.Context, a models.UserAction) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.mu.Lock()
	m.actions[a.UserID] = append(m.actions[a.UserID], a)
	m.mu.Unlock()
	return nil
}

func (m *Memory) RecentActions(_ context.Context, userID string) ([]models.RecentAction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.recent[userID]), nil
}

// AddRecentAction prepends a and keeps the newest MaxRecentActions entries.
func (m *Memory) AddRecentAction(_ context.Context, a models.RecentAction) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append([]models.RecentAction{a}, m.recent[a.UserID]...)
	if len(list) > MaxRecentActions {
		list = list[:MaxRecentActions]
	}
	m.recent[a.UserID] = list
	return nil
}

func (m *Memory) JoinProject(_ context.Context, p models.ProjectParticipation) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.participations {
		if existing.UserID == p.UserID && existing.ProjectID == p.ProjectID {
			return ErrDuplicate
		}
	}
	m.participations = append(m.participations, p)
	m.memberships[p.UserID] = append(m.memberships[p.UserID], p.ProjectID)
	return nil
}

func (m *Memory) LeaveProject(_ context.Context, userID, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.participations)
	m.participations = slices.DeleteFunc(m.participations, func(p models.ProjectParticipation) bool {
		return p.UserID == userID && p.ProjectID == projectID
	})
	if len(m.participations) == n {
		return ErrNotFound
	}
	m.memberships[userID] = slices.DeleteFunc(m.memberships[userID], func(id string) bool { return id == projectID })
	return nil
}

func (m *Memory) Participations(_ context.Context, userID string) ([]models.ProjectParticipation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.ProjectParticipation
	for _, p := range m.participations {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) Memberships(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.memberships[userID]), nil
}

func (m *Memory) Kit(_ context.Context, userID string) ([]models.EmergencyKitItem, error) {
	m.mu.RLock()
	out := slices.Clone(m.kits[userID])
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b models.EmergencyKitItem) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) SaveKit(_ context.Context, items []models.EmergencyKitItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		kit := m.kits[it.UserID]
		if i := slices.IndexFunc(kit, func(k models.EmergencyKitItem) bool { return k.ID == it.ID }); i >= 0 {
			kit[i] = it
			continue
		}
		m.kits[it.UserID] = append(kit, it)
	}
	return nil
}

func (m *Memory) UpdateKitItem(_ context.Context, userID, itemID string, u models.KitUpdate, at time.Time) (models.EmergencyKitItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kit := m.kits[userID]
	i := slices.IndexFunc(kit, func(k models.EmergencyKitItem) bool { return k.ID == itemID })
	if i < 0 {
		return models.EmergencyKitItem{}, ErrNotFound
	}
	kit[i] = u.Apply(kit[i], at)
	return kit[i], nil
}

func (m *Memory) Goals(_ context.Context, userID, month string) ([]models.MonthlyGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.MonthlyGoal
	for _, g := range m.goals[userID] {
		if g.MonthYear == month {
			out = append(out, g)
		}
	}
	return out, nil
}

// SaveGoals upserts goals by id.
func (m *Memory) SaveGoals(_ context.Context, goals []models.MonthlyGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range goals {
		list := m.goals[g.UserID]
		if i := slices.IndexFunc(list, func(x models.MonthlyGoal) bool { return x.ID == g.ID }); i >= 0 {
			list[i] = g
			continue
		}
		m.goals[g.UserID] = append(list, g)
	}
	return nil
}

func (m *Memory) AddProject(_ context.Context, p models.CommunityProject) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.IsJoined, p.Distance = false, 0
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.projects, func(x models.CommunityProject) bool { return x.ID == p.ID }) {
		return ErrDuplicate
	}
	m.projects = append([]models.CommunityProject{p}, m.projects...)
	return nil
}

func (m *Memory) ActiveProjects(_ context.Context) ([]models.CommunityProject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.CommunityProject
	for _, p := range m.projects {
		if p.Status == models.ProjectActive {
			out = append(out, p)
		}
	}
	return out, nil
}
