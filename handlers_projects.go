package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"climateguard/internal/climate"
	"climateguard/internal/community"
	"climateguard/models"
)

// handleListProjects returns the user's project view ranked for current
// conditions, optionally narrowed by ?q= and ?type=.
func (a *App) handleListProjects(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	s := agg.Snapshot()
	f := models.ProjectFilters{
		Type:  models.ProjectType(r.URL.Query().Get("type")),
		Query: r.URL.Query().Get("q"),
	}
	out := make([]models.CommunityProject, 0, len(s.Projects))
	for _, p := range s.Projects {
		if community.Matches(p, f) {
			out = append(out, p)
		}
	}
	_ = json.NewEncoder(w).Encode(community.Rank(out, s.Environment))
}

// origin is where searches start: ?lat=&lon= when given, the user's reading
// location otherwise.
func origin(r *http.Request, s climate.State) (models.Coordinates, error) {
	at := models.DefaultLocation().Coordinates()
	if s.Environment != nil {
		at = s.Environment.Location.Coordinates()
	}
	q := r.URL.Query()
	if q.Get("lat") == "" && q.Get("lon") == "" {
		return at, nil
	}
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return at, errors.New("lat must be a number between -90 and 90")
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		return at, errors.New("lon must be a number between -180 and 180")
	}
	return models.Coordinates{Latitude: lat, Longitude: lon}, nil
}

func floatParam(r *http.Request, key string) (float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, errors.New(key + " must be a non-negative number")
	}
	return f, nil
}

func (a *App) handleSearchProjects(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	at, err := origin(r, agg.Snapshot())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	radius, err := floatParam(r, "radius")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	f := models.ProjectFilters{
		Type:          models.ProjectType(q.Get("type")),
		Difficulty:    models.Difficulty(q.Get("difficulty")),
		Query:         q.Get("q"),
		AvailableOnly: q.Get("available") == "true",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()
	out, err := a.catalog.Search(ctx, agg.UserID(), at, radius, f)
	if err != nil {
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleRecommendedProjects takes ?types=a,b&maxDistance=&difficulty=.
func (a *App) handleRecommendedProjects(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	at, err := origin(r, agg.Snapshot())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	maxDistance, err := floatParam(r, "maxDistance")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	prefs := models.ProjectPreferences{
		MaxDistance: maxDistance,
		Difficulty:  models.Difficulty(r.URL.Query().Get("difficulty")),
	}
	for _, t := range splitList(r.URL.Query().Get("types")) {
		prefs.PreferredTypes = append(prefs.PreferredTypes, models.ProjectType(strings.ToLower(t)))
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()
	out, err := a.catalog.Recommended(ctx, agg.UserID(), at, prefs)
	if err != nil {
		http.Error(w, "recommendation failed", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}

func (a *App) handleFeaturedProjects(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	s := agg.Snapshot()
	if s.Environment == nil {
		http.Error(w, "environment not loaded", http.StatusServiceUnavailable)
		return
	}
	resp := featuredResp{
		Scored:          community.ScoreProjects(s.Projects, *s.Environment, s.Profile.Level),
		Recommendations: community.Recommendations(*s.Environment),
	}
	if p, ok := community.Featured(s.Projects, *s.Environment); ok {
		resp.Featured = &p
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (a *App) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	var req models.ProjectInput
	if !a.decodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	p, ok := agg.AddProject(ctx, req)
	if !ok {
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleBatchJoin joins several projects at once. Ids that are unknown,
// full or already joined come back in failed.
func (a *App) handleBatchJoin(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	var req batchJoinReq
	if !a.decodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()
	joined, failed := agg.BatchJoin(ctx, req.IDs)
	resp := batchJoinResp{Successful: []string{}, Failed: []string{}}
	resp.Successful = append(resp.Successful, joined...)
	resp.Failed = append(resp.Failed, failed...)
	_ = json.NewEncoder(w).Encode(resp)
}

// handleJoinProject answers 409 when the project is full or already joined.
func (a *App) handleJoinProject(w http.ResponseWriter, r *http.Request) {
	a.membership(w, r, true)
}

// handleLeaveProject answers 409 when the user had not joined.
func (a *App) handleLeaveProject(w http.ResponseWriter, r *http.Request) {
	a.membership(w, r, false)
}

func (a *App) membership(w http.ResponseWriter, r *http.Request, join bool) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := a.catalog.Project(agg.UserID(), id); errors.Is(err, community.ErrProjectNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	var (
		changed bool
		msg     string
	)
	if join {
		changed, msg = agg.JoinProject(ctx, id), "project is full or already joined"
	} else {
		changed, msg = agg.LeaveProject(ctx, id), "not joined to this project"
	}
	if !changed {
		http.Error(w, msg, http.StatusConflict)
		return
	}
	p, _ := a.catalog.Project(agg.UserID(), id)
	_ = json.NewEncoder(w).Encode(membershipResp{Joined: p.IsJoined, Project: p})
}

func (a *App) handleCommunityStats(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	if st := agg.Snapshot().Stats; st != nil {
		_ = json.NewEncoder(w).Encode(st)
		return
	}
	_ = json.NewEncoder(w).Encode(community.Summarize(agg.Snapshot().Projects))
}
