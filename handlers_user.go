package main

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"

	"climateguard/internal/climate"
	"climateguard/internal/store"
	"climateguard/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeValid decodes the JSON body into v and validates it, answering 400
// itself when either fails.
func (a *App) decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	if err := a.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			http.Error(w, "invalid "+verrs[0].Field()+": "+verrs[0].Tag(), http.StatusBadRequest)
			return false
		}
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

// aggregator returns the caller's aggregator, answering 404 when the token
// names a user that never onboarded.
func (a *App) aggregator(w http.ResponseWriter, r *http.Request) (*climate.Aggregator, bool) {
	ctx, cancel := context.WithTimeout(climate.WithClientIP(r.Context(), clientIP(r)), 10*time.Second)
	defer cancel()

	agg, err := a.users.Get(ctx, mustUserID(r))
	if err != nil {
		if errors.Is(err, climate.ErrNoProfile) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return nil, false
		}
		a.log.WithError(err).Error("loading user failed")
		http.Error(w, "db error", http.StatusInternalServerError)
		return nil, false
	}
	return agg, true
}

// clientIP strips the port RemoteAddr has when no proxy header was present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	backend := "memory"
	if a.store.Connected(r.Context()) {
		backend = "mongo"
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "store": backend, "users": a.users.Len()})
}

// handleOnboarding creates a profile for name and returns a session token.
func (a *App) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	var req onboardingReq
	if !a.decodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(climate.WithClientIP(r.Context(), clientIP(r)), 15*time.Second)
	defer cancel()

	agg, err := a.users.Onboard(ctx, req.Name)
	if err != nil {
		http.Error(w, climate.ErrMsgInitialize, http.StatusInternalServerError)
		return
	}
	tok, err := signJWT(a.cfg.JWTSecret, a.cfg.JWTIssuer, agg.UserID())
	if err != nil {
		http.Error(w, "jwt error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, onboardingResp{Token: tok, Profile: *agg.Snapshot().Profile})
}

func (a *App) handleMe(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(agg.Snapshot().Profile)
}

func (a *App) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	var req models.ProfileUpdate
	if !a.decodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if !agg.UpdateUserProfile(ctx, req) {
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(agg.Snapshot().Profile)
}

func (a *App) handleState(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(agg.Snapshot())
}

// handleRefresh reports refreshed=false when the refresh was throttled.
func (a *App) handleRefresh(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	refreshed := agg.Refresh(ctx)
	_ = json.NewEncoder(w).Encode(refreshResp{Refreshed: refreshed, State: agg.Snapshot()})
}

// handleLocation takes a device fix from the client and refreshes against it.
func (a *App) handleLocation(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	var req locationReq
	if !a.decodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	if err := agg.ReportLocation(ctx, *req.Lat, *req.Lon); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	refreshed := agg.Refresh(ctx)
	_ = json.NewEncoder(w).Encode(refreshResp{Refreshed: refreshed, State: agg.Snapshot()})
}

// handleLeaderboard ranks stored profiles by level (default), actions or carbon.
func (a *App) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	var less func(x, y models.UserProfile) int
	switch by {
	case "", "level":
		less = func(x, y models.UserProfile) int {
			return cmp.Or(cmp.Compare(y.Level, x.Level), cmp.Compare(y.ActionsCompleted, x.ActionsCompleted))
		}
	case "actions":
		less = func(x, y models.UserProfile) int { return cmp.Compare(y.ActionsCompleted, x.ActionsCompleted) }
	case "carbon":
		less = func(x, y models.UserProfile) int { return cmp.Compare(y.CarbonSaved, x.CarbonSaved) }
	default:
		http.Error(w, "by must be level, actions or carbon", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()
	profiles, err := a.store.Profiles(ctx, store.MaxProfiles)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	slices.SortStableFunc(profiles, less)

	out := make([]leaderboardEntry, len(profiles))
	for i, p := range profiles {
		out[i] = leaderboardEntry{
			Rank:             i + 1,
			Name:             p.Name,
			Level:            p.Level,
			ActionsCompleted: p.ActionsCompleted,
			CarbonSaved:      p.CarbonSaved,
		}
	}
	_ = json.NewEncoder(w).Encode(out)
}
