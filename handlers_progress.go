package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"climateguard/internal/achievement"
	"climateguard/models"
)

// handleAchievements takes an optional ?category= naming an achievement
// category.
func (a *App) handleAchievements(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	category := models.AchievementCategory(r.URL.Query().Get("category"))
	if _, known := achievement.Categories()[category]; category != "" && !known {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}
	view, ok := agg.Achievements(category)
	if !ok {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(view)
}

// handleGoals recomputes the month's goals from the profile before answering.
func (a *App) handleGoals(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	agg.UpdateMonthlyGoals(ctx)
	_ = json.NewEncoder(w).Encode(agg.Snapshot().Goals)
}

func (a *App) handleKit(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(agg.Snapshot().Kit)
}

func (a *App) handleUpdateKit(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	var req models.KitUpdate
	if !a.decodeValid(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if !agg.UpdateEmergencyKit(ctx, id, req) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	for _, item := range agg.Snapshot().Kit {
		if item.ID == id {
			_ = json.NewEncoder(w).Encode(item)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleListActions(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	actions := agg.Snapshot().Actions
	if actions == nil {
		actions = []models.UserAction{}
	}
	_ = json.NewEncoder(w).Encode(actions)
}

func (a *App) handleAddAction(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	var req models.ActionInput
	if !a.decodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	act, ok := agg.AddUserAction(ctx, req)
	if !ok {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, act)
}
