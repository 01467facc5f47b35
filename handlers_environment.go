package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"climateguard/internal/assistant"
	"climateguard/internal/emergency"
	"climateguard/internal/environment"
	"climateguard/internal/news"
	"climateguard/models"
)

// handleEnvironment returns the current reading, refreshing once when the
// user has none yet.
func (a *App) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	s := agg.Snapshot()
	if s.Environment == nil {
		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()
		agg.Refresh(ctx)
		s = agg.Snapshot()
	}
	if s.Environment == nil {
		http.Error(w, s.Error, http.StatusServiceUnavailable)
		return
	}
	_ = json.NewEncoder(w).Encode(environmentResp{
		Reading:   *s.Environment,
		AQIStatus: environment.AQIStatus(s.Environment.AirQuality.AQI),
	})
}

func (a *App) handleHistory(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	days := environment.DefaultHistoryDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = n
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	points, err := agg.History(ctx, days)
	if err != nil {
		http.Error(w, "history unavailable", http.StatusServiceUnavailable)
		return
	}
	_ = json.NewEncoder(w).Encode(points)
}

func (a *App) handleAlerts(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	alerts := agg.Snapshot().Alerts
	if alerts == nil {
		alerts = []models.Alert{}
	}
	_ = json.NewEncoder(w).Encode(alerts)
}

func (a *App) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	if !agg.DismissAlert(chi.URLParam(r, "id")) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleChat(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	var req chatReq
	if !a.decodeValid(w, r, &req) {
		return
	}
	resp, history := agg.Chat(req.Message)
	_ = json.NewEncoder(w).Encode(chatResp{Response: resp, History: history})
}

func (a *App) handleTips(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	s := agg.Snapshot()
	_ = json.NewEncoder(w).Encode(assistant.DynamicTips(s.Environment, s.Profile))
}

func (a *App) handleInsights(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	s := agg.Snapshot()
	_ = json.NewEncoder(w).Encode(assistant.PersonalizedInsights(s.Environment, s.Profile, time.Now()))
}

func (a *App) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	s := agg.Snapshot()
	_ = json.NewEncoder(w).Encode(recommendationsResp{
		Conditions:   agg.AIRecommendations(),
		Personalized: assistant.PersonalizedRecommendations(s.Environment, s.Profile, time.Now()),
	})
}

// handleEmergencyContacts lists contacts for the user's area, or of one type
// with ?type=.
func (a *App) handleEmergencyContacts(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	var list []emergency.Contact
	if t := r.URL.Query().Get("type"); t != "" {
		list = emergency.ContactsByType(emergency.ContactType(t))
	} else {
		list = emergency.Contacts(agg.Snapshot().Profile.Location)
	}

	now := time.Now()
	out := make([]contactView, len(list))
	for i, c := range list {
		out[i] = contactView{Contact: c, Dial: emergency.DialString(c.Phone), Available: emergency.IsAvailable(c, now)}
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleEmergencyProtocols returns the protocols current conditions call for.
// ?severity= filters the full set instead and ?all=true returns every protocol.
func (a *App) handleEmergencyProtocols(w http.ResponseWriter, r *http.Request) {
	agg, ok := a.aggregator(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var list []emergency.Protocol
	switch {
	case q.Get("all") == "true":
		list = emergency.Protocols()
	case q.Get("severity") != "":
		list = emergency.ProtocolsBySeverity(emergency.Severity(q.Get("severity")))
	default:
		list = emergency.RelevantProtocols(agg.Snapshot().Environment)
	}
	if list == nil {
		list = []emergency.Protocol{}
	}
	_ = json.NewEncoder(w).Encode(protocolsResp{Protocols: list, Supplies: emergency.SuppliesChecklist()})
}

// handleNews lists climate news. ?urgent=true returns the newest warnings.
// handleNews serves ?urgent=true, ?category= or ?location= alone with their
// default page sizes; any other combination goes through the general filter.
func (a *App) handleNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("urgent") == "true" {
		_ = json.NewEncoder(w).Encode(newsViews(a.news.Urgent()))
		return
	}
	f := news.Filter{
		Category: q.Get("category"),
		Severity: models.NewsSeverity(q.Get("severity")),
		Location: q.Get("location"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		f.Limit = n
	}

	var items []models.ClimateNews
	switch {
	case f.Category != "" && f == (news.Filter{Category: f.Category}):
		items = a.news.ByCategory(f.Category)
	case f.Location != "" && f == (news.Filter{Location: f.Location}):
		items = a.news.Local(f.Location)
	default:
		items = a.news.List(f)
	}
	_ = json.NewEncoder(w).Encode(newsViews(items))
}

func (a *App) handleNewsCategories(w http.ResponseWriter, r *http.Request) {
	ids := news.Categories()
	out := make([]newsCategory, len(ids))
	for i, id := range ids {
		out[i] = newsCategory{ID: id, Label: news.CategoryDisplayName(id)}
	}
	_ = json.NewEncoder(w).Encode(out)
}

func newsViews(items []models.ClimateNews) []newsView {
	out := make([]newsView, len(items))
	for i, n := range items {
		out[i] = newsView{
			ClimateNews:   n,
			CategoryLabel: news.CategoryDisplayName(n.Category),
			SeverityColor: news.SeverityColor(n.Severity),
			SeverityIcon:  news.SeverityIcon(n.Severity),
		}
	}
	return out
}
