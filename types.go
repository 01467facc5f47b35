package main

import (
	"climateguard/internal/assistant"
	"climateguard/internal/climate"
	"climateguard/internal/community"
	"climateguard/internal/emergency"
	"climateguard/internal/environment"
	"climateguard/models"
)

// Request/response DTOs. Keep them minimal and explicit.

type onboardingReq struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
}

type onboardingResp struct {
	Token   string             `json:"token"`
	Profile models.UserProfile `json:"profile"`
}

type locationReq struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon *float64 `json:"lon" validate:"required,min=-180,max=180"`
}

type refreshResp struct {
	Refreshed bool          `json:"refreshed"`
	State     climate.State `json:"state"`
}

type environmentResp struct {
	Reading   models.EnvironmentalReading `json:"reading"`
	AQIStatus environment.StatusInfo      `json:"aqiStatus"`
}

type membershipResp struct {
	Joined  bool                    `json:"joined"`
	Project models.CommunityProject `json:"project"`
}

type featuredResp struct {
	Featured        *models.CommunityProject   `json:"featured"`
	Scored          []community.ScoredProject  `json:"scored"`
	Recommendations []community.Recommendation `json:"recommendations"`
}

type chatReq struct {
	Message string `json:"message" validate:"required,max=500"`
}

type chatResp struct {
	Response assistant.Response  `json:"response"`
	History  []assistant.Message `json:"history"`
}

type recommendationsResp struct {
	Conditions   []string `json:"conditions"`
	Personalized []string `json:"personalized"`
}

type contactView struct {
	emergency.Contact
	Dial      string `json:"dial"`
	Available bool   `json:"available"`
}

type protocolsResp struct {
	Protocols []emergency.Protocol `json:"protocols"`
	Supplies  []string             `json:"supplies"`
}

type newsView struct {
	models.ClimateNews
	CategoryLabel string `json:"categoryLabel"`
	SeverityColor string `json:"severityColor"`
	SeverityIcon  string `json:"severityIcon"`
}

type newsCategory struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type batchJoinReq struct {
	IDs []string `json:"ids" validate:"required,min=1,max=20,dive,required"`
}

type batchJoinResp struct {
	Successful []string `json:"successful"`
	Failed     []string `json:"failed"`
}

type leaderboardEntry struct {
	Rank             int     `json:"rank"`
	Name             string  `json:"name"`
	Level            int     `json:"level"`
	ActionsCompleted int     `json:"actions_completed"`
	CarbonSaved      float64 `json:"carbon_saved"`
}
