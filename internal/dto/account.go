package dto

import "time"

type SubscriptionResponse struct {
	Tier           string    `json:"tier"`
	Limit          int       `json:"limit"`
	Used           int       `json:"used"`
	Remaining      int       `json:"remaining"`
	IsLimitReached bool      `json:"isLimitReached"`
	PeriodStart    time.Time `json:"periodStart"`
	PeriodEnd      time.Time `json:"periodEnd"`
}

type SetTierRequest struct {
	Tier string `json:"tier"`
}

type SetRoleRequest struct {
	Role string `json:"role"`
}

type AdminUserResponse struct {
	UserResponse
	ExternalID string    `json:"externalId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type StatsResponse struct {
	DocumentsByStatus    map[string]int `json:"documentsByStatus"`
	GenerationsThisMonth int            `json:"generationsThisMonth"`
	TokensUsedThisMonth  int64          `json:"tokensUsedThisMonth"`
	PeriodStart          time.Time      `json:"periodStart"`
}
