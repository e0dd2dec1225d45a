package service

import (
	"context"
	"fmt"
	"time"

	"docuai/internal/models"
)

type UsageSummary struct {
	Tier           models.Tier
	Limit          int
	Used           int
	Remaining      int
	IsLimitReached bool
	PeriodStart    time.Time
	PeriodEnd      time.Time
}

// SubscriptionService computes monthly usage. It never caches: every call
// counts COMPLETED documents created in the current UTC calendar month.
type SubscriptionService struct {
	docs DocumentStore
	now  func() time.Time
}

func NewSubscriptionService(docs DocumentStore) *SubscriptionService {
	return &SubscriptionService{docs: docs, now: time.Now}
}

func (s *SubscriptionService) Summary(ctx context.Context, user *models.User) (*UsageSummary, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}

	start, end := models.MonthBounds(s.now())
	used, err := s.docs.CountCompletedBetween(ctx, &user.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count usage: %w", err)
	}

	limit := user.Tier.MonthlyLimit()
	return &UsageSummary{
		Tier:           user.Tier,
		Limit:          limit,
		Used:           used,
		Remaining:      max(0, limit-used),
		IsLimitReached: used >= limit,
		PeriodStart:    start,
		PeriodEnd:      end,
	}, nil
}
