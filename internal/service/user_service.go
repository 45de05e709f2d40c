package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ai-shopping-assistant-be/internal/dto"
	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/pkg/serverutils"
	"ai-shopping-assistant-be/internal/repository/contract"
	"ai-shopping-assistant-be/internal/repository/specification"
	"ai-shopping-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound        = fmt.Errorf("user %w", contract.ErrRecordNotFound)
	ErrPreferencesNotFound = fmt.Errorf("preferences %w", contract.ErrRecordNotFound)
)

const (
	recentActivityWindow = 50
	lastSearchesShown    = 5
	favoriteCategories   = 3
)

type IUserService interface {
	GetProfile(ctx context.Context, userId string) (*dto.UserProfileResponse, error)
	GetPreferences(ctx context.Context, userId string) (*dto.UserPreferencesResponse, error)
	UpdatePreferences(ctx context.Context, req *dto.UpdateUserPreferencesRequest) (*dto.UserPreferencesResponse, error)
	TrackActivity(ctx context.Context, req *dto.TrackUserActivityRequest) error
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IUserService {
	return &userService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *userService) GetPreferences(ctx context.Context, userId string) (*dto.UserPreferencesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	prefs, err := uow.UserRepository().FindPreferences(ctx, userId)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return nil, ErrPreferencesNotFound
	}
	return toPreferencesResponse(prefs), nil
}

// UpdatePreferences merges the request into the stored preferences, creating
// them on first use.
func (s *userService) UpdatePreferences(ctx context.Context, req *dto.UpdateUserPreferencesRequest) (*dto.UserPreferencesResponse, error) {
	if r := req.PriceRange; r != nil && r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return nil, &serverutils.ValidationError{Fields: map[string]string{"priceRange": "min must not exceed max"}}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserRepository()

	prefs, err := repo.FindPreferences(ctx, req.UserId)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = &entity.UserPreferences{UserId: req.UserId}
	}

	if req.Categories != nil {
		prefs.Categories = cleanList(req.Categories)
	}
	if req.Brands != nil {
		prefs.Brands = cleanList(req.Brands)
	}
	if req.PriceRange != nil {
		prefs.PriceMin, prefs.PriceMax = req.PriceRange.Min, req.PriceRange.Max
	}
	if n := req.Notifications; n != nil {
		prefs.Notifications = entity.NotificationSettings{
			Email:           n.Email,
			Push:            n.Push,
			Sms:             n.Sms,
			Deals:           n.Deals,
			Recommendations: n.Recommendations,
		}
	}

	if err := repo.UpsertPreferences(ctx, prefs); err != nil {
		return nil, err
	}

	s.logger.Info("UserService", "Preferences updated", map[string]interface{}{
		"user_id":    req.UserId,
		"categories": len(prefs.Categories),
		"brands":     len(prefs.Brands),
	})
	return toPreferencesResponse(prefs), nil
}

func (s *userService) TrackActivity(ctx context.Context, req *dto.TrackUserActivityRequest) error {
	activity := &entity.UserActivity{
		UserId:   req.UserId,
		Action:   req.Action,
		Metadata: req.Metadata,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if req.ProductId != "" {
		id, err := uuid.Parse(req.ProductId)
		if err != nil {
			return ErrProductNotFound
		}
		activity.ProductId = &id
		s.tagCategory(ctx, uow, activity)
	}

	return uow.UserRepository().CreateActivity(ctx, activity)
}

// tagCategory records the product's category so favourites can be derived
// without a join. Lookup failures leave the activity untagged.
func (s *userService) tagCategory(ctx context.Context, uow unitofwork.UnitOfWork, activity *entity.UserActivity) {
	if _, ok := activity.Metadata["category"]; ok {
		return
	}
	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: *activity.ProductId})
	if err != nil || product == nil || product.Category == "" {
		return
	}
	if activity.Metadata == nil {
		activity.Metadata = map[string]interface{}{}
	}
	activity.Metadata["category"] = product.Category
}

// GetProfile assembles a profile from everything stored under userId. A user
// with no preferences, activity or conversations is not found.
func (s *userService) GetProfile(ctx context.Context, userId string) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	users := uow.UserRepository()
	byUser := specification.ByUserID{UserID: userId}

	prefs, err := users.FindPreferences(ctx, userId)
	if err != nil {
		return nil, err
	}

	recent, err := users.FindActivities(ctx, byUser,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: recentActivityWindow},
	)
	if err != nil {
		return nil, err
	}

	summary, err := s.activitySummary(ctx, users, userId, recent)
	if err != nil {
		return nil, err
	}

	turns, err := uow.ConversationRepository().FindAll(ctx, byUser,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 1},
	)
	if err != nil {
		return nil, err
	}
	conversationCount, err := uow.ConversationRepository().Count(ctx, byUser)
	if err != nil {
		return nil, err
	}
	sessions, err := uow.ConversationSessionRepository().FindAll(ctx, byUser)
	if err != nil {
		return nil, err
	}

	var seen []time.Time
	if prefs != nil {
		seen = append(seen, prefs.CreatedAt)
		if prefs.UpdatedAt != nil {
			seen = append(seen, *prefs.UpdatedAt)
		}
	}
	for _, a := range recent {
		seen = append(seen, a.CreatedAt)
	}
	for _, t := range turns {
		seen = append(seen, t.CreatedAt)
	}
	for _, sess := range sessions {
		seen = append(seen, sess.CreatedAt)
	}
	if len(seen) == 0 {
		return nil, ErrUserNotFound
	}
	first, last := span(seen)

	profile := &dto.UserProfileResponse{
		UserId:            userId,
		ActivitySummary:   summary,
		ConversationCount: conversationCount,
		SessionCount:      int64(len(sessions)),
		CreatedAt:         first,
		LastActive:        last,
	}
	if prefs != nil {
		profile.Preferences = toPreferencesResponse(prefs)
	}
	return profile, nil
}

func (s *userService) activitySummary(ctx context.Context, users contract.UserRepository, userId string, recent []*entity.UserActivity) (dto.UserActivitySummary, error) {
	summary := dto.UserActivitySummary{
		FavoriteCategories: []string{},
		LastSearches:       []string{},
	}

	counts := []struct {
		action string
		into   *int64
	}{
		{entity.ActionSearch, &summary.TotalSearches},
		{entity.ActionViewProduct, &summary.TotalViews},
		{entity.ActionPurchase, &summary.TotalPurchases},
	}
	for _, c := range counts {
		n, err := users.CountActivities(ctx, specification.ByUserID{UserID: userId}, specification.ByAction{Action: c.action})
		if err != nil {
			return summary, err
		}
		*c.into = n
	}

	categoryHits := map[string]int{}
	for _, a := range recent {
		if a.Action == entity.ActionSearch && len(summary.LastSearches) < lastSearchesShown {
			if q, ok := a.Metadata["query"].(string); ok && strings.TrimSpace(q) != "" {
				summary.LastSearches = append(summary.LastSearches, q)
			}
		}
		if c, ok := a.Metadata["category"].(string); ok && c != "" {
			categoryHits[c]++
		}
	}
	for c := range categoryHits {
		summary.FavoriteCategories = append(summary.FavoriteCategories, c)
	}
	sort.Slice(summary.FavoriteCategories, func(i, j int) bool {
		a, b := summary.FavoriteCategories[i], summary.FavoriteCategories[j]
		if categoryHits[a] == categoryHits[b] {
			return a < b
		}
		return categoryHits[a] > categoryHits[b]
	})
	if len(summary.FavoriteCategories) > favoriteCategories {
		summary.FavoriteCategories = summary.FavoriteCategories[:favoriteCategories]
	}
	return summary, nil
}

func span(times []time.Time) (time.Time, time.Time) {
	first, last := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	return first, last
}

// cleanList trims entries and drops blanks and case-insensitive repeats.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, v := range in {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func toPreferencesResponse(p *entity.UserPreferences) *dto.UserPreferencesResponse {
	updatedAt := p.CreatedAt
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}
	var priceRange *dto.PriceRange
	if p.PriceMin != nil || p.PriceMax != nil {
		priceRange = &dto.PriceRange{Min: p.PriceMin, Max: p.PriceMax}
	}
	categories, brands := p.Categories, p.Brands
	if categories == nil {
		categories = []string{}
	}
	if brands == nil {
		brands = []string{}
	}
	return &dto.UserPreferencesResponse{
		Id:         p.Id,
		UserId:     p.UserId,
		Categories: categories,
		PriceRange: priceRange,
		Brands:     brands,
		Notifications: dto.NotificationPreferences{
			Email:           p.Notifications.Email,
			Push:            p.Notifications.Push,
			Sms:             p.Notifications.Sms,
			Deals:           p.Notifications.Deals,
			Recommendations: p.Notifications.Recommendations,
		},
		UpdatedAt: updatedAt,
	}
}
