package graphql

import (
	"time"

	"ai-shopping-assistant-be/internal/dto"
)

// Views flatten DTOs into maps so ids and timestamps reach the client as
// strings.

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func productView(p *dto.ProductResponse) map[string]interface{} {
	view := map[string]interface{}{
		"id":          p.Id.String(),
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"imageUrl":    p.ImageUrl,
		"tags":        p.Tags,
		"rating":      p.Rating,
		"reviewCount": p.ReviewCount,
		"inStock":     p.InStock,
		"featured":    p.Featured,
		"metadata":    p.Metadata,
		"createdAt":   timestamp(p.CreatedAt),
		"updatedAt":   timestamp(p.UpdatedAt),
	}
	if p.Similarity != nil {
		view["similarity"] = *p.Similarity
	}
	return view
}

func productViews(products []*dto.ProductResponse) []interface{} {
	out := make([]interface{}, 0, len(products))
	for _, p := range products {
		out = append(out, productView(p))
	}
	return out
}

func chatResponseView(r *dto.ChatResponse) map[string]interface{} {
	entities := make([]interface{}, 0, len(r.AIResponse.Entities))
	for _, e := range r.AIResponse.Entities {
		entity := map[string]interface{}{"type": e.Type, "value": e.Value}
		if e.Confidence != nil {
			entity["confidence"] = *e.Confidence
		}
		entities = append(entities, entity)
	}

	ai := map[string]interface{}{
		"text":       r.AIResponse.Text,
		"confidence": r.AIResponse.Confidence,
		"intent":     r.AIResponse.Intent,
		"entities":   entities,
	}
	if s := r.AIResponse.Sentiment; s != nil {
		ai["sentiment"] = map[string]interface{}{"score": s.Score, "label": s.Label}
	}

	return map[string]interface{}{
		"success":        r.Success,
		"message":        r.Message,
		"conversationId": r.ConversationId,
		"aiResponse":     ai,
		"products":       productViews(r.Products),
		"suggestions":    r.Suggestions,
		"timestamp":      timestamp(r.Timestamp),
	}
}

func conversationViews(turns []*dto.ConversationResponse) []interface{} {
	out := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		out = append(out, map[string]interface{}{
			"id":             t.Id.String(),
			"userId":         t.UserId,
			"conversationId": t.ConversationId.String(),
			"userMessage":    t.UserMessage,
			"aiResponse":     t.AiResponse,
			"products":       productViews(t.Products),
			"timestamp":      timestamp(t.Timestamp),
			"metadata":       t.Metadata,
		})
	}
	return out
}

func sessionView(s *dto.ConversationSessionResponse) map[string]interface{} {
	updated := s.CreatedAt
	if s.UpdatedAt != nil {
		updated = *s.UpdatedAt
	}
	return map[string]interface{}{
		"id":        s.Id.String(),
		"userId":    s.UserId,
		"title":     s.Title,
		"createdAt": timestamp(s.CreatedAt),
		"updatedAt": timestamp(updated),
	}
}

func searchResultView(r *dto.ProductSearchResponse) map[string]interface{} {
	filters := map[string]interface{}{
		"query":    r.Filters.Query,
		"category": r.Filters.Category,
		"sortBy":   r.Filters.SortBy,
	}
	if pr := r.Filters.PriceRange; pr != nil {
		priceRange := map[string]interface{}{}
		if pr.Min != nil {
			priceRange["min"] = *pr.Min
		}
		if pr.Max != nil {
			priceRange["max"] = *pr.Max
		}
		filters["priceRange"] = priceRange
	}
	return map[string]interface{}{
		"products": productViews(r.Products),
		"total":    r.Total,
		"hasMore":  r.HasMore,
		"filters":  filters,
	}
}

func healthView(h *dto.HealthResponse) map[string]interface{} {
	services := map[string]interface{}{
		"database": h.Services.Database,
		"llm":      h.Services.LLM,
	}
	if h.Services.Redis != nil {
		services["redis"] = *h.Services.Redis
	}
	return map[string]interface{}{
		"status":    h.Status,
		"timestamp": timestamp(h.Timestamp),
		"services":  services,
		"version":   h.Version,
	}
}

func preferencesView(p *dto.UserPreferencesResponse) map[string]interface{} {
	view := map[string]interface{}{
		"id":         p.Id.String(),
		"userId":     p.UserId,
		"categories": p.Categories,
		"brands":     p.Brands,
		"notifications": map[string]interface{}{
			"email":           p.Notifications.Email,
			"push":            p.Notifications.Push,
			"sms":             p.Notifications.Sms,
			"deals":           p.Notifications.Deals,
			"recommendations": p.Notifications.Recommendations,
		},
		"updatedAt": timestamp(p.UpdatedAt),
	}
	if pr := p.PriceRange; pr != nil {
		priceRange := map[string]interface{}{}
		if pr.Min != nil {
			priceRange["min"] = *pr.Min
		}
		if pr.Max != nil {
			priceRange["max"] = *pr.Max
		}
		view["priceRange"] = priceRange
	}
	return view
}

func profileView(p *dto.UserProfileResponse) map[string]interface{} {
	view := map[string]interface{}{
		"userId": p.UserId,
		"activitySummary": map[string]interface{}{
			"totalSearches":      p.ActivitySummary.TotalSearches,
			"totalViews":         p.ActivitySummary.TotalViews,
			"totalPurchases":     p.ActivitySummary.TotalPurchases,
			"favoriteCategories": p.ActivitySummary.FavoriteCategories,
			"lastSearches":       p.ActivitySummary.LastSearches,
		},
		"conversationCount": p.ConversationCount,
		"sessionCount":      p.SessionCount,
		"createdAt":         timestamp(p.CreatedAt),
		"lastActive":        timestamp(p.LastActive),
	}
	if p.Preferences != nil {
		view["preferences"] = preferencesView(p.Preferences)
	}
	return view
}
