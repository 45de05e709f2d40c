package memory

import (
	"sort"
	"strings"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/repository/specification"
)

// query is the in-memory reading of a specification list. Specs this
// backend does not understand are ignored.
type query struct {
	filters []func(interface{}) bool
	order   []specification.Specification
	limit   int
	offset  int
}

func compile(specs []specification.Specification) query {
	q := query{limit: -1}
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			q.filters = append(q.filters, func(v interface{}) bool { return idOf(v) == s.ID.String() })
		case specification.ByIDs:
			ids := make(map[string]bool, len(s.IDs))
			for _, id := range s.IDs {
				ids[id.String()] = true
			}
			q.filters = append(q.filters, func(v interface{}) bool { return ids[idOf(v)] })
		case specification.ExcludeID:
			q.filters = append(q.filters, func(v interface{}) bool { return idOf(v) != toString(s.ID) })
		case specification.ByUserID:
			q.filters = append(q.filters, func(v interface{}) bool { return userOf(v) == s.UserID })
		case specification.ByAction:
			q.filters = append(q.filters, func(v interface{}) bool {
				a, ok := v.(*entity.UserActivity)
				return ok && a.Action == s.Action
			})
		case specification.ByConversationID:
			q.filters = append(q.filters, func(v interface{}) bool {
				t, ok := v.(*entity.ConversationTurn)
				return ok && t.ConversationId == s.ConversationID
			})
		case specification.ByCategory:
			q.filters = append(q.filters, productFilter(func(p *entity.Product) bool {
				return strings.EqualFold(p.Category, s.Category)
			}))
		case specification.ByCategories:
			q.filters = append(q.filters, productFilter(func(p *entity.Product) bool {
				for _, c := range s.Categories {
					if strings.EqualFold(p.Category, c) {
						return true
					}
				}
				return false
			}))
		case specification.ByName:
			q.filters = append(q.filters, productFilter(func(p *entity.Product) bool {
				return strings.EqualFold(p.Name, strings.TrimSpace(s.Name))
			}))
		case specification.PriceBetween:
			q.filters = append(q.filters, productFilter(func(p *entity.Product) bool {
				return (s.Min == nil || p.Price >= *s.Min) && (s.Max == nil || p.Price <= *s.Max)
			}))
		case specification.FeaturedOnly:
			q.filters = append(q.filters, productFilter(func(p *entity.Product) bool { return p.Featured }))
		case specification.InStockOnly:
			q.filters = append(q.filters, productFilter(func(p *entity.Product) bool { return p.InStock }))
		case specification.HasAnyTag:
			q.filters = append(q.filters, productFilter(func(p *entity.Product) bool { return hasAnyTag(p.Tags, s.Tags) }))
		case specification.MissingEmbedding:
			q.filters = append(q.filters, productFilter(func(p *entity.Product) bool { return len(p.Embedding) == 0 }))
		case specification.OrderBy, specification.ProductSort:
			q.order = append(q.order, s)
		case specification.Pagination:
			q.limit, q.offset = s.Limit, s.Offset
		}
	}
	return q
}

func (q query) match(v interface{}) bool {
	for _, f := range q.filters {
		if !f(v) {
			return false
		}
	}
	return true
}

func (q query) page(n int) (int, int) {
	start := q.offset
	if start > n {
		start = n
	}
	end := n
	if q.limit >= 0 && start+q.limit < n {
		end = start + q.limit
	}
	return start, end
}

func sortProducts(items []*entity.Product, order []specification.Specification) {
	for i := len(order) - 1; i >= 0; i-- {
		var less func(a, b *entity.Product) bool
		switch s := order[i].(type) {
		case specification.ProductSort:
			switch s.SortBy {
			case specification.SortPriceLowToHigh:
				less = func(a, b *entity.Product) bool { return a.Price < b.Price }
			case specification.SortPriceHighToLow:
				less = func(a, b *entity.Product) bool { return a.Price > b.Price }
			case specification.SortPopular:
				less = func(a, b *entity.Product) bool { return a.Popularity > b.Popularity }
			case specification.SortRating:
				less = func(a, b *entity.Product) bool { return a.Rating > b.Rating }
			default:
				less = func(a, b *entity.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
			}
		case specification.OrderBy:
			less = productFieldLess(s)
		}
		if less != nil {
			sort.SliceStable(items, func(a, b int) bool { return less(items[a], items[b]) })
		}
	}
}

func productFieldLess(s specification.OrderBy) func(a, b *entity.Product) bool {
	var key func(p *entity.Product) float64
	switch s.Field {
	case "price":
		key = func(p *entity.Product) float64 { return p.Price }
	case "popularity":
		key = func(p *entity.Product) float64 { return float64(p.Popularity) }
	case "rating":
		key = func(p *entity.Product) float64 { return p.Rating }
	case "created_at":
		key = func(p *entity.Product) float64 { return float64(p.CreatedAt.UnixNano()) }
	default:
		return nil
	}
	if s.Desc {
		return func(a, b *entity.Product) bool { return key(a) > key(b) }
	}
	return func(a, b *entity.Product) bool { return key(a) < key(b) }
}

// Turns, sessions and activities only ever sort by created_at.
func createdAtDesc(order []specification.Specification) (bool, bool) {
	for _, o := range order {
		if ob, ok := o.(specification.OrderBy); ok && ob.Field == "created_at" {
			return ob.Desc, true
		}
	}
	return false, false
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func productFilter(f func(p *entity.Product) bool) func(interface{}) bool {
	return func(v interface{}) bool {
		p, ok := v.(*entity.Product)
		return ok && f(p)
	}
}

func idOf(v interface{}) string {
	switch e := v.(type) {
	case *entity.Product:
		return e.Id.String()
	case *entity.ConversationTurn:
		return e.Id.String()
	case *entity.ConversationSession:
		return e.Id.String()
	case *entity.UserActivity:
		return e.Id.String()
	}
	return ""
}

func userOf(v interface{}) string {
	switch e := v.(type) {
	case *entity.ConversationTurn:
		return e.UserId
	case *entity.ConversationSession:
		return e.UserId
	case *entity.UserActivity:
		return e.UserId
	}
	return ""
}

func toString(v interface{}) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
