// Package memory is a process-local backend for the unit of work. It serves
// development runs without Postgres and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/repository/contract"
	"ai-shopping-assistant-be/internal/repository/specification"
	"ai-shopping-assistant-be/internal/repository/unitofwork"
	"ai-shopping-assistant-be/pkg/similarity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Store holds every record of the in-memory backend.
type Store struct {
	products *cache.Cache

	mu          sync.RWMutex
	turns       []*entity.ConversationTurn
	sessions    []*entity.ConversationSession
	preferences map[string]*entity.UserPreferences
	activities  []*entity.UserActivity

	// FailWith, when set, is returned by every repository call.
	FailWith error
}

func NewStore() *Store {
	return &Store{
		products:    cache.New(cache.NoExpiration, 0),
		preferences: map[string]*entity.UserPreferences{},
	}
}

type repositoryFactory struct {
	store *Store
}

// NewRepositoryFactory returns a factory whose units of work share store.
func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &repositoryFactory{store: store}
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

// unitOfWork has no isolation; Begin, Commit and Rollback are no-ops.
type unitOfWork struct {
	store *Store
}

func (u *unitOfWork) Begin(ctx context.Context) error { return u.store.FailWith }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) ProductRepository() contract.ProductRepository {
	return &productRepository{store: u.store}
}

func (u *unitOfWork) ConversationRepository() contract.ConversationRepository {
	return &conversationRepository{store: u.store}
}

func (u *unitOfWork) ConversationSessionRepository() contract.ConversationSessionRepository {
	return &sessionRepository{store: u.store}
}

func (u *unitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{store: u.store}
}

// --- Products ---

type productRepository struct {
	store *Store
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	c.Embedding = append([]float32(nil), p.Embedding...)
	if len(c.Embedding) == 0 {
		c.Embedding = nil
	}
	return &c
}

func (r *productRepository) all() []*entity.Product {
	items := r.store.products.Items()
	out := make([]*entity.Product, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(*entity.Product))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Id.String() < out[j].Id.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	if r.store.FailWith != nil {
		return r.store.FailWith
	}
	if product.Id == uuid.Nil {
		product.Id = uuid.New()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = &now
	r.store.products.Set(product.Id.String(), cloneProduct(product), cache.NoExpiration)
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	if r.store.FailWith != nil {
		return r.store.FailWith
	}
	now := time.Now()
	product.UpdatedAt = &now
	r.store.products.Set(product.Id.String(), cloneProduct(product), cache.NoExpiration)
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.store.FailWith != nil {
		return r.store.FailWith
	}
	r.store.products.Delete(id.String())
	return nil
}

func (r *productRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	found, err := r.FindAll(ctx, specs...)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (r *productRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error) {
	if r.store.FailWith != nil {
		return nil, r.store.FailWith
	}
	q := compile(specs)
	var matched []*entity.Product
	for _, p := range r.all() {
		if q.match(p) {
			matched = append(matched, cloneProduct(p))
		}
	}
	sortProducts(matched, q.order)
	start, end := q.page(len(matched))
	return matched[start:end], nil
}

func (r *productRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	if r.store.FailWith != nil {
		return 0, r.store.FailWith
	}
	q := compile(specs)
	var n int64
	for _, p := range r.all() {
		if q.match(p) {
			n++
		}
	}
	return n, nil
}

func (r *productRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	if r.store.FailWith != nil {
		return r.store.FailWith
	}
	x, ok := r.store.products.Get(id.String())
	if !ok {
		return contract.ErrRecordNotFound
	}
	p := cloneProduct(x.(*entity.Product))
	p.Embedding = append([]float32(nil), embedding...)
	r.store.products.Set(id.String(), p, cache.NoExpiration)
	return nil
}

// SearchSimilar is a brute-force cosine scan over products with vectors.
func (r *productRepository) SearchSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*contract.ScoredProduct, error) {
	if r.store.FailWith != nil {
		return nil, r.store.FailWith
	}
	var scored []*contract.ScoredProduct
	for _, p := range r.all() {
		if len(p.Embedding) == 0 {
			continue
		}
		score := similarity.Cosine(embedding, p.Embedding)
		if score < threshold {
			continue
		}
		scored = append(scored, &contract.ScoredProduct{Product: cloneProduct(p), Similarity: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity == scored[j].Similarity {
			return scored[i].Product.Id.String() < scored[j].Product.Id.String()
		}
		return scored[i].Similarity > scored[j].Similarity
	})
	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (r *productRepository) CategoryCounts(ctx context.Context) ([]*entity.CategoryCount, error) {
	if r.store.FailWith != nil {
		return nil, r.store.FailWith
	}
	counts := map[string]int64{}
	for _, p := range r.all() {
		if p.Category != "" {
			counts[p.Category]++
		}
	}
	out := make([]*entity.CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, &entity.CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Name < out[j].Name
		}
		return out[i].Count > out[j].Count
	})
	return out, nil
}

// --- Conversation turns ---

type conversationRepository struct {
	store *Store
}

func (r *conversationRepository) Create(ctx context.Context, turn *entity.ConversationTurn) error {
	if r.store.FailWith != nil {
		return r.store.FailWith
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	turn.CreatedAt = time.Now()
	c := *turn
	c.ProductsMentioned = append([]string{}, turn.ProductsMentioned...)
	r.store.turns = append(r.store.turns, &c)
	return nil
}

func (r *conversationRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error) {
	if r.store.FailWith != nil {
		return nil, r.store.FailWith
	}
	q := compile(specs)
	r.store.mu.RLock()
	var matched []*entity.ConversationTurn
	for _, t := range r.store.turns {
		if q.match(t) {
			c := *t
			matched = append(matched, &c)
		}
	}
	r.store.mu.RUnlock()

	// Append order doubles as creation order.
	if desc, ok := createdAtDesc(q.order); ok && desc {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	start, end := q.page(len(matched))
	return matched[start:end], nil
}

func (r *conversationRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, err := r.FindAll(ctx, specs...)
	return int64(len(found)), err
}

func (r *conversationRepository) DeleteByUserId(ctx context.Context, userId string) error {
	return r.deleteWhere(func(t *entity.ConversationTurn) bool { return t.UserId == userId })
}

func (r *conversationRepository) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID, userId string) error {
	return r.deleteWhere(func(t *entity.ConversationTurn) bool {
		return t.ConversationId == conversationId && t.UserId == userId
	})
}

func (r *conversationRepository) deleteWhere(drop func(t *entity.ConversationTurn) bool) error {
	if r.store.FailWith != nil {
		return r.store.FailWith
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.turns[:0]
	for _, t := range r.store.turns {
		if !drop(t) {
			kept = append(kept, t)
		}
	}
	r.store.turns = kept
	return nil
}

// --- Conversation sessions ---

type sessionRepository struct {
	store *Store
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.ConversationSession) error {
	if r.store.FailWith != nil {
		return r.store.FailWith
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = &now
	c := *session
	r.store.sessions = append(r.store.sessions, &c)
	return nil
}

func (r *sessionRepository) Update(ctx context.Context, session *entity.ConversationSession) error {
	if r.store.FailWith != nil {
		return r.store.FailWith
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	session.UpdatedAt = &now
	for i, s := range r.store.sessions {
		if s.Id == session.Id {
			c := *session
			r.store.sessions[i] = &c
			return nil
		}
	}
	return contract.ErrRecordNotFound
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID, userId string) error {
	if r.store.FailWith != nil {
		return r.store.FailWith
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.sessions[:0]
	for _, s := range r.store.sessions {
		if !(s.Id == id && s.UserId == userId) {
			kept = append(kept, s)
		}
	}
	removed := len(kept) < len(r.store.sessions)
	r.store.sessions = kept
	if !removed {
		return contract.ErrRecordNotFound
	}
	return nil
}

func (r *sessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationSession, error) {
	found, err := r.FindAll(ctx, specs...)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (r *sessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationSession, error) {
	if r.store.FailWith != nil {
		return nil, r.store.FailWith
	}
	q := compile(specs)
	r.store.mu.RLock()
	var matched []*entity.ConversationSession
	for _, s := range r.store.sessions {
		if q.match(s) {
			c := *s
			matched = append(matched, &c)
		}
	}
	r.store.mu.RUnlock()

	if desc, ok := createdAtDesc(q.order); ok && desc {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	start, end := q.page(len(matched))
	return matched[start:end], nil
}

// --- User preferences and activity ---

type userRepository struct {
	store *Store
}

func clonePreferences(p *entity.UserPreferences) *entity.UserPreferences {
	c := *p
	c.Categories = append([]string{}, p.Categories...)
	c.Brands = append([]string{}, p.Brands...)
	return &c
}

func (r *userRepository) FindPreferences(ctx context.Context, userId string) (*entity.UserPreferences, error) {
	if r.store.FailWith != nil {
		return nil, r.store.FailWith
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.preferences[userId]
	if !ok {
		return nil, nil
	}
	return clonePreferences(p), nil
}

func (r *userRepository) UpsertPreferences(ctx context.Context, prefs *entity.UserPreferences) error {
	if r.store.FailWith != nil {
		return r.store.FailWith
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	if existing, ok := r.store.preferences[prefs.UserId]; ok {
		prefs.Id = existing.Id
		prefs.CreatedAt = existing.CreatedAt
	} else {
		if prefs.Id == uuid.Nil {
			prefs.Id = uuid.New()
		}
		prefs.CreatedAt = now
	}
	prefs.UpdatedAt = &now
	r.store.preferences[prefs.UserId] = clonePreferences(prefs)
	return nil
}

func (r *userRepository) CreateActivity(ctx context.Context, activity *entity.UserActivity) error {
	if r.store.FailWith != nil {
		return r.store.FailWith
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if activity.Id == uuid.Nil {
		activity.Id = uuid.New()
	}
	activity.CreatedAt = time.Now()
	c := *activity
	r.store.activities = append(r.store.activities, &c)
	return nil
}

func (r *userRepository) FindActivities(ctx context.Context, specs ...specification.Specification) ([]*entity.UserActivity, error) {
	if r.store.FailWith != nil {
		return nil, r.store.FailWith
	}
	q := compile(specs)
	r.store.mu.RLock()
	var matched []*entity.UserActivity
	for _, a := range r.store.activities {
		if q.match(a) {
			c := *a
			matched = append(matched, &c)
		}
	}
	r.store.mu.RUnlock()

	if desc, ok := createdAtDesc(q.order); ok && desc {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	start, end := q.page(len(matched))
	return matched[start:end], nil
}

func (r *userRepository) CountActivities(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, err := r.FindActivities(ctx, specs...)
	return int64(len(found)), err
}
