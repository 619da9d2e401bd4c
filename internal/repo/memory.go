package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mip/internal/models"
)

// MemStore — хранилище в памяти для режима без БД и для тестов.
// Email сравнивается точно, как уникальный индекс в БД; порядок истории — порядок вставки.
type MemStore struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]*models.User
	byEmail   map[string]uuid.UUID
	histories []*models.History
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:   make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Users/Histories — адаптеры под интерфейсы обработчиков.
func (m *MemStore) Users() *MemUsers         { return &MemUsers{m: m} }
func (m *MemStore) Histories() *MemHistories { return &MemHistories{m: m} }

type MemUsers struct{ m *MemStore }

func (u *MemUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()
	id, ok := u.m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u.m.users[id]
	return &cp, nil
}

func (u *MemUsers) Create(_ context.Context, user *models.User) error {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	if _, ok := u.m.byEmail[user.Email]; ok {
		return ErrDuplicate
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	cp := *user
	u.m.users[user.ID] = &cp
	u.m.byEmail[user.Email] = user.ID
	return nil
}

type MemHistories struct{ m *MemStore }

func (h *MemHistories) Create(_ context.Context, rec *models.History) error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if _, ok := h.m.users[rec.UserID]; !ok {
		// то же, что нарушение FK в БД
		return ErrNotFound
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	cp := *rec
	h.m.histories = append(h.m.histories, &cp)
	return nil
}

func (h *MemHistories) ListByUser(_ context.Context, userID uuid.UUID) ([]models.History, error) {
	h.m.mu.RLock()
	defer h.m.mu.RUnlock()
	out := []models.History{}
	for _, rec := range h.m.histories {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (h *MemHistories) Get(_ context.Context, id uuid.UUID) (*models.History, error) {
	h.m.mu.RLock()
	defer h.m.mu.RUnlock()
	for _, rec := range h.m.histories {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (h *MemHistories) DeleteOwned(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := h.m.histories[:0]
	var n int64
	for _, rec := range h.m.histories {
		if _, ok := drop[rec.ID]; ok && rec.UserID == userID {
			n++
			continue
		}
		kept = append(kept, rec)
	}
	h.m.histories = kept
	return n, nil
}
