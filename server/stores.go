package server

import (
	"gorm.io/gorm"

	"mip/internal/accounts"
	"mip/internal/history"
	"mip/internal/repo"
)

// stores — выбранная реализация хранилищ: gorm при наличии БД, иначе память.
type stores struct {
	users     accounts.Store
	histories history.Store
}

func newStores(db *gorm.DB) stores {
	if db == nil {
		mem := repo.NewMemStore()
		return stores{users: mem.Users(), histories: mem.Histories()}
	}
	return stores{
		users:     repo.NewUserStore(db),
		histories: repo.NewHistoryStore(db),
	}
}
