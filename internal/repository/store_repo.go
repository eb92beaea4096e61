package repository

import (
	"strings"

	"github.com/DHFin/dhf-pay-back-private/internal/models"
	"github.com/google/uuid"

	"gorm.io/gorm"
)

type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// Create persists a store, minting an API key when none is supplied.
func (r *StoreRepository) Create(s *models.Store) error {
	if s.ApiKey == "" {
		s.ApiKey = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return r.db.Create(s).Error
}

func (r *StoreRepository) GetByID(id uint) (*models.Store, error) {
	var s models.Store
	err := r.db.Preload("Wallets").Preload("User").First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepository) GetByApiKey(apiKey string) (*models.Store, error) {
	var s models.Store
	err := r.db.Preload("Wallets").Where("api_key = ?", apiKey).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
