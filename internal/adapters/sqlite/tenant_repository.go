package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/bookwerx/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

// apiKeyModel stores the digest of an issued key; the raw token never
// reaches the database.
type apiKeyModel struct {
	TenantID  string    `gorm:"column:tenant_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (apiKeyModel) TableName() string {
	return "api_keys"
}

type TenantRepository struct {
	db *gormsqlite.DB
}

func NewTenantRepository(db *gormsqlite.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Insert(ctx context.Context, key domain.APIKey) error {
	model := apiKeyModel{TenantID: key.TenantID, CreatedAt: key.CreatedAt}
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return fmt.Errorf("insert api key: %w", translateError(err))
	}
	return nil
}

func (r *TenantRepository) Exists(ctx context.Context, tenantID string) (bool, error) {
	var count int64
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&apiKeyModel{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	})
	if err != nil {
		return false, fmt.Errorf("check api key: %w", err)
	}
	return count > 0, nil
}
