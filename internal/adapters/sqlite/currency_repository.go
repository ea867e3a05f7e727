package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/atvirokodosprendimai/bookwerx/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

type currencyModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID  string    `gorm:"column:tenant_id;not null"`
	Symbol    string    `gorm:"column:symbol;not null"`
	Title     string    `gorm:"column:title;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (currencyModel) TableName() string {
	return "currencies"
}

type currencyPayload struct {
	ID     int64  `json:"id"`
	Symbol string `json:"symbol"`
	Title  string `json:"title"`
}

type CurrencyRepository struct {
	db *gormsqlite.DB
}

func NewCurrencyRepository(db *gormsqlite.DB) *CurrencyRepository {
	return &CurrencyRepository{db: db}
}

// Create relies on the (tenant_id, symbol) unique index; a collision comes
// back as domain.ErrUniqueViolation.
func (r *CurrencyRepository) Create(ctx context.Context, c domain.Currency) (domain.Currency, error) {
	model := currencyModel{
		TenantID:  c.TenantID,
		Symbol:    c.Symbol,
		Title:     c.Title,
		CreatedAt: time.Now().UTC(),
	}
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return translateError(err)
		}
		payload := currencyPayload{ID: model.ID, Symbol: model.Symbol, Title: model.Title}
		return insertOutbox(tx.DB, model.TenantID, domain.EventCurrencyCreated, string(domain.KindCurrency), model.ID, payload, model.CreatedAt)
	})
	if err != nil {
		return domain.Currency{}, fmt.Errorf("create currency: %w", err)
	}
	return currencyToDomain(model), nil
}

func (r *CurrencyRepository) FindByID(ctx context.Context, tenantID string, id int64) (domain.Currency, error) {
	var model currencyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Currency{}, domain.ErrNotFound
		}
		return domain.Currency{}, fmt.Errorf("find currency: %w", err)
	}
	return currencyToDomain(model), nil
}

func (r *CurrencyRepository) List(ctx context.Context, tenantID string) ([]domain.Currency, error) {
	var rows []currencyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("tenant_id = ?", tenantID).Order("id ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}

	result := make([]domain.Currency, 0, len(rows))
	for _, row := range rows {
		result = append(result, currencyToDomain(row))
	}
	return result, nil
}

func currencyToDomain(m currencyModel) domain.Currency {
	return domain.Currency{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Symbol:    m.Symbol,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
	}
}
