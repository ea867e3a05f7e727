package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/bookwerx/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

type accountModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID   string    `gorm:"column:tenant_id;not null"`
	CurrencyID int64     `gorm:"column:currency_id;not null"`
	Title      string    `gorm:"column:title;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (accountModel) TableName() string {
	return "accounts"
}

type accountPayload struct {
	ID         int64  `json:"id"`
	CurrencyID int64  `json:"currency_id"`
	Title      string `json:"title"`
}

type AccountRepository struct {
	db *gormsqlite.DB
}

func NewAccountRepository(db *gormsqlite.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create is backed by a composite foreign key on (currency_id, tenant_id), so
// a currency owned by another tenant fails with domain.ErrForeignKeyViolation
// even if it was never resolved beforehand.
func (r *AccountRepository) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	model := accountModel{
		TenantID:   a.TenantID,
		CurrencyID: a.CurrencyID,
		Title:      a.Title,
		CreatedAt:  time.Now().UTC(),
	}
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return translateError(err)
		}
		payload := accountPayload{ID: model.ID, CurrencyID: model.CurrencyID, Title: model.Title}
		return insertOutbox(tx.DB, model.TenantID, domain.EventAccountCreated, string(domain.KindAccount), model.ID, payload, model.CreatedAt)
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}
	return accountToDomain(model), nil
}

func (r *AccountRepository) List(ctx context.Context, tenantID string) ([]domain.Account, error) {
	var rows []accountModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("tenant_id = ?", tenantID).Order("id ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	result := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		result = append(result, accountToDomain(row))
	}
	return result, nil
}

func accountToDomain(m accountModel) domain.Account {
	return domain.Account{
		ID:         m.ID,
		TenantID:   m.TenantID,
		CurrencyID: m.CurrencyID,
		Title:      m.Title,
		CreatedAt:  m.CreatedAt,
	}
}
