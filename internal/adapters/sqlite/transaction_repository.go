package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/bookwerx/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

type transactionModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID  string    `gorm:"column:tenant_id;not null"`
	Notes     string    `gorm:"column:notes;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (transactionModel) TableName() string {
	return "transactions"
}

type transactionPayload struct {
	ID    int64  `json:"id"`
	Notes string `json:"notes"`
}

type TransactionRepository struct {
	db *gormsqlite.DB
}

func NewTransactionRepository(db *gormsqlite.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	model := transactionModel{
		TenantID:  t.TenantID,
		Notes:     t.Notes,
		CreatedAt: time.Now().UTC(),
	}
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return translateError(err)
		}
		payload := transactionPayload{ID: model.ID, Notes: model.Notes}
		return insertOutbox(tx.DB, model.TenantID, domain.EventTransactionCreated, string(domain.KindTransaction), model.ID, payload, model.CreatedAt)
	})
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return domain.Transaction{ID: model.ID, TenantID: model.TenantID, Notes: model.Notes, CreatedAt: model.CreatedAt}, nil
}

func (r *TransactionRepository) List(ctx context.Context, tenantID string) ([]domain.Transaction, error) {
	var rows []transactionModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("tenant_id = ?", tenantID).Order("id ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	result := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.Transaction{
			ID:        row.ID,
			TenantID:  row.TenantID,
			Notes:     row.Notes,
			CreatedAt: row.CreatedAt,
		})
	}
	return result, nil
}
