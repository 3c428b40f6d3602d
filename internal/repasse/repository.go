// internal/repasse/repository.go
package repasse

import (
	"errors"

	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados de transações financeiras.
type Repository struct {
	DB *gorm.DB
}

// NewRepository instancia um novo repositório.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// FindByID busca uma transação pelo seu ID.
func (r *Repository) FindByID(id uint) (*TransacaoFinanceira, error) {
	var t TransacaoFinanceira
	if err := r.DB.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByPedido busca a transação de um pedido; nil se não existir.
func (r *Repository) FindByPedido(pedidoID uint) (*TransacaoFinanceira, error) {
	var t TransacaoFinanceira
	err := r.DB.Where("pedido_id = ?", pedidoID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByRevenda lista as transações da revenda, opcionalmente por status,
// mais recentes primeiro.
func (r *Repository) ListByRevenda(revendaID uint, status StatusRepasse) ([]TransacaoFinanceira, error) {
	q := r.DB.Where("revenda_id = ?", revendaID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var transacoes []TransacaoFinanceira
	err := q.Order("created_at DESC").Find(&transacoes).Error
	return transacoes, err
}

// Create persiste a transação.
func (r *Repository) Create(t *TransacaoFinanceira) error {
	return r.DB.Create(t).Error
}

// UpdateStatusGuarded executa a transição com verificação otimista: o UPDATE
// só acontece se o status atual ainda for o pré-estado esperado.
func (r *Repository) UpdateStatusGuarded(id uint, de, para StatusRepasse) (int64, error) {
	res := r.DB.Model(&TransacaoFinanceira{}).
		Where("id = ? AND status = ?", id, de).
		Update("status", para)
	return res.RowsAffected, res.Error
}
