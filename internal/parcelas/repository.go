// internal/parcelas/repository.go
package parcelas

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados de planos e parcelas.
type Repository struct {
	DB *gorm.DB
}

// NewRepository instancia um novo repositório.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// WithDB retorna uma cópia do repo usando um *gorm.DB específico (ex.: tx).
func (r *Repository) WithDB(db *gorm.DB) *Repository {
	if db == nil {
		db = r.DB
	}
	return &Repository{DB: db}
}

/* ================================ Planos ================================ */

// FindPlanoByID busca o plano com suas parcelas ordenadas por número.
func (r *Repository) FindPlanoByID(id uint) (*PlanoPagamento, error) {
	var plano PlanoPagamento
	err := r.DB.
		Preload("Parcelas", func(db *gorm.DB) *gorm.DB {
			return db.Order("numero ASC")
		}).
		First(&plano, id).Error
	if err != nil {
		return nil, err
	}
	return &plano, nil
}

// FindPlanoByPedido busca o plano de um pedido; nil se não existir.
func (r *Repository) FindPlanoByPedido(pedidoID uint) (*PlanoPagamento, error) {
	var plano PlanoPagamento
	err := r.DB.
		Preload("Parcelas", func(db *gorm.DB) *gorm.DB {
			return db.Order("numero ASC")
		}).
		Where("pedido_id = ?", pedidoID).
		First(&plano).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plano, nil
}

// CreatePlano persiste o plano com suas parcelas em uma única criação.
func (r *Repository) CreatePlano(plano *PlanoPagamento) error {
	return r.DB.Create(plano).Error
}

// UpdateStatusPlano grava o status do plano.
func (r *Repository) UpdateStatusPlano(id uint, status StatusPlano) error {
	return r.DB.Model(&PlanoPagamento{}).
		Where("id = ?", id).
		Update("status", status).Error
}

/* =============================== Parcelas =============================== */

// FindParcelaByID busca uma única parcela pelo seu ID.
func (r *Repository) FindParcelaByID(id uint) (*Parcela, error) {
	var parcela Parcela
	if err := r.DB.First(&parcela, id).Error; err != nil {
		return nil, err
	}
	return &parcela, nil
}

// ListByPlano busca todas as parcelas de um plano, ordenadas por número.
func (r *Repository) ListByPlano(planoID uint) ([]Parcela, error) {
	var parcelas []Parcela
	err := r.DB.
		Where("plano_pagamento_id = ?", planoID).
		Order("numero ASC").
		Find(&parcelas).Error
	return parcelas, err
}

// ListVencidasPendentes busca parcelas pendentes com vencimento anterior à
// data de referência, em qualquer plano ativo.
func (r *Repository) ListVencidasPendentes(referencia time.Time) ([]Parcela, error) {
	var parcelas []Parcela
	err := r.DB.
		Joins("JOIN plano_pagamentos ON plano_pagamentos.id = parcelas.plano_pagamento_id").
		Where("parcelas.status = ? AND parcelas.vencimento < ?", StatusPendente, referencia).
		Where("plano_pagamentos.status = ?", PlanoAtivo).
		Order("parcelas.vencimento ASC").
		Find(&parcelas).Error
	return parcelas, err
}

// UpdateStatusGuarded executa a transição com verificação otimista: o UPDATE
// só acontece se o status atual no banco ainda for o pré-estado esperado.
// Retorna o número de linhas afetadas; zero significa que outra operação
// chegou antes.
func (r *Repository) UpdateStatusGuarded(id uint, de StatusParcela, updates map[string]interface{}) (int64, error) {
	res := r.DB.Model(&Parcela{}).
		Where("id = ? AND status = ?", id, de).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// CountNaoPagas conta as parcelas do plano que ainda não estão pagas.
func (r *Repository) CountNaoPagas(planoID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&Parcela{}).
		Where("plano_pagamento_id = ? AND status <> ?", planoID, StatusPaga).
		Count(&n).Error
	return n, err
}

// UpdateCodigoPagamento grava o código de cobrança da parcela, desde que ela
// não esteja paga. Sobrescrever um código anterior é permitido.
func (r *Repository) UpdateCodigoPagamento(id uint, codigo string, geradoEm time.Time) (int64, error) {
	res := r.DB.Model(&Parcela{}).
		Where("id = ? AND status <> ?", id, StatusPaga).
		Updates(map[string]interface{}{
			"codigo_pagamento": codigo,
			"codigo_gerado_em": geradoEm,
		})
	return res.RowsAffected, res.Error
}

/* ============================== Agregados ============================== */

// Agregados são os totais computados de um plano para telas de acompanhamento.
type Agregados struct {
	QtdPagas      int64           `json:"qtdPagas"`
	QtdParcelas   int64           `json:"qtdParcelas"`
	TotalPago     decimal.Decimal `json:"totalPago"`
	TotalPendente decimal.Decimal `json:"totalPendente"`
	TotalVencido  decimal.Decimal `json:"totalVencido"`
}

// AgregadosByPlano soma valores e contagens por status em uma única consulta.
func (r *Repository) AgregadosByPlano(planoID uint) (*Agregados, error) {
	type linha struct {
		Status StatusParcela
		Qtd    int64
		Total  decimal.Decimal
	}
	var linhas []linha
	err := r.DB.Model(&Parcela{}).
		Select("status, COUNT(*) AS qtd, COALESCE(SUM(valor), 0) AS total").
		Where("plano_pagamento_id = ?", planoID).
		Group("status").
		Scan(&linhas).Error
	if err != nil {
		return nil, err
	}

	agg := &Agregados{}
	for _, l := range linhas {
		agg.QtdParcelas += l.Qtd
		switch l.Status {
		case StatusPaga:
			agg.QtdPagas = l.Qtd
			agg.TotalPago = l.Total
		case StatusPendente:
			agg.TotalPendente = l.Total
		case StatusVencida:
			agg.TotalVencido = l.Total
		}
	}
	return agg, nil
}
