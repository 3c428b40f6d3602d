// internal/parcelas/model.go
package parcelas

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatusParcela é o estado de vida de uma parcela.
type StatusParcela string

const (
	StatusPendente StatusParcela = "pendente"
	StatusVencida  StatusParcela = "vencida"
	StatusPaga     StatusParcela = "paga"
)

// Valida informa se o valor corresponde a um status conhecido.
func (s StatusParcela) Valida() bool {
	switch s {
	case StatusPendente, StatusVencida, StatusPaga:
		return true
	}
	return false
}

// StatusPlano é o estado agregado do plano de pagamento.
type StatusPlano string

const (
	PlanoAtivo     StatusPlano = "ativo"
	PlanoQuitado   StatusPlano = "quitado"
	PlanoCancelado StatusPlano = "cancelado"
)

// PlanoPagamento agrupa as parcelas geradas para um pedido.
// O índice único em pedido_id garante no máximo um plano por pedido.
// Plano quitado ⇔ todas as parcelas pagas; o recálculo acontece na mesma
// transação de cada transição de parcela.
type PlanoPagamento struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	PedidoID    uint            `gorm:"not null;uniqueIndex" json:"pedidoId"`
	ValorTotal  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"valorTotal"`
	QtdParcelas int             `gorm:"not null" json:"qtdParcelas"`
	Status      StatusPlano     `gorm:"size:20;not null;default:'ativo';index" json:"status"`

	Parcelas []Parcela `gorm:"foreignKey:PlanoPagamentoID;constraint:OnDelete:CASCADE" json:"parcelas"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Parcela é uma obrigação de pagamento datada, acompanhada individualmente.
type Parcela struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	PlanoPagamentoID uint            `gorm:"not null;uniqueIndex:idx_plano_numero" json:"planoPagamentoId"`
	Numero           int             `gorm:"not null;uniqueIndex:idx_plano_numero" json:"numero"`
	Valor            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"valor"`
	Vencimento       time.Time       `gorm:"not null" json:"vencimento"`
	Status           StatusParcela   `gorm:"size:20;not null;default:'pendente';index" json:"status"`
	DataPagamento    *time.Time      `json:"dataPagamento"`

	// Código de cobrança opaco fornecido pelo provedor externo.
	CodigoPagamento *string    `gorm:"size:512" json:"-"`
	CodigoGeradoEm  *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate cria as tabelas no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&PlanoPagamento{}, &Parcela{})
}
