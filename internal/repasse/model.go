// internal/repasse/model.go
package repasse

import (
	"time"

	"github.com/chamagas/api-financeiro/internal/taxas"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatusRepasse é o estado da transação financeira no fluxo de repasse.
// As transições são disparadas pelo processamento externo de lotes; aqui
// apenas se valida a ordem pendente → liberado → repassado, com cancelado
// alcançável só antes do repasse.
type StatusRepasse string

const (
	StatusPendente  StatusRepasse = "pendente"
	StatusLiberado  StatusRepasse = "liberado"
	StatusRepassado StatusRepasse = "repassado"
	StatusCancelado StatusRepasse = "cancelado"
)

// Valida informa se o valor corresponde a um status conhecido.
func (s StatusRepasse) Valida() bool {
	switch s {
	case StatusPendente, StatusLiberado, StatusRepassado, StatusCancelado:
		return true
	}
	return false
}

// TransacaoFinanceira registra o que a plataforma deve à revenda por um
// pedido. Criada uma única vez por pedido (índice único em pedido_id);
// os valores ficam congelados na criação — só o status transiciona.
type TransacaoFinanceira struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	PedidoID       uint             `gorm:"not null;uniqueIndex" json:"pedidoId"`
	RevendaID      uint             `gorm:"not null;index" json:"revendaId"`
	ValorBruto     decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"valorBruto"`
	TaxaPercentual decimal.Decimal  `gorm:"type:numeric(6,2);not null" json:"taxaPercentual"`
	TaxaFixa       decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"taxaFixa"`
	ValorTaxa      decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"valorTaxa"`
	ValorLiquido   decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"valorLiquido"`
	Modalidade     taxas.Modalidade `gorm:"size:10;not null" json:"modalidade"`
	DataPrevista   time.Time        `gorm:"not null" json:"dataPrevista"`
	Status         StatusRepasse    `gorm:"size:20;not null;default:'pendente';index" json:"status"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&TransacaoFinanceira{})
}
