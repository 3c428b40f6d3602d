// internal/taxas/model.go
package taxas

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxaRevenda é a configuração de taxa da revenda para uma modalidade.
// Existe no máximo uma linha por (revenda, modalidade); a coluna `ativa`
// marca qual modalidade está valendo para a revenda no momento.
type TaxaRevenda struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	RevendaID  uint            `gorm:"not null;uniqueIndex:idx_revenda_modalidade" json:"revendaId"`
	Modalidade Modalidade      `gorm:"size:10;not null;uniqueIndex:idx_revenda_modalidade" json:"modalidade"`
	Percentual decimal.Decimal `gorm:"type:numeric(6,2);not null" json:"percentual"`
	Fixa       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"fixa"`
	Ativa      bool            `gorm:"not null;default:false;index" json:"ativa"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// TaxaUnidade guarda o override de taxa de uma unidade de revenda.
// Percentual e Fixa são tri-estado: NULL significa "sem override" — um valor
// salvo conta como override mesmo quando é numericamente igual ao padrão.
// O override de valores só vale quando AMBOS os campos estão preenchidos.
// ModalidadeRepasse é independente dos valores: se nula, vale a modalidade
// ativa da revenda.
type TaxaUnidade struct {
	ID                uint                `gorm:"primaryKey" json:"id"`
	UnidadeID         uint                `gorm:"not null;uniqueIndex" json:"unidadeId"`
	RevendaID         uint                `gorm:"not null;index" json:"revendaId"`
	Percentual        decimal.NullDecimal `gorm:"type:numeric(6,2)" json:"percentual"`
	Fixa              decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"fixa"`
	ModalidadeRepasse *Modalidade         `gorm:"size:10" json:"modalidadeRepasse"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// TemOverrideValores informa se a unidade substitui os valores da revenda.
func (t *TaxaUnidade) TemOverrideValores() bool {
	return t != nil && t.Percentual.Valid && t.Fixa.Valid
}

// Migrate cria as tabelas no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&TaxaRevenda{}, &TaxaUnidade{})
}
