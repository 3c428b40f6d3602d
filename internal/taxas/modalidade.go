package taxas

import "github.com/shopspring/decimal"

// Modalidade define o prazo de repasse do valor líquido à revenda.
type Modalidade string

const (
	ModalidadeD1  Modalidade = "D+1"
	ModalidadeD15 Modalidade = "D+15"
	ModalidadeD30 Modalidade = "D+30"
)

// ModalidadePadrao é usada quando nem a unidade nem a revenda definem uma.
const ModalidadePadrao = ModalidadeD1

// Valida informa se o valor corresponde a uma modalidade conhecida.
func (m Modalidade) Valida() bool {
	switch m {
	case ModalidadeD1, ModalidadeD15, ModalidadeD30:
		return true
	}
	return false
}

// Dias retorna o deslocamento em dias corridos da modalidade.
func (m Modalidade) Dias() int {
	switch m {
	case ModalidadeD15:
		return 15
	case ModalidadeD30:
		return 30
	default:
		return 1
	}
}

// TaxaPadrao retorna o percentual e a taxa fixa da plataforma para a
// modalidade, aplicados quando a revenda ainda não possui configuração.
func (m Modalidade) TaxaPadrao() (percentual, fixa decimal.Decimal) {
	fixa = decimal.NewFromFloat(0.50)
	switch m {
	case ModalidadeD15:
		percentual = decimal.NewFromFloat(6.5)
	case ModalidadeD30:
		percentual = decimal.NewFromFloat(5.0)
	default:
		percentual = decimal.NewFromFloat(8.0)
	}
	return percentual, fixa
}
