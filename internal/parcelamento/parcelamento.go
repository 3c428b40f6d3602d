// Package parcelamento gera o cronograma de parcelas de um pedido.
// É puro: não toca banco nem relógio — a data âncora vem do chamador.
package parcelamento

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrPlanoInvalido indica uma quantidade de parcelas fora de {1, 2, 3}.
	ErrPlanoInvalido = errors.New("plano de parcelamento inválido: use 1, 2 ou 3 parcelas")
	// ErrValorInvalido indica um total menor ou igual a zero.
	ErrValorInvalido = errors.New("valor total do pedido deve ser maior que zero")
)

// IntervaloDias é o espaçamento entre vencimentos consecutivos.
const IntervaloDias = 15

// ParcelaAgendada é uma parcela planejada, ainda não persistida.
type ParcelaAgendada struct {
	Numero     int
	Vencimento time.Time
	Valor      decimal.Decimal
}

// Gerar produz o cronograma para o total informado.
//
// A primeira parcela vence na data âncora (funciona como entrada); as
// seguintes a cada 15 dias. O total é dividido igualmente, truncado nos
// centavos; a sobra do arredondamento é absorvida pela ÚLTIMA parcela, de
// modo que a soma das parcelas é exatamente igual ao total.
func Gerar(total decimal.Decimal, plano int, ancora time.Time) ([]ParcelaAgendada, error) {
	if plano < 1 || plano > 3 {
		return nil, ErrPlanoInvalido
	}
	if !total.IsPositive() {
		return nil, ErrValorInvalido
	}

	n := int64(plano)
	base := total.DivRound(decimal.NewFromInt(n), 8).Truncate(2)
	// Total abaixo de um centavo por parcela geraria parcela de valor zero.
	if !base.IsPositive() {
		return nil, ErrValorInvalido
	}
	ultima := total.Sub(base.Mul(decimal.NewFromInt(n - 1)))

	parcelas := make([]ParcelaAgendada, 0, plano)
	for i := 0; i < plano; i++ {
		valor := base
		if i == plano-1 {
			valor = ultima
		}
		parcelas = append(parcelas, ParcelaAgendada{
			Numero:     i + 1,
			Vencimento: ancora.AddDate(0, 0, i*IntervaloDias),
			Valor:      valor,
		})
	}
	return parcelas, nil
}
