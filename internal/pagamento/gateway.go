// Package pagamento abstrai o provedor externo de cobrança. O motor só
// precisa de um código de pagamento opaco por parcela; a liquidação em si
// acontece fora da plataforma.
package pagamento

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrReferenciaVazia indica que o provedor devolveu um código vazio.
var ErrReferenciaVazia = errors.New("provedor de pagamento retornou referência vazia")

// GeradorReferencia gera um código de pagamento para uma cobrança.
// O código retornado é opaco: não é interpretado nem validado além de
// não poder ser vazio.
type GeradorReferencia interface {
	GerarReferencia(ctx context.Context, valor decimal.Decimal, descricao string) (string, error)
}
