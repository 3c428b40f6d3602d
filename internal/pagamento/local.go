// internal/pagamento/local.go
package pagamento

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProvedorLocal gera pseudo-referências para desenvolvimento e testes,
// sem depender do provedor externo.
type ProvedorLocal struct {
	Prefixo string
}

// NewProvedorLocal cria o provedor com o prefixo "REF".
func NewProvedorLocal() *ProvedorLocal {
	return &ProvedorLocal{Prefixo: "REF"}
}

// GerarReferencia devolve um código único; valor e descrição são ignorados.
func (p *ProvedorLocal) GerarReferencia(_ context.Context, _ decimal.Decimal, _ string) (string, error) {
	return p.Prefixo + "-" + uuid.NewString(), nil
}
