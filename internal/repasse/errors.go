// internal/repasse/errors.go
package repasse

import "errors"

var (
	// ErrTaxaExcedeBruto indica que a taxa resolvida consumiria mais que o
	// valor bruto do pedido. Fatal: a transação não é criada.
	ErrTaxaExcedeBruto = errors.New("a taxa excede o valor bruto do pedido")
	// ErrTransacaoDuplicada indica tentativa de criar uma segunda transação
	// para o mesmo pedido.
	ErrTransacaoDuplicada = errors.New("o pedido já possui transação financeira")
	// ErrTransicaoInvalida indica uma mudança de status fora do fluxo
	// pendente → liberado → repassado (cancelado só antes do repasse).
	ErrTransicaoInvalida = errors.New("transição de status de repasse inválida")
	// ErrConflito indica transição concorrente; releia e tente novamente.
	ErrConflito = errors.New("a transação foi alterada por outra operação; releia e tente novamente")
)
