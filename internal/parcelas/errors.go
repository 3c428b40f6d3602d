// internal/parcelas/errors.go
package parcelas

import "errors"

var (
	// ErrPlanoDuplicado indica tentativa de criar um segundo plano para o
	// mesmo pedido.
	ErrPlanoDuplicado = errors.New("o pedido já possui um plano de pagamento")
	// ErrParcelaJaPaga indica tentativa de pagar uma parcela já paga.
	ErrParcelaJaPaga = errors.New("a parcela já está paga")
	// ErrTransicaoInvalida indica uma mudança de status fora da máquina de
	// estados da parcela ou do plano.
	ErrTransicaoInvalida = errors.New("transição de status inválida")
	// ErrConflito indica que o status observado mudou entre a leitura e a
	// escrita; o chamador deve reler e repetir a operação desejada.
	ErrConflito = errors.New("a parcela foi alterada por outra operação; releia e tente novamente")
	// ErrCodigoVazio indica tentativa de anexar um código de pagamento vazio.
	ErrCodigoVazio = errors.New("código de pagamento não pode ser vazio")
)
