// internal/taxas/dto.go
package taxas

// DTO usado no PUT /revendas/{id}/taxas/{modalidade}
type TaxaRevendaDTO struct {
	Percentual float64 `json:"percentual"`
	Fixa       float64 `json:"fixa"`
}

// DTO usado no PUT /unidades/{id}/taxas.
// Ponteiros distinguem "campo limpo" (null → remove o override) de valor
// informado — inclusive quando o valor digitado é igual ao padrão.
type TaxaUnidadeDTO struct {
	Percentual        *float64 `json:"percentual"`
	Fixa              *float64 `json:"fixa"`
	ModalidadeRepasse *string  `json:"modalidadeRepasse"`
}
