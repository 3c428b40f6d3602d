// internal/parcelas/dto.go
package parcelas

import (
	"time"

	"github.com/shopspring/decimal"
)

// DTO usado no POST /pedidos/{id}/plano-pagamento
type CriarPlanoDTO struct {
	ValorTotal  float64 `json:"valorTotal"`
	QtdParcelas int     `json:"qtdParcelas"`
	DataPedido  string  `json:"dataPedido"` // RFC3339; vazio usa agora
}

// DTO usado no POST /parcelas/{pid}/pagamento
type PagamentoDTO struct {
	DataPagamento string `json:"dataPagamento"` // RFC3339; vazio usa agora
}

// DTO usado no POST /parcelas/{pid}/estorno
type EstornoDTO struct {
	Destino string `json:"destino"` // "pendente" ou "vencida"
	Autor   string `json:"autor"`
}

// DTO usado no PUT /parcelas/{pid}/codigo-pagamento
type CodigoDTO struct {
	Codigo string `json:"codigo"`
}

// VisaoParcela é a parcela como exposta para telas de acompanhamento.
// O código de pagamento só sai na resposta dentro da janela de exibição.
type VisaoParcela struct {
	ID              uint            `json:"id"`
	Numero          int             `json:"numero"`
	Valor           decimal.Decimal `json:"valor"`
	Vencimento      time.Time       `json:"vencimento"`
	Status          StatusParcela   `json:"status"`
	DataPagamento   *time.Time      `json:"dataPagamento"`
	CodigoPagamento *string         `json:"codigoPagamento,omitempty"`
	CodigoVisivel   bool            `json:"codigoVisivel"`
}

// VisaoPlano é o plano com parcelas e agregados computados.
type VisaoPlano struct {
	ID          uint            `json:"id"`
	PedidoID    uint            `json:"pedidoId"`
	ValorTotal  decimal.Decimal `json:"valorTotal"`
	QtdParcelas int             `json:"qtdParcelas"`
	Status      StatusPlano     `json:"status"`
	Agregados   *Agregados      `json:"agregados"`
	Parcelas    []VisaoParcela  `json:"parcelas"`
}

// MontarVisao monta a visão do plano aplicando a janela de exibição.
func (s *Service) MontarVisao(plano *PlanoPagamento, agora time.Time) (*VisaoPlano, error) {
	agg, err := s.Repo.AgregadosByPlano(plano.ID)
	if err != nil {
		return nil, err
	}

	visao := &VisaoPlano{
		ID:          plano.ID,
		PedidoID:    plano.PedidoID,
		ValorTotal:  plano.ValorTotal,
		QtdParcelas: plano.QtdParcelas,
		Status:      plano.Status,
		Agregados:   agg,
		Parcelas:    make([]VisaoParcela, 0, len(plano.Parcelas)),
	}
	for i := range plano.Parcelas {
		p := &plano.Parcelas[i]
		v := VisaoParcela{
			ID:            p.ID,
			Numero:        p.Numero,
			Valor:         p.Valor,
			Vencimento:    p.Vencimento,
			Status:        p.Status,
			DataPagamento: p.DataPagamento,
			CodigoVisivel: s.CodigoVisivel(p, agora),
		}
		if v.CodigoVisivel {
			v.CodigoPagamento = p.CodigoPagamento
		}
		visao.Parcelas = append(visao.Parcelas, v)
	}
	return visao, nil
}
