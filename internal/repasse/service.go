// internal/repasse/service.go
package repasse

import (
	"time"

	"github.com/chamagas/api-financeiro/internal/taxas"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service aplica o cálculo de repasse e a máquina de estados da transação.
type Service struct {
	DB       *gorm.DB
	Repo     *Repository
	Resolver *taxas.Resolver
}

// NewService instancia o serviço.
func NewService(db *gorm.DB, resolver *taxas.Resolver) *Service {
	return &Service{DB: db, Repo: NewRepository(db), Resolver: resolver}
}

// Calculo é o resultado puro do cálculo de repasse, antes da persistência.
type Calculo struct {
	ValorTaxa    decimal.Decimal
	ValorLiquido decimal.Decimal
	DataPrevista time.Time
}

// Calcular aplica a taxa resolvida ao valor bruto do pedido:
//
//	valorTaxa = bruto × (percentual / 100) + fixa
//	liquido   = bruto − valorTaxa
//
// A data prevista é a criação do pedido mais o deslocamento da modalidade.
// Líquido negativo é fatal: ErrTaxaExcedeBruto.
func Calcular(bruto decimal.Decimal, taxa taxas.TaxaResolvida, criadoEm time.Time) (*Calculo, error) {
	cem := decimal.NewFromInt(100)
	valorTaxa := bruto.Mul(taxa.Percentual).Div(cem).Add(taxa.Fixa).Round(2)
	liquido := bruto.Sub(valorTaxa)
	if liquido.IsNegative() {
		return nil, ErrTaxaExcedeBruto
	}
	return &Calculo{
		ValorTaxa:    valorTaxa,
		ValorLiquido: liquido,
		DataPrevista: criadoEm.AddDate(0, 0, taxa.Modalidade.Dias()),
	}, nil
}

// CriarParaPedido resolve a taxa efetiva da unidade, calcula os valores e
// persiste a transação financeira do pedido. O repasse é ancorado no pedido
// como um todo, independente do status das parcelas.
func (s *Service) CriarParaPedido(pedidoID, unidadeID, revendaID uint, bruto decimal.Decimal, criadoEm time.Time) (*TransacaoFinanceira, error) {
	taxa, err := s.Resolver.ResolverTaxa(unidadeID, revendaID)
	if err != nil {
		return nil, err
	}
	calculo, err := Calcular(bruto, taxa, criadoEm)
	if err != nil {
		return nil, err
	}

	var transacao *TransacaoFinanceira
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := &Repository{DB: tx}

		existente, err := repo.FindByPedido(pedidoID)
		if err != nil {
			return err
		}
		if existente != nil {
			return ErrTransacaoDuplicada
		}

		transacao = &TransacaoFinanceira{
			PedidoID:       pedidoID,
			RevendaID:      revendaID,
			ValorBruto:     bruto,
			TaxaPercentual: taxa.Percentual,
			TaxaFixa:       taxa.Fixa,
			ValorTaxa:      calculo.ValorTaxa,
			ValorLiquido:   calculo.ValorLiquido,
			Modalidade:     taxa.Modalidade,
			DataPrevista:   calculo.DataPrevista,
			Status:         StatusPendente,
		}
		return repo.Create(transacao)
	})
	if err != nil {
		return nil, err
	}
	return transacao, nil
}

// transicoes lista, para cada status, os destinos permitidos.
var transicoes = map[StatusRepasse][]StatusRepasse{
	StatusPendente:  {StatusLiberado, StatusCancelado},
	StatusLiberado:  {StatusRepassado, StatusCancelado},
	StatusRepassado: {},
	StatusCancelado: {},
}

func transicaoPermitida(de, para StatusRepasse) bool {
	for _, destino := range transicoes[de] {
		if destino == para {
			return true
		}
	}
	return false
}

// AtualizarStatus aplica uma transição disparada pelo processamento externo
// de repasses, validando o fluxo e protegendo contra escrita concorrente.
func (s *Service) AtualizarStatus(id uint, para StatusRepasse) (*TransacaoFinanceira, error) {
	if !para.Valida() {
		return nil, ErrTransicaoInvalida
	}

	transacao, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !transicaoPermitida(transacao.Status, para) {
		return nil, ErrTransicaoInvalida
	}

	rows, err := s.Repo.UpdateStatusGuarded(id, transacao.Status, para)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrConflito
	}
	return s.Repo.FindByID(id)
}
