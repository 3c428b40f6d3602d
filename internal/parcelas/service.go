// internal/parcelas/service.go
package parcelas

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chamagas/api-financeiro/internal/auditoria"
	"github.com/chamagas/api-financeiro/internal/pagamento"
	"github.com/chamagas/api-financeiro/internal/parcelamento"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JanelaExibicaoCodigo é por quanto tempo o código de pagamento fica visível
// nas consultas depois de gerado.
const JanelaExibicaoCodigo = 3 * time.Hour

// Service concentra as regras de negócio do ciclo de vida das parcelas.
// Toda operação de escrita roda em uma transação própria; as transições de
// status usam verificação otimista (UPDATE condicionado ao pré-estado) para
// que duas operações concorrentes sobre a mesma parcela nunca passem juntas.
type Service struct {
	DB      *gorm.DB
	Repo    *Repository
	Audit   *auditoria.Registrador
	Gerador pagamento.GeradorReferencia
	Janela  time.Duration
}

// NewService instancia o serviço com a janela de exibição padrão.
func NewService(db *gorm.DB, audit *auditoria.Registrador, gerador pagamento.GeradorReferencia) *Service {
	return &Service{
		DB:      db,
		Repo:    NewRepository(db),
		Audit:   audit,
		Gerador: gerador,
		Janela:  JanelaExibicaoCodigo,
	}
}

/* ============================ Criação do plano ============================ */

// CriarPlano gera o cronograma e persiste plano + parcelas, todas pendentes.
// Um pedido nunca recebe dois planos: além da checagem aqui, o índice único
// em pedido_id segura corridas no banco.
func (s *Service) CriarPlano(pedidoID uint, total decimal.Decimal, qtd int, ancora time.Time) (*PlanoPagamento, error) {
	agendadas, err := parcelamento.Gerar(total, qtd, ancora)
	if err != nil {
		return nil, err
	}

	var plano *PlanoPagamento
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)

		existente, err := repo.FindPlanoByPedido(pedidoID)
		if err != nil {
			return err
		}
		if existente != nil {
			return ErrPlanoDuplicado
		}

		plano = &PlanoPagamento{
			PedidoID:    pedidoID,
			ValorTotal:  total,
			QtdParcelas: qtd,
			Status:      PlanoAtivo,
		}
		for _, a := range agendadas {
			plano.Parcelas = append(plano.Parcelas, Parcela{
				Numero:     a.Numero,
				Valor:      a.Valor,
				Vencimento: a.Vencimento,
				Status:     StatusPendente,
			})
		}
		return repo.CreatePlano(plano)
	})
	if err != nil {
		return nil, err
	}
	return plano, nil
}

/* ========================== Transições de status ========================== */

// MarcarPaga registra o pagamento de uma parcela pendente ou vencida.
// pagaEm nulo usa o horário atual. Se todas as parcelas do plano ficarem
// pagas, o plano vira quitado na mesma transação.
func (s *Service) MarcarPaga(id uint, pagaEm *time.Time) (*Parcela, error) {
	quando := time.Now()
	if pagaEm != nil {
		quando = *pagaEm
	}

	var atualizada *Parcela
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)

		parcela, err := repo.FindParcelaByID(id)
		if err != nil {
			return err
		}
		if parcela.Status == StatusPaga {
			return ErrParcelaJaPaga
		}
		if err := s.planoAceitaTransicao(repo, parcela.PlanoPagamentoID); err != nil {
			return err
		}

		rows, err := repo.UpdateStatusGuarded(id, parcela.Status, map[string]interface{}{
			"status":         StatusPaga,
			"data_pagamento": quando,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return s.conflitoAoPagar(repo, id)
		}

		if err := s.recomputarPlano(repo, parcela.PlanoPagamentoID); err != nil {
			return err
		}

		atualizada, err = repo.FindParcelaByID(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return atualizada, nil
}

// conflitoAoPagar traduz um UPDATE de zero linhas no erro certo: quem chegou
// depois de um pagamento concorrente recebe ErrParcelaJaPaga; qualquer outra
// corrida vira ErrConflito.
func (s *Service) conflitoAoPagar(repo *Repository, id uint) error {
	atual, err := repo.FindParcelaByID(id)
	if err != nil {
		return err
	}
	if atual.Status == StatusPaga {
		return ErrParcelaJaPaga
	}
	return ErrConflito
}

// MarcarVencida transiciona pendente → vencida. Só vale se o vencimento já
// passou. Parcela paga não vence: a correção administrativa é o estorno.
func (s *Service) MarcarVencida(id uint, agora time.Time) (*Parcela, error) {
	var atualizada *Parcela
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)

		parcela, err := repo.FindParcelaByID(id)
		if err != nil {
			return err
		}
		if parcela.Status != StatusPendente {
			return ErrTransicaoInvalida
		}
		if parcela.Vencimento.After(agora) {
			return ErrTransicaoInvalida
		}
		if err := s.planoAceitaTransicao(repo, parcela.PlanoPagamentoID); err != nil {
			return err
		}

		rows, err := repo.UpdateStatusGuarded(id, StatusPendente, map[string]interface{}{
			"status": StatusVencida,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrConflito
		}

		atualizada, err = repo.FindParcelaByID(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return atualizada, nil
}

// MarcarVencidasEmLote aplica MarcarVencida a todas as parcelas pendentes com
// vencimento anterior à referência. Corridas individuais não interrompem a
// varredura. Retorna quantas parcelas foram marcadas.
func (s *Service) MarcarVencidasEmLote(agora time.Time) (int, error) {
	pendentes, err := s.Repo.ListVencidasPendentes(agora)
	if err != nil {
		return 0, err
	}

	marcadas := 0
	for _, p := range pendentes {
		if _, err := s.MarcarVencida(p.ID, agora); err != nil {
			if errors.Is(err, ErrConflito) || errors.Is(err, ErrTransicaoInvalida) {
				continue
			}
			return marcadas, err
		}
		marcadas++
	}
	return marcadas, nil
}

// Estornar desfaz o pagamento de uma parcela (correção administrativa).
// Só vale a partir de paga; destino é pendente ou vencida. Limpa a data de
// pagamento, devolve o plano a ativo se estava quitado e grava a trilha de
// auditoria na mesma transação.
func (s *Service) Estornar(id uint, destino StatusParcela, autor string) (*Parcela, error) {
	if destino != StatusPendente && destino != StatusVencida {
		return nil, ErrTransicaoInvalida
	}

	var atualizada *Parcela
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)

		parcela, err := repo.FindParcelaByID(id)
		if err != nil {
			return err
		}
		if parcela.Status != StatusPaga {
			return ErrTransicaoInvalida
		}
		if err := s.planoAceitaTransicao(repo, parcela.PlanoPagamentoID); err != nil {
			return err
		}

		rows, err := repo.UpdateStatusGuarded(id, StatusPaga, map[string]interface{}{
			"status":         destino,
			"data_pagamento": nil,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrConflito
		}

		if err := s.recomputarPlano(repo, parcela.PlanoPagamentoID); err != nil {
			return err
		}

		if err := s.Audit.Registrar(tx, &auditoria.Registro{
			Entidade:   "parcela",
			EntidadeID: id,
			Acao:       "estorno",
			De:         string(StatusPaga),
			Para:       string(destino),
			Autor:      autor,
		}); err != nil {
			return err
		}

		atualizada, err = repo.FindParcelaByID(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return atualizada, nil
}

// CancelarPlano marca o plano inteiro como cancelado (disparado pelo
// cancelamento do pedido). Não mexe no status das parcelas.
func (s *Service) CancelarPlano(planoID uint, autor string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)

		plano, err := repo.FindPlanoByID(planoID)
		if err != nil {
			return err
		}
		if plano.Status != PlanoAtivo {
			return ErrTransicaoInvalida
		}

		if err := repo.UpdateStatusPlano(planoID, PlanoCancelado); err != nil {
			return err
		}
		return s.Audit.Registrar(tx, &auditoria.Registro{
			Entidade:   "plano",
			EntidadeID: planoID,
			Acao:       "cancelamento",
			De:         string(PlanoAtivo),
			Para:       string(PlanoCancelado),
			Autor:      autor,
		})
	})
}

// planoAceitaTransicao bloqueia transições de parcela em plano cancelado.
func (s *Service) planoAceitaTransicao(repo *Repository, planoID uint) error {
	var plano PlanoPagamento
	if err := repo.DB.First(&plano, planoID).Error; err != nil {
		return err
	}
	if plano.Status == PlanoCancelado {
		return ErrTransicaoInvalida
	}
	return nil
}

// recomputarPlano mantém o invariante plano quitado ⇔ todas as parcelas pagas.
func (s *Service) recomputarPlano(repo *Repository, planoID uint) error {
	var plano PlanoPagamento
	if err := repo.DB.First(&plano, planoID).Error; err != nil {
		return err
	}
	if plano.Status == PlanoCancelado {
		return nil
	}

	naoPagas, err := repo.CountNaoPagas(planoID)
	if err != nil {
		return err
	}
	switch {
	case naoPagas == 0 && plano.Status != PlanoQuitado:
		return repo.UpdateStatusPlano(planoID, PlanoQuitado)
	case naoPagas > 0 && plano.Status == PlanoQuitado:
		return repo.UpdateStatusPlano(planoID, PlanoAtivo)
	}
	return nil
}

/* ========================= Códigos de pagamento ========================= */

// AnexarCodigo grava o código de cobrança em uma parcela não paga.
// Idempotente por parcela: um novo código sobrescreve o anterior sem efeito
// sobre o status.
func (s *Service) AnexarCodigo(id uint, codigo string) (*Parcela, error) {
	if strings.TrimSpace(codigo) == "" {
		return nil, ErrCodigoVazio
	}

	parcela, err := s.Repo.FindParcelaByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.planoAceitaTransicao(s.Repo, parcela.PlanoPagamentoID); err != nil {
		return nil, err
	}

	rows, err := s.Repo.UpdateCodigoPagamento(id, codigo, time.Now())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		parcela, err := s.Repo.FindParcelaByID(id)
		if err != nil {
			return nil, err
		}
		if parcela.Status == StatusPaga {
			return nil, ErrTransicaoInvalida
		}
		return nil, ErrConflito
	}
	return s.Repo.FindParcelaByID(id)
}

// ResultadoGeracao resume uma rodada de geração de códigos para um plano.
type ResultadoGeracao struct {
	Geradas int   `json:"geradas"`
	Falhas  []int `json:"falhas"` // números das parcelas cujo provedor falhou
}

// GerarCodigos pede ao provedor um código para cada parcela não paga que
// ainda não tem um. Falha em uma parcela não interrompe as demais.
func (s *Service) GerarCodigos(ctx context.Context, planoID uint) (*ResultadoGeracao, error) {
	plano, err := s.Repo.FindPlanoByID(planoID)
	if err != nil {
		return nil, err
	}

	resultado := &ResultadoGeracao{}
	for _, p := range plano.Parcelas {
		if p.Status == StatusPaga || p.CodigoPagamento != nil {
			continue
		}
		descricao := fmt.Sprintf("Parcela %d/%d do pedido %d", p.Numero, plano.QtdParcelas, plano.PedidoID)
		codigo, err := s.Gerador.GerarReferencia(ctx, p.Valor, descricao)
		if err != nil {
			resultado.Falhas = append(resultado.Falhas, p.Numero)
			continue
		}
		if _, err := s.AnexarCodigo(p.ID, codigo); err != nil {
			resultado.Falhas = append(resultado.Falhas, p.Numero)
			continue
		}
		resultado.Geradas++
	}
	return resultado, nil
}

// CodigoVisivel aplica a janela de exibição: o código só aparece nas
// consultas durante s.Janela após a geração.
func (s *Service) CodigoVisivel(p *Parcela, agora time.Time) bool {
	if p.CodigoPagamento == nil || p.CodigoGeradoEm == nil {
		return false
	}
	return agora.Sub(*p.CodigoGeradoEm) <= s.Janela
}
