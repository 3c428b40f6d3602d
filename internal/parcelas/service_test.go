package parcelas

import (
	"context"
	"testing"
	"time"

	"github.com/chamagas/api-financeiro/internal/auditoria"
	"github.com/chamagas/api-financeiro/internal/pagamento"
	"github.com/chamagas/api-financeiro/internal/parcelamento"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, auditoria.Migrate(db))

	return NewService(db, auditoria.NewRegistrador(nil), pagamento.NewProvedorLocal())
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

var ancora = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func criaPlano(t *testing.T, s *Service, pedidoID uint, total string, qtd int, anc time.Time) *PlanoPagamento {
	t.Helper()
	plano, err := s.CriarPlano(pedidoID, dec(total), qtd, anc)
	require.NoError(t, err)
	return plano
}

/* ============================ Criação do plano ============================ */

func TestCriarPlano(t *testing.T) {
	s := setupService(t)

	plano := criaPlano(t, s, 1, "300.00", 3, ancora)

	assert.Equal(t, PlanoAtivo, plano.Status)
	require.Len(t, plano.Parcelas, 3)

	soma := decimal.Zero
	for i, p := range plano.Parcelas {
		assert.Equal(t, i+1, p.Numero)
		assert.Equal(t, StatusPendente, p.Status)
		assert.Nil(t, p.DataPagamento)
		assert.True(t, p.Valor.Equal(dec("100.00")))
		soma = soma.Add(p.Valor)
	}
	assert.True(t, soma.Equal(dec("300.00")))
}

func TestCriarPlano_Duplicado(t *testing.T) {
	s := setupService(t)

	criaPlano(t, s, 1, "100.00", 2, ancora)

	_, err := s.CriarPlano(1, dec("100.00"), 2, ancora)
	assert.ErrorIs(t, err, ErrPlanoDuplicado)

	// mesmo com outra configuração de parcelamento
	_, err = s.CriarPlano(1, dec("200.00"), 3, ancora)
	assert.ErrorIs(t, err, ErrPlanoDuplicado)
}

func TestCriarPlano_ErrosDoCronograma(t *testing.T) {
	s := setupService(t)

	_, err := s.CriarPlano(1, dec("100.00"), 5, ancora)
	assert.ErrorIs(t, err, parcelamento.ErrPlanoInvalido)

	_, err = s.CriarPlano(1, decimal.Zero, 2, ancora)
	assert.ErrorIs(t, err, parcelamento.ErrValorInvalido)
}

/* ========================== Transições de status ========================== */

func TestMarcarPaga(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "300.00", 3, ancora)

	parcela, err := s.MarcarPaga(plano.Parcelas[0].ID, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusPaga, parcela.Status)
	require.NotNil(t, parcela.DataPagamento)

	// duas parcelas pendentes: plano continua ativo
	atual, err := s.Repo.FindPlanoByID(plano.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanoAtivo, atual.Status)
}

func TestMarcarPaga_DataInformada(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "100.00", 1, ancora)

	quando := ancora.AddDate(0, 0, 2)
	parcela, err := s.MarcarPaga(plano.Parcelas[0].ID, &quando)
	require.NoError(t, err)
	require.NotNil(t, parcela.DataPagamento)
	assert.True(t, parcela.DataPagamento.Equal(quando))
}

func TestMarcarPaga_Duplicado(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "300.00", 3, ancora)

	_, err := s.MarcarPaga(plano.Parcelas[0].ID, nil)
	require.NoError(t, err)

	_, err = s.MarcarPaga(plano.Parcelas[0].ID, nil)
	assert.ErrorIs(t, err, ErrParcelaJaPaga)

	// a chamada rejeitada não mexe no plano
	atual, err := s.Repo.FindPlanoByID(plano.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanoAtivo, atual.Status)
}

func TestMarcarPaga_QuitaOPlano(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "300.00", 3, ancora)

	for _, p := range plano.Parcelas {
		_, err := s.MarcarPaga(p.ID, nil)
		require.NoError(t, err)
	}

	atual, err := s.Repo.FindPlanoByID(plano.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanoQuitado, atual.Status)
}

func TestMarcarVencida(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "200.00", 2, ancora)

	// vencimento da primeira é a âncora: já passou
	depois := ancora.AddDate(0, 0, 1)
	parcela, err := s.MarcarVencida(plano.Parcelas[0].ID, depois)
	require.NoError(t, err)
	assert.Equal(t, StatusVencida, parcela.Status)
	assert.Nil(t, parcela.DataPagamento)

	// a segunda vence em ancora+15: ainda não passou
	_, err = s.MarcarVencida(plano.Parcelas[1].ID, depois)
	assert.ErrorIs(t, err, ErrTransicaoInvalida)
}

// Parcela paga não vira vencida por ação direta; a correção é o estorno.
func TestMarcarVencida_ParcelaPagaRejeitada(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "100.00", 1, ancora)

	_, err := s.MarcarPaga(plano.Parcelas[0].ID, nil)
	require.NoError(t, err)

	_, err = s.MarcarVencida(plano.Parcelas[0].ID, ancora.AddDate(0, 1, 0))
	assert.ErrorIs(t, err, ErrTransicaoInvalida)
}

func TestMarcarPaga_DeVencida(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "100.00", 1, ancora)

	_, err := s.MarcarVencida(plano.Parcelas[0].ID, ancora.AddDate(0, 0, 1))
	require.NoError(t, err)

	parcela, err := s.MarcarPaga(plano.Parcelas[0].ID, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPaga, parcela.Status)
}

func TestMarcarVencidasEmLote(t *testing.T) {
	s := setupService(t)
	// âncora no passado: parcelas 1 e 2 vencidas, 3 ainda não
	criaPlano(t, s, 1, "300.00", 3, ancora)
	criaPlano(t, s, 2, "100.00", 1, ancora)

	referencia := ancora.AddDate(0, 0, 16)
	marcadas, err := s.MarcarVencidasEmLote(referencia)
	require.NoError(t, err)
	assert.Equal(t, 3, marcadas)

	// segunda varredura não encontra nada
	marcadas, err = s.MarcarVencidasEmLote(referencia)
	require.NoError(t, err)
	assert.Equal(t, 0, marcadas)
}

/* ============================ Concorrência ============================ */

// O UPDATE condicionado ao pré-estado não afeta linha alguma quando o status
// observado já mudou — é o que transforma corridas em erro em vez de
// escrita silenciosa.
func TestUpdateStatusGuarded_PreEstadoDesatualizado(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "100.00", 1, ancora)
	id := plano.Parcelas[0].ID

	// a parcela está pendente; o guard espera vencida
	rows, err := s.Repo.UpdateStatusGuarded(id, StatusVencida, map[string]interface{}{
		"status": StatusPaga,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	parcela, err := s.Repo.FindParcelaByID(id)
	require.NoError(t, err)
	assert.Equal(t, StatusPendente, parcela.Status)
	assert.Nil(t, parcela.DataPagamento)
}

// Quem perde a corrida para um pagamento concorrente recebe ErrParcelaJaPaga;
// qualquer outra mudança concorrente vira ErrConflito.
func TestConflitoAoPagar(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "200.00", 2, ancora)

	// parcela paga por outra operação
	_, err := s.MarcarPaga(plano.Parcelas[0].ID, nil)
	require.NoError(t, err)
	err = s.conflitoAoPagar(s.Repo, plano.Parcelas[0].ID)
	assert.ErrorIs(t, err, ErrParcelaJaPaga)

	// parcela marcada vencida por outra operação
	_, err = s.MarcarVencida(plano.Parcelas[1].ID, ancora.AddDate(0, 0, 16))
	require.NoError(t, err)
	err = s.conflitoAoPagar(s.Repo, plano.Parcelas[1].ID)
	assert.ErrorIs(t, err, ErrConflito)
}

/* =============================== Estorno =============================== */

func TestEstornar(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "100.00", 1, ancora)
	id := plano.Parcelas[0].ID

	_, err := s.MarcarPaga(id, nil)
	require.NoError(t, err)

	atual, err := s.Repo.FindPlanoByID(plano.ID)
	require.NoError(t, err)
	require.Equal(t, PlanoQuitado, atual.Status)

	parcela, err := s.Estornar(id, StatusPendente, "admin@plataforma")
	require.NoError(t, err)

	assert.Equal(t, StatusPendente, parcela.Status)
	assert.Nil(t, parcela.DataPagamento)

	// plano quitado volta a ativo
	atual, err = s.Repo.FindPlanoByID(plano.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanoAtivo, atual.Status)

	// trilha de auditoria gravada
	registros, err := s.Audit.ListarPorEntidade(s.DB, "parcela", id)
	require.NoError(t, err)
	require.Len(t, registros, 1)
	assert.Equal(t, "estorno", registros[0].Acao)
	assert.Equal(t, "paga", registros[0].De)
	assert.Equal(t, "pendente", registros[0].Para)
	assert.Equal(t, "admin@plataforma", registros[0].Autor)
}

func TestEstornar_ParaVencida(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "100.00", 1, ancora)
	id := plano.Parcelas[0].ID

	_, err := s.MarcarPaga(id, nil)
	require.NoError(t, err)

	parcela, err := s.Estornar(id, StatusVencida, "admin@plataforma")
	require.NoError(t, err)
	assert.Equal(t, StatusVencida, parcela.Status)
}

func TestEstornar_SoDeParcelaPaga(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "100.00", 1, ancora)

	_, err := s.Estornar(plano.Parcelas[0].ID, StatusPendente, "admin@plataforma")
	assert.ErrorIs(t, err, ErrTransicaoInvalida)
}

func TestEstornar_DestinoInvalido(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "100.00", 1, ancora)
	id := plano.Parcelas[0].ID

	_, err := s.MarcarPaga(id, nil)
	require.NoError(t, err)

	_, err = s.Estornar(id, StatusPaga, "admin@plataforma")
	assert.ErrorIs(t, err, ErrTransicaoInvalida)
}

// Ida e volta: estornar e pagar de novo devolve um estado paga equivalente.
func TestEstornar_IdaEVolta(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "100.00", 1, ancora)
	id := plano.Parcelas[0].ID

	_, err := s.MarcarPaga(id, nil)
	require.NoError(t, err)

	_, err = s.Estornar(id, StatusPendente, "admin@plataforma")
	require.NoError(t, err)

	parcela, err := s.MarcarPaga(id, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPaga, parcela.Status)
	assert.NotNil(t, parcela.DataPagamento)

	atual, err := s.Repo.FindPlanoByID(plano.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanoQuitado, atual.Status)
}

/* ============================ Cancelamento ============================ */

func TestCancelarPlano(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "200.00", 2, ancora)

	require.NoError(t, s.CancelarPlano(plano.ID, "admin@plataforma"))

	atual, err := s.Repo.FindPlanoByID(plano.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanoCancelado, atual.Status)

	// transições de parcela bloqueadas em plano cancelado
	_, err = s.MarcarPaga(plano.Parcelas[0].ID, nil)
	assert.ErrorIs(t, err, ErrTransicaoInvalida)

	// cancelar de novo também é inválido
	err = s.CancelarPlano(plano.ID, "admin@plataforma")
	assert.ErrorIs(t, err, ErrTransicaoInvalida)
}

// Plano cancelado não aceita correção nem código novo: nem estorno de uma
// parcela paga antes do cancelamento, nem anexar código de pagamento.
func TestCancelarPlano_BloqueiaEstornoEAnexarCodigo(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "200.00", 2, ancora)

	// paga a primeira; o plano segue ativo e pode ser cancelado
	_, err := s.MarcarPaga(plano.Parcelas[0].ID, nil)
	require.NoError(t, err)
	require.NoError(t, s.CancelarPlano(plano.ID, "admin@plataforma"))

	_, err = s.Estornar(plano.Parcelas[0].ID, StatusPendente, "admin@plataforma")
	assert.ErrorIs(t, err, ErrTransicaoInvalida)

	_, err = s.AnexarCodigo(plano.Parcelas[1].ID, "PIX-123")
	assert.ErrorIs(t, err, ErrTransicaoInvalida)
}

/* ========================= Códigos de pagamento ========================= */

func TestAnexarCodigo(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "200.00", 2, ancora)
	id := plano.Parcelas[0].ID

	parcela, err := s.AnexarCodigo(id, "PIX-123")
	require.NoError(t, err)
	require.NotNil(t, parcela.CodigoPagamento)
	assert.Equal(t, "PIX-123", *parcela.CodigoPagamento)
	assert.Equal(t, StatusPendente, parcela.Status)

	// sobrescrever é permitido e não mexe no status
	parcela, err = s.AnexarCodigo(id, "PIX-456")
	require.NoError(t, err)
	assert.Equal(t, "PIX-456", *parcela.CodigoPagamento)
	assert.Equal(t, StatusPendente, parcela.Status)
}

func TestAnexarCodigo_Invalido(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "100.00", 1, ancora)
	id := plano.Parcelas[0].ID

	_, err := s.AnexarCodigo(id, "   ")
	assert.ErrorIs(t, err, ErrCodigoVazio)

	_, err = s.MarcarPaga(id, nil)
	require.NoError(t, err)

	_, err = s.AnexarCodigo(id, "PIX-123")
	assert.ErrorIs(t, err, ErrTransicaoInvalida)
}

func TestGerarCodigos(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "300.00", 3, ancora)

	// primeira parcela paga: não recebe código
	_, err := s.MarcarPaga(plano.Parcelas[0].ID, nil)
	require.NoError(t, err)

	resultado, err := s.GerarCodigos(context.Background(), plano.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, resultado.Geradas)
	assert.Empty(t, resultado.Falhas)

	// nova rodada não regenera códigos existentes
	resultado, err = s.GerarCodigos(context.Background(), plano.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, resultado.Geradas)
}

func TestCodigoVisivel_JanelaDeExibicao(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "100.00", 1, ancora)

	parcela, err := s.AnexarCodigo(plano.Parcelas[0].ID, "PIX-123")
	require.NoError(t, err)
	require.NotNil(t, parcela.CodigoGeradoEm)

	geradoEm := *parcela.CodigoGeradoEm
	assert.True(t, s.CodigoVisivel(parcela, geradoEm.Add(time.Hour)))
	assert.True(t, s.CodigoVisivel(parcela, geradoEm.Add(3*time.Hour)))
	assert.False(t, s.CodigoVisivel(parcela, geradoEm.Add(3*time.Hour+time.Minute)))
}

func TestMontarVisao_EscondeCodigoForaDaJanela(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "100.00", 1, ancora)

	parcela, err := s.AnexarCodigo(plano.Parcelas[0].ID, "PIX-123")
	require.NoError(t, err)

	atual, err := s.Repo.FindPlanoByID(plano.ID)
	require.NoError(t, err)

	dentro, err := s.MontarVisao(atual, parcela.CodigoGeradoEm.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, dentro.Parcelas[0].CodigoPagamento)
	assert.True(t, dentro.Parcelas[0].CodigoVisivel)

	fora, err := s.MontarVisao(atual, parcela.CodigoGeradoEm.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, fora.Parcelas[0].CodigoPagamento)
	assert.False(t, fora.Parcelas[0].CodigoVisivel)
}

/* ============================== Agregados ============================== */

func TestAgregados(t *testing.T) {
	s := setupService(t)
	plano := criaPlano(t, s, 1, "300.00", 3, ancora)

	_, err := s.MarcarPaga(plano.Parcelas[0].ID, nil)
	require.NoError(t, err)
	_, err = s.MarcarVencida(plano.Parcelas[1].ID, ancora.AddDate(0, 0, 16))
	require.NoError(t, err)

	agg, err := s.Repo.AgregadosByPlano(plano.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), agg.QtdParcelas)
	assert.Equal(t, int64(1), agg.QtdPagas)
	assert.True(t, agg.TotalPago.Equal(dec("100.00")), "pago: %s", agg.TotalPago)
	assert.True(t, agg.TotalPendente.Equal(dec("100.00")), "pendente: %s", agg.TotalPendente)
	assert.True(t, agg.TotalVencido.Equal(dec("100.00")), "vencido: %s", agg.TotalVencido)
}
