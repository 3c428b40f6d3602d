package parcelas

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/chamagas/api-financeiro/internal/parcelamento"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

/* ============================== Handler ============================== */

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// traduz os erros de negócio no status HTTP correspondente.
func responderErro(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "Parcela ou plano não encontrado", http.StatusNotFound)
	case errors.Is(err, ErrPlanoDuplicado),
		errors.Is(err, ErrParcelaJaPaga),
		errors.Is(err, ErrConflito):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrTransicaoInvalida),
		errors.Is(err, ErrCodigoVazio),
		errors.Is(err, parcelamento.ErrPlanoInvalido),
		errors.Is(err, parcelamento.ErrValorInvalido):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Erro interno ao processar a operação", http.StatusInternalServerError)
	}
}

/* ============================== Endpoints ============================== */

// POST /pedidos/{id}/plano-pagamento
func (h *Handler) CriarPlano(w http.ResponseWriter, r *http.Request) {
	pedidoID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID do pedido inválido", http.StatusBadRequest)
		return
	}

	var in CriarPlanoDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	ancora := time.Now()
	if in.DataPedido != "" {
		ancora, err = time.Parse(time.RFC3339, in.DataPedido)
		if err != nil {
			http.Error(w, "Data do pedido inválida (use RFC3339)", http.StatusBadRequest)
			return
		}
	}

	plano, err := h.Service.CriarPlano(uint(pedidoID), decimal.NewFromFloat(in.ValorTotal), in.QtdParcelas, ancora)
	if err != nil {
		responderErro(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(plano)
}

// GET /pedidos/{id}/plano-pagamento
func (h *Handler) BuscarPlanoPorPedido(w http.ResponseWriter, r *http.Request) {
	pedidoID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID do pedido inválido", http.StatusBadRequest)
		return
	}

	plano, err := h.Service.Repo.FindPlanoByPedido(uint(pedidoID))
	if err != nil {
		http.Error(w, "Erro ao buscar plano de pagamento", http.StatusInternalServerError)
		return
	}
	if plano == nil {
		http.Error(w, "O pedido não possui plano de pagamento", http.StatusNotFound)
		return
	}

	visao, err := h.Service.MontarVisao(plano, time.Now())
	if err != nil {
		http.Error(w, "Erro ao montar visão do plano", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(visao)
}

// POST /parcelas/{pid}/pagamento
func (h *Handler) MarcarPaga(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(mux.Vars(r)["pid"])
	if err != nil {
		http.Error(w, "ID da parcela inválido", http.StatusBadRequest)
		return
	}

	// Corpo vazio é aceito: paga agora.
	var in PagamentoDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	var pagaEm *time.Time
	if in.DataPagamento != "" {
		t, err := time.Parse(time.RFC3339, in.DataPagamento)
		if err != nil {
			http.Error(w, "Data de pagamento inválida (use RFC3339)", http.StatusBadRequest)
			return
		}
		pagaEm = &t
	}

	parcela, err := h.Service.MarcarPaga(uint(pid), pagaEm)
	if err != nil {
		responderErro(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(parcela)
}

// POST /parcelas/{pid}/vencimento
func (h *Handler) MarcarVencida(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(mux.Vars(r)["pid"])
	if err != nil {
		http.Error(w, "ID da parcela inválido", http.StatusBadRequest)
		return
	}

	parcela, err := h.Service.MarcarVencida(uint(pid), time.Now())
	if err != nil {
		responderErro(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(parcela)
}

// POST /parcelas/vencidas
// Varredura administrativa: marca como vencidas todas as pendentes em atraso.
func (h *Handler) MarcarVencidasEmLote(w http.ResponseWriter, r *http.Request) {
	marcadas, err := h.Service.MarcarVencidasEmLote(time.Now())
	if err != nil {
		http.Error(w, "Erro ao marcar parcelas vencidas", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"marcadas": marcadas})
}

// POST /parcelas/{pid}/estorno
func (h *Handler) Estornar(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(mux.Vars(r)["pid"])
	if err != nil {
		http.Error(w, "ID da parcela inválido", http.StatusBadRequest)
		return
	}

	var in EstornoDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if in.Autor == "" {
		http.Error(w, "Estorno exige o autor da correção", http.StatusBadRequest)
		return
	}

	parcela, err := h.Service.Estornar(uint(pid), StatusParcela(in.Destino), in.Autor)
	if err != nil {
		responderErro(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(parcela)
}

// PUT /parcelas/{pid}/codigo-pagamento
func (h *Handler) AnexarCodigo(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(mux.Vars(r)["pid"])
	if err != nil {
		http.Error(w, "ID da parcela inválido", http.StatusBadRequest)
		return
	}

	var in CodigoDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	parcela, err := h.Service.AnexarCodigo(uint(pid), in.Codigo)
	if err != nil {
		responderErro(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(parcela)
}

// POST /planos/{id}/codigos-pagamento
// Gera códigos via provedor para as parcelas do plano que ainda não têm.
func (h *Handler) GerarCodigos(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID do plano inválido", http.StatusBadRequest)
		return
	}

	resultado, err := h.Service.GerarCodigos(r.Context(), uint(id))
	if err != nil {
		responderErro(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resultado)
}

// POST /planos/{id}/cancelamento
func (h *Handler) CancelarPlano(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID do plano inválido", http.StatusBadRequest)
		return
	}

	var in struct {
		Autor string `json:"autor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if in.Autor == "" {
		http.Error(w, "Cancelamento exige o autor da operação", http.StatusBadRequest)
		return
	}

	if err := h.Service.CancelarPlano(uint(id), in.Autor); err != nil {
		responderErro(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"message":"Plano cancelado com sucesso"}`))
}
