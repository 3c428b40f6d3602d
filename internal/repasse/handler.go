package repasse

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

/* ============================== Handler & DTOs ============================== */

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// DTO usado no POST /pedidos/{id}/repasse
type CriarTransacaoDTO struct {
	UnidadeID  uint    `json:"unidadeId"`
	RevendaID  uint    `json:"revendaId"`
	ValorBruto float64 `json:"valorBruto"`
	DataPedido string  `json:"dataPedido"` // RFC3339; vazio usa agora
}

func responderErro(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "Transação financeira não encontrada", http.StatusNotFound)
	case errors.Is(err, ErrTransacaoDuplicada), errors.Is(err, ErrConflito):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrTaxaExcedeBruto), errors.Is(err, ErrTransicaoInvalida):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Erro interno ao processar a operação", http.StatusInternalServerError)
	}
}

/* ============================== Endpoints ============================== */

// POST /pedidos/{id}/repasse
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	pedidoID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID do pedido inválido", http.StatusBadRequest)
		return
	}

	var in CriarTransacaoDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if in.ValorBruto <= 0 {
		http.Error(w, "Valor bruto deve ser maior que zero", http.StatusBadRequest)
		return
	}

	criadoEm := time.Now()
	if in.DataPedido != "" {
		criadoEm, err = time.Parse(time.RFC3339, in.DataPedido)
		if err != nil {
			http.Error(w, "Data do pedido inválida (use RFC3339)", http.StatusBadRequest)
			return
		}
	}

	transacao, err := h.Service.CriarParaPedido(uint(pedidoID), in.UnidadeID, in.RevendaID, decimal.NewFromFloat(in.ValorBruto), criadoEm)
	if err != nil {
		responderErro(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(transacao)
}

// GET /pedidos/{id}/repasse
func (h *Handler) BuscarPorPedido(w http.ResponseWriter, r *http.Request) {
	pedidoID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID do pedido inválido", http.StatusBadRequest)
		return
	}

	transacao, err := h.Service.Repo.FindByPedido(uint(pedidoID))
	if err != nil {
		http.Error(w, "Erro ao buscar transação financeira", http.StatusInternalServerError)
		return
	}
	if transacao == nil {
		http.Error(w, "O pedido não possui transação financeira", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(transacao)
}

// GET /revendas/{id}/repasses?status={status}
func (h *Handler) ListarPorRevenda(w http.ResponseWriter, r *http.Request) {
	revendaID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID da revenda inválido", http.StatusBadRequest)
		return
	}

	status := StatusRepasse(r.URL.Query().Get("status"))
	if status != "" && !status.Valida() {
		http.Error(w, "Status inválido. Use 'pendente', 'liberado', 'repassado' ou 'cancelado'.", http.StatusBadRequest)
		return
	}

	transacoes, err := h.Service.Repo.ListByRevenda(uint(revendaID), status)
	if err != nil {
		http.Error(w, "Erro ao buscar repasses da revenda", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(transacoes)
}

// PATCH /repasses/{id}/status
func (h *Handler) AtualizarStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID da transação inválido", http.StatusBadRequest)
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	transacao, err := h.Service.AtualizarStatus(uint(id), StatusRepasse(payload.Status))
	if err != nil {
		responderErro(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(transacao)
}
