package taxas

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Handler gerencia as rotas de configuração de taxas.
type Handler struct {
	Repo     *Repository
	Resolver *Resolver
}

// NewHandler cria um novo Handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo, Resolver: NewResolver(repo)}
}

/* ======================= Configuração da revenda ======================= */

// GET /revendas/{id}/taxas
func (h *Handler) ListRevenda(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID da revenda inválido", http.StatusBadRequest)
		return
	}

	taxas, err := h.Repo.ListByRevenda(uint(id))
	if err != nil {
		http.Error(w, "Erro ao buscar taxas da revenda", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(taxas)
}

// PUT /revendas/{id}/taxas/{modalidade}
func (h *Handler) UpsertRevenda(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "ID da revenda inválido", http.StatusBadRequest)
		return
	}
	modalidade := Modalidade(vars["modalidade"])
	if !modalidade.Valida() {
		http.Error(w, "Modalidade inválida. Use 'D+1', 'D+15' ou 'D+30'.", http.StatusBadRequest)
		return
	}

	var in TaxaRevendaDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if in.Percentual < 0 || in.Fixa < 0 {
		http.Error(w, "Percentual e taxa fixa não podem ser negativos", http.StatusBadRequest)
		return
	}

	taxa := &TaxaRevenda{
		RevendaID:  uint(id),
		Modalidade: modalidade,
		Percentual: decimal.NewFromFloat(in.Percentual),
		Fixa:       decimal.NewFromFloat(in.Fixa),
	}
	if err := h.Repo.Upsert(taxa); err != nil {
		http.Error(w, "Erro ao salvar taxa da revenda", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(taxa)
}

// POST /revendas/{id}/taxas/{modalidade}/ativar
func (h *Handler) AtivarModalidade(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "ID da revenda inválido", http.StatusBadRequest)
		return
	}
	modalidade := Modalidade(vars["modalidade"])
	if !modalidade.Valida() {
		http.Error(w, "Modalidade inválida. Use 'D+1', 'D+15' ou 'D+30'.", http.StatusBadRequest)
		return
	}

	if err := h.Repo.AtivarModalidade(uint(id), modalidade); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "A revenda não possui configuração para essa modalidade", http.StatusNotFound)
			return
		}
		http.Error(w, "Erro ao ativar modalidade", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"message":"Modalidade ativada com sucesso"}`))
}

/* ========================= Override da unidade ========================= */

// GET /unidades/{id}/taxas
func (h *Handler) GetUnidade(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID da unidade inválido", http.StatusBadRequest)
		return
	}

	taxa, err := h.Repo.FindByUnidade(uint(id))
	if err != nil {
		http.Error(w, "Erro ao buscar taxas da unidade", http.StatusInternalServerError)
		return
	}
	if taxa == nil {
		http.Error(w, "Unidade sem configuração de taxas", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(taxa)
}

// PUT /unidades/{id}/taxas?revenda={rid}
func (h *Handler) SaveUnidade(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID da unidade inválido", http.StatusBadRequest)
		return
	}
	revendaID, err := strconv.Atoi(r.URL.Query().Get("revenda"))
	if err != nil {
		http.Error(w, "ID da revenda inválido", http.StatusBadRequest)
		return
	}

	var in TaxaUnidadeDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	taxa := &TaxaUnidade{
		UnidadeID: uint(id),
		RevendaID: uint(revendaID),
	}
	if in.Percentual != nil {
		if *in.Percentual < 0 {
			http.Error(w, "Percentual não pode ser negativo", http.StatusBadRequest)
			return
		}
		taxa.Percentual = decimal.NewNullDecimal(decimal.NewFromFloat(*in.Percentual))
	}
	if in.Fixa != nil {
		if *in.Fixa < 0 {
			http.Error(w, "Taxa fixa não pode ser negativa", http.StatusBadRequest)
			return
		}
		taxa.Fixa = decimal.NewNullDecimal(decimal.NewFromFloat(*in.Fixa))
	}
	if in.ModalidadeRepasse != nil {
		m := Modalidade(*in.ModalidadeRepasse)
		if !m.Valida() {
			http.Error(w, "Modalidade inválida. Use 'D+1', 'D+15' ou 'D+30'.", http.StatusBadRequest)
			return
		}
		taxa.ModalidadeRepasse = &m
	}

	if err := h.Repo.SaveUnidade(taxa); err != nil {
		http.Error(w, "Erro ao salvar taxas da unidade", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(taxa)
}

/* ============================= Resolução ============================= */

// GET /unidades/{id}/taxas/efetiva?revenda={rid}
func (h *Handler) Resolvida(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID da unidade inválido", http.StatusBadRequest)
		return
	}
	revendaID, err := strconv.Atoi(r.URL.Query().Get("revenda"))
	if err != nil {
		http.Error(w, "ID da revenda inválido", http.StatusBadRequest)
		return
	}

	taxa, err := h.Resolver.ResolverTaxa(uint(id), uint(revendaID))
	if err != nil {
		http.Error(w, "Erro ao resolver taxa efetiva", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(taxa)
}
