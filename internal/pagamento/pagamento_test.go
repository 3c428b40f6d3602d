package pagamento

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvedorLocal(t *testing.T) {
	p := NewProvedorLocal()

	a, err := p.GerarReferencia(context.Background(), decimal.NewFromInt(10), "Parcela 1/2 do pedido 1")
	require.NoError(t, err)
	b, err := p.GerarReferencia(context.Background(), decimal.NewFromInt(10), "Parcela 2/2 do pedido 1")
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestProvedorHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Valor     decimal.Decimal `json:"valor"`
			Descricao string          `json:"descricao"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.True(t, in.Valor.Equal(decimal.NewFromFloat(50.01)))
		assert.Equal(t, "Parcela 1/2 do pedido 7", in.Descricao)

		_ = json.NewEncoder(w).Encode(map[string]string{"codigo": "PIX-XYZ"})
	}))
	defer srv.Close()

	p := NewProvedorHTTP(srv.URL)
	codigo, err := p.GerarReferencia(context.Background(), decimal.NewFromFloat(50.01), "Parcela 1/2 do pedido 7")
	require.NoError(t, err)
	assert.Equal(t, "PIX-XYZ", codigo)
}

func TestProvedorHTTP_ReferenciaVazia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"codigo": "  "})
	}))
	defer srv.Close()

	p := NewProvedorHTTP(srv.URL)
	_, err := p.GerarReferencia(context.Background(), decimal.NewFromInt(10), "Parcela 1/1 do pedido 1")
	assert.ErrorIs(t, err, ErrReferenciaVazia)
}

func TestProvedorHTTP_ErroDoProvedor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "indisponível", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewProvedorHTTP(srv.URL)
	_, err := p.GerarReferencia(context.Background(), decimal.NewFromInt(10), "Parcela 1/1 do pedido 1")
	assert.Error(t, err)
}
