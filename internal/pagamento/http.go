// internal/pagamento/http.go
package pagamento

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProvedorHTTP obtém códigos de pagamento de um provedor externo via POST.
type ProvedorHTTP struct {
	URL     string
	Cliente *http.Client
}

// NewProvedorHTTP cria o provedor apontando para a URL informada.
func NewProvedorHTTP(url string) *ProvedorHTTP {
	return &ProvedorHTTP{
		URL:     url,
		Cliente: &http.Client{Timeout: 10 * time.Second},
	}
}

type referenciaRequest struct {
	Valor     decimal.Decimal `json:"valor"`
	Descricao string          `json:"descricao"`
}

type referenciaResponse struct {
	Codigo string `json:"codigo"`
}

// GerarReferencia solicita um código de pagamento ao provedor.
func (p *ProvedorHTTP) GerarReferencia(ctx context.Context, valor decimal.Decimal, descricao string) (string, error) {
	body, err := json.Marshal(referenciaRequest{Valor: valor, Descricao: descricao})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Cliente.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("provedor de pagamento respondeu %d", resp.StatusCode)
	}

	var out referenciaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Codigo) == "" {
		return "", ErrReferenciaVazia
	}
	return out.Codigo, nil
}
