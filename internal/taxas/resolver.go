// internal/taxas/resolver.go
package taxas

import "github.com/shopspring/decimal"

// TaxaResolvida é o resultado da resolução: os valores efetivos que incidem
// sobre um pedido e a modalidade de repasse vigente.
type TaxaResolvida struct {
	Percentual decimal.Decimal `json:"percentual"`
	Fixa       decimal.Decimal `json:"fixa"`
	Modalidade Modalidade      `json:"modalidade"`
	Origem     string          `json:"origem"` // "unidade", "revenda" ou "padrao"
}

// Resolver aplica a precedência de configuração de taxas.
type Resolver struct {
	Repo *Repository
}

// NewResolver instancia um novo Resolver.
func NewResolver(repo *Repository) *Resolver {
	return &Resolver{Repo: repo}
}

// contexto reúne os registros carregados uma única vez para a resolução.
type contexto struct {
	unidade    *TaxaUnidade
	ativa      *TaxaRevenda
	modalidade Modalidade
	revendaID  uint
}

// estrategia tenta produzir uma taxa; nil significa "não se aplica, tente a
// próxima". A ordem da cadeia define a precedência.
type estrategia func(r *Resolver, ctx *contexto) (*TaxaResolvida, error)

var cadeia = []estrategia{
	overrideUnidade,
	configuracaoRevenda,
	padraoPlataforma,
}

// ResolverTaxa determina a taxa efetiva para um pedido feito pela unidade.
// Nunca falha por ausência de configuração: a cadeia sempre termina no
// padrão da plataforma.
func (r *Resolver) ResolverTaxa(unidadeID, revendaID uint) (TaxaResolvida, error) {
	unidade, err := r.Repo.FindByUnidade(unidadeID)
	if err != nil {
		return TaxaResolvida{}, err
	}
	ativa, err := r.Repo.FindAtiva(revendaID)
	if err != nil {
		return TaxaResolvida{}, err
	}

	ctx := &contexto{
		unidade:    unidade,
		ativa:      ativa,
		modalidade: resolverModalidade(unidade, ativa),
		revendaID:  revendaID,
	}

	for _, tentar := range cadeia {
		taxa, err := tentar(r, ctx)
		if err != nil {
			return TaxaResolvida{}, err
		}
		if taxa != nil {
			return *taxa, nil
		}
	}
	// Inalcançável: padraoPlataforma sempre resolve.
	perc, fixa := ctx.modalidade.TaxaPadrao()
	return TaxaResolvida{Percentual: perc, Fixa: fixa, Modalidade: ctx.modalidade, Origem: "padrao"}, nil
}

// resolverModalidade é independente da resolução de valores: a unidade pode
// definir só a modalidade e herdar os valores da revenda (ou do padrão).
func resolverModalidade(unidade *TaxaUnidade, ativa *TaxaRevenda) Modalidade {
	if unidade != nil && unidade.ModalidadeRepasse != nil && unidade.ModalidadeRepasse.Valida() {
		return *unidade.ModalidadeRepasse
	}
	if ativa != nil {
		return ativa.Modalidade
	}
	return ModalidadePadrao
}

// overrideUnidade: vale quando a unidade gravou AMBOS os campos de valor.
// Um valor salvo igual ao padrão continua sendo override; campo limpo (NULL)
// significa "sem override" e cai para o próximo nível.
func overrideUnidade(_ *Resolver, ctx *contexto) (*TaxaResolvida, error) {
	if !ctx.unidade.TemOverrideValores() {
		return nil, nil
	}
	return &TaxaResolvida{
		Percentual: ctx.unidade.Percentual.Decimal,
		Fixa:       ctx.unidade.Fixa.Decimal,
		Modalidade: ctx.modalidade,
		Origem:     "unidade",
	}, nil
}

// configuracaoRevenda: usa a linha da revenda para a modalidade efetiva.
// Quando a modalidade efetiva veio da unidade, a linha correspondente da
// revenda pode não ser a ativa — busca-se pela modalidade.
func configuracaoRevenda(r *Resolver, ctx *contexto) (*TaxaResolvida, error) {
	taxa := ctx.ativa
	if taxa == nil || taxa.Modalidade != ctx.modalidade {
		encontrada, err := r.Repo.FindByModalidade(ctx.revendaID, ctx.modalidade)
		if err != nil {
			return nil, err
		}
		taxa = encontrada
	}
	if taxa == nil {
		return nil, nil
	}
	return &TaxaResolvida{
		Percentual: taxa.Percentual,
		Fixa:       taxa.Fixa,
		Modalidade: ctx.modalidade,
		Origem:     "revenda",
	}, nil
}

// padraoPlataforma: último nível, sempre resolve.
func padraoPlataforma(_ *Resolver, ctx *contexto) (*TaxaResolvida, error) {
	perc, fixa := ctx.modalidade.TaxaPadrao()
	return &TaxaResolvida{
		Percentual: perc,
		Fixa:       fixa,
		Modalidade: ctx.modalidade,
		Origem:     "padrao",
	}, nil
}
