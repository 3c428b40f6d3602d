// internal/taxas/repository.go
package taxas

import (
	"errors"

	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados de configuração de taxas.
type Repository struct {
	DB *gorm.DB
}

// NewRepository instancia um novo repositório.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

/* ========================= Configuração da revenda ========================= */

// ListByRevenda retorna as configurações de todas as modalidades da revenda.
func (r *Repository) ListByRevenda(revendaID uint) ([]TaxaRevenda, error) {
	var taxas []TaxaRevenda
	err := r.DB.
		Where("revenda_id = ?", revendaID).
		Order("modalidade ASC").
		Find(&taxas).Error
	return taxas, err
}

// FindAtiva busca a configuração ativa da revenda; nil se não houver.
func (r *Repository) FindAtiva(revendaID uint) (*TaxaRevenda, error) {
	var taxa TaxaRevenda
	err := r.DB.
		Where("revenda_id = ? AND ativa = ?", revendaID, true).
		First(&taxa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &taxa, nil
}

// FindByModalidade busca a configuração da revenda para uma modalidade
// específica; nil se a revenda ainda não configurou essa modalidade.
func (r *Repository) FindByModalidade(revendaID uint, m Modalidade) (*TaxaRevenda, error) {
	var taxa TaxaRevenda
	err := r.DB.
		Where("revenda_id = ? AND modalidade = ?", revendaID, m).
		First(&taxa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &taxa, nil
}

// Upsert grava a configuração da revenda para a modalidade (cria ou atualiza
// percentual/fixa, preservando a flag ativa existente).
func (r *Repository) Upsert(taxa *TaxaRevenda) error {
	existente, err := r.FindByModalidade(taxa.RevendaID, taxa.Modalidade)
	if err != nil {
		return err
	}
	if existente == nil {
		return r.DB.Create(taxa).Error
	}
	taxa.ID = existente.ID
	taxa.Ativa = existente.Ativa
	taxa.CreatedAt = existente.CreatedAt
	return r.DB.Save(taxa).Error
}

// AtivarModalidade marca a modalidade como a vigente da revenda, desmarcando
// as demais na mesma transação. Exige que a linha da modalidade exista.
func (r *Repository) AtivarModalidade(revendaID uint, m Modalidade) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&TaxaRevenda{}).
			Where("revenda_id = ? AND modalidade = ?", revendaID, m).
			Update("ativa", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&TaxaRevenda{}).
			Where("revenda_id = ? AND modalidade <> ?", revendaID, m).
			Update("ativa", false).Error
	})
}

/* =========================== Override da unidade =========================== */

// FindByUnidade busca o registro de taxas da unidade; nil se não existir.
func (r *Repository) FindByUnidade(unidadeID uint) (*TaxaUnidade, error) {
	var taxa TaxaUnidade
	err := r.DB.Where("unidade_id = ?", unidadeID).First(&taxa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &taxa, nil
}

// SaveUnidade grava o registro da unidade (cria ou substitui os campos).
// Campos nulos no registro informado limpam o override correspondente.
func (r *Repository) SaveUnidade(taxa *TaxaUnidade) error {
	existente, err := r.FindByUnidade(taxa.UnidadeID)
	if err != nil {
		return err
	}
	if existente == nil {
		return r.DB.Create(taxa).Error
	}
	// Save atualiza todos os campos, inclusive os limpos (viram NULL).
	taxa.ID = existente.ID
	taxa.CreatedAt = existente.CreatedAt
	return r.DB.Save(taxa).Error
}
