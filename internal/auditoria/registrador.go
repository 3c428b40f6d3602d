// internal/auditoria/registrador.go
package auditoria

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Registrador grava registros de auditoria e os espelha no log estruturado.
type Registrador struct {
	Logger *zap.Logger
}

// NewRegistrador instancia um novo Registrador. Logger nulo vira no-op.
func NewRegistrador(logger *zap.Logger) *Registrador {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registrador{Logger: logger}
}

// Registrar persiste o registro usando o *gorm.DB informado (normalmente a
// transação da operação auditada) e emite o evento no log.
func (a *Registrador) Registrar(db *gorm.DB, reg *Registro) error {
	if err := db.Create(reg).Error; err != nil {
		return err
	}
	a.Logger.Info("correção administrativa registrada",
		zap.String("entidade", reg.Entidade),
		zap.Uint("entidadeId", reg.EntidadeID),
		zap.String("acao", reg.Acao),
		zap.String("de", reg.De),
		zap.String("para", reg.Para),
		zap.String("autor", reg.Autor),
	)
	return nil
}

// ListarPorEntidade retorna a trilha de uma entidade, mais recente primeiro.
func (a *Registrador) ListarPorEntidade(db *gorm.DB, entidade string, id uint) ([]Registro, error) {
	var registros []Registro
	err := db.
		Where("entidade = ? AND entidade_id = ?", entidade, id).
		Order("created_at DESC").
		Find(&registros).Error
	return registros, err
}
