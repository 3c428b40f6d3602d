// internal/auditoria/model.go
package auditoria

import (
	"time"

	"gorm.io/gorm"
)

// Registro é uma linha da trilha de auditoria de correções administrativas.
// Gravado na MESMA transação da mudança que documenta.
type Registro struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Entidade   string    `gorm:"size:50;not null;index:idx_auditoria_entidade" json:"entidade"`
	EntidadeID uint      `gorm:"not null;index:idx_auditoria_entidade" json:"entidadeId"`
	Acao       string    `gorm:"size:50;not null" json:"acao"`
	De         string    `gorm:"size:50" json:"de"`
	Para       string    `gorm:"size:50" json:"para"`
	Autor      string    `gorm:"size:255;not null" json:"autor"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Registro{})
}
