package db

import (
	"os"
	"strconv"

	"gorm.io/gorm"
)

// GetDB monta a conexão a partir das variáveis de ambiente.
func GetDB() (*gorm.DB, error) {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	port, err := strconv.ParseUint(dbPort, 10, 32)
	if err != nil {
		port = 5432 // porta padrão do PostgreSQL
	}

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "financeiro"
	}
	secretID := os.Getenv("DB_SECRET_ID")
	return ConnectDatabase(uint(port), dbHost, dbName, secretID)
}
