package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/chamagas/api-financeiro/internal/auditoria"
	"github.com/chamagas/api-financeiro/internal/pagamento"
	"github.com/chamagas/api-financeiro/internal/parcelas"
	"github.com/chamagas/api-financeiro/internal/repasse"
	"github.com/chamagas/api-financeiro/internal/taxas"
	"github.com/chamagas/api-financeiro/internal/utils/db"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	// .env é opcional; em produção as variáveis vêm do ambiente.
	_ = godotenv.Load()

	database, err := db.GetDB()
	if err != nil {
		log.Fatal("Erro ao conectar no banco:", err)
	}

	// AutoMigrate para todos os modelos
	if err := taxas.Migrate(database); err != nil {
		log.Fatal("Erro no AutoMigrate de taxas:", err)
	}
	if err := parcelas.Migrate(database); err != nil {
		log.Fatal("Erro no AutoMigrate de parcelas:", err)
	}
	if err := repasse.Migrate(database); err != nil {
		log.Fatal("Erro no AutoMigrate de repasse:", err)
	}
	if err := auditoria.Migrate(database); err != nil {
		log.Fatal("Erro no AutoMigrate de auditoria:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Erro ao iniciar logger:", err)
	}
	defer func() { _ = logger.Sync() }()

	// Provedor de cobrança: externo quando configurado, local no restante.
	var gerador pagamento.GeradorReferencia
	if url := os.Getenv("PAGAMENTO_PROVIDER_URL"); url != "" {
		gerador = pagamento.NewProvedorHTTP(url)
	} else {
		gerador = pagamento.NewProvedorLocal()
	}

	audit := auditoria.NewRegistrador(logger)

	// Serviços e handlers
	taxasRepo := taxas.NewRepository(database)
	taxasHandler := taxas.NewHandler(taxasRepo)

	parcelasService := parcelas.NewService(database, audit, gerador)
	if v := os.Getenv("JANELA_EXIBICAO_CODIGO"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			parcelasService.Janela = d
		}
	}
	parcelasHandler := parcelas.NewHandler(parcelasService)

	repasseService := repasse.NewService(database, taxas.NewResolver(taxasRepo))
	repasseHandler := repasse.NewHandler(repasseService)

	// Router
	r := mux.NewRouter()

	// Rotas de taxas
	r.HandleFunc("/revendas/{id}/taxas", taxasHandler.ListRevenda).Methods("GET")
	r.HandleFunc("/revendas/{id}/taxas/{modalidade}", taxasHandler.UpsertRevenda).Methods("PUT")
	r.HandleFunc("/revendas/{id}/taxas/{modalidade}/ativar", taxasHandler.AtivarModalidade).Methods("POST")
	r.HandleFunc("/unidades/{id}/taxas", taxasHandler.GetUnidade).Methods("GET")
	r.HandleFunc("/unidades/{id}/taxas", taxasHandler.SaveUnidade).Methods("PUT")
	r.HandleFunc("/unidades/{id}/taxas/efetiva", taxasHandler.Resolvida).Methods("GET")

	// Rotas de planos e parcelas
	r.HandleFunc("/pedidos/{id}/plano-pagamento", parcelasHandler.CriarPlano).Methods("POST")
	r.HandleFunc("/pedidos/{id}/plano-pagamento", parcelasHandler.BuscarPlanoPorPedido).Methods("GET")
	r.HandleFunc("/parcelas/vencidas", parcelasHandler.MarcarVencidasEmLote).Methods("POST")
	r.HandleFunc("/parcelas/{pid}/pagamento", parcelasHandler.MarcarPaga).Methods("POST")
	r.HandleFunc("/parcelas/{pid}/vencimento", parcelasHandler.MarcarVencida).Methods("POST")
	r.HandleFunc("/parcelas/{pid}/estorno", parcelasHandler.Estornar).Methods("POST")
	r.HandleFunc("/parcelas/{pid}/codigo-pagamento", parcelasHandler.AnexarCodigo).Methods("PUT")
	r.HandleFunc("/planos/{id}/codigos-pagamento", parcelasHandler.GerarCodigos).Methods("POST")
	r.HandleFunc("/planos/{id}/cancelamento", parcelasHandler.CancelarPlano).Methods("POST")

	// Rotas de repasse
	r.HandleFunc("/pedidos/{id}/repasse", repasseHandler.Criar).Methods("POST")
	r.HandleFunc("/pedidos/{id}/repasse", repasseHandler.BuscarPorPedido).Methods("GET")
	r.HandleFunc("/revendas/{id}/repasses", repasseHandler.ListarPorRevenda).Methods("GET")
	r.HandleFunc("/repasses/{id}/status", repasseHandler.AtualizarStatus).Methods("PATCH")

	handler := cors.AllowAll().Handler(r)

	porta := os.Getenv("PORT")
	if porta == "" {
		porta = "8080"
	}

	// Inicia servidor
	fmt.Printf("Servidor rodando em http://localhost:%s\n", porta)
	log.Fatal(http.ListenAndServe(":"+porta, handler))
}
