package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"contratos-bot/internal/config"
	"contratos-bot/internal/handlers"
	"contratos-bot/internal/repositories"
	"contratos-bot/internal/services"
)

func main() {
	// Garante que time.Now() use o horário de Goiânia mesmo dentro do
	// container; as regras de calendário da automação dependem disso.
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.Local
		fmt.Println("Aviso: Fuso horário SP não carregado, usando local do sistema.")
	}
	time.Local = loc

	cfg := config.Carregar()

	// === BANCOS ===================================================

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Fatal(err)
	}
	if err = db.Ping(); err != nil {
		fmt.Println("Aviso: Banco de usuários demorando a responder...", err)
	}

	usuarioRepo := repositories.NewUsuarioRepository(db)
	if err := usuarioRepo.InicializarTabelas(); err != nil {
		log.Fatal("Falha ao inicializar banco de dados:", err)
	}

	// Banco financeiro é somente leitura; indisponibilidade não impede o
	// portal de subir (a conferência degrada para os padrões).
	dbFin, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err = dbFin.Ping(); err != nil {
		fmt.Println("Aviso: Banco financeiro inacessível no momento...", err)
	}
	financeiroRepo := repositories.NewFinanceiroRepository(dbFin)

	// === AUTOMAÇÃO ================================================

	caminhos := &services.Caminhos{Raiz: cfg.DiretorioRaiz}
	painel := services.NovoPainelProgresso()
	sessoes := services.NovoRegistroSessoes()

	extratorDocs := services.NovoExtratorPBU(&cfg, caminhos, sessoes, painel)
	extratorPagtos := services.NovoExtratorBolsa(&cfg, caminhos, sessoes, painel)
	consolidador := services.NovoServicoConsolidacao(caminhos, painel, financeiroRepo)
	automacao := services.NovoAutomacaoService(caminhos, painel, sessoes, extratorDocs, extratorPagtos, consolidador)

	// === HANDLERS =================================================

	authHandler := handlers.NewAuthHandler(usuarioRepo)
	usuarioHandler := handlers.NewUsuarioHandler(usuarioRepo)
	automacaoHandler := handlers.NewAutomacaoHandler(automacao)
	ferramentasHandler := handlers.NewFerramentasHandler()

	fs := http.FileServer(http.Dir("./static"))
	http.Handle("/", fs)

	http.HandleFunc("/api/login", authHandler.Login)
	http.HandleFunc("/api/usuarios", usuarioHandler.Usuarios)
	http.HandleFunc("/api/usuarios/excluir", usuarioHandler.Excluir)
	http.HandleFunc("/api/usuarios/trocar-senha", authHandler.TrocarSenha)

	http.HandleFunc("/api/automacao/iniciar", automacaoHandler.Iniciar)
	http.HandleFunc("/api/automacao/parar", automacaoHandler.Parar)
	http.HandleFunc("/api/automacao/status", automacaoHandler.Status)
	http.HandleFunc("/api/automacao/download", automacaoHandler.Download)

	http.HandleFunc("/api/ferramentas/inscricoes", ferramentasHandler.Inscricoes)
	http.HandleFunc("/api/ferramentas/ies", ferramentasHandler.IES)

	fmt.Println("🔥 Portal GGCI rodando na porta:", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, nil))
}
