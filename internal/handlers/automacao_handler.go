package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"contratos-bot/internal/models"
	"contratos-bot/internal/services"
)

type AutomacaoHandler struct {
	Service *services.AutomacaoService
}

func NewAutomacaoHandler(service *services.AutomacaoService) *AutomacaoHandler {
	return &AutomacaoHandler{Service: service}
}

func (h *AutomacaoHandler) Iniciar(w http.ResponseWriter, r *http.Request) {
	var cfg models.ConfigAutomacao
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Requisição inválida", 400)
		return
	}

	err := h.Service.Iniciar(cfg)
	if errors.Is(err, services.ErrJaRodando) {
		// Idempotente: início repetido não é erro para o frontend.
		json.NewEncoder(w).Encode(map[string]string{"msg": "Automação já em andamento"})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"msg": "Automação iniciada"})
}

func (h *AutomacaoHandler) Parar(w http.ResponseWriter, r *http.Request) {
	h.Service.Parar()
	json.NewEncoder(w).Encode(map[string]string{"msg": "Parada solicitada"})
}

func (h *AutomacaoHandler) Status(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.Service.Status())
}

// Download entrega o pacote final. `?arquivo=master` serve o consolidado
// master; qualquer outro valor serve o zip completo.
func (h *AutomacaoHandler) Download(w http.ResponseWriter, r *http.Request) {
	status := h.Service.Status()
	if status.StatusFinal != "success" {
		http.Error(w, "Nenhum relatório disponível", 404)
		return
	}

	caminho := status.ArquivoGerado
	if r.URL.Query().Get("arquivo") == "master" {
		caminho = status.ArquivoPrincipal
	}
	if caminho == "" {
		http.Error(w, "Nenhum relatório disponível", 404)
		return
	}
	if _, err := os.Stat(caminho); err != nil {
		http.Error(w, "Arquivo não encontrado", 404)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(caminho))
	http.ServeFile(w, r, caminho)
}
