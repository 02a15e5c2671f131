package handlers

import (
	"encoding/json"
	"net/http"

	"contratos-bot/internal/utils"
)

// FerramentasHandler expõe os utilitários de texto do portal: montagem de
// listas de inscrição e padronização de nomes de IES.
type FerramentasHandler struct{}

func NewFerramentasHandler() *FerramentasHandler {
	return &FerramentasHandler{}
}

func (h *FerramentasHandler) Inscricoes(w http.ResponseWriter, r *http.Request) {
	var corpo struct {
		Texto string `json:"texto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&corpo); err != nil {
		http.Error(w, "Requisição inválida", 400)
		return
	}
	json.NewEncoder(w).Encode(utils.GerarListaInscricoes(corpo.Texto))
}

func (h *FerramentasHandler) IES(w http.ResponseWriter, r *http.Request) {
	var corpo struct {
		Texto string `json:"texto"`
		Modo  string `json:"modo"` // "unique" ou "all"
	}
	if err := json.NewDecoder(r.Body).Decode(&corpo); err != nil {
		http.Error(w, "Requisição inválida", 400)
		return
	}
	json.NewEncoder(w).Encode(utils.PadronizarListaIES(corpo.Texto, corpo.Modo != "all"))
}
