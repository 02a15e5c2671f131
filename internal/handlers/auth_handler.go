package handlers

import (
	"encoding/json"
	"net/http"

	"contratos-bot/internal/models"
	"contratos-bot/internal/repositories"
)

type AuthHandler struct {
	Repo *repositories.UsuarioRepository
}

func NewAuthHandler(repo *repositories.UsuarioRepository) *AuthHandler {
	return &AuthHandler{Repo: repo}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credenciais
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Requisição inválida", 400)
		return
	}

	usuario, err := h.Repo.Autenticar(creds.Usuario, creds.Senha)
	if err != nil {
		http.Error(w, err.Error(), 401)
		return
	}

	json.NewEncoder(w).Encode(usuario)
}

func (h *AuthHandler) TrocarSenha(w http.ResponseWriter, r *http.Request) {
	var corpo struct {
		UserId     int    `json:"user_id"`
		SenhaAtual string `json:"senha_atual"`
		NovaSenha  string `json:"nova_senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&corpo); err != nil {
		http.Error(w, "Requisição inválida", 400)
		return
	}

	if err := h.Repo.TrocarSenha(corpo.UserId, corpo.SenhaAtual, corpo.NovaSenha); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"msg": "Senha alterada com sucesso"})
}
