package handlers

import (
	"encoding/json"
	"net/http"

	"contratos-bot/internal/repositories"
)

type UsuarioHandler struct {
	Repo *repositories.UsuarioRepository
}

func NewUsuarioHandler(repo *repositories.UsuarioRepository) *UsuarioHandler {
	return &UsuarioHandler{Repo: repo}
}

// Usuarios atende GET (listagem) e POST (criar ou editar) em /api/usuarios.
func (h *UsuarioHandler) Usuarios(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		lista, err := h.Repo.ListarUsuarios()
		if err != nil {
			http.Error(w, "Erro ao listar usuários", 500)
			return
		}
		json.NewEncoder(w).Encode(lista)

	case http.MethodPost:
		var corpo struct {
			Id       int    `json:"id"`
			Primeiro string `json:"primeiro_nome"`
			Ultimo   string `json:"ultimo_nome"`
			Email    string `json:"email"`
			Senha    string `json:"senha"`
			IsAdmin  bool   `json:"is_admin"`
		}
		if err := json.NewDecoder(r.Body).Decode(&corpo); err != nil {
			http.Error(w, "Requisição inválida", 400)
			return
		}
		if err := h.Repo.Salvar(corpo.Primeiro, corpo.Ultimo, corpo.Email, corpo.Senha, corpo.IsAdmin, corpo.Id); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"msg": "Usuário salvo"})

	default:
		http.Error(w, "Método não permitido", 405)
	}
}

func (h *UsuarioHandler) Excluir(w http.ResponseWriter, r *http.Request) {
	var corpo struct {
		Id int `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&corpo); err != nil {
		http.Error(w, "Requisição inválida", 400)
		return
	}

	if err := h.Repo.Excluir(corpo.Id); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"msg": "Usuário removido"})
}
