package models

// Usuario representa uma conta do portal (nunca carrega o hash da senha).
type Usuario struct {
	Id                  int    `json:"id"`
	PrimeiroNome        string `json:"primeiro_nome"`
	UltimoNome          string `json:"ultimo_nome"`
	Username            string `json:"username"`
	Email               string `json:"email"`
	IsAdmin             bool   `json:"is_admin"`
	TentativasFalhas    int    `json:"tentativas_falhas"`
	BloqueadoPermanente bool   `json:"bloqueado_permanente"`
}

// Credenciais para login
type Credenciais struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}
