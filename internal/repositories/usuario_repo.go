package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"contratos-bot/internal/models"
	"contratos-bot/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// UsuarioRepository conecta o portal ao banco de usuários (PostgreSQL)
type UsuarioRepository struct {
	DB *sql.DB
}

func NewUsuarioRepository(db *sql.DB) *UsuarioRepository {
	return &UsuarioRepository{DB: db}
}

// ==========================================
// ===     AUTENTICAÇÃO E SEGURANÇA       ===
// ==========================================

// Autenticar aplica o sistema de "strikes" contra força bruta:
// 5 erros seguidos bloqueia 10 minutos, 8 bloqueia mais 10,
// 11 ou mais trava a conta até um admin editá-la.
func (r *UsuarioRepository) Autenticar(username, senha string) (*models.Usuario, error) {
	var (
		u            models.Usuario
		hashSalvo    string
		bloqueioAte  sql.NullTime
	)

	err := r.DB.QueryRow(`
		SELECT id, primeiro_nome, ultimo_nome, username, email, is_admin,
		       password_hash, tentativas_falhas, bloqueio_ate, bloqueado_permanente
		FROM usuarios WHERE username = $1
	`, username).Scan(&u.Id, &u.PrimeiroNome, &u.UltimoNome, &u.Username, &u.Email,
		&u.IsAdmin, &hashSalvo, &u.TentativasFalhas, &bloqueioAte, &u.BloqueadoPermanente)
	if err != nil {
		// Mensagem genérica por segurança: não revela se o usuário existe
		return nil, fmt.Errorf("Usuário ou senha incorretos.")
	}

	if u.BloqueadoPermanente {
		return nil, fmt.Errorf("Conta bloqueada permanentemente por segurança. Contate o administrador.")
	}

	if bloqueioAte.Valid && time.Now().Before(bloqueioAte.Time) {
		restante := int(time.Until(bloqueioAte.Time).Minutes()) + 1
		return nil, fmt.Errorf("Muitas tentativas falhas. Aguarde %d minutos.", restante)
	}

	if bcrypt.CompareHashAndPassword([]byte(hashSalvo), []byte(senha)) == nil {
		// Usuário provou ser ele mesmo: zera os contadores de punição
		_, err = r.DB.Exec(`UPDATE usuarios SET tentativas_falhas = 0, bloqueio_ate = NULL WHERE id = $1`, u.Id)
		if err != nil {
			return nil, fmt.Errorf("Erro interno no servidor de banco de dados.")
		}
		u.TentativasFalhas = 0
		return &u, nil
	}

	// Senha errada: aplica a punição
	tentativas := u.TentativasFalhas + 1
	novoBloqueio, bloqueadoPerm, extra := punicaoPorTentativas(tentativas, time.Now())

	_, _ = r.DB.Exec(`
		UPDATE usuarios SET tentativas_falhas = $1, bloqueio_ate = $2, bloqueado_permanente = $3
		WHERE id = $4
	`, tentativas, novoBloqueio, bloqueadoPerm, u.Id)

	return nil, fmt.Errorf("Senha incorreta.%s", extra)
}

// punicaoPorTentativas traduz o contador de erros seguidos em punição:
// bloqueio temporário, bloqueio permanente e o complemento da mensagem.
func punicaoPorTentativas(tentativas int, agora time.Time) (sql.NullTime, bool, string) {
	switch {
	case tentativas == 5:
		return sql.NullTime{Time: agora.Add(10 * time.Minute), Valid: true}, false,
			" Você errou 5 vezes. A conta foi bloqueada por 10 minutos."
	case tentativas == 8:
		return sql.NullTime{Time: agora.Add(10 * time.Minute), Valid: true}, false,
			" Você errou mais 3 vezes. Aguarde mais 10 minutos."
	case tentativas >= 11:
		return sql.NullTime{}, true,
			" Conta bloqueada permanentemente. Solicite desbloqueio ao Admin."
	}
	return sql.NullTime{}, false, ""
}

// TrocarSenha é o fluxo self-service: exige a senha atual como prova de
// propriedade da conta antes de validar e salvar a nova.
func (r *UsuarioRepository) TrocarSenha(userId int, senhaAtual, novaSenha string) error {
	var hashSalvo string
	err := r.DB.QueryRow(`SELECT password_hash FROM usuarios WHERE id = $1`, userId).Scan(&hashSalvo)
	if err != nil {
		return fmt.Errorf("Usuário não encontrado.")
	}

	if bcrypt.CompareHashAndPassword([]byte(hashSalvo), []byte(senhaAtual)) != nil {
		return fmt.Errorf("A senha atual informada está incorreta.")
	}

	if erros := utils.ValidarRequisitosSenha(novaSenha); len(erros) > 0 {
		return fmt.Errorf("%s", strings.Join(erros, " | "))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(novaSenha), 10)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(`UPDATE usuarios SET password_hash = $1 WHERE id = $2`, string(hash), userId)
	return err
}

// ==========================================
// ===       GESTÃO DE USUÁRIOS           ===
// ==========================================

func (r *UsuarioRepository) ListarUsuarios() ([]models.Usuario, error) {
	// Seleciona apenas colunas seguras (nunca trazer o hash aqui)
	rows, err := r.DB.Query(`
		SELECT id, primeiro_nome, ultimo_nome, username, email, is_admin,
		       tentativas_falhas, bloqueado_permanente
		FROM usuarios ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lista := []models.Usuario{}
	for rows.Next() {
		var u models.Usuario
		if err := rows.Scan(&u.Id, &u.PrimeiroNome, &u.UltimoNome, &u.Username, &u.Email,
			&u.IsAdmin, &u.TentativasFalhas, &u.BloqueadoPermanente); err != nil {
			continue
		}
		lista = append(lista, u)
	}
	return lista, nil
}

func (r *UsuarioRepository) BuscarPorId(id int) (*models.Usuario, error) {
	var u models.Usuario
	err := r.DB.QueryRow(`
		SELECT id, primeiro_nome, ultimo_nome, username, email, is_admin,
		       tentativas_falhas, bloqueado_permanente
		FROM usuarios WHERE id = $1
	`, id).Scan(&u.Id, &u.PrimeiroNome, &u.UltimoNome, &u.Username, &u.Email,
		&u.IsAdmin, &u.TentativasFalhas, &u.BloqueadoPermanente)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Salvar cria (id == 0) ou atualiza um usuário. Na edição, senha vazia
// mantém a senha antiga e a conta é desbloqueada (o admin resolveu o caso).
func (r *UsuarioRepository) Salvar(primeiro, ultimo, email, senha string, isAdmin bool, id int) error {
	username := strings.ToLower(primeiro) + "." + strings.ToLower(ultimo)

	if !strings.HasSuffix(email, "@ovg.org.br") {
		return fmt.Errorf("O e-mail corporativo deve terminar com @ovg.org.br")
	}

	if id > 0 {
		if senha == "" {
			_, err := r.DB.Exec(`
				UPDATE usuarios
				SET primeiro_nome=$1, ultimo_nome=$2, username=$3, email=$4, is_admin=$5,
				    tentativas_falhas=0, bloqueio_ate=NULL, bloqueado_permanente=FALSE
				WHERE id=$6
			`, primeiro, ultimo, username, email, isAdmin, id)
			return err
		}

		if erros := utils.ValidarRequisitosSenha(senha); len(erros) > 0 {
			return fmt.Errorf("%s", strings.Join(erros, " | "))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(senha), 10)
		if err != nil {
			return err
		}
		_, err = r.DB.Exec(`
			UPDATE usuarios
			SET primeiro_nome=$1, ultimo_nome=$2, username=$3, email=$4, password_hash=$5, is_admin=$6,
			    tentativas_falhas=0, bloqueio_ate=NULL, bloqueado_permanente=FALSE
			WHERE id=$7
		`, primeiro, ultimo, username, email, string(hash), isAdmin, id)
		return err
	}

	// Criação: senha obrigatória
	if erros := utils.ValidarRequisitosSenha(senha); len(erros) > 0 {
		return fmt.Errorf("%s", strings.Join(erros, " | "))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), 10)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(`
		INSERT INTO usuarios (primeiro_nome, ultimo_nome, username, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, primeiro, ultimo, username, email, string(hash), isAdmin)
	return err
}

// Excluir remove um usuário. O Super Admin (ID 1) é protegido.
func (r *UsuarioRepository) Excluir(id int) error {
	if id == 1 {
		return fmt.Errorf("o administrador padrão não pode ser excluído")
	}
	_, err := r.DB.Exec(`DELETE FROM usuarios WHERE id = $1`, id)
	return err
}

// InicializarTabelas cria a estrutura do banco e o usuário Admin padrão
func (r *UsuarioRepository) InicializarTabelas() error {
	_, err := r.DB.Exec(`CREATE TABLE IF NOT EXISTS usuarios (
		id SERIAL PRIMARY KEY,
		primeiro_nome TEXT NOT NULL DEFAULT '',
		ultimo_nome TEXT NOT NULL DEFAULT '',
		username TEXT UNIQUE NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		is_admin BOOLEAN DEFAULT FALSE,
		tentativas_falhas INT NOT NULL DEFAULT 0,
		bloqueio_ate TIMESTAMP,
		bloqueado_permanente BOOLEAN NOT NULL DEFAULT FALSE
	);`)
	if err != nil {
		return fmt.Errorf("erro tabela usuarios: %v", err)
	}

	senhaAdmin := "Mudar@123"
	hashCalculado, _ := bcrypt.GenerateFromPassword([]byte(senhaAdmin), 10)
	// O 'ON CONFLICT' garante que não duplicará se já existir
	_, err = r.DB.Exec(`INSERT INTO usuarios (id, primeiro_nome, ultimo_nome, username, email, password_hash, is_admin)
             VALUES (1, 'Gestor', 'GGCI', 'gestor.ggci', 'gestor.ggci@ovg.org.br', $1, TRUE)
             ON CONFLICT (id) DO NOTHING`, string(hashCalculado))
	if err != nil {
		fmt.Println("Erro ao criar admin:", err)
	}

	fmt.Println(">>> Banco de Dados inicializado e verificado com sucesso!")
	return nil
}
