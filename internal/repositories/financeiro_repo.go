package repositories

import (
	"database/sql"
	"sort"
	"strings"

	"contratos-bot/internal/models"
	"contratos-bot/internal/utils"
)

// SemestresObrigatorios são os semestres que todo bolsista deve ter no
// retorno do banco financeiro, mesmo quando a tabela de origem é esparsa.
var SemestresObrigatorios = []string{"2025/1", "2025/2", "2026/1"}

// FinanceiroRepository acessa, somente para leitura, a tabela de cálculo
// financeiro por semestre no MySQL do BI.
type FinanceiroRepository struct {
	DB *sql.DB
}

func NewFinanceiroRepository(db *sql.DB) *FinanceiroRepository {
	return &FinanceiroRepository{DB: db}
}

// BuscarPorInscricoes retorna as linhas financeiras dos bolsistas informados,
// já expandidas para os semestres obrigatórios.
func (r *FinanceiroRepository) BuscarPorInscricoes(inscricoes []string) ([]models.RegistroFinanceiro, error) {
	if len(inscricoes) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(inscricoes))
	args := make([]interface{}, len(inscricoes))
	for i, insc := range inscricoes {
		placeholders[i] = "?"
		args[i] = insc
	}

	query := `SELECT uni_codigo, semestre, tipo_bolsa_final, tipo_pagto, qtd_pagtos, valor_ultima_bolsa_paga
		FROM PY_financeiro_calculado_semestre_IM
		WHERE uni_codigo IN (` + strings.Join(placeholders, ",") + `)`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []models.RegistroFinanceiro
	for rows.Next() {
		var (
			reg       models.RegistroFinanceiro
			tipoBolsa sql.NullString
			tipoPagto sql.NullString
			qtd       sql.NullInt64
			valor     sql.NullFloat64
		)
		if err := rows.Scan(&reg.Inscricao, &reg.Semestre, &tipoBolsa, &tipoPagto, &qtd, &valor); err != nil {
			continue
		}
		reg.Inscricao = utils.LimparInscricao(reg.Inscricao)
		reg.Semestre = strings.TrimSpace(reg.Semestre)
		reg.TipoBolsaFinal = tipoBolsa.String
		reg.TipoPagto = tipoPagto.String
		reg.QtdPagtos = int(qtd.Int64)
		reg.ValorUltimaBolsa = valor.Float64
		regs = append(regs, reg)
	}

	return ExpandirSemestres(regs, SemestresObrigatorios), nil
}

// ExpandirSemestres monta o "esqueleto" de um registro por (bolsista,
// semestre obrigatório) e preenche as lacunas: o tipo de bolsa é propagado
// para frente e para trás dentro do mesmo bolsista (a tabela de origem é
// esparsa), e os campos de pagamento ausentes recebem zero/vazio.
func ExpandirSemestres(regs []models.RegistroFinanceiro, semestres []string) []models.RegistroFinanceiro {
	porChave := make(map[string]models.RegistroFinanceiro)
	var inscricoes []string
	vistos := make(map[string]bool)

	for _, reg := range regs {
		porChave[reg.Inscricao+"_"+reg.Semestre] = reg
		if !vistos[reg.Inscricao] {
			vistos[reg.Inscricao] = true
			inscricoes = append(inscricoes, reg.Inscricao)
		}
	}
	sort.Strings(inscricoes)

	var saida []models.RegistroFinanceiro
	for _, insc := range inscricoes {
		linhas := make([]models.RegistroFinanceiro, len(semestres))
		for i, sem := range semestres {
			if reg, ok := porChave[insc+"_"+sem]; ok {
				linhas[i] = reg
			} else {
				linhas[i] = models.RegistroFinanceiro{Inscricao: insc, Semestre: sem}
			}
		}

		// ffill
		ultimo := ""
		for i := range linhas {
			if linhas[i].TipoBolsaFinal != "" && linhas[i].TipoBolsaFinal != "0" && linhas[i].TipoBolsaFinal != "[NULL]" {
				ultimo = linhas[i].TipoBolsaFinal
			} else if ultimo != "" {
				linhas[i].TipoBolsaFinal = ultimo
			}
		}
		// bfill
		proximo := ""
		for i := len(linhas) - 1; i >= 0; i-- {
			if linhas[i].TipoBolsaFinal != "" && linhas[i].TipoBolsaFinal != "0" && linhas[i].TipoBolsaFinal != "[NULL]" {
				proximo = linhas[i].TipoBolsaFinal
			} else if proximo != "" {
				linhas[i].TipoBolsaFinal = proximo
			}
		}
		for i := range linhas {
			if linhas[i].TipoBolsaFinal == "" || linhas[i].TipoBolsaFinal == "0" || linhas[i].TipoBolsaFinal == "[NULL]" {
				linhas[i].TipoBolsaFinal = "SEM DADOS"
			}
		}

		saida = append(saida, linhas...)
	}
	return saida
}
