package services

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"contratos-bot/internal/models"
)

func docContrato(t *testing.T) models.TipoDocumento {
	t.Helper()
	doc, ok := models.BuscarDocumento("CONTRATO")
	require.True(t, ok)
	return doc
}

func docRIAF(t *testing.T) models.TipoDocumento {
	t.Helper()
	doc, ok := models.BuscarDocumento("RIAF")
	require.True(t, ok)
	return doc
}

func pagamento(insc, cpf, ies, bolsa, semestre string) models.RegistroPagamento {
	return models.RegistroPagamento{
		Inscricao: insc,
		CPF:       cpf,
		Nome:      "ALUNO " + insc,
		Curso:     "DIREITO",
		IES:       ies,
		TipoBolsa: bolsa,
		Semestre:  semestre,
	}
}

func TestTrajetoriaMudancaDeBolsa(t *testing.T) {
	base := AnalisarTrajetoria([]models.RegistroPagamento{
		pagamento("1001", "12345678901", "FACULDADE ALFA", "A", "2025/1"),
		pagamento("1001", "12345678901", "FACULDADE ALFA", "B", "2025/2"),
	})

	regs := []models.RegistroDocumento{
		{Inscricao: 1001, Semestre: "2025/1"},
		{Inscricao: 1001, Semestre: "2025/2"},
	}
	base.AplicarFlags(regs)

	assert.Equal(t, "NÃO", regs[0].MudouBolsa)
	assert.Equal(t, "-", regs[0].BolsaAnterior)
	assert.Equal(t, "SIM", regs[1].MudouBolsa)
	assert.Equal(t, "A", regs[1].BolsaAnterior)
	assert.Equal(t, "NÃO", regs[1].MudouIES)
}

func TestTrajetoriaMudancaDeIES(t *testing.T) {
	base := AnalisarTrajetoria([]models.RegistroPagamento{
		pagamento("2002", "98765432100", "FACULDADE ALFA", "A", "2025/1"),
		pagamento("2002", "98765432100", "FACULDADE BETA", "A", "2025/2"),
	})

	regs := []models.RegistroDocumento{{Inscricao: 2002, Semestre: "2025/2"}}
	base.AplicarFlags(regs)

	assert.Equal(t, "SIM", regs[0].MudouIES)
	assert.Equal(t, "FACULDADE ALFA", regs[0].IESAnterior)
}

func TestVinculoAtivoCom2026(t *testing.T) {
	base := AnalisarTrajetoria([]models.RegistroPagamento{
		pagamento("1001", "12345678901", "FACULDADE ALFA", "A", "2025/2"),
		pagamento("1001", "12345678901", "FACULDADE ALFA", "A", "2026/1"),
		pagamento("2002", "98765432100", "FACULDADE ALFA", "A", "2025/2"),
	})

	regs := []models.RegistroDocumento{
		{Inscricao: 1001, Semestre: "2025/2"},
		{Inscricao: 2002, Semestre: "2025/2"},
	}
	base.AplicarFlags(regs)

	assert.Equal(t, "ATIVO", regs[0].StatusVinculo)
	assert.Equal(t, "DESLIGADO", regs[1].StatusVinculo)
}

// Cenário de referência: aluno 1001 pagou em 2025/1 e 2025/2 trocando a
// bolsa de A para B, mas só protocolou contrato em 2025/1. A conferência
// deve manter o documento real e sintetizar a pendência do segundo semestre
// com a trajetória correta.
func TestReconciliarTipoPendenciaComTrajetoria(t *testing.T) {
	base := AnalisarTrajetoria([]models.RegistroPagamento{
		pagamento("1001", "12345678901", "FACULDADE ALFA", "A", "2025/1"),
		pagamento("1001", "12345678901", "FACULDADE ALFA", "B", "2025/2"),
	})
	reais := []models.RegistroDocumento{{
		IAStatus:  "Válido",
		Inscricao: 1001,
		CPF:       12345678901,
		Semestre:  "2025/1",
		Faculdade: "FACULDADE ALFA",
	}}

	res := ReconciliarTipo(docContrato(t), reais, base)

	require.Len(t, res.Reais, 1)
	assert.Equal(t, "NÃO", res.Reais[0].MudouBolsa)
	assert.Equal(t, docContrato(t).NomeOficial, res.Reais[0].DocumentoTipo)

	require.Len(t, res.Pendentes, 1)
	pend := res.Pendentes[0]
	assert.Equal(t, "Ausentes", pend.IAStatus)
	assert.Equal(t, "2025/2", pend.Semestre)
	assert.Equal(t, int64(1001), pend.Inscricao)
	assert.Equal(t, "SIM", pend.MudouBolsa)
	assert.Equal(t, "A", pend.BolsaAnterior)
	assert.Equal(t, "ALUNO 1001", pend.Bolsista)
	assert.Equal(t, "DIREITO", pend.Curso)
}

// Completude: todo par (aluno, semestre) da base de pagamentos aparece
// exatamente uma vez no consolidado do tipo, como real ou como pendência.
func TestReconciliarTipoCompletude(t *testing.T) {
	pagamentos := []models.RegistroPagamento{
		pagamento("1001", "11111111111", "FACULDADE ALFA", "A", "2025/1"),
		pagamento("1001", "11111111111", "FACULDADE ALFA", "A", "2025/2"),
		pagamento("2002", "22222222222", "FACULDADE BETA", "B", "2025/1"),
		pagamento("2002", "22222222222", "FACULDADE BETA", "B", "2025/2"),
	}
	reais := []models.RegistroDocumento{
		{Inscricao: 1001, CPF: 11111111111, Semestre: "2025/1", Faculdade: "FACULDADE ALFA"},
		{Inscricao: 2002, CPF: 22222222222, Semestre: "2025/2", Faculdade: "FACULDADE BETA"},
	}

	res := ReconciliarTipo(docContrato(t), reais, AnalisarTrajetoria(pagamentos))

	vistos := make(map[string]int)
	for _, r := range res.Reais {
		chave := chaveAlunoSemestre(formatInsc(r.Inscricao), r.Semestre)
		vistos[chave]++
	}
	for _, r := range res.Pendentes {
		chave := chaveAlunoSemestre(formatInsc(r.Inscricao), r.Semestre)
		vistos[chave]++
	}

	for _, p := range pagamentos {
		chave := chaveAlunoSemestre(p.Inscricao, p.Semestre)
		assert.Equal(t, 1, vistos[chave], chave)
	}
}

func TestReconciliarRIAFSoDe2026EmDiante(t *testing.T) {
	pagamentos := []models.RegistroPagamento{
		pagamento("1001", "11111111111", "FACULDADE ALFA", "A", "2025/2"),
		pagamento("1001", "11111111111", "FACULDADE ALFA", "A", "2026/1"),
	}

	res := ReconciliarTipo(docRIAF(t), nil, AnalisarTrajetoria(pagamentos))

	require.Len(t, res.Pendentes, 1)
	assert.Equal(t, "2026/1", res.Pendentes[0].Semestre)
	require.Len(t, res.PendentesDivergentes, 1)
	assert.Equal(t, "2026/1", res.PendentesDivergentes[0].Semestre)
}

// Divergência usa o texto de IES original do export; a correção pela base de
// pagamentos só entra na exibição do consolidado em diante.
func TestCorrecaoIESNaoMascaraDivergencia(t *testing.T) {
	base := AnalisarTrajetoria([]models.RegistroPagamento{
		pagamento("1001", "12345678901", "FACULDADE ALFA", "A", "2025/1"),
	})
	reais := []models.RegistroDocumento{{
		Inscricao: 1001,
		CPF:       12345678901,
		Semestre:  "2025/1",
		Faculdade: "FACULDADE ERRADA",
	}}

	res := ReconciliarTipo(docContrato(t), reais, base)

	require.Len(t, res.PendentesDivergentes, 1, "IES diferente mantém a divergência")
	assert.Equal(t, "FACULDADE ERRADA", res.Reais[0].Faculdade, "divergências mostram o texto do export")
	assert.Empty(t, res.Pendentes, "o documento existe, não é pendência")

	base.CorrigirIES(res.Reais)
	assert.Equal(t, "FACULDADE ALFA", res.Reais[0].Faculdade, "consolidado exibe a IES corrigida")
}

func TestEnriquecerMaster(t *testing.T) {
	master := []models.RegistroDocumento{
		{Inscricao: 1001, Semestre: "2025/1"},
		{Inscricao: 1001, Semestre: "2025/2"},
	}
	financeiros := []models.RegistroFinanceiro{{
		Inscricao:        "1001",
		Semestre:         "2025/1",
		TipoBolsaFinal:   "INTEGRAL",
		TipoPagto:        "PIX",
		QtdPagtos:        5,
		ValorUltimaBolsa: 650.0,
	}}

	EnriquecerMaster(master, financeiros)

	assert.Equal(t, "INTEGRAL", master[0].TipoBolsaFinal)
	assert.Equal(t, 5, master[0].QtdPagtos)
	assert.Equal(t, 650.0, master[0].ValorUltimaBolsa)

	// sem correspondência: padrões seguros
	assert.Equal(t, "SEM DADOS", master[1].TipoBolsaFinal)
	assert.Equal(t, 0, master[1].QtdPagtos)
	assert.Equal(t, "", master[1].TipoPagto)
}

func TestMontarResumo(t *testing.T) {
	contrato := docContrato(t)
	master := []models.RegistroDocumento{
		{Inscricao: 1001, Faculdade: "FACULDADE ALFA", Semestre: "2025/1", StatusVinculo: "ATIVO", IAStatus: "Válido", DocumentoTipo: contrato.NomeOficial},
		{Inscricao: 2002, Faculdade: "FACULDADE ALFA", Semestre: "2025/1", StatusVinculo: "DESLIGADO", IAStatus: "Ausentes", DocumentoTipo: contrato.NomeOficial},
		{Inscricao: 3003, Faculdade: "FACULDADE BETA", Semestre: "2025/1", StatusVinculo: "ATIVO", IAStatus: "Válido", DocumentoTipo: contrato.NomeOficial},
	}

	linhas := MontarResumo(master, []models.TipoDocumento{contrato})

	require.Len(t, linhas, 2)
	alfa := linhas[0]
	assert.Equal(t, "FACULDADE ALFA", alfa.IES)
	assert.Equal(t, 2, alfa.TotalBeneficiarios)
	assert.Equal(t, 1, alfa.Ativos)
	assert.Equal(t, 1, alfa.Desligados)
	assert.Equal(t, 1, alfa.Enviados["CONTRATO"])
	assert.Equal(t, 1, alfa.Pendentes["CONTRATO"])
}

// O export staged chega como texto; a carga coage valores e aplica a regra
// da diferença com desconto: sem referência Gemini, diferença zero.
func TestLerExportDocumentos(t *testing.T) {
	dir := t.TempDir()
	caminho := filepath.Join(dir, "export_CONTRATO_2025-1.xlsx")

	f := excelize.NewFile()
	cab := []any{"Status Gemini", "Inscrição", "Bolsista", "CPF", "Gemini CPF", "Faculdade", "Curso",
		"Mensalidade S/ Desconto", "Gemini Mensalidade S/ Desconto",
		"Mensalidade C/ Desconto", "Gemini Mensalidade C/ Desconto", "Data Processamento"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &cab))
	l1 := []any{"Válido", "10.234", "ALUNO UM", "123.456.789-01", "12345678901", "Faculdade Alfa", "DIREITO",
		"1200,50", "1000,00", "800,00", "0", "02/01/2025"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &l1))
	l2 := []any{"Inválido", "20234", "ALUNO DOIS", "22222222222", "22222222222", "FACULDADE BETA", "ADM",
		"900,00", "900,00", "700,00", "650,00", ""}
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &l2))
	require.NoError(t, f.SaveAs(caminho))
	require.NoError(t, f.Close())

	regs, err := lerExportDocumentos(caminho, "2025/1")
	require.NoError(t, err)
	require.Len(t, regs, 2)

	assert.Equal(t, int64(10234), regs[0].Inscricao)
	assert.Equal(t, int64(12345678901), regs[0].CPF)
	assert.Equal(t, "FACULDADE ALFA", regs[0].Faculdade)
	assert.Equal(t, "2025/1", regs[0].Semestre)
	assert.InDelta(t, 200.50, regs[0].DifSemDesc, 0.001)
	assert.Zero(t, regs[0].DifComDesc, "sem referência com desconto não há diferença")
	assert.Equal(t, "02/01/2025", regs[0].DataProcessamento)

	assert.InDelta(t, 50.0, regs[1].DifComDesc, 0.001)
	assert.Zero(t, regs[1].DifSemDesc)
}

func formatInsc(n int64) string {
	return fmt.Sprint(n)
}
