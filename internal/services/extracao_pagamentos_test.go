package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemestreDoLancamento(t *testing.T) {
	assert.Equal(t, "2025/1", SemestreDoLancamento("15/03/2025"))
	assert.Equal(t, "2025/1", SemestreDoLancamento("30/06/2025"))
	assert.Equal(t, "2025/2", SemestreDoLancamento("01/07/2025"))
	assert.Equal(t, "2026/2", SemestreDoLancamento("20/12/2026"))
	assert.Equal(t, "", SemestreDoLancamento("data inválida"))
}

// O portal entrega .xls que na prática é uma tabela HTML; a leitura precisa
// aceitar esse formato, limpar o CPF mascarado e derivar o semestre.
func TestLerPagamentosHTML(t *testing.T) {
	html := `<html><body><table>
		<tr><th>UNI_CODIGO</th><th>UNI_CPF</th><th>UNI_NOME</th><th>CUR_NOME</th><th>INS_NOME</th><th>TIPO_BOLSA</th><th>DATA_LANCAMENTO</th></tr>
		<tr><td>10.234</td><td>*123.456.789-01*</td><td>ALUNO UM</td><td>DIREITO</td><td>Faculdade Alfa</td><td>INTEGRAL</td><td>02/01/2025</td></tr>
		<tr><td>20234</td><td>98765432100</td><td>ALUNO DOIS</td><td>ADM</td><td>FACULDADE BETA</td><td>PARCIAL</td><td>15/09/2025</td></tr>
	</table></body></html>`

	regs, err := LerPagamentosHTML(strings.NewReader(html))
	require.NoError(t, err)
	require.Len(t, regs, 2)

	assert.Equal(t, "10234", regs[0].Inscricao)
	assert.Equal(t, "12345678901", regs[0].CPF)
	assert.Equal(t, "FACULDADE ALFA", regs[0].IES)
	assert.Equal(t, "2025/1", regs[0].Semestre)
	assert.Equal(t, "2025/2", regs[1].Semestre)
}

func TestConsolidarPagamentos(t *testing.T) {
	caminhos := &Caminhos{Raiz: t.TempDir()}
	require.NoError(t, os.MkdirAll(caminhos.DirPagamentosAno("2025"), 0o755))

	html := `<table>
		<tr><th>UNI_CODIGO</th><th>UNI_CPF</th><th>UNI_NOME</th><th>CUR_NOME</th><th>INS_NOME</th><th>TIPO_BOLSA</th><th>DATA_LANCAMENTO</th></tr>
		<tr><td>1001</td><td>11111111111</td><td>ALUNO UM</td><td>DIREITO</td><td>ALFA</td><td>INTEGRAL</td><td>10/02/2025</td></tr>
		<tr><td>1001</td><td>11111111111</td><td>ALUNO UM</td><td>DIREITO</td><td>ALFA</td><td>PARCIAL</td><td>10/08/2025</td></tr>
		<tr><td>2002</td><td>22222222222</td><td>ALUNO DOIS</td><td>ADM</td><td>BETA</td><td>INTEGRAL</td><td>10/02/2025</td></tr>
	</table>`
	arq := filepath.Join(caminhos.DirPagamentosAno("2025"), "relatorio_02_2025.xls")
	require.NoError(t, os.WriteFile(arq, []byte(html), 0o644))

	painel := NovoPainelProgresso()
	regs, err := ConsolidarPagamentos(caminhos, painel)
	require.NoError(t, err)
	require.Len(t, regs, 3)

	// troca de bolsa é detectada por CPF, sobre todo o período
	assert.Equal(t, "SIM", regs[0].TrocouBolsa)
	assert.Equal(t, "SIM", regs[1].TrocouBolsa)
	assert.Equal(t, "NÃO", regs[2].TrocouBolsa)

	// a planilha consolidada fica disponível para a fase de conferência
	relidos, err := LerPagamentosConsolidado(caminhos.ArquivoPagamentosConsolidado())
	require.NoError(t, err)
	require.Len(t, relidos, 3)
	assert.Equal(t, regs[0].Semestre, relidos[0].Semestre)
	assert.Equal(t, regs[0].TrocouBolsa, relidos[0].TrocouBolsa)
}

func TestConsolidarPagamentosSemArquivos(t *testing.T) {
	caminhos := &Caminhos{Raiz: t.TempDir()}
	require.NoError(t, os.MkdirAll(caminhos.DirPagamentos(), 0o755))

	_, err := ConsolidarPagamentos(caminhos, NovoPainelProgresso())
	assert.Error(t, err)
}

func TestChaveDownload(t *testing.T) {
	assert.Equal(t, "CONTRATO|2025-1", ChaveDownload("CONTRATO", "2025-1"))
}
