package services

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Tabela é o formato intermediário entre a consolidação e o excelize:
// cabeçalho + linhas na ordem final de escrita.
type Tabela struct {
	Colunas []string
	Linhas  [][]any
}

// Aba associa um nome de planilha a uma tabela.
type Aba struct {
	Nome   string
	Tabela Tabela
}

const (
	corAba       = "FF8C00"
	estiloTabela = "TableStyleMedium9"
	fmtMoeda     = `R$ #,##0.00`
	fmtCPF       = `00000000000`
	fmtInteiro   = `0`
	larguraMax   = 60.0
)

// SalvarRelatorio grava um workbook novo com as abas informadas, já
// estilizadas. A aba padrão "Sheet1" é removida.
func SalvarRelatorio(caminho string, abas ...Aba) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, aba := range abas {
		if err := EscreverAbaEstilizada(f, aba.Nome, aba.Tabela); err != nil {
			return fmt.Errorf("aba %s: %w", aba.Nome, err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	return f.SaveAs(caminho)
}

// EscreverAbaEstilizada escreve uma tabela formatada: nome truncado no
// limite do Excel, aba laranja, estilo de tabela com filtros, formatos
// numéricos por coluna e realces condicionais de divergência.
func EscreverAbaEstilizada(f *excelize.File, nome string, tab Tabela) error {
	nome = truncarNomeAba(nome)
	if _, err := f.NewSheet(nome); err != nil {
		return err
	}

	cabecalho := toAny(tab.Colunas)
	if err := f.SetSheetRow(nome, "A1", &cabecalho); err != nil {
		return err
	}
	for i, linha := range tab.Linhas {
		celula, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(nome, celula, &linha); err != nil {
			return err
		}
	}

	cor := corAba
	if err := f.SetSheetProps(nome, &excelize.SheetPropsOptions{TabColorRGB: &cor}); err != nil {
		return err
	}

	// Tabela sem linhas fica só com o cabeçalho, sem estilo de tabela.
	if len(tab.Linhas) == 0 {
		return nil
	}

	ultCol, _ := excelize.ColumnNumberToName(len(tab.Colunas))
	ultLinha := len(tab.Linhas) + 1
	intervalo := fmt.Sprintf("A1:%s%d", ultCol, ultLinha)
	if err := f.AddTable(nome, &excelize.Table{
		Range:     intervalo,
		Name:      nomeTabela(nome),
		StyleName: estiloTabela,
	}); err != nil {
		return err
	}

	if err := aplicarFormatosColunas(f, nome, tab); err != nil {
		return err
	}
	return aplicarRealces(f, nome, tab, ultLinha)
}

func truncarNomeAba(nome string) string {
	if len(nome) > 31 {
		return nome[:31]
	}
	return nome
}

// nomeTabela deriva um nome de tabela válido (sem espaços, iniciando em
// letra) a partir do nome da aba.
func nomeTabela(aba string) string {
	limpo := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, aba)
	return "tbl_" + limpo
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// aplicarFormatosColunas escolhe o formato numérico pelo nome da coluna e
// ajusta a largura pelo conteúdo.
func aplicarFormatosColunas(f *excelize.File, aba string, tab Tabela) error {
	moeda := fmtMoeda
	cpf := fmtCPF
	inteiro := fmtInteiro

	idMoeda, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moeda})
	if err != nil {
		return err
	}
	idCPF, err := f.NewStyle(&excelize.Style{CustomNumFmt: &cpf})
	if err != nil {
		return err
	}
	idInteiro, err := f.NewStyle(&excelize.Style{CustomNumFmt: &inteiro})
	if err != nil {
		return err
	}

	for i, col := range tab.Colunas {
		letra, _ := excelize.ColumnNumberToName(i + 1)

		var estilo int
		switch {
		case colunaMoeda(col):
			estilo = idMoeda
		case strings.Contains(col, "CPF"):
			estilo = idCPF
		case col == "Inscrição" || col == "qtd_pagtos":
			estilo = idInteiro
		}
		if estilo != 0 {
			if err := f.SetColStyle(aba, letra, estilo); err != nil {
				return err
			}
		}

		largura := larguraColuna(col, tab.Linhas, i)
		if err := f.SetColWidth(aba, letra, letra, largura); err != nil {
			return err
		}
	}
	return nil
}

func colunaMoeda(col string) bool {
	return strings.Contains(col, "Mensalidade") ||
		col == "valor_ultima_bolsa_paga" ||
		strings.HasPrefix(col, "Dif")
}

func larguraColuna(col string, linhas [][]any, idx int) float64 {
	maior := len(col)
	for _, linha := range linhas {
		if idx >= len(linha) {
			continue
		}
		if n := len(fmt.Sprint(linha[idx])); n > maior {
			maior = n
		}
	}
	largura := float64(maior) + 3
	if largura > larguraMax {
		largura = larguraMax
	}
	return largura
}

// aplicarRealces pinta divergências: colunas Dif* fora de zero em vermelho e
// IAStatus verde para vínculos ativos, vermelho para inativos e pendentes.
func aplicarRealces(f *excelize.File, aba string, tab Tabela, ultLinha int) error {
	vermelho, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
	})
	if err != nil {
		return err
	}
	verde, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "006100"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"C6EFCE"}},
	})
	if err != nil {
		return err
	}

	for i, col := range tab.Colunas {
		letra, _ := excelize.ColumnNumberToName(i + 1)
		intervalo := fmt.Sprintf("%s2:%s%d", letra, letra, ultLinha)

		switch {
		case strings.HasPrefix(col, "Dif"):
			err = f.SetConditionalFormat(aba, intervalo, []excelize.ConditionalFormatOptions{
				{Type: "cell", Criteria: "!=", Value: "0", Format: &vermelho},
			})
		case col == "IA_status":
			err = f.SetConditionalFormat(aba, intervalo, []excelize.ConditionalFormatOptions{
				{Type: "text", Criteria: "begins with", Value: "V", Format: &verde},
				{Type: "text", Criteria: "begins with", Value: "I", Format: &vermelho},
				{Type: "text", Criteria: "begins with", Value: "X", Format: &vermelho},
				{Type: "text", Criteria: "begins with", Value: "A", Format: &vermelho},
			})
		}
		if err != nil {
			return err
		}
	}
	return nil
}
