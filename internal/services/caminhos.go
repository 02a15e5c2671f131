package services

import (
	"os"
	"path/filepath"

	"contratos-bot/internal/models"
)

// Caminhos centraliza o layout de pastas de staging e de relatórios.
// Cada worker escreve na sua própria subpasta, então threads concorrentes
// nunca disputam o mesmo arquivo.
type Caminhos struct {
	Raiz string
}

func (c Caminhos) ExportsBase() string    { return filepath.Join(c.Raiz, "exports_semestrais") }
func (c Caminhos) RelatorioAnual() string { return filepath.Join(c.Raiz, "relatorio_anual") }
func (c Caminhos) DirContratos() string   { return filepath.Join(c.RelatorioAnual(), "CONTRATOS") }
func (c Caminhos) DirConsolidados() string {
	return filepath.Join(c.RelatorioAnual(), "DOCUMENTOS_CONSOLIDADOS")
}
func (c Caminhos) DirPagamentos() string { return filepath.Join(c.Raiz, "rel_pagamentos") }

func (c Caminhos) DirExportDocumento(tipo string) string {
	return filepath.Join(c.ExportsBase(), tipo)
}
func (c Caminhos) DirRelatorioDocumento(tipo string) string {
	return filepath.Join(c.RelatorioAnual(), tipo)
}
func (c Caminhos) DirPagamentosAno(ano string) string {
	return filepath.Join(c.DirPagamentos(), ano)
}

func (c Caminhos) ArquivoDivergencias() string {
	return filepath.Join(c.DirContratos(), "rel_contratos_divergentes.xlsx")
}
func (c Caminhos) ArquivoContratos() string {
	return filepath.Join(c.DirContratos(), "rel_contratos.xlsx")
}
func (c Caminhos) ArquivoPagamentosConsolidado() string {
	return filepath.Join(c.DirPagamentos(), "rel_pagamentos_consolidado.xlsx")
}
func (c Caminhos) ArquivoMaster() string {
	return filepath.Join(c.DirConsolidados(), "rel_documentos.xlsx")
}
func (c Caminhos) ArquivoZip() string {
	return filepath.Join(c.RelatorioAnual(), "relatorios_contratos.zip")
}

// ArquivoExport é o destino final de um export do PBU:
// exports_semestrais/<TIPO>/export_<TIPO>_<SEMESTRE>.xlsx
func (c Caminhos) ArquivoExport(tipo, semestre string) string {
	return filepath.Join(c.DirExportDocumento(tipo), "export_"+tipo+"_"+semestre+".xlsx")
}

// Higienizar apaga o conteúdo das execuções anteriores e recria a
// estrutura de pastas para os documentos ativos.
func (c Caminhos) Higienizar(docs []models.TipoDocumento) error {
	alvos := []string{c.ExportsBase(), c.RelatorioAnual(), c.DirPagamentos()}
	for _, pasta := range alvos {
		os.RemoveAll(pasta)
	}

	pastas := []string{c.ExportsBase(), c.RelatorioAnual(), c.DirPagamentos(), c.DirContratos(), c.DirConsolidados()}
	for _, doc := range docs {
		pastas = append(pastas, c.DirExportDocumento(doc.ID), c.DirRelatorioDocumento(doc.ID))
	}
	for _, pasta := range pastas {
		if err := os.MkdirAll(pasta, 0o755); err != nil {
			return err
		}
	}
	return nil
}
