package services

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contratos-bot/internal/models"
)

func TestGerarZip(t *testing.T) {
	caminhos := &Caminhos{Raiz: t.TempDir()}
	require.NoError(t, caminhos.Higienizar(models.DocumentosOficiais))

	require.NoError(t, os.WriteFile(caminhos.ArquivoContratos(), []byte("relatorio"), 0o644))
	require.NoError(t, os.WriteFile(caminhos.ArquivoExport("CONTRATO", "2025-1"), []byte("export"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(caminhos.DirPagamentos(), "relatorio_01_2025.xls"), []byte("pagto"), 0o644))

	destino, err := GerarZip(caminhos)
	require.NoError(t, err)
	assert.Equal(t, caminhos.ArquivoZip(), destino)

	zr, err := zip.OpenReader(destino)
	require.NoError(t, err)
	defer zr.Close()

	nomes := make(map[string]bool)
	for _, f := range zr.File {
		nomes[f.Name] = true
		assert.NotContains(t, f.Name, "relatorios_contratos.zip", "o zip não se empacota")
	}
	assert.True(t, nomes["relatorio_anual/CONTRATOS/rel_contratos.xlsx"])
	assert.True(t, nomes["exports_semestrais/CONTRATO/export_CONTRATO_2025-1.xlsx"])
	assert.True(t, nomes["rel_pagamentos/relatorio_01_2025.xls"])
}

func TestHigienizarRemoveExecucaoAnterior(t *testing.T) {
	caminhos := &Caminhos{Raiz: t.TempDir()}
	require.NoError(t, caminhos.Higienizar(models.DocumentosOficiais))

	sobra := caminhos.ArquivoExport("CONTRATO", "2024-1")
	require.NoError(t, os.WriteFile(sobra, []byte("antigo"), 0o644))

	require.NoError(t, caminhos.Higienizar(models.DocumentosOficiais))

	_, err := os.Stat(sobra)
	assert.True(t, os.IsNotExist(err), "staging da execução anterior é apagado")
	_, err = os.Stat(caminhos.DirExportDocumento("RIAF"))
	assert.NoError(t, err, "estrutura recriada")
}
