package services

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// GerarZip empacota os relatórios e os dados brutos staged num único zip
// para auditoria. O próprio zip é excluído da varredura.
func GerarZip(caminhos *Caminhos) (string, error) {
	destino := caminhos.ArquivoZip()
	if err := os.MkdirAll(filepath.Dir(destino), 0o755); err != nil {
		return "", err
	}

	arq, err := os.Create(destino)
	if err != nil {
		return "", err
	}
	defer arq.Close()

	zw := zip.NewWriter(arq)
	defer zw.Close()

	raizes := []string{
		caminhos.RelatorioAnual(),
		caminhos.ExportsBase(),
		caminhos.DirPagamentos(),
	}
	for _, raiz := range raizes {
		if _, err := os.Stat(raiz); err != nil {
			continue
		}
		if err := adicionarDiretorio(zw, caminhos.Raiz, raiz, destino); err != nil {
			return "", fmt.Errorf("empacotar %s: %w", raiz, err)
		}
	}
	return destino, nil
}

func adicionarDiretorio(zw *zip.Writer, base, dir, ignorar string) error {
	return filepath.WalkDir(dir, func(caminho string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || caminho == ignorar {
			return nil
		}

		rel, err := filepath.Rel(base, caminho)
		if err != nil {
			return err
		}

		origem, err := os.Open(caminho)
		if err != nil {
			return err
		}
		defer origem.Close()

		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		_, err = io.Copy(w, origem)
		return err
	})
}
