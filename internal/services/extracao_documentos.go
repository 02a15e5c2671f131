package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"contratos-bot/internal/config"
	"contratos-bot/internal/models"
)

// ErrSemestreIndisponivel indica que o portal não oferece o semestre pedido
// no filtro. Não é falha: o semestre inteiro é pulado.
var ErrSemestreIndisponivel = errors.New("semestre indisponível no portal")

// ExtratorDocumentos baixa os exports de documentos de um semestre. A
// implementação real navega no PBU; os testes injetam uma fake.
type ExtratorDocumentos interface {
	// ExtrairSemestre processa os tipos da tarefa, marcando em baixados a
	// chave de cada export concluído (ou reconhecidamente vazio) para que
	// novas tentativas não refaçam o que já terminou.
	ExtrairSemestre(ctx context.Context, tarefa models.TarefaExtracao, baixados map[string]bool) error
}

// ExtratorPBU implementa a extração via navegador headless no portal PBU.
type ExtratorPBU struct {
	cfg      *config.Config
	caminhos *Caminhos
	sessoes  *RegistroSessoes
	painel   *PainelProgresso
}

func NovoExtratorPBU(cfg *config.Config, caminhos *Caminhos, sessoes *RegistroSessoes, painel *PainelProgresso) *ExtratorPBU {
	return &ExtratorPBU{cfg: cfg, caminhos: caminhos, sessoes: sessoes, painel: painel}
}

// ChaveDownload identifica um export concluído dentro de uma tarefa.
func ChaveDownload(tipoID, semestre string) string {
	return tipoID + "|" + semestre
}

func (e *ExtratorPBU) ExtrairSemestre(ctx context.Context, tarefa models.TarefaExtracao, baixados map[string]bool) error {
	dirTemp := filepath.Join(e.caminhos.ExportsBase(), "tmp_"+strings.ReplaceAll(tarefa.Semestre, "/", "-"))
	sessao, err := NovaSessao(ctx, dirTemp)
	if err != nil {
		return err
	}
	e.sessoes.Registrar(sessao)
	defer func() {
		e.sessoes.Remover(sessao)
		sessao.Encerrar()
		os.RemoveAll(dirTemp)
	}()

	if err := e.autenticar(sessao); err != nil {
		return fmt.Errorf("login no PBU: %w", err)
	}

	disponivel, err := e.selecionarSemestre(sessao, tarefa)
	if err != nil {
		return err
	}
	if !disponivel {
		e.painel.Log(fmt.Sprintf("Semestre %s não disponível no portal, pulando.", tarefa.Semestre), "yellow")
		return ErrSemestreIndisponivel
	}

	for _, doc := range tarefa.Documentos {
		chave := ChaveDownload(doc.ID, tarefa.Semestre)
		if baixados[chave] {
			continue
		}
		if err := e.extrairTipo(sessao, tarefa, doc); err != nil {
			return fmt.Errorf("%s %s: %w", doc.ID, tarefa.Semestre, err)
		}
		baixados[chave] = true
	}
	return nil
}

func (e *ExtratorPBU) autenticar(sessao *SessaoNavegador) error {
	ctx, cancel := context.WithTimeout(sessao.Ctx(), 60*time.Second)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.Navigate(e.cfg.PBUURL),
		chromedp.WaitVisible(`#usuario`, chromedp.ByID),
		chromedp.SendKeys(`#usuario`, e.cfg.PortalUser, chromedp.ByID),
		chromedp.SendKeys(`#senha`, e.cfg.PortalSenha, chromedp.ByID),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`#menu-documentos`, chromedp.ByID),
		chromedp.Click(`#menu-documentos`, chromedp.ByID),
		chromedp.WaitVisible(`select#filtro-semestre`, chromedp.ByQuery),
	)
}

// selecionarSemestre aplica o filtro de período. Retorna false se o valor do
// dropdown não existir na página.
func (e *ExtratorPBU) selecionarSemestre(sessao *SessaoNavegador, tarefa models.TarefaExtracao) (bool, error) {
	ctx, cancel := context.WithTimeout(sessao.Ctx(), 60*time.Second)
	defer cancel()

	var existe bool
	script := fmt.Sprintf(
		`[...document.querySelectorAll('select#filtro-semestre option')].some(o => o.value === %q)`,
		tarefa.Valor,
	)
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &existe)); err != nil {
		return false, err
	}
	if !existe {
		return false, nil
	}

	err := chromedp.Run(ctx,
		chromedp.SetValue(`select#filtro-semestre`, tarefa.Valor, chromedp.ByQuery),
		chromedp.Click(`#btn-filtrar`, chromedp.ByID),
	)
	return err == nil, err
}

func (e *ExtratorPBU) extrairTipo(sessao *SessaoNavegador, tarefa models.TarefaExtracao, doc models.TipoDocumento) error {
	e.painel.Log(fmt.Sprintf("Extraindo %s do semestre %s...", doc.Nome, tarefa.Semestre), "cyan")

	ctx, cancel := context.WithTimeout(sessao.Ctx(), 120*time.Second)
	defer cancel()

	var temFiltro bool
	script := fmt.Sprintf(
		`[...document.querySelectorAll('select#filtro-documento option')].some(o => o.text.trim() === %q)`,
		doc.NomeOficial,
	)
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &temFiltro)); err != nil {
		return err
	}
	if !temFiltro {
		e.painel.Log(fmt.Sprintf("Filtro %s inexistente em %s, pulando tipo.", doc.Nome, tarefa.Semestre), "gray")
		return nil
	}

	if err := chromedp.Run(ctx,
		chromedp.SetValue(`select#filtro-documento`, doc.NomeOficial, chromedp.ByQuery),
		chromedp.Click(`#btn-filtrar`, chromedp.ByID),
	); err != nil {
		return err
	}

	var corpo string
	if err := chromedp.Run(ctx, chromedp.Text(`body`, &corpo, chromedp.ByQuery)); err != nil {
		return err
	}
	if strings.Contains(corpo, "Registros não encontrados") {
		e.painel.Log(fmt.Sprintf("Sem registros de %s em %s.", doc.Nome, tarefa.Semestre), "gray")
		return nil
	}

	clicarExportar := func() error {
		cctx, ccancel := context.WithTimeout(sessao.Ctx(), 300*time.Second)
		defer ccancel()
		return chromedp.Run(cctx,
			chromedp.WaitEnabled(`#btn-exportar`, chromedp.ByID),
			chromedp.Click(`#btn-exportar`, chromedp.ByID),
		)
	}
	if err := clicarExportar(); err != nil {
		return fmt.Errorf("acionar exportação: %w", err)
	}

	baixado, err := sessao.AguardarDownload(240*time.Second, clicarExportar)
	if err != nil {
		return err
	}

	destino := e.caminhos.ArquivoExport(doc.ID, tarefa.Semestre)
	if err := MoverDownload(baixado, destino); err != nil {
		return fmt.Errorf("mover export: %w", err)
	}
	e.painel.Log(fmt.Sprintf("%s de %s salvo.", doc.Nome, tarefa.Semestre), "#A0D468")
	return nil
}
