package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/xuri/excelize/v2"

	"contratos-bot/internal/config"
	"contratos-bot/internal/models"
	"contratos-bot/internal/utils"
)

// ExtratorPagamentos baixa os relatórios mensais de pagamento de um ano.
type ExtratorPagamentos interface {
	ExtrairAno(ctx context.Context, ano int, meses []int) error
}

// ExtratorBolsa implementa a extração no portal da Bolsa Universitária.
type ExtratorBolsa struct {
	cfg      *config.Config
	caminhos *Caminhos
	sessoes  *RegistroSessoes
	painel   *PainelProgresso
}

func NovoExtratorBolsa(cfg *config.Config, caminhos *Caminhos, sessoes *RegistroSessoes, painel *PainelProgresso) *ExtratorBolsa {
	return &ExtratorBolsa{cfg: cfg, caminhos: caminhos, sessoes: sessoes, painel: painel}
}

func (e *ExtratorBolsa) ExtrairAno(ctx context.Context, ano int, meses []int) error {
	dirTemp := filepath.Join(e.caminhos.DirPagamentos(), fmt.Sprintf("tmp_%d", ano))
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
		return fmt.Errorf("login no portal de pagamentos: %w", err)
	}

	for _, mes := range meses {
		if err := e.extrairMes(sessao, ano, mes); err != nil {
			return fmt.Errorf("pagamentos %02d/%d: %w", mes, ano, err)
		}
	}
	return nil
}

func (e *ExtratorBolsa) autenticar(sessao *SessaoNavegador) error {
	ctx, cancel := context.WithTimeout(sessao.Ctx(), 60*time.Second)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.Navigate(e.cfg.BolsaURL),
		chromedp.WaitVisible(`#usuario`, chromedp.ByID),
		chromedp.SendKeys(`#usuario`, e.cfg.PortalUser, chromedp.ByID),
		chromedp.SendKeys(`#senha`, e.cfg.PortalSenha, chromedp.ByID),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`#menu-relatorios`, chromedp.ByID),
		chromedp.Click(`#menu-relatorios`, chromedp.ByID),
		chromedp.WaitVisible(`select#rel-mes`, chromedp.ByQuery),
	)
}

func (e *ExtratorBolsa) extrairMes(sessao *SessaoNavegador, ano, mes int) error {
	e.painel.Log(fmt.Sprintf("Baixando pagamentos de %02d/%d...", mes, ano), "cyan")

	ctx, cancel := context.WithTimeout(sessao.Ctx(), 120*time.Second)
	defer cancel()

	gerar := func() error {
		cctx, ccancel := context.WithTimeout(sessao.Ctx(), 300*time.Second)
		defer ccancel()
		return chromedp.Run(cctx,
			chromedp.WaitEnabled(`#btn-gerar`, chromedp.ByID),
			chromedp.Click(`#btn-gerar`, chromedp.ByID),
		)
	}

	if err := chromedp.Run(ctx,
		chromedp.SetValue(`select#rel-mes`, fmt.Sprintf("%02d", mes), chromedp.ByQuery),
		chromedp.SetValue(`select#rel-ano`, fmt.Sprintf("%d", ano), chromedp.ByQuery),
	); err != nil {
		return err
	}
	if err := gerar(); err != nil {
		return err
	}

	baixado, err := sessao.AguardarDownload(240*time.Second, gerar)
	if err != nil {
		return err
	}

	destino := filepath.Join(e.caminhos.DirPagamentosAno(fmt.Sprintf("%d", ano)), fmt.Sprintf("relatorio_%02d_%d.xls", mes, ano))
	if err := MoverDownload(baixado, destino); err != nil {
		return err
	}
	e.painel.Log(fmt.Sprintf("Pagamentos de %02d/%d salvos.", mes, ano), "#A0D468")
	return nil
}

// ConsolidarPagamentos lê todos os relatórios mensais baixados, normaliza os
// registros e grava a planilha consolidada usada na conferência de IES e na
// análise de trajetória. Retorna os registros em memória.
func ConsolidarPagamentos(caminhos *Caminhos, painel *PainelProgresso) ([]models.RegistroPagamento, error) {
	arquivos, err := filepath.Glob(filepath.Join(caminhos.DirPagamentos(), "*", "relatorio_*.xls"))
	if err != nil {
		return nil, err
	}
	sort.Strings(arquivos)

	var registros []models.RegistroPagamento
	for _, arq := range arquivos {
		regs, err := lerRelatorioPagamentos(arq)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(arq), err)
		}
		registros = append(registros, regs...)
	}
	if len(registros) == 0 {
		return nil, fmt.Errorf("nenhum relatório de pagamento encontrado")
	}

	marcarTrocaDeBolsa(registros)
	painel.Log(fmt.Sprintf("Pagamentos consolidados: %d registros.", len(registros)), "#A0D468")

	tab := Tabela{
		Colunas: []string{"UNI_CODIGO", "UNI_CPF", "UNI_NOME", "CUR_NOME", "INS_NOME", "TIPO_BOLSA", "DATA_LANCAMENTO", "SEMESTRE", "TROCOU_BOLSA"},
	}
	for _, r := range registros {
		tab.Linhas = append(tab.Linhas, []any{
			r.Inscricao, r.CPF, r.Nome, r.Curso, r.IES, r.TipoBolsa, r.DataLancamento, r.Semestre, r.TrocouBolsa,
		})
	}
	if err := SalvarRelatorio(caminhos.ArquivoPagamentosConsolidado(), Aba{Nome: "rel_pagamentos", Tabela: tab}); err != nil {
		return nil, err
	}
	return registros, nil
}

// lerRelatorioPagamentos aceita os dois formatos que o portal emite sob a
// extensão .xls: um xlsx de verdade ou uma tabela HTML disfarçada.
func lerRelatorioPagamentos(caminho string) ([]models.RegistroPagamento, error) {
	if f, err := excelize.OpenFile(caminho); err == nil {
		defer f.Close()
		linhas, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, err
		}
		return montarRegistrosPagamento(linhas)
	}

	dados, err := os.ReadFile(caminho)
	if err != nil {
		return nil, err
	}
	return LerPagamentosHTML(strings.NewReader(string(dados)))
}

// LerPagamentosHTML extrai os registros de um relatório em formato de
// tabela HTML.
func LerPagamentosHTML(r *strings.Reader) ([]models.RegistroPagamento, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var linhas [][]string
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		var linha []string
		tr.Find("th, td").Each(func(_ int, cel *goquery.Selection) {
			linha = append(linha, strings.TrimSpace(cel.Text()))
		})
		if len(linha) > 0 {
			linhas = append(linhas, linha)
		}
	})
	return montarRegistrosPagamento(linhas)
}

func montarRegistrosPagamento(linhas [][]string) ([]models.RegistroPagamento, error) {
	if len(linhas) < 2 {
		return nil, nil
	}

	idx := make(map[string]int)
	for i, nome := range linhas[0] {
		idx[strings.ToUpper(strings.TrimSpace(nome))] = i
	}
	campo := func(linha []string, nome string) string {
		i, ok := idx[nome]
		if !ok || i >= len(linha) {
			return ""
		}
		return strings.TrimSpace(linha[i])
	}

	var registros []models.RegistroPagamento
	for _, linha := range linhas[1:] {
		data := campo(linha, "DATA_LANCAMENTO")
		semestre := campo(linha, "SEMESTRE")
		if semestre == "" {
			semestre = SemestreDoLancamento(data)
		}
		registros = append(registros, models.RegistroPagamento{
			Inscricao:      utils.LimparInscricao(campo(linha, "UNI_CODIGO")),
			CPF:            utils.LimparCPF(campo(linha, "UNI_CPF")),
			Nome:           campo(linha, "UNI_NOME"),
			Curso:          campo(linha, "CUR_NOME"),
			IES:            utils.PadronizarTexto(campo(linha, "INS_NOME")),
			TipoBolsa:      campo(linha, "TIPO_BOLSA"),
			DataLancamento: data,
			Semestre:       semestre,
			TrocouBolsa:    campo(linha, "TROCOU_BOLSA"),
		})
	}
	return registros, nil
}

// LerPagamentosConsolidado relê a planilha consolidada gravada pela fase de
// pagamentos. A consolidação principal parte do arquivo em disco, não do
// estado em memória da extração.
func LerPagamentosConsolidado(caminho string) ([]models.RegistroPagamento, error) {
	f, err := excelize.OpenFile(caminho)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	linhas, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	return montarRegistrosPagamento(linhas)
}

// SemestreDoLancamento deriva o período letivo da data de lançamento:
// janeiro a junho caem no primeiro semestre, o resto no segundo.
func SemestreDoLancamento(data string) string {
	t, err := time.Parse("02/01/2006", data)
	if err != nil {
		return ""
	}
	if t.Month() <= 6 {
		return fmt.Sprintf("%d/1", t.Year())
	}
	return fmt.Sprintf("%d/2", t.Year())
}

// marcarTrocaDeBolsa sinaliza os CPFs que aparecem com mais de um tipo de
// bolsa ao longo do período consolidado.
func marcarTrocaDeBolsa(registros []models.RegistroPagamento) {
	tipos := make(map[string]map[string]struct{})
	for _, r := range registros {
		if tipos[r.CPF] == nil {
			tipos[r.CPF] = make(map[string]struct{})
		}
		tipos[r.CPF][r.TipoBolsa] = struct{}{}
	}
	for i := range registros {
		if len(tipos[registros[i].CPF]) > 1 {
			registros[i].TrocouBolsa = "SIM"
		} else {
			registros[i].TrocouBolsa = "NÃO"
		}
	}
}
