package services

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"contratos-bot/internal/models"
	"contratos-bot/internal/repositories"
	"contratos-bot/internal/utils"
)

// =========================================================================
// COLUNAS DOS RELATÓRIOS
// =========================================================================

var ordemBase = []string{
	"IA_status", "Status Vínculo", "Mudou IES?", "IES Anterior", "Mudou Bolsa?", "Bolsa Anterior",
	"Semestre", "Gemini Semestre", "Inscrição", "Bolsista", "CPF", "Gemini CPF", "Gemini Inconsistencias",
	"Faculdade", "Curso", "Mensalidade S/ Desconto", "Gemini Mensalidade S/ Desconto", "Dif. s/Desc.",
	"Mensalidade C/ Desconto", "Gemini Mensalidade C/ Desconto", "Dif. c/Desc.", "Documento Tipo", "Data Processamento",
}

var ordemMaster = []string{
	"IA_status", "Status Vínculo", "Mudou IES?", "IES Anterior", "Mudou Bolsa?", "Bolsa Anterior",
	"Semestre", "Gemini Semestre", "Inscrição", "Bolsista", "CPF", "Gemini CPF", "Gemini Inconsistencias",
	"Faculdade", "Curso", "tipo_bolsa_final", "tipo_pagto", "qtd_pagtos", "valor_ultima_bolsa_paga",
	"Mensalidade S/ Desconto", "Gemini Mensalidade S/ Desconto", "Dif. s/Desc.",
	"Mensalidade C/ Desconto", "Gemini Mensalidade C/ Desconto", "Dif. c/Desc.", "Documento Tipo", "Data Processamento",
}

func linhaBase(r models.RegistroDocumento) []any {
	return []any{
		r.IAStatus, r.StatusVinculo, r.MudouIES, r.IESAnterior, r.MudouBolsa, r.BolsaAnterior,
		r.Semestre, r.GeminiSemestre, r.Inscricao, r.Bolsista, r.CPF, r.GeminiCPF, r.GeminiInconsistencias,
		r.Faculdade, r.Curso, r.MensalidadeSemDesc, r.GeminiMensalidadeSemDesc, r.DifSemDesc,
		r.MensalidadeComDesc, r.GeminiMensalidadeComDesc, r.DifComDesc, r.DocumentoTipo, r.DataProcessamento,
	}
}

func linhaMaster(r models.RegistroDocumento) []any {
	return []any{
		r.IAStatus, r.StatusVinculo, r.MudouIES, r.IESAnterior, r.MudouBolsa, r.BolsaAnterior,
		r.Semestre, r.GeminiSemestre, r.Inscricao, r.Bolsista, r.CPF, r.GeminiCPF, r.GeminiInconsistencias,
		r.Faculdade, r.Curso, r.TipoBolsaFinal, r.TipoPagto, r.QtdPagtos, r.ValorUltimaBolsa,
		r.MensalidadeSemDesc, r.GeminiMensalidadeSemDesc, r.DifSemDesc,
		r.MensalidadeComDesc, r.GeminiMensalidadeComDesc, r.DifComDesc, r.DocumentoTipo, r.DataProcessamento,
	}
}

func tabelaBase(regs []models.RegistroDocumento) Tabela {
	t := Tabela{Colunas: ordemBase}
	for _, r := range regs {
		t.Linhas = append(t.Linhas, linhaBase(r))
	}
	return t
}

func tabelaMaster(regs []models.RegistroDocumento) Tabela {
	t := Tabela{Colunas: ordemMaster}
	for _, r := range regs {
		t.Linhas = append(t.Linhas, linhaMaster(r))
	}
	return t
}

// =========================================================================
// BASE DE PAGAMENTOS (fonte da verdade)
// =========================================================================

// BasePagamentos é a base de pagamentos indexada para a conferência:
// trajetória por aluno, correção de IES e vínculo ativo.
type BasePagamentos struct {
	Registros []models.RegistroPagamento

	mudouBolsa    map[string]string
	bolsaAnterior map[string]string
	mudouIES      map[string]string
	iesAnterior   map[string]string
	correcaoIES   map[string]string
	ativos        map[string]struct{}
}

func chaveAlunoSemestre(inscricao, semestre string) string {
	return utils.LimparInscricao(inscricao) + "_" + strings.TrimSpace(semestre)
}

// AnalisarTrajetoria ordena a base por (aluno, semestre) e compara cada
// linha com o período imediatamente anterior do mesmo aluno para derivar as
// flags de mudança de bolsa e de IES. Chaves repetidas ficam com a última
// ocorrência.
func AnalisarTrajetoria(pagamentos []models.RegistroPagamento) *BasePagamentos {
	regs := make([]models.RegistroPagamento, len(pagamentos))
	copy(regs, pagamentos)
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].Inscricao != regs[j].Inscricao {
			return regs[i].Inscricao < regs[j].Inscricao
		}
		return regs[i].Semestre < regs[j].Semestre
	})

	b := &BasePagamentos{
		Registros:     regs,
		mudouBolsa:    make(map[string]string),
		bolsaAnterior: make(map[string]string),
		mudouIES:      make(map[string]string),
		iesAnterior:   make(map[string]string),
		correcaoIES:   make(map[string]string),
		ativos:        make(map[string]struct{}),
	}

	for i, r := range regs {
		chave := chaveAlunoSemestre(r.Inscricao, r.Semestre)

		temAnterior := i > 0 && regs[i-1].Inscricao == r.Inscricao
		if !temAnterior {
			b.mudouBolsa[chave] = "NÃO"
			b.bolsaAnterior[chave] = "-"
			b.mudouIES[chave] = "NÃO"
			b.iesAnterior[chave] = "-"
		} else {
			ant := regs[i-1]
			if r.TipoBolsa != ant.TipoBolsa {
				b.mudouBolsa[chave] = "SIM"
				b.bolsaAnterior[chave] = ant.TipoBolsa
			} else {
				b.mudouBolsa[chave] = "NÃO"
				b.bolsaAnterior[chave] = "-"
			}
			if r.IES != ant.IES {
				b.mudouIES[chave] = "SIM"
				b.iesAnterior[chave] = ant.IES
			} else {
				b.mudouIES[chave] = "NÃO"
				b.iesAnterior[chave] = "-"
			}
		}

		b.correcaoIES[chave] = r.IES
		if strings.HasPrefix(r.Semestre, "2026") {
			b.ativos[utils.LimparInscricao(r.Inscricao)] = struct{}{}
		}
	}
	return b
}

// AplicarFlags preenche vínculo e trajetória de cada registro a partir da
// base de pagamentos. Registros fora da base recebem os neutros.
func (b *BasePagamentos) AplicarFlags(regs []models.RegistroDocumento) {
	for i := range regs {
		insc := strconv.FormatInt(regs[i].Inscricao, 10)
		chave := chaveAlunoSemestre(insc, regs[i].Semestre)

		regs[i].MudouBolsa = valorOu(b.mudouBolsa, chave, "NÃO")
		regs[i].BolsaAnterior = valorOu(b.bolsaAnterior, chave, "-")
		regs[i].MudouIES = valorOu(b.mudouIES, chave, "NÃO")
		regs[i].IESAnterior = valorOu(b.iesAnterior, chave, "-")

		if _, ok := b.ativos[insc]; ok {
			regs[i].StatusVinculo = "ATIVO"
		} else {
			regs[i].StatusVinculo = "DESLIGADO"
		}
	}
}

// CorrigirIES sobrescreve a Faculdade exibida com o nome da base de
// pagamentos quando o aluno/semestre existe lá. Só afeta exibição: as chaves
// de divergência já foram montadas com o texto original.
func (b *BasePagamentos) CorrigirIES(regs []models.RegistroDocumento) {
	for i := range regs {
		chave := chaveAlunoSemestre(strconv.FormatInt(regs[i].Inscricao, 10), regs[i].Semestre)
		if ies := utils.PadronizarTexto(b.correcaoIES[chave]); ies != "" {
			regs[i].Faculdade = ies
		}
	}
}

func valorOu(m map[string]string, chave, padrao string) string {
	if v, ok := m[chave]; ok {
		return v
	}
	return padrao
}

// =========================================================================
// RECONCILIAÇÃO POR TIPO DE DOCUMENTO
// =========================================================================

// ResultadoTipo é a saída da conferência de um tipo de documento.
type ResultadoTipo struct {
	Reais                []models.RegistroDocumento // exportados, com flags (IES ainda sem correção)
	Pendentes            []models.RegistroDocumento // sintetizados (IA_status "Ausentes")
	PendentesDivergentes []models.RegistroDocumento // chave completa sem correspondência
}

// ReconciliarTipo cruza os documentos reais de um tipo com a base de
// pagamentos: monta o conjunto de divergências (chave completa com IES e
// CPF) e o de pendências (chave de existência aluno+semestre). RIAF só é
// cobrado a partir de 2026.
func ReconciliarTipo(doc models.TipoDocumento, reais []models.RegistroDocumento, base *BasePagamentos) ResultadoTipo {
	chavesDiv := make(map[string]struct{})
	existencia := make(map[string]struct{})
	for _, r := range reais {
		insc := strconv.FormatInt(r.Inscricao, 10)
		cpf := zfill11(strconv.FormatInt(r.CPF, 10))
		chavesDiv[insc+"_"+cpf+"_"+r.Faculdade+"_"+r.Semestre] = struct{}{}
		existencia[chaveAlunoSemestre(insc, r.Semestre)] = struct{}{}
	}

	var res ResultadoTipo

	vistosDiv := make(map[string]struct{})
	vistosPend := make(map[string]struct{})
	for _, p := range base.Registros {
		if doc.AnoMinimo > 2025 && semestreAno(p.Semestre) < doc.AnoMinimo {
			continue
		}
		insc := utils.LimparInscricao(p.Inscricao)
		chaveDiv := insc + "_" + zfill11(p.CPF) + "_" + p.IES + "_" + strings.TrimSpace(p.Semestre)
		if _, ok := chavesDiv[chaveDiv]; !ok {
			dedup := insc + "_" + p.Semestre + "_" + p.IES
			if _, visto := vistosDiv[dedup]; !visto {
				vistosDiv[dedup] = struct{}{}
				res.PendentesDivergentes = append(res.PendentesDivergentes, sintetizarPendencia(doc, p))
			}
		}

		chaveEx := chaveAlunoSemestre(p.Inscricao, p.Semestre)
		if _, ok := existencia[chaveEx]; !ok {
			if _, visto := vistosPend[chaveEx]; !visto {
				vistosPend[chaveEx] = struct{}{}
				res.Pendentes = append(res.Pendentes, sintetizarPendencia(doc, p))
			}
		}
	}

	res.Reais = make([]models.RegistroDocumento, len(reais))
	copy(res.Reais, reais)
	for i := range res.Reais {
		res.Reais[i].DocumentoTipo = doc.NomeOficial
	}

	base.AplicarFlags(res.Reais)
	base.AplicarFlags(res.Pendentes)
	base.AplicarFlags(res.PendentesDivergentes)
	return res
}

// sintetizarPendencia materializa uma linha de pendência a partir do que a
// base de pagamentos sabe sobre o aluno.
func sintetizarPendencia(doc models.TipoDocumento, p models.RegistroPagamento) models.RegistroDocumento {
	insc, _ := utils.SomenteDigitos(p.Inscricao)
	cpf, _ := utils.SomenteDigitos(p.CPF)
	return models.RegistroDocumento{
		IAStatus:      "Ausentes",
		Semestre:      p.Semestre,
		Inscricao:     insc,
		CPF:           cpf,
		Bolsista:      p.Nome,
		Curso:         p.Curso,
		Faculdade:     p.IES,
		DocumentoTipo: doc.NomeOficial,
	}
}

func zfill11(s string) string {
	for len(s) < 11 {
		s = "0" + s
	}
	return s
}

func semestreAno(semestre string) int {
	if len(semestre) < 4 {
		return 0
	}
	ano, _ := strconv.Atoi(semestre[:4])
	return ano
}

// =========================================================================
// ENRIQUECIMENTO E RESUMO
// =========================================================================

// EnriquecerMaster faz o left join do master com a base financeira expandida,
// por (inscrição, semestre), aplicando os padrões seguros quando não há
// correspondência.
func EnriquecerMaster(master []models.RegistroDocumento, financeiros []models.RegistroFinanceiro) {
	porChave := make(map[string]models.RegistroFinanceiro, len(financeiros))
	for _, f := range financeiros {
		porChave[chaveAlunoSemestre(f.Inscricao, f.Semestre)] = f
	}
	for i := range master {
		chave := chaveAlunoSemestre(strconv.FormatInt(master[i].Inscricao, 10), master[i].Semestre)
		if f, ok := porChave[chave]; ok {
			master[i].TipoBolsaFinal = f.TipoBolsaFinal
			master[i].TipoPagto = f.TipoPagto
			master[i].QtdPagtos = f.QtdPagtos
			master[i].ValorUltimaBolsa = f.ValorUltimaBolsa
		} else {
			master[i].TipoBolsaFinal = "SEM DADOS"
		}
	}
}

// MontarResumo agrega o master por (IES, semestre): beneficiários únicos,
// vínculo e contagem de enviados/pendentes por tipo de documento.
func MontarResumo(master []models.RegistroDocumento, tipos []models.TipoDocumento) []models.LinhaResumo {
	type grupo struct {
		benef      map[int64]struct{}
		ativos     map[int64]struct{}
		desligados map[int64]struct{}
		enviados   map[string]map[int64]struct{}
		pendentes  map[string]map[int64]struct{}
	}
	grupos := make(map[string]*grupo)
	chaves := make(map[string][2]string)

	for _, r := range master {
		chave := r.Faculdade + "\x00" + r.Semestre
		g, ok := grupos[chave]
		if !ok {
			g = &grupo{
				benef:      make(map[int64]struct{}),
				ativos:     make(map[int64]struct{}),
				desligados: make(map[int64]struct{}),
				enviados:   make(map[string]map[int64]struct{}),
				pendentes:  make(map[string]map[int64]struct{}),
			}
			grupos[chave] = g
			chaves[chave] = [2]string{r.Faculdade, r.Semestre}
		}
		g.benef[r.Inscricao] = struct{}{}
		if r.StatusVinculo == "ATIVO" {
			g.ativos[r.Inscricao] = struct{}{}
		} else {
			g.desligados[r.Inscricao] = struct{}{}
		}
		for _, t := range tipos {
			if r.DocumentoTipo != t.NomeOficial {
				continue
			}
			alvo := g.enviados
			if r.IAStatus == "Ausentes" {
				alvo = g.pendentes
			}
			if alvo[t.ID] == nil {
				alvo[t.ID] = make(map[int64]struct{})
			}
			alvo[t.ID][r.Inscricao] = struct{}{}
		}
	}

	var linhas []models.LinhaResumo
	for chave, g := range grupos {
		env := make(map[string]int)
		pend := make(map[string]int)
		for _, t := range tipos {
			env[t.ID] = len(g.enviados[t.ID])
			pend[t.ID] = len(g.pendentes[t.ID])
		}
		linhas = append(linhas, models.LinhaResumo{
			IES:                chaves[chave][0],
			Semestre:           chaves[chave][1],
			TotalBeneficiarios: len(g.benef),
			Ativos:             len(g.ativos),
			Desligados:         len(g.desligados),
			Enviados:           env,
			Pendentes:          pend,
		})
	}
	sort.Slice(linhas, func(i, j int) bool {
		if linhas[i].IES != linhas[j].IES {
			return linhas[i].IES < linhas[j].IES
		}
		return linhas[i].Semestre < linhas[j].Semestre
	})
	return linhas
}

// nomeCurtoResumo encurta o ID do documento para o cabeçalho do resumo.
func nomeCurtoResumo(id string) string {
	if id == "OUTROS_BENEF" {
		return "BENEFÍCIOS"
	}
	return id
}

func tabelaResumo(linhas []models.LinhaResumo, tipos []models.TipoDocumento) Tabela {
	colunas := []string{"IES", "Semestre", "Total Beneficiários", "Ativos", "Desligados"}
	for _, t := range tipos {
		curto := nomeCurtoResumo(t.ID)
		colunas = append(colunas, "Env. "+curto, "Pend. "+curto)
	}

	tab := Tabela{Colunas: colunas}
	for _, l := range linhas {
		linha := []any{l.IES, l.Semestre, l.TotalBeneficiarios, l.Ativos, l.Desligados}
		for _, t := range tipos {
			linha = append(linha, l.Enviados[t.ID], l.Pendentes[t.ID])
		}
		tab.Linhas = append(tab.Linhas, linha)
	}
	return tab
}

// =========================================================================
// ORQUESTRAÇÃO
// =========================================================================

// ServicoConsolidacao executa a fase de conferência: carrega os exports
// staged, cruza com a base de pagamentos, enriquece via banco financeiro e
// grava os relatórios finais.
type ServicoConsolidacao struct {
	caminhos   *Caminhos
	painel     *PainelProgresso
	financeiro *repositories.FinanceiroRepository
}

func NovoServicoConsolidacao(caminhos *Caminhos, painel *PainelProgresso, financeiro *repositories.FinanceiroRepository) *ServicoConsolidacao {
	return &ServicoConsolidacao{caminhos: caminhos, painel: painel, financeiro: financeiro}
}

// Executar roda a conferência completa para os tipos informados. Retorna
// false apenas em falha que inviabilize os relatórios.
func (s *ServicoConsolidacao) Executar(tipos []models.TipoDocumento) bool {
	s.painel.Log("[MERGE] Lendo dados exportados...", "cyan")
	s.painel.DefinirAlvo(50)

	porTipo := make(map[string][]models.RegistroDocumento)
	for _, doc := range tipos {
		regs, err := s.carregarExports(doc)
		if err != nil {
			s.painel.Log(fmt.Sprintf("[MERGE] Falha lendo exports de %s: %v", doc.Nome, err), "red")
			return false
		}
		porTipo[doc.ID] = regs
	}

	pagamentos, err := LerPagamentosConsolidado(s.caminhos.ArquivoPagamentosConsolidado())
	if err != nil {
		s.painel.Log(fmt.Sprintf("[MERGE] Base de pagamentos indisponível: %v", err), "red")
		return false
	}

	s.painel.Log("[ANÁLISE] Identificando mudanças de trajetória escolar e estruturando arquivos...", "cyan")
	s.painel.DefinirAlvo(65)
	base := AnalisarTrajetoria(pagamentos)

	var master []models.RegistroDocumento
	for _, doc := range tipos {
		res := ReconciliarTipo(doc, porTipo[doc.ID], base)
		if err := s.gravarRelatoriosTipo(doc, res, base); err != nil {
			s.painel.Log(fmt.Sprintf("[RELATÓRIO] Falha gravando relatórios de %s: %v", doc.Nome, err), "red")
			return false
		}
		master = append(master, res.Reais...)
		master = append(master, res.Pendentes...)
	}
	s.painel.DefinirAlvo(75)

	s.painel.Log("[SQL] Acessando DB e coletando informações...", "cyan")
	s.painel.DefinirAlvo(85)
	s.enriquecer(master)

	s.painel.Log("[MERGE] Cruzando dados e aplicando regras de negócio...", "cyan")
	s.painel.DefinirAlvo(95)

	s.painel.Log("[RELATÓRIO] Gerando resumo quantitativo por IES e Semestre...", "cyan")
	resumo := MontarResumo(master, tipos)
	err = SalvarRelatorio(s.caminhos.ArquivoMaster(),
		Aba{Nome: "rel_documentos_consolidados", Tabela: tabelaMaster(master)},
		Aba{Nome: "Resumo_Quantitativo", Tabela: tabelaResumo(resumo, tipos)},
	)
	if err != nil {
		s.painel.Log(fmt.Sprintf("[RELATÓRIO] Falha gravando o consolidado master: %v", err), "red")
		return false
	}
	return true
}

// enriquecer busca a base financeira para as inscrições do master. Falha de
// consulta degrada para os padrões, não derruba a conferência.
func (s *ServicoConsolidacao) enriquecer(master []models.RegistroDocumento) {
	vistos := make(map[string]struct{})
	var inscricoes []string
	for _, r := range master {
		insc := strconv.FormatInt(r.Inscricao, 10)
		if _, ok := vistos[insc]; !ok && r.Inscricao != 0 {
			vistos[insc] = struct{}{}
			inscricoes = append(inscricoes, insc)
		}
	}

	var financeiros []models.RegistroFinanceiro
	if len(inscricoes) > 0 && s.financeiro != nil {
		regs, err := s.financeiro.BuscarPorInscricoes(inscricoes)
		if err != nil {
			s.painel.Log(fmt.Sprintf("[SQL] Consulta financeira falhou, seguindo com padrões: %v", err), "yellow")
		} else {
			// BuscarPorInscricoes já devolve o esqueleto expandido por semestre.
			financeiros = regs
		}
	}
	EnriquecerMaster(master, financeiros)
}

// gravarRelatoriosTipo escreve o workbook de divergências e o consolidado do
// tipo. CONTRATO mantém os nomes históricos; os demais vão para a pasta do
// tipo.
func (s *ServicoConsolidacao) gravarRelatoriosTipo(doc models.TipoDocumento, res ResultadoTipo, base *BasePagamentos) error {
	var arqDiv, arqSaida, abaDiv1, abaDiv2, abaSaida string
	if doc.ID == "CONTRATO" {
		arqDiv = s.caminhos.ArquivoDivergencias()
		arqSaida = s.caminhos.ArquivoContratos()
		abaDiv1 = "contratos_divergentes"
		abaDiv2 = "pendentes_divergentes"
		abaSaida = "rel_contratos_consolidado"
	} else {
		dir := s.caminhos.DirRelatorioDocumento(doc.ID)
		minusculo := strings.ToLower(doc.ID)
		arqDiv = filepath.Join(dir, "rel_"+minusculo+"_divergentes.xlsx")
		arqSaida = filepath.Join(dir, "rel_"+minusculo+".xlsx")
		abaDiv1 = truncar(minusculo, 15) + "_div"
		abaDiv2 = "pendentes_div"
		abaSaida = "rel_" + truncar(minusculo, 15) + "_cons"
	}

	abasDiv := []Aba{{Nome: abaDiv1, Tabela: tabelaBase(res.Reais)}}
	if len(res.PendentesDivergentes) > 0 {
		abasDiv = append(abasDiv, Aba{Nome: abaDiv2, Tabela: tabelaBase(res.PendentesDivergentes)})
	}
	if err := SalvarRelatorio(arqDiv, abasDiv...); err != nil {
		return err
	}

	// A planilha de divergências preserva o texto de IES do export; a
	// correção pela base de pagamentos vale do consolidado em diante.
	base.CorrigirIES(res.Reais)

	consolidado := make([]models.RegistroDocumento, 0, len(res.Reais)+len(res.Pendentes))
	consolidado = append(consolidado, res.Reais...)
	consolidado = append(consolidado, res.Pendentes...)
	return SalvarRelatorio(arqSaida, Aba{Nome: abaSaida, Tabela: tabelaBase(consolidado)})
}

func truncar(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// =========================================================================
// LEITURA DOS EXPORTS STAGED
// =========================================================================

// carregarExports lê todos os exports staged de um tipo, marcando cada linha
// com o semestre extraído do nome do arquivo. Arquivo ilegível é pulado com
// aviso.
func (s *ServicoConsolidacao) carregarExports(doc models.TipoDocumento) ([]models.RegistroDocumento, error) {
	padrao := filepath.Join(s.caminhos.DirExportDocumento(doc.ID), "export_"+doc.ID+"_*.xlsx")
	arquivos, err := filepath.Glob(padrao)
	if err != nil {
		return nil, err
	}
	sort.Strings(arquivos)

	var regs []models.RegistroDocumento
	for _, arq := range arquivos {
		nome := filepath.Base(arq)
		semestre := strings.TrimSuffix(strings.TrimPrefix(nome, "export_"+doc.ID+"_"), ".xlsx")
		semestre = strings.ReplaceAll(semestre, "-", "/")

		lidos, err := lerExportDocumentos(arq, semestre)
		if err != nil {
			s.painel.Log(fmt.Sprintf("[MERGE] Arquivo %s ignorado: %v", nome, err), "yellow")
			continue
		}
		regs = append(regs, lidos...)
	}
	return regs, nil
}

func lerExportDocumentos(caminho, semestre string) ([]models.RegistroDocumento, error) {
	f, err := excelize.OpenFile(caminho)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	linhas, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(linhas) < 2 {
		return nil, nil
	}

	idx := make(map[string]int)
	for i, nome := range linhas[0] {
		idx[strings.TrimSpace(nome)] = i
	}
	campo := func(linha []string, nome string) string {
		i, ok := idx[nome]
		if !ok || i >= len(linha) {
			return ""
		}
		return strings.TrimSpace(linha[i])
	}

	var regs []models.RegistroDocumento
	for _, linha := range linhas[1:] {
		insc, _ := utils.SomenteDigitos(utils.LimparInscricao(campo(linha, "Inscrição")))
		cpf, _ := utils.SomenteDigitos(campo(linha, "CPF"))
		gemCPF, _ := utils.SomenteDigitos(campo(linha, "Gemini CPF"))

		r := models.RegistroDocumento{
			IAStatus:                 campo(linha, "Status Gemini"),
			Semestre:                 semestre,
			GeminiSemestre:           campo(linha, "Gemini Semestre"),
			Inscricao:                insc,
			Bolsista:                 campo(linha, "Bolsista"),
			CPF:                      cpf,
			GeminiCPF:                gemCPF,
			GeminiInconsistencias:    campo(linha, "Gemini Inconsistencias"),
			Faculdade:                utils.PadronizarTexto(campo(linha, "Faculdade")),
			Curso:                    campo(linha, "Curso"),
			MensalidadeSemDesc:       lerValor(campo(linha, "Mensalidade S/ Desconto")),
			GeminiMensalidadeSemDesc: lerValor(campo(linha, "Gemini Mensalidade S/ Desconto")),
			MensalidadeComDesc:       lerValor(campo(linha, "Mensalidade C/ Desconto")),
			GeminiMensalidadeComDesc: lerValor(campo(linha, "Gemini Mensalidade C/ Desconto")),
			DataProcessamento:        normalizarData(campo(linha, "Data Processamento")),
		}
		r.DifSemDesc = r.MensalidadeSemDesc - r.GeminiMensalidadeSemDesc
		// Sem referência de mensalidade com desconto não há diferença a apontar.
		if r.GeminiMensalidadeComDesc != 0 {
			r.DifComDesc = r.MensalidadeComDesc - r.GeminiMensalidadeComDesc
		}
		regs = append(regs, r)
	}
	return regs, nil
}

// lerValor converte valores monetários que chegam como texto, aceitando
// vírgula decimal. Ilegível vira zero.
func lerValor(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// normalizarData reescreve datas reconhecidas como DD/MM/YYYY; o resto fica
// vazio.
func normalizarData(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"02/01/2006", "02/01/2006 15:04:05", "2006-01-02", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return ""
}
