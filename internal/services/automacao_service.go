package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"contratos-bot/internal/models"
)

// maxTentativas limita as repetições de uma tarefa de extração de
// documentos. O conjunto de tipos já baixados atravessa as tentativas.
const maxTentativas = 3

// workersExtracao é o teto de sessões de navegador simultâneas.
const workersExtracao = 4

// Consolidador é a fase de conferência vista pelo controlador.
type Consolidador interface {
	Executar(tipos []models.TipoDocumento) bool
}

// AutomacaoService orquestra o pipeline completo: higieniza o diretório de
// trabalho, dispara os workers de extração, consolida, concilia e empacota.
type AutomacaoService struct {
	caminhos *Caminhos
	painel   *PainelProgresso
	sessoes  *RegistroSessoes

	extratorDocs   ExtratorDocumentos
	extratorPagtos ExtratorPagamentos
	consolidador   Consolidador

	// pontos de costura para os testes
	consolidarPagamentos func(*Caminhos, *PainelProgresso) ([]models.RegistroPagamento, error)
	arquivar             func(*Caminhos) (string, error)
	agora                func() time.Time

	mu       sync.Mutex
	cancelar context.CancelFunc
}

func NovoAutomacaoService(caminhos *Caminhos, painel *PainelProgresso, sessoes *RegistroSessoes,
	docs ExtratorDocumentos, pagtos ExtratorPagamentos, consolidador Consolidador) *AutomacaoService {
	return &AutomacaoService{
		caminhos:             caminhos,
		painel:               painel,
		sessoes:              sessoes,
		extratorDocs:         docs,
		extratorPagtos:       pagtos,
		consolidador:         consolidador,
		consolidarPagamentos: ConsolidarPagamentos,
		arquivar:             GerarZip,
		agora:                time.Now,
	}
}

// ErrJaRodando indica que já existe uma execução em andamento.
var ErrJaRodando = errors.New("automação já em andamento")

// Iniciar valida a configuração, prepara o diretório de trabalho e dispara o
// pipeline em background. Idempotente enquanto houver execução ativa.
func (s *AutomacaoService) Iniciar(cfg models.ConfigAutomacao) error {
	docs, err := resolverDocumentos(cfg.Docs)
	if err != nil {
		return err
	}
	tarefas, anosPagamento := s.montarTarefas(cfg, docs)
	if len(tarefas) == 0 {
		return errors.New("nenhum semestre válido para o período informado")
	}

	if !s.painel.TentarIniciar() {
		return ErrJaRodando
	}

	ctx, cancelar := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancelar = cancelar
	s.mu.Unlock()

	go s.executar(ctx, docs, tarefas, anosPagamento)
	return nil
}

// Parar cancela a execução corrente. O status muda na hora; as sessões de
// navegador são derrubadas em background porque o desmonte não é garantido
// de forma graciosa.
func (s *AutomacaoService) Parar() {
	s.mu.Lock()
	cancelar := s.cancelar
	s.cancelar = nil
	s.mu.Unlock()

	if cancelar == nil {
		return
	}
	cancelar()
	s.sessoes.EncerrarTodas()
	s.painel.Log("Automação interrompida pelo usuário.", "yellow")
	s.painel.Abortar()
}

func (s *AutomacaoService) Status() models.StatusAutomacao {
	return s.painel.Status()
}

func resolverDocumentos(ids []string) ([]models.TipoDocumento, error) {
	if len(ids) == 0 {
		return nil, errors.New("nenhum tipo de documento selecionado")
	}
	var docs []models.TipoDocumento
	for _, id := range ids {
		doc, ok := models.BuscarDocumento(id)
		if !ok {
			return nil, fmt.Errorf("tipo de documento desconhecido: %s", id)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// montarTarefas aplica as regras de calendário: anos futuros são ignorados,
// o segundo semestre do ano corrente só entra a partir de agosto e cada
// tipo de documento respeita seu primeiro ano de vigência.
func (s *AutomacaoService) montarTarefas(cfg models.ConfigAutomacao, docs []models.TipoDocumento) ([]models.TarefaExtracao, []int) {
	hoje := s.agora()

	var anos []int
	for _, a := range cfg.Anos {
		ano, err := strconv.Atoi(a)
		if err != nil || ano > hoje.Year() {
			continue
		}
		anos = append(anos, ano)
	}
	sort.Ints(anos)

	var tarefas []models.TarefaExtracao
	for _, ano := range anos {
		for _, sem := range cfg.Semestres {
			if sem != "1" && sem != "2" {
				continue
			}
			if sem == "2" && ano == hoje.Year() && hoje.Month() < time.August {
				continue
			}

			var validos []models.TipoDocumento
			for _, doc := range docs {
				if ano >= doc.AnoMinimo {
					validos = append(validos, doc)
				}
			}
			if len(validos) == 0 {
				continue
			}

			rotulo := fmt.Sprintf("%d-%s", ano, sem)
			tarefas = append(tarefas, models.TarefaExtracao{
				Semestre:   rotulo,
				Valor:      rotulo + "##@@" + rotulo,
				Documentos: validos,
			})
		}
	}
	return tarefas, anos
}

// mesesDoAno lista os meses de pagamento a extrair: anos passados inteiros,
// o corrente só até o mês anterior.
func (s *AutomacaoService) mesesDoAno(ano int) []int {
	hoje := s.agora()
	ultimo := 12
	if ano == hoje.Year() {
		ultimo = int(hoje.Month()) - 1
	}
	var meses []int
	for m := 1; m <= ultimo; m++ {
		meses = append(meses, m)
	}
	return meses
}

func (s *AutomacaoService) executar(ctx context.Context, docs []models.TipoDocumento, tarefas []models.TarefaExtracao, anosPagamento []int) {
	defer func() {
		s.mu.Lock()
		s.cancelar = nil
		s.mu.Unlock()
	}()

	s.painel.Log("Iniciando automação de contratos...", "#F08EB3")
	if err := s.caminhos.Higienizar(docs); err != nil {
		s.painel.Log(fmt.Sprintf("Falha preparando diretórios: %v", err), "red")
		s.painel.Concluir(false)
		return
	}

	s.extrair(ctx, tarefas, anosPagamento)
	if ctx.Err() != nil {
		return
	}

	s.painel.Log("[Base Auxiliar] Consolidando dados...", "#FFCE54")
	s.painel.DefinirAlvo(45)
	if _, err := s.consolidarPagamentos(s.caminhos, s.painel); err != nil {
		s.painel.Log(fmt.Sprintf("[Base Auxiliar] Erro na consolidação: %v", err), "red")
		s.painel.Concluir(false)
		return
	}

	if !s.consolidador.Executar(docs) {
		s.painel.Concluir(false)
		return
	}
	if ctx.Err() != nil {
		return
	}

	zipGerado, err := s.arquivar(s.caminhos)
	if err != nil {
		s.painel.Log(fmt.Sprintf("Falha gerando o pacote final: %v", err), "red")
		s.painel.Concluir(false)
		return
	}

	s.painel.DefinirSaida(zipGerado, s.caminhos.ArquivoMaster())
	s.painel.Log(fmt.Sprintf("Automação concluída em %s.", s.painel.Decorrido().Round(time.Second)), "#A0D468")
	s.painel.Concluir(true)
}

// extrair roda as tarefas de documentos e de pagamentos num pool limitado.
// Falha permanente de uma tarefa é registrada e não derruba as demais.
func (s *AutomacaoService) extrair(ctx context.Context, tarefas []models.TarefaExtracao, anosPagamento []int) {
	sem := make(chan struct{}, workersExtracao)
	var wg sync.WaitGroup

	for _, tarefa := range tarefas {
		wg.Add(1)
		go func(t models.TarefaExtracao) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			s.extrairDocumentos(ctx, t)
		}(tarefa)
	}

	for _, ano := range anosPagamento {
		wg.Add(1)
		go func(ano int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			s.extrairPagamentos(ctx, ano)
		}(ano)
	}

	wg.Wait()
}

func (s *AutomacaoService) extrairDocumentos(ctx context.Context, tarefa models.TarefaExtracao) {
	baixados := make(map[string]bool)
	for tentativa := 1; tentativa <= maxTentativas; tentativa++ {
		if ctx.Err() != nil {
			return
		}

		err := s.extratorDocs.ExtrairSemestre(ctx, tarefa, baixados)
		if err == nil {
			s.painel.Log(fmt.Sprintf("Semestre %s concluído.", tarefa.Semestre), "#A0D468")
			s.painel.AvancarAlvo(10)
			return
		}
		if errors.Is(err, ErrSemestreIndisponivel) {
			s.painel.AvancarAlvo(10)
			return
		}
		if ctx.Err() != nil {
			return
		}

		if tentativa < maxTentativas {
			s.painel.Log(fmt.Sprintf("Semestre %s falhou (tentativa %d/%d): %v", tarefa.Semestre, tentativa, maxTentativas, err), "yellow")
		} else {
			s.painel.Log(fmt.Sprintf("Semestre %s abandonado após %d tentativas: %v", tarefa.Semestre, maxTentativas, err), "red")
		}
	}
}

func (s *AutomacaoService) extrairPagamentos(ctx context.Context, ano int) {
	meses := s.mesesDoAno(ano)
	if len(meses) == 0 {
		return
	}
	if err := s.extratorPagtos.ExtrairAno(ctx, ano, meses); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.painel.Log(fmt.Sprintf("[Base Auxiliar] Erro na extração de %d: %v", ano, err), "red")
		return
	}
	s.painel.AvancarAlvo(10)
}
