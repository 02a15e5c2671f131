package services

import (
	"sync"
	"time"

	"contratos-bot/internal/models"
)

// capacidadeLog limita a memória do painel em execuções longas: o log é uma
// fila FIFO, entradas antigas são descartadas.
const capacidadeLog = 200

// PainelProgresso é o único estado mutável compartilhado entre o controlador,
// os workers e o polling do frontend. Todo acesso passa pelo mutex.
type PainelProgresso struct {
	mu sync.Mutex

	rodando   bool
	progresso float64
	alvo      float64
	logs      []models.EntradaLog

	statusFinal      string
	arquivoGerado    string
	arquivoPrincipal string
	inicio           time.Time
}

func NovoPainelProgresso() *PainelProgresso {
	return &PainelProgresso{}
}

// TentarIniciar zera o painel e marca a execução como ativa. Retorna false
// se já houver uma execução em andamento (garantia de job único).
func (p *PainelProgresso) TentarIniciar() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rodando {
		return false
	}
	p.rodando = true
	p.progresso = 0
	p.alvo = 0
	p.logs = nil
	p.statusFinal = ""
	p.arquivoGerado = ""
	p.arquivoPrincipal = ""
	p.inicio = time.Now()
	return true
}

// Log adiciona uma linha com timestamp e cor; o frontend renderiza a cor.
func (p *PainelProgresso) Log(msg, cor string) {
	carimbo := time.Now().Format("[15:04:05]")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logs = append(p.logs, models.EntradaLog{Msg: carimbo + " " + msg, Color: cor})
	if len(p.logs) > capacidadeLog {
		p.logs = p.logs[len(p.logs)-capacidadeLog:]
	}
}

// AvancarAlvo soma ao progresso alvo. 100 é reservado para o sinal de
// sucesso, então o alvo satura em 99.
func (p *PainelProgresso) AvancarAlvo(delta float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alvo += delta
	if p.alvo > 99 {
		p.alvo = 99
	}
}

// DefinirAlvo posiciona o alvo num marco absoluto (fases da consolidação).
func (p *PainelProgresso) DefinirAlvo(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alvo = v
}

// Status devolve a foto atual para o polling. A porcentagem exibida é
// interpolada: anda em direção ao alvo com passo proporcional à distância,
// o que anima a barra sem o pipeline precisar emitir ticks finos.
func (p *PainelProgresso) Status() models.StatusAutomacao {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rodando && p.progresso < p.alvo {
		distancia := p.alvo - p.progresso
		passo := 0.5
		if distancia > 15 {
			passo = 1.5
		} else if distancia > 5 {
			passo = 1.0
		}
		p.progresso += passo
		if p.progresso > p.alvo {
			p.progresso = p.alvo
		}
	}
	if p.statusFinal == "success" {
		p.progresso = 100
	}

	logs := make([]models.EntradaLog, len(p.logs))
	copy(logs, p.logs)

	return models.StatusAutomacao{
		Progress:         int(p.progresso),
		Logs:             logs,
		IsRunning:        p.rodando,
		ArquivoGerado:    p.arquivoGerado,
		ArquivoPrincipal: p.arquivoPrincipal,
		StatusFinal:      p.statusFinal,
	}
}

func (p *PainelProgresso) Rodando() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rodando
}

// DefinirSaida registra os artefatos finais antes de concluir com sucesso.
func (p *PainelProgresso) DefinirSaida(arquivoZip, arquivoPrincipal string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.arquivoGerado = arquivoZip
	p.arquivoPrincipal = arquivoPrincipal
}

// Concluir encerra a execução com o status final informado.
func (p *PainelProgresso) Concluir(sucesso bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rodando = false
	if sucesso {
		p.statusFinal = "success"
		p.progresso = 100
	} else {
		p.statusFinal = "error"
	}
}

// Abortar é o caminho do stop(): a execução some da UI imediatamente,
// mesmo que os workers ainda estejam desmontando sessões em background.
func (p *PainelProgresso) Abortar() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rodando = false
	p.statusFinal = "error"
}

func (p *PainelProgresso) Decorrido() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Since(p.inicio)
}
