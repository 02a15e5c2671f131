package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

// SessaoNavegador encapsula uma instância headless do Chrome com diretório
// de download exclusivo. Cada worker do pipeline abre a sua.
type SessaoNavegador struct {
	ctx          context.Context
	cancelCtx    context.CancelFunc
	cancelAlloc  context.CancelFunc
	DirDownloads string
}

// NovaSessao sobe o navegador e aponta os downloads para dirDownloads. O
// contexto pai propaga o cancelamento do pipeline: cancelar mata o processo
// do Chrome junto.
func NovaSessao(pai context.Context, dirDownloads string) (*SessaoNavegador, error) {
	if err := os.MkdirAll(dirDownloads, 0o755); err != nil {
		return nil, fmt.Errorf("criar diretório de downloads: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(pai, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	err := chromedp.Run(ctx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(dirDownloads).
			WithEventsEnabled(true),
	)
	if err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("iniciar navegador: %w", err)
	}

	return &SessaoNavegador{
		ctx:          ctx,
		cancelCtx:    cancelCtx,
		cancelAlloc:  cancelAlloc,
		DirDownloads: dirDownloads,
	}, nil
}

// Ctx expõe o contexto do chromedp para as ações de navegação.
func (s *SessaoNavegador) Ctx() context.Context { return s.ctx }

// Encerrar derruba a aba e o processo do navegador.
func (s *SessaoNavegador) Encerrar() {
	s.cancelCtx()
	s.cancelAlloc()
}

// AguardarDownload espera um arquivo completo aparecer no diretório de
// downloads, ignorando temporários do Chrome. Se nada chegou após 15s e um
// callback de reenvio foi informado, ele é chamado uma única vez (o clique
// de exportação às vezes não dispara na primeira tentativa).
func (s *SessaoNavegador) AguardarDownload(timeout time.Duration, reclicar func() error) (string, error) {
	prazo := time.Now().Add(timeout)
	reclicado := reclicar == nil
	inicio := time.Now()

	for time.Now().Before(prazo) {
		select {
		case <-s.ctx.Done():
			return "", s.ctx.Err()
		case <-time.After(1 * time.Second):
		}

		if arq := arquivoCompleto(s.DirDownloads); arq != "" {
			return arq, nil
		}

		if !reclicado && time.Since(inicio) > 15*time.Second {
			reclicado = true
			if err := reclicar(); err != nil {
				return "", fmt.Errorf("reenviar exportação: %w", err)
			}
		}
	}
	return "", fmt.Errorf("download não concluiu em %s", timeout)
}

// arquivoCompleto devolve o arquivo mais recente do diretório, ou vazio se
// só houver temporários.
func arquivoCompleto(dir string) string {
	entradas, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var maisRecente string
	var quando time.Time
	for _, e := range entradas {
		if e.IsDir() {
			continue
		}
		nome := e.Name()
		if strings.HasSuffix(nome, ".crdownload") || strings.HasSuffix(nome, ".tmp") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(quando) {
			quando = info.ModTime()
			maisRecente = filepath.Join(dir, nome)
		}
	}
	return maisRecente
}

// MoverDownload leva o arquivo baixado para o destino definitivo, criando o
// diretório se preciso.
func MoverDownload(origem, destino string) error {
	if err := os.MkdirAll(filepath.Dir(destino), 0o755); err != nil {
		return err
	}
	if err := os.Rename(origem, destino); err != nil {
		// Rename falha entre filesystems; cai para cópia.
		dados, lerr := os.ReadFile(origem)
		if lerr != nil {
			return err
		}
		if werr := os.WriteFile(destino, dados, 0o644); werr != nil {
			return werr
		}
		return os.Remove(origem)
	}
	return nil
}

// RegistroSessoes acompanha as sessões vivas para que o stop() consiga
// derrubar todos os navegadores, mesmo os de workers ainda bloqueados.
type RegistroSessoes struct {
	mu      sync.Mutex
	sessoes map[*SessaoNavegador]struct{}
}

func NovoRegistroSessoes() *RegistroSessoes {
	return &RegistroSessoes{sessoes: make(map[*SessaoNavegador]struct{})}
}

func (r *RegistroSessoes) Registrar(s *SessaoNavegador) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessoes[s] = struct{}{}
}

func (r *RegistroSessoes) Remover(s *SessaoNavegador) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessoes, s)
}

// EncerrarTodas mata as sessões registradas em background e limpa o
// registro. O chamador não espera o desmonte.
func (r *RegistroSessoes) EncerrarTodas() {
	r.mu.Lock()
	ativas := make([]*SessaoNavegador, 0, len(r.sessoes))
	for s := range r.sessoes {
		ativas = append(ativas, s)
	}
	r.sessoes = make(map[*SessaoNavegador]struct{})
	r.mu.Unlock()

	for _, s := range ativas {
		go s.Encerrar()
	}
}
