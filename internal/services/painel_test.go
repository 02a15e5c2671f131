package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPainelExecucaoUnica(t *testing.T) {
	p := NovoPainelProgresso()

	require.True(t, p.TentarIniciar())
	assert.False(t, p.TentarIniciar(), "segunda execução simultânea deve ser negada")

	p.Concluir(true)
	assert.True(t, p.TentarIniciar(), "após concluir pode iniciar de novo")
}

func TestPainelLogLimitado(t *testing.T) {
	p := NovoPainelProgresso()
	require.True(t, p.TentarIniciar())

	for i := 0; i < 250; i++ {
		p.Log(fmt.Sprintf("linha %d", i), "white")
	}

	st := p.Status()
	require.Len(t, st.Logs, 200)
	// FIFO: as mais antigas caem
	assert.Contains(t, st.Logs[0].Msg, "linha 50")
	assert.Contains(t, st.Logs[199].Msg, "linha 249")
	assert.Equal(t, "white", st.Logs[0].Color)
}

func TestPainelLogComTimestamp(t *testing.T) {
	p := NovoPainelProgresso()
	p.Log("teste", "cyan")

	st := p.Status()
	require.Len(t, st.Logs, 1)
	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] teste$`, st.Logs[0].Msg)
}

func TestPainelProgressoInterpolado(t *testing.T) {
	p := NovoPainelProgresso()
	require.True(t, p.TentarIniciar())
	p.DefinirAlvo(50)

	anterior := 0
	for i := 0; i < 200; i++ {
		st := p.Status()
		assert.GreaterOrEqual(t, st.Progress, anterior, "progresso nunca regride")
		assert.LessOrEqual(t, st.Progress, 50, "progresso não passa do alvo")
		anterior = st.Progress
	}
	assert.Equal(t, 50, anterior, "interpolação converge para o alvo")
}

func TestPainelAlvoSaturaEm99(t *testing.T) {
	p := NovoPainelProgresso()
	require.True(t, p.TentarIniciar())

	for i := 0; i < 20; i++ {
		p.AvancarAlvo(10)
	}
	for i := 0; i < 300; i++ {
		p.Status()
	}
	assert.Equal(t, 99, p.Status().Progress, "100 é reservado para o sucesso")
}

func TestPainelSucessoForca100(t *testing.T) {
	p := NovoPainelProgresso()
	require.True(t, p.TentarIniciar())
	p.DefinirAlvo(42)
	p.Status()

	p.DefinirSaida("saida.zip", "master.xlsx")
	p.Concluir(true)

	st := p.Status()
	assert.Equal(t, 100, st.Progress)
	assert.Equal(t, "success", st.StatusFinal)
	assert.False(t, st.IsRunning)
	assert.Equal(t, "saida.zip", st.ArquivoGerado)
	assert.Equal(t, "master.xlsx", st.ArquivoPrincipal)
}

func TestPainelAbortar(t *testing.T) {
	p := NovoPainelProgresso()
	require.True(t, p.TentarIniciar())

	p.Abortar()
	st := p.Status()
	assert.False(t, st.IsRunning)
	assert.Equal(t, "error", st.StatusFinal)
}

func TestPainelReinicioZeraEstado(t *testing.T) {
	p := NovoPainelProgresso()
	require.True(t, p.TentarIniciar())
	p.Log("antiga", "gray")
	p.DefinirAlvo(80)
	p.Concluir(false)

	require.True(t, p.TentarIniciar())
	st := p.Status()
	assert.Empty(t, st.Logs)
	assert.Equal(t, 0, st.Progress)
	assert.Equal(t, "", st.StatusFinal)
}
