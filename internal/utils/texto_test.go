package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPadronizarTexto(t *testing.T) {
	casos := map[string]string{
		"  Pontifícia Universidade Católica  ": "PONTIFICIA UNIVERSIDADE CATOLICA",
		"UNI-EVANGÉLICA":                       "UNI EVANGELICA",
		"faculdade   alfa":                     "FACULDADE ALFA",
		"":                                     "",
	}
	for entrada, esperado := range casos {
		assert.Equal(t, esperado, PadronizarTexto(entrada))
	}
}

func TestPadronizarTextoIdempotente(t *testing.T) {
	entradas := []string{
		"Pontifícia Universidade Católica de Goiás",
		"UNI-EVANGÉLICA — Centro Universitário",
		"FACULDADE  ALFA ",
	}
	for _, e := range entradas {
		uma := PadronizarTexto(e)
		assert.Equal(t, uma, PadronizarTexto(uma))
	}
}

func TestNormalizarTextoPadrao(t *testing.T) {
	assert.Equal(t, "FACULDADE ALFA (GO)", NormalizarTextoPadrao("Faculdade Alfa (GO)!"))
	assert.Equal(t, "UNI-EVANGELICA", NormalizarTextoPadrao("uni-evangélica"))
	assert.Equal(t, "", NormalizarTextoPadrao("   "))
}

func TestSomenteDigitos(t *testing.T) {
	casos := []struct {
		entrada  string
		esperado int64
		ok       bool
	}{
		{"12.345", 12345, true},
		{"98765.0", 98765, true},
		{"123.456.789-01", 12345678901, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range casos {
		n, ok := SomenteDigitos(c.entrada)
		assert.Equal(t, c.ok, ok, c.entrada)
		assert.Equal(t, c.esperado, n, c.entrada)
	}
}

func TestLimparCPF(t *testing.T) {
	assert.Equal(t, "12345678901", LimparCPF("123.456.789-01"))
	assert.Equal(t, "00000012345", LimparCPF("*123.45*"))
	assert.Equal(t, "00000000000", LimparCPF(""))
}

func TestLimparInscricao(t *testing.T) {
	assert.Equal(t, "10234", LimparInscricao(" 10.234 "))
}
