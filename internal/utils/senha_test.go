package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidarRequisitosSenhaValida(t *testing.T) {
	assert.Empty(t, ValidarRequisitosSenha("Mudar@123"))
	assert.Empty(t, ValidarRequisitosSenha("Senha#2024"))
}

func TestValidarRequisitosSenhaUnderscoreNaoEhEspecial(t *testing.T) {
	erros := ValidarRequisitosSenha("Senha_2024")
	assert.Len(t, erros, 1)
	assert.Contains(t, erros[0], "caractere especial")
}

func TestValidarRequisitosSenhaAcumulaViolacoes(t *testing.T) {
	// curta, sem maiúscula, sem dígitos, sem especial: tudo de uma vez
	erros := ValidarRequisitosSenha("abc")
	assert.Len(t, erros, 4)
}

func TestValidarRequisitosSenhaParcial(t *testing.T) {
	// só falta o segundo dígito
	erros := ValidarRequisitosSenha("Senha@abc1")
	assert.Len(t, erros, 1)
	assert.Contains(t, erros[0], "2 números")
}

func TestValidarRequisitosSenhaVazia(t *testing.T) {
	erros := ValidarRequisitosSenha("")
	assert.Len(t, erros, 1)
}
