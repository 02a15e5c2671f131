package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contratos-bot/internal/utils"
)

func TestFerramentasInscricoes(t *testing.T) {
	h := NewFerramentasHandler()

	req := httptest.NewRequest("POST", "/api/ferramentas/inscricoes",
		strings.NewReader(`{"texto":"300\n100\n100\n200"}`))
	rec := httptest.NewRecorder()
	h.Inscricoes(rec, req)

	require.Equal(t, 200, rec.Code)
	var res utils.ResultadoLista
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "100,200,300", res.Texto)
	assert.Equal(t, 1, res.Duplicatas)
}

func TestFerramentasIES(t *testing.T) {
	h := NewFerramentasHandler()

	req := httptest.NewRequest("POST", "/api/ferramentas/ies",
		strings.NewReader(`{"texto":"Faculdade Alfa!\nFACULDADE ALFA","modo":"unique"}`))
	rec := httptest.NewRecorder()
	h.IES(rec, req)

	require.Equal(t, 200, rec.Code)
	var res utils.ResultadoLista
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "FACULDADE ALFA", res.Texto)
	assert.Equal(t, 1, res.QtdSaida)
}

func TestFerramentasCorpoInvalido(t *testing.T) {
	h := NewFerramentasHandler()

	req := httptest.NewRequest("POST", "/api/ferramentas/inscricoes", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.Inscricoes(rec, req)

	assert.Equal(t, 400, rec.Code)
}
