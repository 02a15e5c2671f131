package utils

import (
	"sort"
	"strings"
)

// ResultadoLista resume o processamento de uma lista colada pelo usuário.
type ResultadoLista struct {
	Texto      string `json:"texto"`
	QtdEntrada int    `json:"qtd_entrada"`
	QtdSaida   int    `json:"qtd_saida"`
	Duplicatas int    `json:"duplicatas"`
}

// GerarListaInscricoes deduplica e ordena as linhas coladas e devolve tudo
// numa linha só separada por vírgula (formato aceito pelos filtros do PBU).
func GerarListaInscricoes(entrada string) ResultadoLista {
	linhas := linhasNaoVazias(entrada)
	unicas := unicasOrdenadas(linhas)

	return ResultadoLista{
		Texto:      strings.Join(unicas, ","),
		QtdEntrada: len(linhas),
		QtdSaida:   len(unicas),
		Duplicatas: len(linhas) - len(unicas),
	}
}

// PadronizarListaIES normaliza cada linha com NormalizarTextoPadrao.
// Com somenteUnicas, o resultado é deduplicado e ordenado.
func PadronizarListaIES(entrada string, somenteUnicas bool) ResultadoLista {
	linhas := linhasNaoVazias(entrada)

	normalizadas := make([]string, 0, len(linhas))
	for _, l := range linhas {
		normalizadas = append(normalizadas, NormalizarTextoPadrao(l))
	}

	saida := normalizadas
	if somenteUnicas {
		saida = unicasOrdenadas(normalizadas)
	}

	return ResultadoLista{
		Texto:      strings.Join(saida, "\n"),
		QtdEntrada: len(linhas),
		QtdSaida:   len(saida),
		Duplicatas: len(linhas) - len(saida),
	}
}

func linhasNaoVazias(texto string) []string {
	var linhas []string
	for _, l := range strings.Split(texto, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			linhas = append(linhas, t)
		}
	}
	return linhas
}

func unicasOrdenadas(linhas []string) []string {
	vistos := make(map[string]bool)
	var unicas []string
	for _, l := range linhas {
		if l != "" && !vistos[l] {
			vistos[l] = true
			unicas = append(unicas, l)
		}
	}
	sort.Strings(unicas)
	return unicas
}
