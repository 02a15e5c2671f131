package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	removedorAcentos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	reNaoPermitidos  = regexp.MustCompile(`[^A-Z0-9\s\(\)\-]`)
	reEspacos        = regexp.MustCompile(`\s+`)
)

// RemoverAcentos descarta os sinais diacríticos de um texto (Ã -> A, ç -> c).
func RemoverAcentos(texto string) string {
	saida, _, err := transform.String(removedorAcentos, texto)
	if err != nil {
		return texto
	}
	return saida
}

// PadronizarTexto canoniza nomes de instituição para comparação: maiúsculas,
// sem acentos, hífens viram espaço e espaços internos são colapsados.
// A função é idempotente.
func PadronizarTexto(texto string) string {
	txt := strings.ToUpper(strings.TrimSpace(texto))
	txt = RemoverAcentos(txt)
	txt = strings.ReplaceAll(txt, "-", " ")
	return strings.Join(strings.Fields(txt), " ")
}

// NormalizarTextoPadrao é a variante usada pelo padronizador de IES do
// portal: além de acentos, remove qualquer símbolo fora de A-Z, 0-9,
// parênteses e hífen.
func NormalizarTextoPadrao(texto string) string {
	txt := strings.TrimSpace(texto)
	if txt == "" {
		return ""
	}
	txt = strings.ToUpper(RemoverAcentos(txt))
	txt = reNaoPermitidos.ReplaceAllString(txt, "")
	txt = reEspacos.ReplaceAllString(txt, " ")
	return strings.TrimSpace(txt)
}

// SomenteDigitos converte um identificador sujo ("12.345", "98765.0", CPF com
// máscara) para número. A parte decimal de exports que chegam como float é
// descartada antes do filtro de dígitos. Retorna ok=false quando não sobra
// nenhum dígito.
func SomenteDigitos(valor string) (int64, bool) {
	s := strings.TrimSpace(valor)
	if i := strings.Index(s, "."); i >= 0 {
		// Exports do PBU às vezes chegam como "12345.0"
		if depois := s[i+1:]; depois == "0" || depois == "" {
			s = s[:i]
		}
	}
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return 0, false
	}
	var n int64
	for _, r := range sb.String() {
		n = n*10 + int64(r-'0')
	}
	return n, true
}

// LimparInscricao remove pontos e espaços de um número de inscrição,
// preservando-o como texto (chave de cruzamento).
func LimparInscricao(valor string) string {
	return strings.TrimSpace(strings.ReplaceAll(valor, ".", ""))
}

// LimparCPF remove máscara e completa com zeros à esquerda até 11 dígitos.
func LimparCPF(valor string) string {
	s := strings.NewReplacer(".", "", "-", "", "*", "").Replace(strings.TrimSpace(valor))
	for len(s) < 11 {
		s = "0" + s
	}
	return s
}
