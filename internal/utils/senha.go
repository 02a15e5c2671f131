package utils

import "unicode"

// ValidarRequisitosSenha confere a política de senhas da organização e
// devolve TODAS as violações de uma vez, para o usuário corrigir tudo numa
// tentativa só. Lista vazia significa senha válida.
func ValidarRequisitosSenha(senha string) []string {
	if senha == "" {
		return []string{"A senha não pode estar vazia."}
	}

	var erros []string

	if len([]rune(senha)) < 8 {
		erros = append(erros, "A senha deve ter no mínimo 8 caracteres.")
	}

	temMaiuscula := false
	numeros := 0
	temEspecial := false
	for _, r := range senha {
		switch {
		case unicode.IsUpper(r):
			temMaiuscula = true
		case unicode.IsDigit(r):
			numeros++
		// Underscore é caractere de "palavra", não conta como especial.
		case r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r):
			temEspecial = true
		}
	}

	if !temMaiuscula {
		erros = append(erros, "Pelo menos 1 letra maiúscula.")
	}
	if numeros < 2 {
		erros = append(erros, "Pelo menos 2 números.")
	}
	if !temEspecial {
		erros = append(erros, "Pelo menos 1 caractere especial (ex: @, #, $).")
	}

	return erros
}
