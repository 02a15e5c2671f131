package models

// TipoDocumento descreve uma categoria de documento exigida dos bolsistas.
// O conjunto é fechado: o portal PBU só conhece estes quatro tipos.
type TipoDocumento struct {
	ID          string // identificador curto usado em pastas e nomes de arquivo
	Nome        string // nome exibido nos logs
	NomeOficial string // nome completo exibido nos relatórios
	AnoMinimo   int    // primeiro ano em que o documento passou a ser exigido
}

// DocumentosOficiais é a configuração oficial dos documentos rastreados.
var DocumentosOficiais = []TipoDocumento{
	{
		ID:          "CONTRATO",
		Nome:        "Contratos",
		NomeOficial: "CONTRATO DE PRESTAÇÃO DE SERVIÇOS EDUCACIONAIS OU COMPROVANTE DE MATRÍCULA",
		AnoMinimo:   2025,
	},
	{
		ID:          "FINANCIAMENTO",
		Nome:        "Financiamento",
		NomeOficial: "COMPROVANTE DE FINANCIAMENTO",
		AnoMinimo:   2025,
	},
	{
		ID:          "OUTROS_BENEF",
		Nome:        "Outros Benef.",
		NomeOficial: "COMPROVANTE OUTROS BENEFÍCIOS",
		AnoMinimo:   2025,
	},
	{
		ID:          "RIAF",
		Nome:        "RIAF",
		NomeOficial: "RIAF – RESUMO DE INFORMAÇÕES ACADÊMICAS E FINANCEIRAS",
		AnoMinimo:   2026,
	},
}

// BuscarDocumento retorna o tipo oficial pelo ID curto.
func BuscarDocumento(id string) (TipoDocumento, bool) {
	for _, d := range DocumentosOficiais {
		if d.ID == id {
			return d, true
		}
	}
	return TipoDocumento{}, false
}

// ConfigAutomacao é o corpo de /api/automacao/iniciar.
type ConfigAutomacao struct {
	Docs      []string `json:"docs"`
	Anos      []string `json:"anos"`
	Semestres []string `json:"semestres"`
}

// TarefaExtracao é uma unidade de trabalho: um semestre e os tipos de
// documento válidos para ele.
type TarefaExtracao struct {
	Semestre   string // rótulo do portal, ex: "2025-1"
	Valor      string // value do dropdown do PBU, ex: "2025-1##@@2025-1"
	Documentos []TipoDocumento
}

// EntradaLog é uma linha do painel de acompanhamento.
type EntradaLog struct {
	Msg   string `json:"msg"`
	Color string `json:"color"`
}

// StatusAutomacao é a resposta de /api/automacao/status, consumida pelo
// frontend a cada 800ms.
type StatusAutomacao struct {
	Progress         int          `json:"progress"`
	Logs             []EntradaLog `json:"logs"`
	IsRunning        bool         `json:"is_running"`
	ArquivoGerado    string       `json:"arquivo_gerado"`
	ArquivoPrincipal string       `json:"arquivo_principal"`
	StatusFinal      string       `json:"status_final"`
}
