package models

// RegistroPagamento é uma linha da base de pagamentos do sistema Bolsa,
// já normalizada. É a "fonte da verdade" de quem deveria ter documento
// protocolado em cada semestre.
type RegistroPagamento struct {
	Inscricao      string // UNI_CODIGO
	CPF            string // UNI_CPF, sem máscara
	Nome           string // UNI_NOME
	Curso          string // CUR_NOME
	IES            string // INS_NOME, padronizada
	TipoBolsa      string // TIPO_BOLSA
	DataLancamento string // DD/MM/YYYY
	Semestre       string // derivado da data, ex: "2025/1"
	TrocouBolsa    string // SIM / NÃO
}

// RegistroDocumento é uma linha do relatório consolidado: ou um documento
// real exportado do PBU, ou uma pendência sintetizada a partir da base de
// pagamentos (IAStatus "Ausentes").
type RegistroDocumento struct {
	IAStatus              string
	StatusVinculo         string // ATIVO / DESLIGADO
	MudouIES              string // SIM / NÃO
	IESAnterior           string
	MudouBolsa            string // SIM / NÃO
	BolsaAnterior         string
	Semestre              string // "2025/1"
	GeminiSemestre        string
	Inscricao             int64
	Bolsista              string
	CPF                   int64
	GeminiCPF             int64
	GeminiInconsistencias string
	Faculdade             string
	Curso                 string

	// Enriquecimento via banco financeiro
	TipoBolsaFinal   string
	TipoPagto        string
	QtdPagtos        int
	ValorUltimaBolsa float64

	MensalidadeSemDesc       float64
	GeminiMensalidadeSemDesc float64
	DifSemDesc               float64
	MensalidadeComDesc       float64
	GeminiMensalidadeComDesc float64
	DifComDesc               float64

	DocumentoTipo     string
	DataProcessamento string
}

// RegistroFinanceiro é uma linha da tabela PY_financeiro_calculado_semestre_IM.
type RegistroFinanceiro struct {
	Inscricao        string
	Semestre         string
	TipoBolsaFinal   string
	TipoPagto        string
	QtdPagtos        int
	ValorUltimaBolsa float64
}

// LinhaResumo é uma linha do resumo quantitativo por IES e semestre.
type LinhaResumo struct {
	IES                string
	Semestre           string
	TotalBeneficiarios int
	Ativos             int
	Desligados         int
	Enviados           map[string]int // por ID de documento
	Pendentes          map[string]int
}
