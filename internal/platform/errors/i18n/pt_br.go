package i18n

var ptBRMessages = map[Code]string{
	CodeUnknown:             "Algo deu errado nas profundezas. Tente novamente.",
	CodeNameEmpty:           "Nome, raça e classe são obrigatórios.",
	CodeLineageEmpty:        "Nome, raça e classe são obrigatórios.",
	CodeVocationEmpty:       "Nome, raça e classe são obrigatórios.",
	CodeSessionIDEmpty:      "sessionId e action são obrigatórios.",
	CodeActionEmpty:         "sessionId e action são obrigatórios.",
	CodeMalformedBody:       "O corpo da requisição deve ser um JSON válido.",
	CodeSessionNotFound:     "Sessão não encontrada.",
	CodeCombatInactive:      "Nenhum combate ativo.",
	CodeDiceInvalidSpec:     "Os dados precisam de lados e quantidade positivos.",
	CodeNarratorUnavailable: "O Mestre das Masmorras está momentaneamente em silêncio.",
}
