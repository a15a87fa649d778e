package llm

import (
	"fmt"
	"strings"
	"time"
)

// BuildClassificationPrompt assembles the intent-classification prompt for
// one incoming message. The model must answer with a single JSON object;
// the taxonomy section constrains category names.
func BuildClassificationPrompt(taxonomy Taxonomy, now time.Time, message string) string {
	var b strings.Builder

	b.WriteString("Você é o classificador de intenções de um assistente financeiro pessoal.\n")
	b.WriteString("Analise a mensagem do usuário e responda com UM único objeto JSON.\n\n")

	b.WriteString("Intenções possíveis:\n")
	b.WriteString("- registrar_gasto: um único gasto. parameters.transacao = {descricao, valor, categoria, subcategoria, metodo, recorrente, obs}\n")
	b.WriteString("- registrar_receita: uma única receita. parameters.transacao como acima\n")
	b.WriteString("- registrar_transacoes: duas ou mais transações na mesma mensagem. parameters.transacoes = lista de objetos {descricao, valor, categoria, subcategoria, tipo (gasto|receita), obs}\n")
	b.WriteString("- criar_divida: o usuário quer cadastrar uma dívida\n")
	b.WriteString("- criar_meta: o usuário quer cadastrar uma meta financeira\n")
	b.WriteString("- pagar_divida: pagamento de parcela de dívida. parameters = {divida, valor}\n")
	b.WriteString("- deletar_registro: apagar lançamentos. parameters = {descricao, mes, ano}\n")
	b.WriteString("- total_gastos_categoria_mes: total gasto em uma categoria. parameters = {categoria, mes, ano}\n")
	b.WriteString("- media_gastos_categoria_mes: média de gastos. parameters = {categoria, mes, ano}\n")
	b.WriteString("- listagem_gastos_categoria: listar gastos. parameters = {categoria, mes, ano}\n")
	b.WriteString("- contagem_ocorrencias: quantas vezes algo aconteceu. parameters = {palavras: [..], mes, ano}\n")
	b.WriteString("- gastos_valores_duplicados: lançamentos com valores repetidos. parameters = {mes, ano}\n")
	b.WriteString("- maior_menor_gasto: maior e menor gasto. parameters = {mes, ano}\n")
	b.WriteString("- saldo_do_mes: saldo entre receitas e gastos. parameters = {mes, ano}\n")
	b.WriteString("- pergunta_geral: qualquer outra coisa\n\n")

	b.WriteString(taxonomy.PromptSection())
	b.WriteString("\n")

	b.WriteString("Regras:\n")
	b.WriteString("- \"mes\" é o nome do mês em português ou um número de 0 a 11; use null quando a pergunta for do ano inteiro.\n")
	b.WriteString(fmt.Sprintf("- Quando o mês não for citado, use o mês atual. Hoje é %s.\n", now.Format("02/01/2006")))
	b.WriteString("- \"valor\" é sempre número positivo.\n")
	b.WriteString("- Campos não mencionados pelo usuário devem ser null.\n")
	b.WriteString("- Responda APENAS com JSON válido, sem cercas de código, começando com { e terminando com }.\n\n")

	b.WriteString("Mensagem do usuário:\n")
	b.WriteString(message)
	b.WriteString("\n")

	return b.String()
}

// BuildInstallmentMappingPrompt asks the model to map each batch item to an
// installment count based on a free-text instruction such as "o notebook em
// 3x e o resto à vista". Unmapped items default to 1 on the caller side.
func BuildInstallmentMappingPrompt(descriptions []string, instruction string) string {
	var b strings.Builder

	b.WriteString("O usuário comprou os itens abaixo no cartão de crédito e explicou em quantas parcelas cada um vai:\n\n")
	for i, d := range descriptions {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, d))
	}
	b.WriteString("\nInstrução do usuário: ")
	b.WriteString(instruction)
	b.WriteString("\n\n")
	b.WriteString("Responda APENAS com um objeto JSON mapeando o número do item para o número de parcelas, ")
	b.WriteString("por exemplo {\"1\": 3, \"2\": 1}. Itens não citados recebem 1. Sem texto extra.\n")

	return b.String()
}

// BuildAnswerPrompt wraps a free-form question for the generic-question
// fallback.
func BuildAnswerPrompt(question string) string {
	var b strings.Builder
	b.WriteString("Você é um assistente financeiro pessoal brasileiro, direto e amigável.\n")
	b.WriteString("Responda em português, em no máximo três frases.\n\n")
	b.WriteString("Pergunta: ")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}
