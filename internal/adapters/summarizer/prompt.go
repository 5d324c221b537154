package summarizer

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Промпт — часть контракта адаптера: ограничение длины резюме фиксировано
// и не настраивается вызывающей стороной.
const systemPrompt = "You are an assistant that specializes in summarising long texts. " +
	"Write a concise summary of at most 5 sentences that covers the entirety of the text."

func userPrompt(text string) string {
	return fmt.Sprintf("Please return a summary of this text: %s", plainText(text))
}

// plainText убирает HTML-разметку из содержимого ленты. Разметка в промпте
// портит резюме и впустую расходует входной бюджет провайдера.
func plainText(input string) string {
	if !strings.ContainsRune(input, '<') {
		return strings.TrimSpace(input)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return strings.TrimSpace(input)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
}
