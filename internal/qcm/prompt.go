package qcm

import (
	"fmt"
	"strings"
)

const systemPrompt = `أنت أستاذ جامعي صارم في إعداد الامتحانات.
أرجع JSON صالح فقط بدون أي شرح إضافي.
مهم: لا تجعل الإجابة الصحيحة دائمًا A. وزّع الإجابات بين A/B/C/D بشكل متوازن وعشوائي.`

const promptRules = `قواعد مهمة جدًا:
- وزّع الإجابة الصحيحة بين A/B/C/D بشكل متوازن وعشوائي (لا تجعلها دائمًا A).
- لا تكرر نفس نمط السؤال.
- تجنب الأسئلة المباشرة أو السطحية.
- استعمل صياغات تحليلية/تطبيقية/مفاهيمية.
- استعمل اختيارات طويلة نسبيًا وخادعة (قريبة من الصحيح).
- لا تضف أي معلومة غير موجودة في النص.`

const promptFormat = `تنسيق صارم — JSON فقط:
{
  "questions": [
    {
      "question": "",
      "choices": ["", "", "", ""],
      "correctIndex": 0 | [0,1] | null,
      "explanation": ""
    }
  ]
}`

// buildAnswerRules lists the answer shapes the options allow, one per line.
func buildAnswerRules(opts AnswerOptions) string {
	var rules []string
	if opts.SingleAnswer {
		rules = append(rules, "قد يحتوي السؤال على إجابة صحيحة واحدة فقط.")
	}
	if opts.MultipleAnswers {
		rules = append(rules, "قد يحتوي السؤال على عدة إجابات صحيحة (من 1 إلى 4 اختيارات صحيحة).")
	}
	if opts.AllowNoCorrect {
		rules = append(rules, "في بعض الأسئلة، تكون العبارة «لا توجد إجابة صحيحة» هي الإجابة الصحيحة الوحيدة.")
	}
	return strings.Join(rules, "\n")
}

// buildUserMessage constructs the user message from GenerateInput and Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	b.WriteString("أنت أستاذ جامعي مختص في إعداد الامتحانات.\n\n")
	fmt.Fprintf(&b, "أنشئ %d سؤال QCM أكاديمي من النص فقط.\n\n", cfg.PromptQuestions)
	fmt.Fprintf(&b, "المستوى: %s\n\n", input.Difficulty.Label())

	b.WriteString("قواعد الإجابات:\n")
	b.WriteString(buildAnswerRules(input.Options))
	b.WriteString("\n\n")

	b.WriteString(promptRules)
	b.WriteString("\n\n")
	b.WriteString(promptFormat)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "النص:\n\"\"\"%s\"\"\"", truncateRunes(input.Text, cfg.MaxPromptChars))
	return b.String()
}
