package interview

import (
	"fmt"
	"strings"
)

// DateLayout is used wherever the interview date is shown as text.
const DateLayout = "2006-01-02 15:04:05"

// Severity markers for pain scores.
const (
	SeverityHigh   = "❗"
	SeverityMedium = "⚠️"
	SeverityLow    = "✓"
)

// Severity maps a score to its marker: 7 and above is high, 4..6 medium.
func Severity(score int) string {
	switch {
	case score >= 7:
		return SeverityHigh
	case score >= 4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// RenderReport formats a record as the summary sent at the end of an
// interview. The result can exceed a single Telegram message.
func RenderReport(r *Record) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	date := ""
	if !r.Date.IsZero() {
		date = r.Date.Format(DateLayout)
	}

	line("📊 ОТЧЕТ ОБ ИНТЕРВЬЮ")
	line("Респондент №: %s", orNotSpecified(r.RespondentID))
	line("Дата: %s", orNotSpecified(date))
	line("")
	line("⚡ Точки напряжения:")
	if len(r.PainPoints) == 0 {
		line("  • Нет")
	}
	for _, p := range r.PainPoints {
		line("  • %s", p)
	}

	line("")
	line("😫 Основные боли:")
	line("  %s", orNotSpecified(r.MainPains))
	line("")
	line("💢 Самая раздражающая:")
	line("  %s", orNotSpecified(r.MostAnnoying))
	line("")
	line("🔍 Анализ болей:")
	if len(r.PainAnalysis) == 0 {
		line("  • Нет проанализированных болей")
	}
	for i, p := range r.PainAnalysis {
		line("  Боль #%d: %s", i+1, orNotSpecified(p.Name))
		line("    Оценка: %d/10 %s", p.Score, Severity(p.Score))
		line("    Эмоция: %s", orNotSpecified(p.Emotion))
		line("    Случай: %s", orNotSpecified(p.LastCase))
		line("    Причина: %s", orNotSpecified(p.Reason))
		line("")
	}

	line("")
	line("✨ Волшебная палочка:")
	line("  %s", orNotSpecified(r.MagicWand))
	line("")
	line("💡 Инсайты:")
	line("  Удивило: %s", orNotSpecified(r.Insights.Surprise))
	line("  Скрытые потребности: %s", orNotSpecified(r.Insights.HiddenNeeds))
	line("  Еда: %s", orNotSpecified(r.Insights.FoodSignals))
	fmt.Fprintf(&b, "  Готовность платить: %s", orNotSpecified(r.Insights.WillingnessToPay))
	return b.String()
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}
