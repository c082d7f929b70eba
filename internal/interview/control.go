package interview

import "strings"

// Control is a menu command recognised in place of free-text data.
type Control int

const (
	ControlNone Control = iota
	ControlContinue
	ControlSelectMore
	ControlOther
	ControlSkip
)

// Button labels shown to the respondent.
const (
	LabelContinue   = "Продолжить"
	LabelSelectMore = "Выбрать еще"
	LabelOther      = "Другое"
	LabelSkip       = "Пропустить"
)

const otherPrefix = "Другое: "

var painPointControls = map[string]Control{
	canonical(LabelContinue):   ControlContinue,
	canonical(LabelSelectMore): ControlSelectMore,
	canonical("Выбрать ещё"):   ControlSelectMore,
	canonical(LabelOther):      ControlOther,
	canonical(LabelSkip):       ControlSkip,
}

// advanceTokens leave the pain-analysis loop.
var advanceTokens = map[string]struct{}{
	"дальше":     {},
	"продолжить": {},
	"next":       {},
	"пропустить": {},
	"skip":       {},
	"➡️":         {},
	"➡":          {},
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParsePainPointControl classifies input received on the pain points menu.
func ParsePainPointControl(input string) Control {
	return painPointControls[canonical(input)]
}

// IsAdvance reports whether input asks to leave the pain-analysis loop.
func IsAdvance(input string) bool {
	_, ok := advanceTokens[canonical(input)]
	return ok
}

// IsOther reports whether input is the "other" sentinel of a menu.
func IsOther(input string) bool {
	return canonical(input) == canonical(LabelOther)
}
