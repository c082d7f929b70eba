package aggregate

import (
	"fmt"
	"strings"
	"time"

	"interview-bot/internal/interview"
)

// MaxPainGroups is how many pain analyses fit into one row. Extra entries are
// counted in Row.DroppedPains instead of being written.
const MaxPainGroups = 10

// PainColumns is one Боль_{i}_* column group.
type PainColumns struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Emotion string `json:"emotion"`
	Case    string `json:"case"`
	Reason  string `json:"reason"`
}

// Row is the flat projection of a completed interview.
type Row struct {
	Respondent       string        `json:"respondent"`
	Date             time.Time     `json:"date"`
	DayDescription   string        `json:"day_description"`
	PainPoints       string        `json:"pain_points"`
	MainPains        string        `json:"main_pains"`
	MostAnnoying     string        `json:"most_annoying"`
	MagicWand        string        `json:"magic_wand"`
	Surprise         string        `json:"surprise"`
	HiddenNeeds      string        `json:"hidden_needs"`
	FoodSignals      string        `json:"food_signals"`
	WillingnessToPay string        `json:"willingness_to_pay"`
	CapturedAt       time.Time     `json:"captured_at"`
	Pains            []PainColumns `json:"pains"`
	PainCount        int           `json:"pain_count"`
	DroppedPains     int           `json:"dropped_pains"`
}

// Flatten projects a record onto a row captured at the given time.
func Flatten(rec *interview.Record, capturedAt time.Time) Row {
	row := Row{
		Respondent:       rec.RespondentID,
		Date:             rec.Date,
		DayDescription:   rec.DayDescription,
		PainPoints:       strings.Join(rec.PainPoints, ", "),
		MainPains:        rec.MainPains,
		MostAnnoying:     rec.MostAnnoying,
		MagicWand:        rec.MagicWand,
		Surprise:         rec.Insights.Surprise,
		HiddenNeeds:      rec.Insights.HiddenNeeds,
		FoodSignals:      rec.Insights.FoodSignals,
		WillingnessToPay: rec.Insights.WillingnessToPay,
		CapturedAt:       capturedAt,
		PainCount:        len(rec.PainAnalysis),
	}
	pains := rec.PainAnalysis
	if len(pains) > MaxPainGroups {
		row.DroppedPains = len(pains) - MaxPainGroups
		pains = pains[:MaxPainGroups]
	}
	row.Pains = make([]PainColumns, len(pains))
	for i, p := range pains {
		row.Pains[i] = PainColumns{Name: p.Name, Score: p.Score, Emotion: p.Emotion, Case: p.LastCase, Reason: p.Reason}
	}
	return row
}

var baseColumns = []string{
	"Респондент",
	"Дата",
	"Описание_дня",
	"Точки_напряжения",
	"Основные_проблемы",
	"Самая_раздражающая",
	"Волшебная_палочка",
	"Что_удивило",
	"Скрытые_потребности",
	"Сигналы_о_еде",
	"Готовность_платить",
	"Время_записи",
}

// Columns returns the fixed header of the export.
func Columns() []string {
	cols := make([]string, 0, len(baseColumns)+MaxPainGroups*5)
	cols = append(cols, baseColumns...)
	for i := 1; i <= MaxPainGroups; i++ {
		cols = append(cols,
			fmt.Sprintf("Боль_%d_Название", i),
			fmt.Sprintf("Боль_%d_Оценка", i),
			fmt.Sprintf("Боль_%d_Эмоция", i),
			fmt.Sprintf("Боль_%d_Случай", i),
			fmt.Sprintf("Боль_%d_Причина", i),
		)
	}
	return cols
}

// Values returns the cells of the row in Columns order. Unused pain groups are
// empty strings; dates are formatted with interview.DateLayout.
func (r Row) Values() []any {
	date := ""
	if !r.Date.IsZero() {
		date = r.Date.Format(interview.DateLayout)
	}
	vals := make([]any, 0, len(baseColumns)+MaxPainGroups*5)
	vals = append(vals,
		r.Respondent,
		date,
		r.DayDescription,
		r.PainPoints,
		r.MainPains,
		r.MostAnnoying,
		r.MagicWand,
		r.Surprise,
		r.HiddenNeeds,
		r.FoodSignals,
		r.WillingnessToPay,
		r.CapturedAt,
	)
	for i := 0; i < MaxPainGroups; i++ {
		if i < len(r.Pains) {
			p := r.Pains[i]
			vals = append(vals, p.Name, p.Score, p.Emotion, p.Case, p.Reason)
			continue
		}
		vals = append(vals, "", "", "", "", "")
	}
	return vals
}
