package aggregate

import (
	"fmt"
	"time"

	"interview-bot/internal/interview"
)

// HighIntensityScore is the lowest score counted as high intensity.
const HighIntensityScore = 7

// Stats содержит сводку по всем сохраненным интервью
type Stats struct {
	Respondents   int       `json:"respondents"`
	First         time.Time `json:"first"`
	Last          time.Time `json:"last"`
	TotalPains    int       `json:"total_pains"`
	HighIntensity int       `json:"high_intensity"`
}

// ComputeStats считает статистику по строкам. TotalPains учитывает все
// сохраненные в интервью боли, HighIntensity только попавшие в таблицу.
func ComputeStats(rows []Row) Stats {
	st := Stats{Respondents: len(rows)}
	for i, r := range rows {
		if i == 0 || r.CapturedAt.Before(st.First) {
			st.First = r.CapturedAt
		}
		if i == 0 || r.CapturedAt.After(st.Last) {
			st.Last = r.CapturedAt
		}
		st.TotalPains += r.PainCount
		for _, p := range r.Pains {
			if p.Score >= HighIntensityScore {
				st.HighIntensity++
			}
		}
	}
	return st
}

// Summary формирует текст для команды /stats
func (s Stats) Summary() string {
	if s.Respondents == 0 {
		return "📊 Пока нет данных для статистики"
	}
	return fmt.Sprintf("📈 СТАТИСТИКА ПО ВСЕМ ИНТЕРВЬЮ\n\n"+
		"Всего респондентов: %d\n"+
		"Первое интервью: %s\n"+
		"Последнее интервью: %s\n"+
		"Всего проанализировано болей: %d\n"+
		"Высокая интенсивность (≥%d): %d\n\n"+
		"Команды:\n"+
		"/export_all - скачать общую таблицу Excel\n"+
		"/stats - показать эту статистику\n"+
		"/start - начать новое интервью",
		s.Respondents,
		s.First.Format(interview.DateLayout),
		s.Last.Format(interview.DateLayout),
		s.TotalPains,
		HighIntensityScore,
		s.HighIntensity,
	)
}
