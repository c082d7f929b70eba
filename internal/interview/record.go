package interview

import "time"

// PainEntry is one analysed pain. Score is 1..10 for entries collected through
// the dialog and 0 for the fallback entry synthesized from MostAnnoying.
type PainEntry struct {
	Name     string `json:"name"`
	LastCase string `json:"last_case"`
	Reason   string `json:"reason"`
	Emotion  string `json:"emotion"`
	Score    int    `json:"score"`
}

type Insights struct {
	Surprise         string `json:"surprise"`
	HiddenNeeds      string `json:"hidden_needs"`
	FoodSignals      string `json:"food_signals"`
	WillingnessToPay string `json:"willingness_to_pay"`
}

// Record accumulates everything a respondent said during one session.
type Record struct {
	RespondentID   string      `json:"respondent_id"`
	Date           time.Time   `json:"date"`
	DayDescription string      `json:"day_description"`
	PainPoints     []string    `json:"pain_points"`
	MainPains      string      `json:"main_pains"`
	MostAnnoying   string      `json:"most_annoying"`
	PainAnalysis   []PainEntry `json:"pain_analysis"`
	MagicWand      string      `json:"magic_wand"`
	Insights       Insights    `json:"insights"`
}

// AddPainPoint appends p unless an identical string is already present.
// It reports whether the list changed.
func (r *Record) AddPainPoint(p string) bool {
	for _, existing := range r.PainPoints {
		if existing == p {
			return false
		}
	}
	r.PainPoints = append(r.PainPoints, p)
	return true
}

// CommitPain appends a finished entry and returns the new number of entries.
func (r *Record) CommitPain(e PainEntry) int {
	r.PainAnalysis = append(r.PainAnalysis, e)
	return len(r.PainAnalysis)
}
