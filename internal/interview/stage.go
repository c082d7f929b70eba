package interview

import (
	"time"

	"github.com/google/uuid"
)

// Stage is a node of the interview state machine.
type Stage int

const (
	StageStart Stage = iota
	StageRespondentInfo
	StageDayMap
	StagePainPoints
	StagePainPointsOther
	StageRegularProblems
	StagePainName
	StagePainCase
	StagePainReason
	StagePainEmotion
	StagePainScore
	StageMagicWand
	StageInsightsSurprise
	StageInsightsNeeds
	StageInsightsFood
	StageInsightsPay
	StageEnd
)

var stageNames = [...]string{
	StageStart:            "start",
	StageRespondentInfo:   "respondent_info",
	StageDayMap:           "day_map",
	StagePainPoints:       "pain_points",
	StagePainPointsOther:  "pain_points_other",
	StageRegularProblems:  "regular_problems",
	StagePainName:         "pain_name",
	StagePainCase:         "pain_case",
	StagePainReason:       "pain_reason",
	StagePainEmotion:      "pain_emotion",
	StagePainScore:        "pain_score",
	StageMagicWand:        "magic_wand",
	StageInsightsSurprise: "insights_surprise",
	StageInsightsNeeds:    "insights_needs",
	StageInsightsFood:     "insights_food",
	StageInsightsPay:      "insights_pay",
	StageEnd:              "end",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Session is the per-user state of one interview: where the dialog is, what
// has been collected and the pain entry currently being filled in.
//
// Draft is nil outside the Case→Reason→Emotion→Score loop. It is never part
// of Record until the score is supplied.
type Session struct {
	ID        string
	UserID    int64
	Stage     Stage
	StartedAt time.Time
	Record    *Record
	Draft     *PainEntry
}

// NewSession creates a session positioned at StageStart.
func NewSession(userID int64, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Stage:     StageStart,
		StartedAt: now,
		Record:    &Record{},
	}
}
