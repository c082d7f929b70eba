package interview

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	records []Record
	err     error
	dropped int
}

func (f *fakeSink) Append(rec *Record) (Receipt, error) {
	if f.err != nil {
		return Receipt{}, f.err
	}
	f.records = append(f.records, *rec)
	return Receipt{Total: len(f.records), Dropped: f.dropped}, nil
}

var fixedNow = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func newTestEngine(sink Sink, hooks Hooks) *Engine {
	return NewEngine(DefaultOptions(), sink, WithClock(func() time.Time { return fixedNow }), WithHooks(hooks))
}

func begin(e *Engine) *Session {
	s := NewSession(7, fixedNow)
	e.Begin(s, false)
	return s
}

func feed(t *testing.T, e *Engine, s *Session, inputs ...string) Result {
	t.Helper()
	var res Result
	for _, in := range inputs {
		var err error
		res, err = e.Step(s, in)
		require.NoError(t, err, "input %q at stage %s", in, s.Stage)
	}
	return res
}

func TestEngine_FullScenario(t *testing.T) {
	sink := &fakeSink{}
	e := newTestEngine(sink, Hooks{})
	s := begin(e)
	require.Equal(t, StageRespondentInfo, s.Stage)

	feed(t, e, s, "42", "busy day", "Длинные очереди", "Продолжить", "queues",
		"Waiting", "cafeteria", "too slow", "Раздражение", "8")
	require.Equal(t, StagePainName, s.Stage)
	require.Nil(t, s.Draft)

	feed(t, e, s, "дальше", "more staff", "surprise", "needs", "food")
	res := feed(t, e, s, "pay")

	require.True(t, res.Done)
	require.True(t, res.Persisted)
	require.Equal(t, StageEnd, s.Stage)
	require.Len(t, sink.records, 1)

	rec := sink.records[0]
	assert.Equal(t, "42", rec.RespondentID)
	assert.Equal(t, fixedNow, rec.Date)
	assert.Equal(t, "busy day", rec.DayDescription)
	assert.Equal(t, []string{"Длинные очереди"}, rec.PainPoints)
	assert.Equal(t, "queues", rec.MainPains)
	assert.Equal(t, "Waiting", rec.MostAnnoying)
	assert.Equal(t, []PainEntry{{Name: "Waiting", LastCase: "cafeteria", Reason: "too slow", Emotion: "Раздражение", Score: 8}}, rec.PainAnalysis)
	assert.Equal(t, "more staff", rec.MagicWand)
	assert.Equal(t, Insights{Surprise: "surprise", HiddenNeeds: "needs", FoodSignals: "food", WillingnessToPay: "pay"}, rec.Insights)

	require.Len(t, res.Prompts, 2)
	assert.Contains(t, res.Prompts[0].Text, "ОТЧЕТ ОБ ИНТЕРВЬЮ")
	assert.Contains(t, res.Prompts[1].Text, "✅ Данные сохранены")
	assert.Contains(t, res.Prompts[1].Text, "Респондент №42")
}

func TestEngine_PainPointsAreDeduplicated(t *testing.T) {
	e := newTestEngine(&fakeSink{}, Hooks{})
	s := begin(e)
	feed(t, e, s, "1", "day")

	selections := []string{"Длинные очереди", "Спешка между парами", "Длинные очереди", "Выбрать еще", "Спешка между парами", "Длинные очереди"}
	for _, sel := range selections {
		res := feed(t, e, s, sel)
		require.Equal(t, StagePainPoints, s.Stage)
		require.NotEmpty(t, res.Prompts[0].Menu)
	}
	assert.Equal(t, []string{"Длинные очереди", "Спешка между парами"}, s.Record.PainPoints)
}

func TestEngine_PainPointsOther(t *testing.T) {
	e := newTestEngine(&fakeSink{}, Hooks{})
	s := begin(e)
	feed(t, e, s, "1", "day")

	res := feed(t, e, s, "другое")
	require.Equal(t, StagePainPointsOther, s.Stage)
	assert.True(t, res.Prompts[0].ClearMenu)

	res = feed(t, e, s, "  шумно в общежитии ")
	require.Equal(t, StagePainPoints, s.Stage)
	assert.Equal(t, followUpMenu(), res.Prompts[0].Menu)

	feed(t, e, s, "Другое", "шумно в общежитии")
	feed(t, e, s, "Другое", "   ")
	assert.Equal(t, []string{"Другое: шумно в общежитии"}, s.Record.PainPoints)

	feed(t, e, s, "ПРОПУСТИТЬ")
	assert.Equal(t, StageRegularProblems, s.Stage)
}

func TestEngine_InvalidScoreDoesNotMutate(t *testing.T) {
	e := newTestEngine(&fakeSink{}, Hooks{})
	s := begin(e)
	feed(t, e, s, "1", "day", "Продолжить", "main", "Шум", "вчера", "мешает", "Усталость")
	require.Equal(t, StagePainScore, s.Stage)
	draft := *s.Draft

	for _, bad := range []string{"0", "11", "-3", "abc", "7.5", "", "10 из 10"} {
		res := feed(t, e, s, bad)
		require.Equal(t, StagePainScore, s.Stage, "input %q", bad)
		require.Empty(t, s.Record.PainAnalysis, "input %q", bad)
		require.Equal(t, draft, *s.Draft)
		require.Contains(t, res.Prompts[0].Text, "от 1 до 10")
	}

	feed(t, e, s, " 10 ")
	require.Len(t, s.Record.PainAnalysis, 1)
	assert.Equal(t, 10, s.Record.PainAnalysis[0].Score)
}

func TestEngine_AdvanceWithoutPainSynthesizesFallback(t *testing.T) {
	for _, token := range []string{"дальше", "Продолжить", "NEXT", "пропустить", "skip", "➡️"} {
		t.Run(token, func(t *testing.T) {
			e := newTestEngine(&fakeSink{}, Hooks{})
			s := begin(e)
			feed(t, e, s, "1", "day", "Продолжить", "main")
			s.Record.MostAnnoying = "Очереди"

			feed(t, e, s, token)
			require.Equal(t, StageMagicWand, s.Stage)
			require.Equal(t, []PainEntry{{Name: "Очереди", Score: 0}}, s.Record.PainAnalysis)
		})
	}
}

func TestEngine_AdvanceWithoutAnythingCommitsNothing(t *testing.T) {
	e := newTestEngine(&fakeSink{}, Hooks{})
	s := begin(e)
	feed(t, e, s, "1", "day", "Продолжить", "main", "дальше")
	assert.Equal(t, StageMagicWand, s.Stage)
	assert.Empty(t, s.Record.PainAnalysis)
}

func TestEngine_MultiplePainsKeepFirstAsMostAnnoying(t *testing.T) {
	e := newTestEngine(&fakeSink{}, Hooks{})
	s := begin(e)
	feed(t, e, s, "1", "day", "Продолжить", "main",
		"Очереди", "c1", "r1", "Злость", "9",
		"Расписание", "c2", "r2", "Другое", "скука", "3")
	require.Equal(t, StagePainName, s.Stage)
	assert.Equal(t, "Очереди", s.Record.MostAnnoying)
	require.Len(t, s.Record.PainAnalysis, 2)
	assert.Equal(t, "скука", s.Record.PainAnalysis[1].Emotion)
	assert.Equal(t, 3, s.Record.PainAnalysis[1].Score)

	feed(t, e, s, "next")
	assert.Len(t, s.Record.PainAnalysis, 2, "no fallback once a pain was committed")
}

func TestEngine_EmotionOtherAsksForText(t *testing.T) {
	e := newTestEngine(&fakeSink{}, Hooks{})
	s := begin(e)
	feed(t, e, s, "1", "day", "Продолжить", "main", "Шум", "c", "r")
	require.Equal(t, StagePainEmotion, s.Stage)

	res := feed(t, e, s, "Другое")
	assert.Equal(t, StagePainEmotion, s.Stage)
	assert.True(t, res.Prompts[0].ClearMenu)
	assert.Empty(t, s.Draft.Emotion)

	res = feed(t, e, s, "обида")
	assert.Equal(t, StagePainScore, s.Stage)
	assert.Equal(t, "обида", s.Draft.Emotion)
	assert.Equal(t, scoreMenu(), res.Prompts[0].Menu)
}

func TestEngine_RecoversMissingDraft(t *testing.T) {
	var recovered []Stage
	e := newTestEngine(&fakeSink{}, Hooks{OnRecover: func(st Stage, _ string) { recovered = append(recovered, st) }})
	s := begin(e)
	feed(t, e, s, "1", "day", "Продолжить", "main", "Шум", "c", "r", "Тревога")
	s.Draft = nil

	feed(t, e, s, "6")
	require.Len(t, s.Record.PainAnalysis, 1)
	assert.Equal(t, PainEntry{Name: "Шум", Score: 6}, s.Record.PainAnalysis[0])
	assert.Equal(t, []Stage{StagePainScore}, recovered)

	s.Stage = StagePainCase
	s.Record.MostAnnoying = ""
	feed(t, e, s, "case")
	require.NotNil(t, s.Draft)
	assert.Equal(t, notSpecified, s.Draft.Name)
	assert.Equal(t, "case", s.Draft.LastCase)
}

func TestEngine_SinkFailureDegrades(t *testing.T) {
	var completeErr error
	sink := &fakeSink{err: errors.New("disk full")}
	e := newTestEngine(sink, Hooks{OnComplete: func(_ *Record, err error) { completeErr = err }})
	s := begin(e)
	s.Stage = StageInsightsPay

	res := feed(t, e, s, "ok")
	assert.True(t, res.Done)
	assert.False(t, res.Persisted)
	assert.Contains(t, res.Prompts[1].Text, "с ошибками")
	assert.Error(t, completeErr)
}

type panicSink struct{}

func (panicSink) Append(*Record) (Receipt, error) { panic("boom") }

func TestEngine_SinkPanicIsContained(t *testing.T) {
	e := newTestEngine(panicSink{}, Hooks{})
	s := begin(e)
	s.Stage = StageInsightsPay
	res := feed(t, e, s, "ok")
	assert.True(t, res.Done)
	assert.False(t, res.Persisted)
}

func TestEngine_ReportsDroppedPains(t *testing.T) {
	e := newTestEngine(&fakeSink{dropped: 2}, Hooks{})
	s := begin(e)
	for i := 0; i < 12; i++ {
		s.Record.CommitPain(PainEntry{Name: "p", Score: 5})
	}
	s.Stage = StageInsightsPay
	res := feed(t, e, s, "ok")
	assert.Contains(t, res.Prompts[1].Text, "первые 10 болей из 12")
}

func TestEngine_TransitionsAreObserved(t *testing.T) {
	var path []string
	e := newTestEngine(&fakeSink{}, Hooks{OnTransition: func(from, to Stage) {
		path = append(path, from.String()+">"+to.String())
	}})
	s := begin(e)
	feed(t, e, s, "1", "day", "Другое", "x", "Продолжить")
	assert.Equal(t, []string{
		"start>respondent_info",
		"respondent_info>day_map",
		"day_map>pain_points",
		"pain_points>pain_points_other",
		"pain_points_other>pain_points",
		"pain_points>regular_problems",
	}, path)
}

func TestEngine_RespondentIDIsImmutable(t *testing.T) {
	e := newTestEngine(&fakeSink{}, Hooks{})
	s := begin(e)
	feed(t, e, s, "   ")
	assert.Equal(t, StageRespondentInfo, s.Stage)
	feed(t, e, s, "first")
	s.Stage = StageRespondentInfo
	feed(t, e, s, "second")
	assert.Equal(t, "first", s.Record.RespondentID)
}

func TestEngine_RejectsInputOutsideDialog(t *testing.T) {
	e := newTestEngine(&fakeSink{}, Hooks{})
	s := NewSession(1, fixedNow)
	_, err := e.Step(s, "hello")
	assert.ErrorIs(t, err, ErrUnexpectedStage)

	s.Stage = StageEnd
	_, err = e.Step(s, "hello")
	assert.ErrorIs(t, err, ErrUnexpectedStage)

	_, err = e.Step(nil, "hello")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestBegin_WarnsWhenReplacing(t *testing.T) {
	e := newTestEngine(&fakeSink{}, Hooks{})
	prompts := e.Begin(NewSession(1, fixedNow), true)
	require.Len(t, prompts, 2)
	assert.True(t, strings.HasPrefix(prompts[0].Text, "⚠️"))
	assert.Contains(t, prompts[1].Text, "Введи номер респондента")
}

func TestEngine_MenusAreNotShared(t *testing.T) {
	e := newTestEngine(&fakeSink{}, Hooks{})
	s := begin(e)
	feed(t, e, s, "1", "day")

	res := feed(t, e, s, "Длинные очереди")
	res.Prompts[0].Menu[0][0] = "mutated"
	res = feed(t, e, s, "Спешка между парами")
	assert.Equal(t, Menu{{LabelSelectMore, LabelContinue}}, res.Prompts[0].Menu)

	feed(t, e, s, "Продолжить", "main", "pain", "case", "reason")
	res = feed(t, e, s, "Злость")
	res.Prompts[0].Menu[1][4] = "11"
	res = feed(t, e, s, "zero")
	assert.Equal(t, "10", res.Prompts[0].Menu[1][4])
}
