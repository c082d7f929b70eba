package interview

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoSession       = errors.New("interview: no session")
	ErrUnexpectedStage = errors.New("interview: stage does not accept input")
)

// notSpecified is shown for fields the respondent never filled in.
const notSpecified = "Не указано"

// MaxScore bounds the pain score scale (1..MaxScore).
const MaxScore = 10

// Prompt is one outgoing message. Menu replaces the reply keyboard when set;
// ClearMenu removes it.
type Prompt struct {
	Text      string
	Menu      Menu
	ClearMenu bool
}

// Result is what a single step produced. Done means the interview reached
// StageEnd and the caller should discard the session.
type Result struct {
	Prompts   []Prompt
	Done      bool
	Persisted bool
}

// Receipt describes how a completed record was stored.
type Receipt struct {
	Total   int // rows in the collection after the append
	Dropped int // pain entries that did not fit into the row
}

// Sink receives completed records.
type Sink interface {
	Append(rec *Record) (Receipt, error)
}

// Hooks observe the engine. Every field is optional.
type Hooks struct {
	OnTransition    func(from, to Stage)
	OnRecover       func(stage Stage, reason string)
	OnPainCommitted func(e PainEntry)
	OnComplete      func(rec *Record, err error)
}

type Engine struct {
	opts   Options
	sink   Sink
	hooks  Hooks
	now    func() time.Time
	logger *slog.Logger
}

type EngineOption func(*Engine)

func WithHooks(h Hooks) EngineOption {
	return func(e *Engine) { e.hooks = h }
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(opts Options, sink Sink, options ...EngineOption) *Engine {
	e := &Engine{
		opts:   opts,
		sink:   sink,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Begin greets the respondent and moves a fresh session to StageRespondentInfo.
// replaced is true when an unfinished interview of the same user was dropped.
func (e *Engine) Begin(s *Session, replaced bool) []Prompt {
	var out []Prompt
	if replaced {
		out = append(out, Prompt{
			Text: "⚠️ У вас уже было активное интервью.\n" +
				"Начинаю новое интервью. Старые данные будут потеряны.",
			ClearMenu: true,
		})
	}
	out = append(out, Prompt{
		Text: "🎓 Исследование студенческого дня\n\n" +
			"Привет! Я помогу провести интервью о студенческом дне.\n" +
			"Давай начнем!\n\n" +
			"Введи номер респондента:",
		ClearMenu: true,
	})
	e.move(s, StageRespondentInfo)
	return out
}

// Step feeds one inbound text to the session and advances it.
func (e *Engine) Step(s *Session, input string) (Result, error) {
	if s == nil || s.Record == nil {
		return Result{}, ErrNoSession
	}
	input = strings.TrimSpace(input)

	switch s.Stage {
	case StageRespondentInfo:
		return e.respondentInfo(s, input), nil
	case StageDayMap:
		s.Record.DayDescription = input
		e.move(s, StagePainPoints)
		return reply(Prompt{
			Text: "⚡ Точки напряжения\n\n" +
				"Какие проблемы выявились в описании дня?\n" +
				"Можно выбрать несколько.",
			Menu: e.opts.painPointMenu(),
		}), nil
	case StagePainPoints:
		return e.painPoints(s, input), nil
	case StagePainPointsOther:
		return e.painPointsOther(s, input), nil
	case StageRegularProblems:
		s.Record.MainPains = input
		e.move(s, StagePainName)
		return reply(Prompt{
			Text: "💢 Самая раздражающая проблема\n\n" +
				"Какая проблема раздражает больше всего?",
		}), nil
	case StagePainName:
		return e.painName(s, input), nil
	case StagePainCase:
		e.draft(s).LastCase = input
		e.move(s, StagePainReason)
		return reply(Prompt{Text: "❓ Почему было тяжело?\n\nЧто именно вызывало сложности?"}), nil
	case StagePainReason:
		e.draft(s).Reason = input
		e.move(s, StagePainEmotion)
		return reply(Prompt{Text: "😔 Какая это была эмоция?", Menu: e.opts.emotionMenu()}), nil
	case StagePainEmotion:
		return e.painEmotion(s, input), nil
	case StagePainScore:
		return e.painScore(s, input), nil
	case StageMagicWand:
		s.Record.MagicWand = input
		e.move(s, StageInsightsSurprise)
		return reply(Prompt{Text: "💡 Ключевые инсайты\n\nЧто удивило в ходе разговора?"}), nil
	case StageInsightsSurprise:
		s.Record.Insights.Surprise = input
		e.move(s, StageInsightsNeeds)
		return reply(Prompt{Text: "🎯 Скрытые потребности\n\nКакие скрытые потребности удалось выявить?"}), nil
	case StageInsightsNeeds:
		s.Record.Insights.HiddenNeeds = input
		e.move(s, StageInsightsFood)
		return reply(Prompt{Text: "🍔 Сигналы о еде/столовой\n\nЧто говорили про питание?"}), nil
	case StageInsightsFood:
		s.Record.Insights.FoodSignals = input
		e.move(s, StageInsightsPay)
		return reply(Prompt{Text: "💰 Готовность платить\n\nГотовность платить временем/деньгами за решение проблем?"}), nil
	case StageInsightsPay:
		return e.complete(s, input), nil
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnexpectedStage, s.Stage)
	}
}

func (e *Engine) respondentInfo(s *Session, input string) Result {
	if input == "" {
		return reply(Prompt{Text: "Введи номер респондента:"})
	}
	if s.Record.RespondentID == "" {
		s.Record.RespondentID = input
		s.Record.Date = e.now()
	}
	e.move(s, StageDayMap)
	return reply(Prompt{Text: "📝 Карта дня\n\nОпиши подробно вчерашний учебный день респондента:"})
}

func (e *Engine) painPoints(s *Session, input string) Result {
	switch ParsePainPointControl(input) {
	case ControlContinue, ControlSkip:
		return e.toRegularProblems(s)
	case ControlSelectMore:
		return reply(Prompt{Text: "Выбери еще проблемы:", Menu: e.opts.painPointMenu()})
	case ControlOther:
		e.move(s, StagePainPointsOther)
		return reply(Prompt{Text: "Опиши другие проблемы:", ClearMenu: true})
	}
	if input == "" {
		return reply(Prompt{Text: "Выбери проблему из списка:", Menu: e.opts.painPointMenu()})
	}
	s.Record.AddPainPoint(input)
	return reply(Prompt{
		Text: fmt.Sprintf("✅ Добавлено: %s\n\nТекущие проблемы:\n%s\n\nВыбери действие:",
			input, bulletList(s.Record.PainPoints)),
		Menu: followUpMenu(),
	})
}

func (e *Engine) painPointsOther(s *Session, input string) Result {
	head := "Ничего не добавлено."
	if input != "" {
		if s.Record.AddPainPoint(otherPrefix + input) {
			head = "✅ Добавлено: " + input
		} else {
			head = "Уже в списке: " + input
		}
	}
	e.move(s, StagePainPoints)
	return reply(Prompt{
		Text: fmt.Sprintf("%s\n\nТекущие проблемы:\n%s\n\nВыбери действие:",
			head, bulletList(s.Record.PainPoints)),
		Menu: followUpMenu(),
	})
}

func (e *Engine) toRegularProblems(s *Session) Result {
	e.move(s, StageRegularProblems)
	return reply(Prompt{
		Text:      "😫 Регулярные проблемы\n\nКакие основные 'боли' бывают в учебные дни?",
		ClearMenu: true,
	})
}

func (e *Engine) painName(s *Session, input string) Result {
	if IsAdvance(input) {
		if len(s.Record.PainAnalysis) == 0 && s.Record.MostAnnoying != "" {
			e.commit(s, PainEntry{Name: s.Record.MostAnnoying})
		}
		e.move(s, StageMagicWand)
		return reply(Prompt{
			Text: "✨ Волшебная палочка\n\n" +
				"Если бы у тебя была волшебная палочка и ты мог бы решить " +
				"одну проблему твоего учебного дня, что бы это было?",
			ClearMenu: true,
		})
	}
	if input == "" {
		return reply(Prompt{Text: "Напиши название боли или 'дальше', чтобы продолжить:"})
	}
	if s.Record.MostAnnoying == "" {
		s.Record.MostAnnoying = input
	}
	s.Draft = &PainEntry{Name: input}
	e.move(s, StagePainCase)
	return reply(Prompt{Text: fmt.Sprintf("📝 Боль: %s\n\nОпиши последний случай (когда и где):", input)})
}

func (e *Engine) painEmotion(s *Session, input string) Result {
	if IsOther(input) {
		return reply(Prompt{Text: "Опиши эмоцию своими словами:", ClearMenu: true})
	}
	if input == "" {
		return reply(Prompt{Text: "😔 Какая это была эмоция?", Menu: e.opts.emotionMenu()})
	}
	e.draft(s).Emotion = input
	e.move(s, StagePainScore)
	return reply(Prompt{Text: "📊 Оценка боли\n\nОцени боль от 1 до 10:", Menu: scoreMenu()})
}

func (e *Engine) painScore(s *Session, input string) Result {
	score, ok := ParseScore(input)
	if !ok {
		return reply(Prompt{Text: "Пожалуйста, введите число от 1 до 10:", Menu: scoreMenu()})
	}
	d := e.draft(s)
	d.Score = score
	n := e.commit(s, *d)
	s.Draft = nil
	e.move(s, StagePainName)
	return reply(Prompt{
		Text: fmt.Sprintf("✅ Боль '%s' сохранена!\n"+
			"Всего проанализировано болей: %d\n\n"+
			"Что дальше?\n"+
			"• Напиши название новой боли - чтобы добавить еще\n"+
			"• Напиши 'дальше' - чтобы перейти к волшебной палочке", d.Name, n),
		ClearMenu: true,
	})
}

func (e *Engine) complete(s *Session, input string) Result {
	rec := s.Record
	rec.Insights.WillingnessToPay = input

	receipt, err := e.appendToSink(rec)
	if err != nil {
		e.logger.Error("failed to store interview",
			"session_id", s.ID, "user_id", s.UserID, "respondent", rec.RespondentID, "error", err)
	}
	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete(rec, err)
	}

	status := "✅ Данные сохранены"
	if err != nil {
		status = "⚠️ Данные сохранены с ошибками"
	}
	var b strings.Builder
	b.WriteString("🎉 Интервью завершено!\n\n")
	b.WriteString(status + "\n")
	if receipt.Dropped > 0 {
		fmt.Fprintf(&b, "⚠️ В таблицу попали только первые %d болей из %d\n",
			len(rec.PainAnalysis)-receipt.Dropped, len(rec.PainAnalysis))
	}
	fmt.Fprintf(&b, "Респондент №%s\n\n", rec.RespondentID)
	b.WriteString("Команды:\n" +
		"/export_all - скачать таблицу Excel со всеми респондентами\n" +
		"/stats - посмотреть статистику\n" +
		"/start - начать новое интервью")

	e.move(s, StageEnd)
	return Result{
		Prompts: []Prompt{
			{Text: RenderReport(rec), ClearMenu: true},
			{Text: b.String()},
		},
		Done:      true,
		Persisted: err == nil,
	}
}

func (e *Engine) appendToSink(rec *Record) (receipt Receipt, err error) {
	if e.sink == nil {
		return Receipt{}, errors.New("no sink configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return e.sink.Append(rec)
}

// draft returns the pain entry under construction. A missing draft is rebuilt
// from MostAnnoying so the dialog can go on.
func (e *Engine) draft(s *Session) *PainEntry {
	if s.Draft != nil {
		return s.Draft
	}
	name := s.Record.MostAnnoying
	if name == "" {
		name = notSpecified
	}
	s.Draft = &PainEntry{Name: name}
	e.logger.Warn("pain draft missing, recovered from most annoying pain",
		"session_id", s.ID, "user_id", s.UserID, "stage", s.Stage.String())
	if e.hooks.OnRecover != nil {
		e.hooks.OnRecover(s.Stage, "missing pain draft")
	}
	return s.Draft
}

func (e *Engine) commit(s *Session, p PainEntry) int {
	n := s.Record.CommitPain(p)
	if e.hooks.OnPainCommitted != nil {
		e.hooks.OnPainCommitted(p)
	}
	return n
}

func (e *Engine) move(s *Session, to Stage) {
	from := s.Stage
	s.Stage = to
	if from != to && e.hooks.OnTransition != nil {
		e.hooks.OnTransition(from, to)
	}
}

// ParseScore accepts an integer between 1 and MaxScore.
func ParseScore(input string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > MaxScore {
		return 0, false
	}
	return n, true
}

func reply(p ...Prompt) Result {
	return Result{Prompts: p}
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "• " + it
	}
	return strings.Join(lines, "\n")
}
