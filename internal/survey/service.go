package survey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"interview-bot/internal/aggregate"
	"interview-bot/internal/interview"
	"interview-bot/internal/metrics"
	"interview-bot/internal/session"
)

const (
	noSessionText = "Используйте /start для начала интервью"
	cancelledText = "Интервью отменено."
	failureText   = "Произошла ошибка. Попробуйте еще раз или используйте /cancel"
)

// Service ties the per-user sessions to the interview engine and the shared
// aggregation sink. Every call for one user is serialized.
type Service struct {
	sessions *session.Store
	engine   *interview.Engine
	sink     *aggregate.Sink
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(sessions *session.Store, engine *interview.Engine, sink *aggregate.Sink, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		engine:   engine,
		sink:     sink,
		metrics:  m,
		logger:   logger,
	}
}

// Start replaces whatever the user had with a fresh interview.
func (s *Service) Start(ctx context.Context, userID int64) []interview.Prompt {
	var out []interview.Prompt
	_ = s.sessions.WithLock(userID, func() error {
		sess, replaced := s.sessions.Start(userID)
		out = s.engine.Begin(sess, replaced)
		s.logger.InfoContext(ctx, "interview started",
			"user_id", userID, "session_id", sess.ID, "replaced", replaced)
		return nil
	})
	s.metrics.InterviewStarted()
	s.metrics.SetActiveSessions(s.sessions.Len())
	return out
}

// Cancel drops the active interview, if any, without persisting it.
func (s *Service) Cancel(ctx context.Context, userID int64) []interview.Prompt {
	_ = s.sessions.WithLock(userID, func() error {
		if s.sessions.Discard(userID) {
			s.logger.InfoContext(ctx, "interview cancelled", "user_id", userID)
			s.metrics.InterviewCancelled()
		}
		return nil
	})
	s.metrics.SetActiveSessions(s.sessions.Len())
	return []interview.Prompt{{Text: cancelledText, ClearMenu: true}}
}

// Handle routes a non-command text into the user's interview. Internal
// failures end the session and are reported to the user as a generic error;
// the returned error is for logging only.
func (s *Service) Handle(ctx context.Context, userID int64, text string) ([]interview.Prompt, error) {
	var out []interview.Prompt
	err := s.sessions.WithLock(userID, func() (err error) {
		sess := s.sessions.Get(userID)
		if sess == nil {
			out = []interview.Prompt{{Text: noSessionText}}
			return nil
		}
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic at stage %s: %v", sess.Stage, r)
			}
			if err != nil {
				s.sessions.Discard(userID)
				out = []interview.Prompt{{Text: failureText, ClearMenu: true}}
			}
		}()

		res, err := s.engine.Step(sess, text)
		if err != nil {
			return err
		}
		if res.Done {
			s.sessions.Discard(userID)
			s.logger.InfoContext(ctx, "interview completed",
				"user_id", userID, "session_id", sess.ID, "persisted", res.Persisted)
		}
		out = res.Prompts
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "interview step failed", "user_id", userID, "error", err)
	}
	s.metrics.SetActiveSessions(s.sessions.Len())
	return out, err
}

// Export rewrites the spreadsheet and returns its path together with the
// number of respondents in it. aggregate.ErrNoData means nothing was
// collected yet.
func (s *Service) Export(ctx context.Context) (string, int, error) {
	path, err := s.sink.ExportFile()
	if err != nil {
		if !errors.Is(err, aggregate.ErrNoData) {
			s.logger.ErrorContext(ctx, "export failed", "error", err)
		}
		return "", 0, err
	}
	return path, s.sink.Len(), nil
}

// Stats renders the collection summary.
func (s *Service) Stats(ctx context.Context) string {
	st := s.sink.ComputeStats()
	s.logger.DebugContext(ctx, "stats requested", "respondents", st.Respondents)
	return st.Summary()
}

// Snapshot exposes the raw stats for the HTTP endpoint.
func (s *Service) Snapshot() any {
	return s.sink.ComputeStats()
}

// ActiveSessions returns the number of unfinished interviews.
func (s *Service) ActiveSessions() int {
	return s.sessions.Len()
}
