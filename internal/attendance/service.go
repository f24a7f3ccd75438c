package attendance

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shrimpsizemoose/trekker/logger"

	"coachdesk-backend/internal/platform/apierr"
	"coachdesk-backend/internal/platform/db"
	"coachdesk-backend/internal/platform/metrics"
	"coachdesk-backend/internal/roster"
	"coachdesk-backend/internal/schedule"
)

// ===== collaborators =====

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type SessionResolver interface {
	Definition(ctx context.Context, key schedule.OccurrenceKey) (*schedule.SessionDefinition, error)
}

type RosterSource interface {
	ActiveRoster(ctx context.Context, teamID string) ([]roster.Student, error)
	AuthorizeTeam(ctx context.Context, staffID, teamID string) error
}

// ===== Service =====

type Service struct {
	store    MarkStore
	sessions SessionResolver
	roster   RosterSource
	id       IDGen
}

func NewService(conn db.DBTX, sessions SessionResolver, rs RosterSource) *Service {
	return NewServiceWithStore(NewStore(conn), sessions, rs, ulidGen{})
}

func NewServiceWithStore(store MarkStore, sessions SessionResolver, rs RosterSource, id IDGen) *Service {
	return &Service{store: store, sessions: sessions, roster: rs, id: id}
}

// Authorize resolves the occurrence's session and requires staffID to coach
// its team: INVALID_ARGUMENT for a bad id, NOT_FOUND for an unknown session,
// FORBIDDEN otherwise.
func (s *Service) Authorize(ctx context.Context, occurrenceID, staffID string) error {
	key, err := parseOccurrence(occurrenceID)
	if err != nil {
		return err
	}
	def, err := s.sessions.Definition(ctx, key)
	if err != nil {
		return err
	}
	return s.roster.AuthorizeTeam(ctx, staffID, def.TeamID)
}

// GET /coach/occurrences/:occurrence_id/marks
func (s *Service) MarksForOccurrence(ctx context.Context, occurrenceID string) ([]Mark, error) {
	key, err := parseOccurrence(occurrenceID)
	if err != nil {
		return nil, err
	}
	return s.Marks(ctx, key)
}

func (s *Service) Marks(ctx context.Context, key schedule.OccurrenceKey) ([]Mark, error) {
	marks, err := s.store.FindMarks(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("find marks for %s: %w", key, err)
	}
	return marks, nil
}

// MarksBetween returns the marks of sessionIDs dated from..to (YYYY-MM-DD, inclusive).
func (s *Service) MarksBetween(ctx context.Context, sessionIDs []string, from, to string) ([]Mark, error) {
	marks, err := s.store.FindMarksForSessions(ctx, sessionIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("find marks %s..%s: %w", from, to, err)
	}
	return marks, nil
}

// PUT /coach/occurrences/:occurrence_id/attendance/:student_id
// Creates the mark on first call and updates the same row afterwards. The
// lookup and the write are separate statements; two concurrent calls for the
// same key can both insert.
func (s *Service) SetMark(ctx context.Context, occurrenceID, studentID string, assisted bool) (Mark, bool, error) {
	key, err := parseOccurrence(occurrenceID)
	if err != nil {
		return Mark{}, false, err
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return Mark{}, false, apierr.Invalid("student_id is required")
	}

	mark, created, err := s.setMark(ctx, key, studentID, assisted)
	if err != nil {
		metrics.MarksTotal.WithLabelValues(metrics.ResultFailed).Inc()
		return Mark{}, false, err
	}
	if created {
		metrics.MarksTotal.WithLabelValues(metrics.ResultCreated).Inc()
	} else {
		metrics.MarksTotal.WithLabelValues(metrics.ResultUpdated).Inc()
	}
	return mark, created, nil
}

func (s *Service) setMark(ctx context.Context, key schedule.OccurrenceKey, studentID string, assisted bool) (Mark, bool, error) {
	existing, err := s.store.FindMark(ctx, key, studentID)
	if err != nil {
		return Mark{}, false, fmt.Errorf("find mark %s/%s: %w", key, studentID, err)
	}

	if existing != nil {
		if err := s.store.UpdateAssisted(ctx, existing.ID, assisted); err != nil {
			return Mark{}, false, fmt.Errorf("update mark %s: %w", existing.ID, err)
		}
		updated := *existing
		updated.Assisted = assisted
		return updated, false, nil
	}

	id, err := s.id.New()
	if err != nil {
		return Mark{}, false, fmt.Errorf("generate mark id: %w", err)
	}
	m := Mark{
		ID:        id,
		SessionID: key.SessionID,
		StudentID: studentID,
		Date:      key.Date,
		Assisted:  assisted,
	}
	if err := s.store.InsertMark(ctx, m); err != nil {
		return Mark{}, false, fmt.Errorf("insert mark %s/%s: %w", key, studentID, err)
	}
	logger.Debug.Printf("created mark %s for %s on %s", m.ID, studentID, key)
	return m, true, nil
}

// GET /coach/occurrences/:occurrence_id/attendance
func (s *Service) Sheet(ctx context.Context, occurrenceID string) (Sheet, error) {
	key, err := parseOccurrence(occurrenceID)
	if err != nil {
		return Sheet{}, err
	}

	def, err := s.sessions.Definition(ctx, key)
	if err != nil {
		return Sheet{}, err
	}
	students, err := s.roster.ActiveRoster(ctx, def.TeamID)
	if err != nil {
		return Sheet{}, err
	}
	marks, err := s.Marks(ctx, key)
	if err != nil {
		return Sheet{}, err
	}

	rows := Merge(students, marks)
	return Sheet{
		OccurrenceID: key,
		SessionID:    key.SessionID,
		TeamID:       def.TeamID,
		Date:         key.Date,
		Rows:         rows,
		Counts:       Tally(rows),
	}, nil
}

// ===== helpers =====

// parseOccurrence is the single parser for both the read and the write path.
func parseOccurrence(id string) (schedule.OccurrenceKey, error) {
	key, err := schedule.ParseOccurrenceKey(strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, schedule.ErrMalformedOccurrenceID) {
			return schedule.OccurrenceKey{}, apierr.Invalid(err.Error())
		}
		return schedule.OccurrenceKey{}, err
	}
	return key, nil
}
