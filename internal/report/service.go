package report

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shrimpsizemoose/trekker/logger"

	"coachdesk-backend/internal/attendance"
	"coachdesk-backend/internal/platform/apierr"
	"coachdesk-backend/internal/platform/mail"
	"coachdesk-backend/internal/platform/metrics"
	"coachdesk-backend/internal/roster"
	"coachdesk-backend/internal/schedule"
)

// ===== collaborators =====

type RosterSource interface {
	ListStaff(ctx context.Context) ([]roster.Staff, error)
	CurrentStaff(ctx context.Context, staffID string) (*roster.Staff, error)
	MyTeams(ctx context.Context, staffID string) ([]roster.Team, error)
	StudentByID(ctx context.Context, studentID string) (*roster.Student, error)
}

type OccurrenceSource interface {
	OccurrencesBetween(ctx context.Context, staffID string, from, to time.Time) ([]schedule.Occurrence, error)
	Today() time.Time
}

type MarkSource interface {
	MarksBetween(ctx context.Context, sessionIDs []string, from, to string) ([]attendance.Mark, error)
}

// ===== Service =====

type Service struct {
	roster  RosterSource
	occ     OccurrenceSource
	marks   MarkSource
	mailer  mail.Mailer
	adminCC []string
	loc     *time.Location
}

func NewService(rs RosterSource, occ OccurrenceSource, marks MarkSource, mailer mail.Mailer, adminCC []string) *Service {
	return &Service{roster: rs, occ: occ, marks: marks, mailer: mailer, adminCC: adminCC}
}

// WithLocation sets the timezone "last week" is computed in. Without it the
// schedule's timezone is used.
func (s *Service) WithLocation(loc *time.Location) *Service {
	s.loc = loc
	return s
}

func (s *Service) today() time.Time {
	t := s.occ.Today()
	if s.loc != nil {
		t = t.In(s.loc)
	}
	return t
}

type RunResult struct {
	Period    Period `json:"period"`
	Processed int    `json:"processed"`
	Sent      int    `json:"sent"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// LastWeek is the seven calendar days before today.
func LastWeek(today time.Time) (time.Time, time.Time) {
	y, m, d := today.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, today.Location()).AddDate(0, 0, -1)
	return end.AddDate(0, 0, -6), end
}

// POST /admin/reports/weekly
// Run mails last week's report to one coach, or to every staff member when
// staffID is empty. A failure for one coach is logged and the run goes on.
func (s *Service) Run(ctx context.Context, staffID string) (RunResult, error) {
	from, to := LastWeek(s.today())
	res := RunResult{Period: Period{From: from.Format(schedule.DateLayout), To: to.Format(schedule.DateLayout)}}

	var staff []roster.Staff
	if staffID != "" {
		st, err := s.roster.CurrentStaff(ctx, staffID)
		if err != nil {
			return res, err
		}
		staff = []roster.Staff{*st}
	} else {
		all, err := s.roster.ListStaff(ctx)
		if err != nil {
			return res, err
		}
		staff = all
	}

	logger.Info.Printf("weekly report %s..%s for %d staff", res.Period.From, res.Period.To, len(staff))
	for _, st := range staff {
		res.Processed++

		r, err := s.Build(ctx, st, from, to)
		if err != nil {
			res.Failed++
			metrics.ReportsSent.WithLabelValues(metrics.ResultFailed).Inc()
			logger.Error.Printf("weekly report for %s failed: %v", st.ID, err)
			continue
		}
		if r.Empty() {
			res.Skipped++
			metrics.ReportsSent.WithLabelValues(metrics.ResultSkipped).Inc()
			logger.Debug.Printf("no team data for %s, skipping", st.ID)
			continue
		}
		if err := s.send(ctx, r); err != nil {
			res.Failed++
			metrics.ReportsSent.WithLabelValues(metrics.ResultFailed).Inc()
			logger.Error.Printf("weekly report mail to %s failed: %v", st.Email, err)
			continue
		}
		res.Sent++
		metrics.ReportsSent.WithLabelValues(metrics.ResultSent).Inc()
	}
	return res, nil
}

// Build collects one coach's report for from..to (inclusive dates).
func (s *Service) Build(ctx context.Context, st roster.Staff, from, to time.Time) (Report, error) {
	p := Period{From: from.Format(schedule.DateLayout), To: to.Format(schedule.DateLayout)}

	teams, err := s.roster.MyTeams(ctx, st.ID)
	if err != nil {
		return Report{}, err
	}
	occ, err := s.occ.OccurrencesBetween(ctx, st.ID, from, to)
	if err != nil {
		return Report{}, err
	}

	seen := make(map[string]bool)
	var sessionIDs []string
	for _, o := range occ {
		if !seen[o.SessionID] {
			seen[o.SessionID] = true
			sessionIDs = append(sessionIDs, o.SessionID)
		}
	}
	marks, err := s.marks.MarksBetween(ctx, sessionIDs, p.From, p.To)
	if err != nil {
		return Report{}, err
	}

	names := make(map[string]string)
	for _, m := range marks {
		if m.Assisted {
			continue
		}
		if _, ok := names[m.StudentID]; ok {
			continue
		}
		student, err := s.roster.StudentByID(ctx, m.StudentID)
		if err != nil {
			return Report{}, err
		}
		if student != nil {
			names[m.StudentID] = student.FullName()
		} else {
			names[m.StudentID] = ""
		}
	}

	return Build(st, teams, occ, marks, names, p), nil
}

// Preview renders last week's report for staffID without sending it.
func (s *Service) Preview(ctx context.Context, staffID string) (string, error) {
	if staffID == "" {
		return "", apierr.Invalid("staff_id is required")
	}
	st, err := s.roster.CurrentStaff(ctx, staffID)
	if err != nil {
		return "", err
	}
	from, to := LastWeek(s.today())
	r, err := s.Build(ctx, *st, from, to)
	if err != nil {
		return "", err
	}
	return Render(r)
}

func (s *Service) send(ctx context.Context, r Report) error {
	html, err := Render(r)
	if err != nil {
		return err
	}
	_, err = s.mailer.Send(ctx, mail.Message{
		To:      []string{r.Staff.Email},
		Cc:      s.adminCC,
		Subject: Subject(r),
		HTML:    html,
	})
	return err
}

// Schedule registers the all-staff run on c.
func (s *Service) Schedule(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		res, err := s.Run(ctx, "")
		if err != nil {
			logger.Error.Printf("weekly report run failed: %v", err)
			return
		}
		logger.Info.Printf("weekly report run: sent=%d skipped=%d failed=%d", res.Sent, res.Skipped, res.Failed)
	})
	if err != nil {
		return fmt.Errorf("invalid report schedule %q: %w", spec, err)
	}
	return nil
}
