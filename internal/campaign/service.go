package campaign

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shrimpsizemoose/trekker/logger"

	"coachdesk-backend/internal/platform/apierr"
	"coachdesk-backend/internal/platform/mail"
	"coachdesk-backend/internal/platform/metrics"
)

type CoachSource interface {
	CoachesForTeams(ctx context.Context, teamIDs []string) ([]Coach, error)
}

type Service struct {
	coaches  CoachSource
	mailer   mail.Mailer
	validate *validator.Validate
}

func NewService(coaches CoachSource, mailer mail.Mailer) *Service {
	return &Service{coaches: coaches, mailer: mailer, validate: validator.New()}
}

type Request struct {
	TeamIDs []string `json:"team_ids"`
	Subject string   `json:"subject"`
	Content string   `json:"content"`
	IsHTML  bool     `json:"is_html"`
}

func (r Request) Validate() error {
	if len(r.TeamIDs) == 0 {
		return apierr.Invalid("at least one team must be selected")
	}
	if strings.TrimSpace(r.Subject) == "" || strings.TrimSpace(r.Content) == "" {
		return apierr.Invalid("subject and content are required")
	}
	return nil
}

type PreviewRequest struct {
	Request
	// CoachID picks the recipient to merge for; empty means the first one.
	CoachID string `json:"coach_id"`
}

type Preview struct {
	Coach      Coach  `json:"coach"`
	Subject    string `json:"subject"`
	HTML       string `json:"html"`
	Text       string `json:"text,omitempty"`
	Recipients int    `json:"recipients"`
}

type SendError struct {
	Coach string `json:"coach"`
	Error string `json:"error"`
}

type Result struct {
	Total  int         `json:"total"`
	Sent   int         `json:"sent"`
	Failed int         `json:"failed"`
	Errors []SendError `json:"errors"`
}

func (s *Service) recipients(ctx context.Context, req Request) ([]Coach, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	coaches, err := s.coaches.CoachesForTeams(ctx, req.TeamIDs)
	if err != nil {
		return nil, err
	}
	if len(coaches) == 0 {
		return nil, apierr.NotFound("no coaches found for the selected teams")
	}
	return coaches, nil
}

// compose merges req for one coach.
func compose(req Request, c Coach) (mail.Message, error) {
	v := VariablesFor(c)
	html, text, err := RenderBody(ReplaceVariables(req.Content, v), req.IsHTML)
	if err != nil {
		return mail.Message{}, err
	}
	return mail.Message{
		To:      []string{c.Email},
		Subject: ReplaceVariables(req.Subject, v),
		HTML:    html,
		Text:    text,
	}, nil
}

// POST /admin/campaigns/preview
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (Preview, error) {
	coaches, err := s.recipients(ctx, req.Request)
	if err != nil {
		return Preview{}, err
	}

	c := coaches[0]
	if req.CoachID != "" {
		found := false
		for _, cc := range coaches {
			if cc.ID == req.CoachID {
				c, found = cc, true
				break
			}
		}
		if !found {
			return Preview{}, apierr.NotFound("coach is not a recipient of this campaign")
		}
	}

	msg, err := compose(req.Request, c)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Coach: c, Subject: msg.Subject, HTML: msg.HTML, Text: msg.Text, Recipients: len(coaches)}, nil
}

// POST /admin/campaigns/send
// Send mails one personalised message per coach in a single batch. Coaches
// with an invalid address or a body that fails to render are reported in
// Result.Errors and do not stop the others.
func (s *Service) Send(ctx context.Context, req Request) (Result, error) {
	coaches, err := s.recipients(ctx, req)
	if err != nil {
		return Result{}, err
	}

	res := Result{Total: len(coaches), Errors: []SendError{}}
	fail := func(c Coach, msg string) {
		res.Failed++
		res.Errors = append(res.Errors, SendError{Coach: c.Name, Error: msg})
		metrics.CampaignMails.WithLabelValues(metrics.ResultFailed).Inc()
	}

	var (
		msgs    []mail.Message
		pending []Coach
	)
	for _, c := range coaches {
		if err := s.validate.Var(c.Email, "required,email"); err != nil {
			fail(c, "invalid email")
			continue
		}
		msg, err := compose(req, c)
		if err != nil {
			fail(c, err.Error())
			continue
		}
		msgs = append(msgs, msg)
		pending = append(pending, c)
	}

	if len(msgs) > 0 {
		ids, err := s.mailer.SendBatch(ctx, msgs)
		for i, c := range pending {
			if i < len(ids) {
				res.Sent++
				metrics.CampaignMails.WithLabelValues(metrics.ResultSent).Inc()
				continue
			}
			msg := "not sent"
			if err != nil {
				msg = err.Error()
			}
			fail(c, msg)
		}
		if err != nil {
			logger.Error.Printf("campaign batch stopped after %d of %d mails: %v", len(ids), len(msgs), err)
		}
	}

	logger.Info.Printf("campaign %q: total=%d sent=%d failed=%d", req.Subject, res.Total, res.Sent, res.Failed)
	return res, nil
}
