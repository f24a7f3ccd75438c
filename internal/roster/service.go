package roster

import (
	"context"

	"coachdesk-backend/internal/platform/apierr"
	"coachdesk-backend/internal/platform/db"
)

type Service struct {
	store *Store
}

func NewService(conn db.DBTX) *Service {
	return &Service{store: NewStore(conn)}
}

// GET /teams/:team_id/roster
func (s *Service) ActiveRoster(ctx context.Context, teamID string) ([]Student, error) {
	if teamID == "" {
		return nil, apierr.Invalid("team_id is required")
	}
	return s.store.ActiveRoster(ctx, teamID)
}

// GET /coach/teams
func (s *Service) MyTeams(ctx context.Context, staffID string) ([]Team, error) {
	if staffID == "" {
		return nil, apierr.Invalid("staff id is required")
	}
	return s.store.TeamsForCoach(ctx, staffID)
}

// GET /admin/teams
func (s *Service) AllTeams(ctx context.Context) ([]Team, error) {
	return s.store.AllTeams(ctx)
}

// AuthorizeTeam is FORBIDDEN unless staffID coaches the active team teamID.
func (s *Service) AuthorizeTeam(ctx context.Context, staffID, teamID string) error {
	if staffID == "" {
		return apierr.Forbidden("account is not linked to a staff member")
	}
	ok, err := s.store.CoachesTeam(ctx, staffID, teamID)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.Forbidden("not a coach of this team")
	}
	return nil
}

// AuthorizeStudent is FORBIDDEN unless the student is on one of staffID's teams.
func (s *Service) AuthorizeStudent(ctx context.Context, staffID, studentID string) error {
	if staffID == "" {
		return apierr.Forbidden("account is not linked to a staff member")
	}
	ok, err := s.store.CoachesStudent(ctx, staffID, studentID)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.Forbidden("student is not on one of your teams")
	}
	return nil
}

// TeamByID returns nil, nil when the team does not exist.
func (s *Service) TeamByID(ctx context.Context, teamID string) (*Team, error) {
	return s.store.TeamByID(ctx, teamID)
}

// StudentByID returns nil, nil when the student does not exist.
func (s *Service) StudentByID(ctx context.Context, studentID string) (*Student, error) {
	return s.store.StudentByID(ctx, studentID)
}

// GET /coach/me
func (s *Service) CurrentStaff(ctx context.Context, staffID string) (*Staff, error) {
	st, err := s.store.StaffByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, apierr.NotFound("staff not found")
	}
	return st, nil
}

func (s *Service) ListStaff(ctx context.Context) ([]Staff, error) {
	return s.store.ListStaff(ctx)
}
