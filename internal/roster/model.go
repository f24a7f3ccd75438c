package roster

type School struct {
	SchoolID string  `json:"school_id"`
	Name     string  `json:"name"`
	Location *string `json:"location,omitempty"`
}

type Team struct {
	TeamID       string  `json:"team_id"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	IsActive     bool    `json:"is_active"`
	Participants int     `json:"participants"`
	Price        float64 `json:"price"`
	School       *School `json:"school,omitempty"`
}

// Student is also the roster entry: one active enrollment yields one Student.
type Student struct {
	StudentID      string  `json:"student_id" db:"studentid"`
	FirstName      string  `json:"first_name" db:"firstname"`
	LastName       string  `json:"last_name" db:"lastname"`
	DOB            *string `json:"dob,omitempty" db:"dob"`
	Grade          *string `json:"grade,omitempty" db:"grade"`
	ECName         *string `json:"ec_name,omitempty" db:"ecname"`
	ECPhone        *string `json:"ec_phone,omitempty" db:"ecphone"`
	ECRelationship *string `json:"ec_relationship,omitempty" db:"ecrelationship"`
	Dismissal      *string `json:"dismissal,omitempty" db:"dismissal"`
}

func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

type Staff struct {
	ID     string  `json:"id" db:"id"`
	UserID *string `json:"user_id,omitempty" db:"userid"`
	Name   string  `json:"name" db:"name"`
	Email  string  `json:"email" db:"email"`
	Phone  *string `json:"phone,omitempty" db:"phone"`
}

// teamRow is the flat shape of teams LEFT JOIN schools.
type teamRow struct {
	TeamID         string  `db:"teamid"`
	Name           string  `db:"name"`
	Description    *string `db:"description"`
	IsActive       bool    `db:"isactive"`
	Participants   int     `db:"participants"`
	Price          float64 `db:"price"`
	SchoolID       *string `db:"schoolid"`
	SchoolName     *string `db:"school_name"`
	SchoolLocation *string `db:"school_location"`
}

// toModel is the only place the joined school is shaped: a missing join
// becomes a nil *School.
func (r teamRow) toModel() Team {
	t := Team{
		TeamID:       r.TeamID,
		Name:         r.Name,
		Description:  r.Description,
		IsActive:     r.IsActive,
		Participants: r.Participants,
		Price:        r.Price,
	}
	if r.SchoolID != nil && *r.SchoolID != "" {
		s := &School{SchoolID: *r.SchoolID, Location: r.SchoolLocation}
		if r.SchoolName != nil {
			s.Name = *r.SchoolName
		}
		t.School = s
	}
	return t
}
