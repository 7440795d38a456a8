package domain

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/goccy/go-json"
)

// ============================================================
// Members
// ============================================================

// Gender and status values used by the member forms.
const (
	GenderMale   = "Homme"
	GenderFemale = "Femme"

	MemberActive   = "Actif"
	MemberNew      = "Nouveau"
	MemberInactive = "Inactif"
)

// Member is the canonical (server-named) member record.
//
// The backend and the historical forms disagree on several names
// (firstName/firstname, birthDate/dob, memberGroup/group, phoneNumber/phone,
// baptismLocation/baptismPlace). Member is the only place that reconciles them:
// UnmarshalJSON accepts either spelling and MarshalJSON writes both.
type Member struct {
	ID              int64
	Matricule       string
	FirstName       string
	LastName        string
	Email           string
	PhoneNumber     string
	Address         string
	BirthDate       string
	Gender          string
	Profession      string
	MaritalStatus   string
	MarriageDate    string
	MarriagePlace   string
	ArrivalDate     string
	BaptismDate     string
	BaptismLocation string
	DepartureDate   string
	DepartureReason string
	MemberGroup     string
	Status          string
	AddedBy         string
}

// FullName returns "First Last".
func (m Member) FullName() string {
	switch {
	case m.FirstName == "":
		return m.LastName
	case m.LastName == "":
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// memberWire is the JSON shape on the wire: canonical names first, legacy
// names alongside. Dates are pointers so empty values travel as null.
type memberWire struct {
	ID              int64   `json:"id,omitempty"`
	Matricule       string  `json:"matricule,omitempty"`
	FirstName       string  `json:"firstName"`
	Firstname       string  `json:"firstname,omitempty"`
	LastName        string  `json:"lastName"`
	Lastname        string  `json:"lastname,omitempty"`
	Email           string  `json:"email,omitempty"`
	PhoneNumber     string  `json:"phoneNumber,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Address         string  `json:"address,omitempty"`
	BirthDate       *string `json:"birthDate"`
	Dob             *string `json:"dob,omitempty"`
	Gender          string  `json:"gender,omitempty"`
	Profession      string  `json:"profession,omitempty"`
	MaritalStatus   string  `json:"maritalStatus,omitempty"`
	MarriageDate    *string `json:"marriageDate"`
	MarriagePlace   string  `json:"marriagePlace,omitempty"`
	ArrivalDate     *string `json:"arrivalDate"`
	BaptismDate     *string `json:"baptismDate"`
	BaptismLocation string  `json:"baptismLocation,omitempty"`
	BaptismPlace    string  `json:"baptismPlace,omitempty"`
	DepartureDate   *string `json:"departureDate"`
	DepartureReason string  `json:"departureReason,omitempty"`
	MemberGroup     string  `json:"memberGroup,omitempty"`
	Group           string  `json:"group,omitempty"`
	Status          string  `json:"status,omitempty"`
	AddedBy         string  `json:"addedBy,omitempty"`
}

// MarshalJSON emits canonical names and keeps the legacy names populated with
// the same values so no field is lost on a round trip through older readers.
func (m Member) MarshalJSON() ([]byte, error) {
	birth := nullableDate(m.BirthDate)
	return json.Marshal(memberWire{
		ID:              m.ID,
		Matricule:       m.Matricule,
		FirstName:       m.FirstName,
		Firstname:       m.FirstName,
		LastName:        m.LastName,
		Lastname:        m.LastName,
		Email:           m.Email,
		PhoneNumber:     m.PhoneNumber,
		Phone:           m.PhoneNumber,
		Address:         m.Address,
		BirthDate:       birth,
		Dob:             birth,
		Gender:          m.Gender,
		Profession:      m.Profession,
		MaritalStatus:   m.MaritalStatus,
		MarriageDate:    nullableDate(m.MarriageDate),
		MarriagePlace:   m.MarriagePlace,
		ArrivalDate:     nullableDate(m.ArrivalDate),
		BaptismDate:     nullableDate(m.BaptismDate),
		BaptismLocation: m.BaptismLocation,
		BaptismPlace:    m.BaptismLocation,
		DepartureDate:   nullableDate(m.DepartureDate),
		DepartureReason: m.DepartureReason,
		MemberGroup:     m.MemberGroup,
		Group:           m.MemberGroup,
		Status:          m.Status,
		AddedBy:         m.AddedBy,
	})
}

// UnmarshalJSON accepts either naming convention; canonical names win when both
// are present.
func (m *Member) UnmarshalJSON(data []byte) error {
	var w memberWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Member{
		ID:              w.ID,
		Matricule:       w.Matricule,
		FirstName:       firstNonEmpty(w.FirstName, w.Firstname),
		LastName:        firstNonEmpty(w.LastName, w.Lastname),
		Email:           w.Email,
		PhoneNumber:     firstNonEmpty(w.PhoneNumber, w.Phone),
		Address:         w.Address,
		BirthDate:       firstNonEmpty(deref(w.BirthDate), deref(w.Dob)),
		Gender:          w.Gender,
		Profession:      w.Profession,
		MaritalStatus:   w.MaritalStatus,
		MarriageDate:    deref(w.MarriageDate),
		MarriagePlace:   w.MarriagePlace,
		ArrivalDate:     deref(w.ArrivalDate),
		BaptismDate:     deref(w.BaptismDate),
		BaptismLocation: firstNonEmpty(w.BaptismLocation, w.BaptismPlace),
		DepartureDate:   deref(w.DepartureDate),
		DepartureReason: w.DepartureReason,
		MemberGroup:     firstNonEmpty(w.MemberGroup, w.Group),
		Status:          w.Status,
		AddedBy:         w.AddedBy,
	}
	return nil
}

// MemberDraft is the form model used for create and edit flows.
// Field names follow the historical forms; Member() converts to canonical.
type MemberDraft struct {
	Matricule       string `json:"matricule"`
	Firstname       string `json:"firstname" validate:"required,min=2"`
	Lastname        string `json:"lastname" validate:"required,min=2"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone" validate:"required,min=8"`
	Dob             string `json:"dob" validate:"required,datetime=2006-01-02"`
	Gender          string `json:"gender" validate:"required,oneof=Homme Femme"`
	Profession      string `json:"profession"`
	Address         string `json:"address"`
	MaritalStatus   string `json:"maritalStatus" validate:"required"`
	MarriageDate    string `json:"marriageDate" validate:"omitempty,datetime=2006-01-02"`
	MarriagePlace   string `json:"marriagePlace"`
	ArrivalDate     string `json:"arrivalDate" validate:"omitempty,datetime=2006-01-02"`
	BaptismDate     string `json:"baptismDate" validate:"omitempty,datetime=2006-01-02"`
	BaptismLocation string `json:"baptismLocation"`
	DepartureDate   string `json:"departureDate" validate:"omitempty,datetime=2006-01-02"`
	DepartureReason string `json:"departureReason"`
	Group           string `json:"group"`
	Status          string `json:"status" validate:"required"`
}

// Member converts the form model to the canonical record.
func (d MemberDraft) Member() Member {
	return Member{
		Matricule:       d.Matricule,
		FirstName:       d.Firstname,
		LastName:        d.Lastname,
		Email:           d.Email,
		PhoneNumber:     d.Phone,
		Address:         d.Address,
		BirthDate:       d.Dob,
		Gender:          d.Gender,
		Profession:      d.Profession,
		MaritalStatus:   d.MaritalStatus,
		MarriageDate:    d.MarriageDate,
		MarriagePlace:   d.MarriagePlace,
		ArrivalDate:     d.ArrivalDate,
		BaptismDate:     d.BaptismDate,
		BaptismLocation: d.BaptismLocation,
		DepartureDate:   d.DepartureDate,
		DepartureReason: d.DepartureReason,
		MemberGroup:     d.Group,
		Status:          d.Status,
	}
}

// DraftFromMember fills an edit form from a fetched record.
func DraftFromMember(m Member) MemberDraft {
	return MemberDraft{
		Matricule:       m.Matricule,
		Firstname:       m.FirstName,
		Lastname:        m.LastName,
		Email:           m.Email,
		Phone:           m.PhoneNumber,
		Dob:             m.BirthDate,
		Gender:          m.Gender,
		Profession:      m.Profession,
		Address:         m.Address,
		MaritalStatus:   m.MaritalStatus,
		MarriageDate:    m.MarriageDate,
		MarriagePlace:   m.MarriagePlace,
		ArrivalDate:     m.ArrivalDate,
		BaptismDate:     m.BaptismDate,
		BaptismLocation: m.BaptismLocation,
		DepartureDate:   m.DepartureDate,
		DepartureReason: m.DepartureReason,
		Group:           m.MemberGroup,
		Status:          m.Status,
	}
}

// GenerateMatricule returns a registration number of the form YYYY-NNNN.
func GenerateMatricule(now time.Time) string {
	return fmt.Sprintf("%d-%d", now.Year(), 1000+rand.IntN(9000))
}

// ParseDate reads the date formats the backend emits (ISO date or RFC3339).
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func nullableDate(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
