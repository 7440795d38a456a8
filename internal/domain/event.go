package domain

// ============================================================
// Events, schedules, notifications, church
// ============================================================

// Event is an activity with its photo gallery. Images hold data URLs.
type Event struct {
	ID              int64    `json:"id,omitempty"`
	Title           string   `json:"title"`
	Date            string   `json:"date"`
	Time            string   `json:"time,omitempty"`
	Type            string   `json:"type"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	Organizer       string   `json:"organizer,omitempty"`
	MaxParticipants *int     `json:"maxParticipants,omitempty"`
	Budget          *float64 `json:"budget,omitempty"`
	Images          []string `json:"images"`
	PhotoCount      int      `json:"photoCount"`
	AddedBy         string   `json:"addedBy,omitempty"`
}

// EventDraft is the event form. Time uses the form's HH:MM format.
type EventDraft struct {
	Title           string   `json:"title" validate:"required,min=3"`
	Date            string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string   `json:"time" validate:"omitempty,datetime=15:04"`
	Type            string   `json:"type" validate:"required,min=2"`
	Location        string   `json:"location" validate:"required,min=2"`
	Description     string   `json:"description" validate:"required,min=10"`
	Organizer       string   `json:"organizer"`
	MaxParticipants *int     `json:"maxParticipants" validate:"omitempty,gt=0"`
	Budget          *float64 `json:"budget" validate:"omitempty,gte=0"`
}

// Photo is a raw attachment before client-side encoding.
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// Schedule is a recurring service slot shown on the public site.
type Schedule struct {
	ID        int64  `json:"id,omitempty"`
	DayOfWeek string `json:"dayOfWeek" validate:"required"`
	Time      string `json:"time" validate:"required"`
	Label     string `json:"label" validate:"required"`
}

// Notification types emitted by the backend.
const (
	NotificationMember  = "MEMBER"
	NotificationFinance = "FINANCE"
	NotificationEvent   = "EVENT"
)

// Notification is an alert addressed to the logged-in user.
type Notification struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
	Read      bool   `json:"read"`
}

// ChurchConfig is the church identity shown on the public site.
type ChurchConfig struct {
	ID         int64  `json:"id,omitempty"`
	ChurchName string `json:"churchName" validate:"required"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Email      string `json:"email" validate:"omitempty,email"`
}

// PublicStats is returned by GET /public/stats.
type PublicStats struct {
	TotalMembers int64 `json:"totalMembers"`
	TotalEvents  int64 `json:"totalEvents"`
}

// DataExport is the full backup returned by GET /users/export-data.
type DataExport struct {
	Members          []Member       `json:"members"`
	Transactions     []Transaction  `json:"transactions"`
	Events           []Event        `json:"events"`
	ChurchConfig     []ChurchConfig `json:"churchConfig"`
	WorshipSchedules []Schedule     `json:"worshipSchedules"`
	ExportDate       string         `json:"exportDate"`
	Version          string         `json:"version"`
}
