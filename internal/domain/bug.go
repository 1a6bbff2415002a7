package domain

import "time"

type Bug struct {
	BugID         int64
	BugName       string
	ProjectID     int64
	CreatedID     int64
	AssignedID    *int64 // nil when unassigned
	Description   string
	Status        string
	Priority      string
	Importance    string
	NumOfComments int
	CreationDate  time.Time
	OpenDate      time.Time
	CloseDate     *time.Time // nil while open
}

const BugStatusNew = "New"

// DateLayout is the wire and storage format of bug dates.
const DateLayout = "2006-01-02"

// clientDateLayout is the day-first format the browser client submits.
const clientDateLayout = "02/01/2006"

// NewBug carries bug creation input as received from a client.
// Dates are unparsed strings in DateLayout or the day-first client layout.
type NewBug struct {
	Title        string
	Description  string
	Status       string
	Priority     string
	Importance   string
	CreationDate string
	OpenDate     string
	ProjectID    int64
	AssignedID   *int64
}

// ParseDate accepts YYYY-MM-DD and DD/MM/YYYY and returns midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(clientDateLayout, s)
}
