package period

import "time"

type Period struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"companyId"`
	Label          string    `json:"periodo"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	DisplayStatus  string    `json:"displayStatus"`
	ReportedToDian bool      `json:"reportedToDian"`
	EmployeesCount int       `json:"employeesCount"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Range is a period boundary without identity, used when suggesting
// the next period to create.
type Range struct {
	Label     string    `json:"periodo"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Type      string    `json:"type"`
}

// StatusInfo is the structured status payload attached to a known period.
type StatusInfo struct {
	Status         string `json:"status"`
	DisplayStatus  string `json:"displayStatus"`
	ReportedToDian bool   `json:"reportedToDian"`
	CanReopen      bool   `json:"canReopen"`
	CanClose       bool   `json:"canClose"`
}

// Status is a tagged variant: either unknown (nothing resolved yet) or a
// concrete StatusInfo. It replaces shape probing on loosely typed values.
type Status struct {
	Known bool       `json:"known"`
	Info  StatusInfo `json:"info,omitempty"`
}

func StatusUnknown() Status {
	return Status{}
}

func StatusOf(p Period, actorCanReopen bool) Status {
	return Status{
		Known: true,
		Info: StatusInfo{
			Status:         p.Status,
			DisplayStatus:  DisplayState(p.Status),
			ReportedToDian: p.ReportedToDian,
			CanReopen:      CanReopen(p, actorCanReopen) == nil,
			CanClose:       CanTransition(p.Status, StatusCerrado),
		},
	}
}
