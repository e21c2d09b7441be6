package domain

const (
	MailTypeRotaPublished = "rota_published"
	MailTypeShiftAssigned = "shift_assigned"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type RotaPublishedMailData struct {
	FullName   string `json:"fullName"`
	ShiftCount int    `json:"shiftCount"`
	FirstShift string `json:"firstShift"`
}

type ShiftAssignedMailData struct {
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Location string `json:"location"`
	Start    string `json:"start"`
	End      string `json:"end"`
}
