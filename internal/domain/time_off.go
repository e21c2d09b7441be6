package domain

import "time"

type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "pending"
	TimeOffApproved TimeOffStatus = "approved"
	TimeOffRejected TimeOffStatus = "rejected"
)

// TimeOffRequest is read-only for the rota; approval happens elsewhere.
type TimeOffRequest struct {
	ID        string        `json:"id" bson:"_id"`
	CompanyID string        `json:"companyId" bson:"company_id"`
	UserID    string        `json:"userId" bson:"user_id"`
	UserName  string        `json:"userName" bson:"user_name"`
	StartTime time.Time     `json:"startTime" bson:"start_time"`
	EndTime   time.Time     `json:"endTime" bson:"end_time"`
	Reason    string        `json:"reason" bson:"reason"`
	Status    TimeOffStatus `json:"status" bson:"status"`
}

func (t *TimeOffRequest) Overlaps(start, end time.Time) bool {
	return t.StartTime.Before(end) && start.Before(t.EndTime)
}
