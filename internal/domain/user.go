package domain

import (
	"time"
)

type Role string

const (
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// User is an operator or staff member of a company. Positions are the job roles
// (e.g. "Bar Staff") a staff member can be scheduled for.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	CompanyID    string    `json:"companyId" bson:"company_id"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	FullName     string    `json:"fullName" bson:"full_name"`
	Email        string    `json:"email" bson:"email"`
	Role         Role      `json:"role" bson:"role"`
	Positions    []string  `json:"positions" bson:"positions"`
	IsActive     bool      `json:"isActive" bson:"is_active"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

type Location struct {
	ID        string `json:"id" bson:"_id"`
	CompanyID string `json:"companyId" bson:"company_id"`
	Name      string `json:"name" bson:"name"`
}

// CompanySettings gate UI affordances; rotaEnabled gates the whole rota surface.
type CompanySettings struct {
	CompanyID              string `json:"companyId" bson:"_id"`
	Name                   string `json:"name" bson:"name"`
	RotaEnabled            bool   `json:"rotaEnabled" bson:"rota_enabled"`
	AllowShiftBidding      bool   `json:"allowShiftBidding" bson:"allow_shift_bidding"`
	RequireTimeOffApproval bool   `json:"requireTimeOffApproval" bson:"require_time_off_approval"`
	RotaShowFinishTimes    bool   `json:"rotaShowFinishTimes" bson:"rota_show_finish_times"`
}
