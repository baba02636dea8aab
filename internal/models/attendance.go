package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Attendance is one staff shift
type Attendance struct {
	TenantModel
	StaffID      uuid.UUID  `json:"staffId" db:"staff_id"`
	StaffName    string     `json:"staffName,omitempty" db:"-"`
	CheckIn      time.Time  `json:"checkIn" db:"check_in"`
	CheckOut     *time.Time `json:"checkOut,omitempty" db:"check_out"`
	TotalHours   float64    `json:"totalHours" db:"total_hours"`
	SalaryEarned float64    `json:"salaryEarned" db:"salary_earned"`
}

// Open reports whether the shift has not been checked out yet.
func (a *Attendance) Open() bool {
	return a.CheckOut == nil
}

// Close checks the shift out at the given time and computes hours and pay.
// Hours are rounded to two decimals.
func (a *Attendance) Close(at time.Time, hourlyRate float64) {
	out := at
	a.CheckOut = &out
	hours := at.Sub(a.CheckIn).Hours()
	if hours < 0 {
		hours = 0
	}
	a.TotalHours = math.Round(hours*100) / 100
	a.SalaryEarned = math.Round(a.TotalHours*hourlyRate*100) / 100
}
