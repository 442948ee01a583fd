package models

// Role enum
type Role string

const (
	RolePlatformAdmin Role = "platform_admin"
	RoleAdmin         Role = "admin"
	RoleProfessional  Role = "professional"
	RoleReceptionist  Role = "receptionist"
)

// Staff is a member of a clinic's team. Only active staff flagged as
// professionals can own appointments.
type Staff struct {
	BaseModel
	ClinicID       string `gorm:"size:36;not null;index" json:"clinicId"`
	Name           string `gorm:"size:255;not null" json:"name"`
	Email          string `gorm:"size:255" json:"email,omitempty"`
	Role           Role   `gorm:"size:20;default:'professional'" json:"role"`
	Specialty      string `gorm:"size:100" json:"specialty,omitempty"`
	IsProfessional bool   `gorm:"not null" json:"isProfessional"`
	Active         bool   `gorm:"not null;index" json:"active"`
}

// TableName overrides the pluralized default "staffs".
func (Staff) TableName() string {
	return "staff"
}
