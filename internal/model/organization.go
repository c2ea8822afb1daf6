package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organizational role constants. Role is scoped to the organization, not the
// department — department relationships are tracked via DepartmentMember.
const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
	RoleOwner  = "OWNER"
)

// ValidRole reports whether role is one of the known organizational roles.
func ValidRole(role string) bool {
	return role == RoleMember || role == RoleAdmin || role == RoleOwner
}

// Department icon and color are closed enumerations, not free strings.
const (
	DeptIconBuilding = "BUILDING"
	DeptIconPill     = "PILL"
	DeptIconFlask    = "FLASK"
	DeptIconBed      = "BED"
	DeptIconTruck    = "TRUCK"
)

const (
	DeptColorBlue   = "BLUE"
	DeptColorGreen  = "GREEN"
	DeptColorRed    = "RED"
	DeptColorAmber  = "AMBER"
	DeptColorPurple = "PURPLE"
)

// ValidDeptIcon reports whether icon is a known department icon.
func ValidDeptIcon(icon string) bool {
	switch icon {
	case DeptIconBuilding, DeptIconPill, DeptIconFlask, DeptIconBed, DeptIconTruck:
		return true
	}
	return false
}

// ValidDeptColor reports whether color is a known department color.
func ValidDeptColor(color string) bool {
	switch color {
	case DeptColorBlue, DeptColorGreen, DeptColorRed, DeptColorAmber, DeptColorPurple:
		return true
	}
	return false
}

// Organization is the tenant boundary. Every department, product, batch and
// transfer belongs to exactly one organization.
type Organization struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Member links a user to an organization with an organizational role.
type Member struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_org_user" json:"organization_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_org_user" json:"user_id"`
	User           *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role           string    `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"` // MEMBER, ADMIN, OWNER
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Department is a stock-holding unit within an organization (ward, pharmacy,
// central store...).
type Department struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_org_dept_code" json:"organization_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Code           string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_org_dept_code" json:"code"`
	Icon           string         `gorm:"type:varchar(20);not null;default:'BUILDING'" json:"icon"`
	Color          string         `gorm:"type:varchar(20);not null;default:'BLUE'" json:"color"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// DepartmentMember links a user to a department they operate in. A user may
// belong to several departments.
type DepartmentMember struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_dept_user" json:"department_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_dept_user" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
