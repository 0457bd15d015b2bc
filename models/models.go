package models

import (
	"time"
)

// Base model with common fields. Deletes in this API are hard deletes
// (rows are deactivated via Active/Status flags instead), so there is no
// gorm.DeletedAt here.
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleStudent  Role = "student"
)

// In reports whether r is a member of the given role set.
func (r Role) In(roles ...Role) bool {
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.In(RoleAdmin, RoleEmployee, RoleStudent)
}

// User model
type User struct {
	BaseModel
	Email    string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:255;not null"`
	Role     Role   `json:"role" gorm:"size:50;not null;default:'student';type:enum('admin','employee','student')"`
	Active   bool   `json:"active" gorm:"default:true"`

	// Relationships
	Student *Student `json:"student,omitempty" gorm:"foreignKey:UserID"`
	Teacher *Teacher `json:"teacher,omitempty" gorm:"foreignKey:UserID"`
}

// Student model
type Student struct {
	BaseModel
	UserID           *uint      `json:"user_id" gorm:"uniqueIndex"`
	Name             string     `json:"name" gorm:"size:255;not null"`
	CPF              string     `json:"cpf" gorm:"size:14;not null;uniqueIndex"`
	Phone            string     `json:"phone" gorm:"size:20"`
	BirthDate        *time.Time `json:"birth_date" gorm:"type:date"`
	Address          string     `json:"address" gorm:"size:500"`
	ResponsibleName  string     `json:"responsible_name" gorm:"size:255"`
	ResponsiblePhone string     `json:"responsible_phone" gorm:"size:20"`
	EnrollmentDate   time.Time  `json:"enrollment_date" gorm:"type:date;not null"`
	Active           bool       `json:"active" gorm:"default:true"`

	// Relationships
	User        *User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Enrollments []ClassEnrollment `json:"enrollments,omitempty" gorm:"foreignKey:StudentID"`
	Payments    []Payment         `json:"payments,omitempty" gorm:"foreignKey:StudentID"`
}

// Teacher model
type Teacher struct {
	BaseModel
	UserID    *uint      `json:"user_id" gorm:"uniqueIndex"`
	Name      string     `json:"name" gorm:"size:255;not null"`
	CPF       string     `json:"cpf" gorm:"size:14;not null;uniqueIndex"`
	Phone     string     `json:"phone" gorm:"size:20"`
	BirthDate *time.Time `json:"birth_date" gorm:"type:date"`
	Address   string     `json:"address" gorm:"size:500"`
	Specialty string     `json:"specialty" gorm:"size:255"`
	HireDate  *time.Time `json:"hire_date" gorm:"type:date"`
	Active    bool       `json:"active" gorm:"default:true"`

	// Relationships
	User    *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Classes []Class `json:"classes,omitempty" gorm:"foreignKey:TeacherID"`
}

// Instrument lookup model
type Instrument struct {
	BaseModel
	Name   string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Active bool   `json:"active" gorm:"default:true"`
}

// Class model
type Class struct {
	BaseModel
	Name         string  `json:"name" gorm:"size:255;not null"`
	InstrumentID *uint   `json:"instrument_id"`
	TeacherID    *uint   `json:"teacher_id"`
	Type         string  `json:"type" gorm:"size:50;not null;type:enum('instrument','general-rehearsal')"`
	DayOfWeek    string  `json:"day_of_week" gorm:"size:20"`
	StartTime    string  `json:"start_time" gorm:"size:8"`
	EndTime      string  `json:"end_time" gorm:"size:8"`
	MaxStudents  int     `json:"max_students" gorm:"default:10"`
	MonthlyFee   float64 `json:"monthly_fee" gorm:"type:decimal(10,2)"`
	Active       bool    `json:"active" gorm:"default:true"`

	// Relationships
	Instrument  *Instrument       `json:"instrument,omitempty" gorm:"foreignKey:InstrumentID"`
	Teacher     *Teacher          `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Enrollments []ClassEnrollment `json:"enrollments,omitempty" gorm:"foreignKey:ClassID"`
}

// ClassEnrollment model. The composite unique index is the guard against
// duplicate enrollments under concurrent requests.
type ClassEnrollment struct {
	BaseModel
	ClassID        uint      `json:"class_id" gorm:"not null;uniqueIndex:idx_class_student"`
	StudentID      uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_class_student"`
	EnrollmentDate time.Time `json:"enrollment_date" gorm:"type:date;not null"`
	Status         string    `json:"status" gorm:"size:20;not null;default:'active';type:enum('active','inactive')"`

	// Relationships
	Class   Class   `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// ClassAttendance model. One row per (class, student, date); marking twice
// updates the existing row.
type ClassAttendance struct {
	BaseModel
	ClassID        uint      `json:"class_id" gorm:"not null;uniqueIndex:idx_class_student_date"`
	StudentID      uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_class_student_date"`
	AttendanceDate time.Time `json:"attendance_date" gorm:"type:date;not null;uniqueIndex:idx_class_student_date"`
	Status         string    `json:"status" gorm:"size:20;not null;type:enum('present','absent','late','justified')"`
	Notes          string    `json:"notes" gorm:"type:text"`

	// Relationships
	Class   Class   `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Payment model. ReferenceMonth is stored as the first day of the charged
// month; the (student, reference_month) unique index makes monthly
// generation idempotent.
type Payment struct {
	BaseModel
	StudentID      uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_student_ref_month"`
	Amount         float64    `json:"amount" gorm:"type:decimal(10,2);not null"`
	DueDate        time.Time  `json:"due_date" gorm:"type:date;not null"`
	ReferenceMonth time.Time  `json:"reference_month" gorm:"type:date;not null;uniqueIndex:idx_student_ref_month"`
	Status         string     `json:"status" gorm:"size:20;not null;default:'pending';type:enum('pending','paid')"`
	PaymentDate    *time.Time `json:"payment_date" gorm:"type:date"`
	PaymentMethod  string     `json:"payment_method" gorm:"size:50"`
	ReceiptNumber  string     `json:"receipt_number" gorm:"size:50"`
	Notes          string     `json:"notes" gorm:"type:text"`

	// Relationships
	Student Student  `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Receipt *Receipt `json:"receipt,omitempty" gorm:"foreignKey:PaymentID"`
}

// Receipt model. Immutable once created: the student name, amount and
// description are snapshots taken at confirmation time.
type Receipt struct {
	BaseModel
	PaymentID     uint      `json:"payment_id" gorm:"not null;uniqueIndex"`
	ReceiptNumber string    `json:"receipt_number" gorm:"size:50;not null"`
	IssueDate     time.Time `json:"issue_date" gorm:"not null"`
	StudentName   string    `json:"student_name" gorm:"size:255;not null"`
	Amount        float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	Description   string    `json:"description" gorm:"size:500"`
}

// Event model
type Event struct {
	BaseModel
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	EventDate   time.Time `json:"event_date" gorm:"not null"`
	Location    string    `json:"location" gorm:"size:255"`
	Type        string    `json:"type" gorm:"size:50"`
	Active      bool      `json:"active" gorm:"default:true"`

	// Relationships
	Participants []EventParticipant `json:"participants,omitempty" gorm:"foreignKey:EventID"`
}

// EventParticipant model
type EventParticipant struct {
	BaseModel
	EventID   uint `json:"event_id" gorm:"not null;uniqueIndex:idx_event_student"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_event_student"`

	// Relationships
	Event   Event   `json:"event,omitempty" gorm:"foreignKey:EventID"`
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// EventAttendance model. Created with status "confirmed" alongside the
// participant row; later markings upsert by (event, student).
type EventAttendance struct {
	BaseModel
	EventID   uint   `json:"event_id" gorm:"not null;uniqueIndex:idx_event_att_student"`
	StudentID uint   `json:"student_id" gorm:"not null;uniqueIndex:idx_event_att_student"`
	Status    string `json:"status" gorm:"size:20;not null;default:'confirmed';type:enum('confirmed','present','absent')"`
	Notes     string `json:"notes" gorm:"type:text"`

	// Relationships
	Event   Event   `json:"event,omitempty" gorm:"foreignKey:EventID"`
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// ActivityLog model for audit trail
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`
	RequestID  string `json:"request_id" gorm:"size:64"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
