package types

import (
	"time"

	"github.com/google/uuid"
)

type AssessmentKind string

const (
	AssessmentExam     AssessmentKind = "exam"
	AssessmentActivity AssessmentKind = "activity"
)

func (k AssessmentKind) Valid() bool {
	return k == AssessmentExam || k == AssessmentActivity
}

// GradeRecord is unique per (course, student) pair; the composite unique
// index is the authority for that invariant, not application checks.
type GradeRecord struct {
	ID          uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID    uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_grade_course_student" json:"course_id"`
	StudentID   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_grade_course_student" json:"student_id"`
	Assessments []*Assessment `gorm:"foreignKey:GradeRecordID;references:ID" json:"assessments,omitempty"`
	CreatedAt   time.Time     `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:now()" json:"updated_at"`
}

func (GradeRecord) TableName() string { return "grade_record" }

type Assessment struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GradeRecordID uuid.UUID      `gorm:"type:uuid;not null;index" json:"grade_record_id"`
	Label         string         `gorm:"not null;column:label" json:"label"`
	Kind          AssessmentKind `gorm:"not null;column:kind" json:"kind"`
	Score         float64        `gorm:"not null;column:score" json:"score"`
	Weight        float64        `gorm:"not null;column:weight" json:"weight"`
	Date          time.Time      `gorm:"column:date" json:"date"`
	Position      int            `gorm:"not null;default:0;column:position" json:"position"`
}

func (Assessment) TableName() string { return "assessment" }
