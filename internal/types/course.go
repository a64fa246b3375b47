package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Course carries its membership sets and its topic tree on the loaded
// row. Instructors/Students are join-table associations and are expected
// to stay small (tens of users per course).
type Course struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Slug        string         `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Title       string         `gorm:"not null;column:title" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	Metadata    datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatorID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"creator_id"`
	Instructors []*User        `gorm:"many2many:course_instructors;constraint:OnDelete:CASCADE" json:"instructors,omitempty"`
	Students    []*User        `gorm:"many2many:course_students;constraint:OnDelete:CASCADE" json:"students,omitempty"`
	Topics      []*Topic       `gorm:"foreignKey:CourseID;references:ID" json:"topics,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

type Topic struct {
	ID        uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"course_id"`
	Title     string      `gorm:"not null;column:title" json:"title"`
	Position  int         `gorm:"not null;default:0;column:position" json:"position"`
	Materials []*Material `gorm:"foreignKey:TopicID;references:ID" json:"materials,omitempty"`
	CreatedAt time.Time   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (Topic) TableName() string { return "topic" }

type Material struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TopicID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"topic_id"`
	Title       string         `gorm:"not null;column:title" json:"title"`
	ExternalURL string         `gorm:"column:external_url" json:"external_url,omitempty"`
	Weight      float64        `gorm:"not null;default:0;column:weight" json:"weight"`
	Deadline    *time.Time     `gorm:"column:deadline" json:"deadline,omitempty"`
	Position    int            `gorm:"not null;default:0;column:position" json:"position"`
	Metadata    datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	// Optional binary attachment, stored on the row.
	AttachmentName string `gorm:"column:attachment_name" json:"attachment_name,omitempty"`
	AttachmentMIME string `gorm:"column:attachment_mime" json:"attachment_mime,omitempty"`
	AttachmentData []byte `gorm:"column:attachment_data" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Material) TableName() string { return "material" }

func (m *Material) HasAttachment() bool { return len(m.AttachmentData) > 0 }
