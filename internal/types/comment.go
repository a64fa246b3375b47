package types

import (
	"time"

	"github.com/google/uuid"
)

// Comment hangs off a (course, topic, material) triple by weak reference.
// It survives independently of the author row but is removed by the
// course cascade delete.
type Comment struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"course_id"`
	TopicID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"topic_id"`
	MaterialID uuid.UUID  `gorm:"type:uuid;not null;index" json:"material_id"`
	AuthorID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Body       string     `gorm:"not null;column:body" json:"body"`
	Edited     bool       `gorm:"not null;default:false;column:edited" json:"edited"`
	EditedAt   *time.Time `gorm:"column:edited_at" json:"edited_at,omitempty"`
	Replies    []*Reply   `gorm:"foreignKey:CommentID;references:ID" json:"replies,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Comment) TableName() string { return "comment" }

type Reply struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CommentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"comment_id"`
	AuthorID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Body      string     `gorm:"not null;column:body" json:"body"`
	Edited    bool       `gorm:"not null;default:false;column:edited" json:"edited"`
	EditedAt  *time.Time `gorm:"column:edited_at" json:"edited_at,omitempty"`
	Position  int        `gorm:"not null;default:0;column:position" json:"position"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Reply) TableName() string { return "reply" }
