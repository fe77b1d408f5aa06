package entities

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email     string    `gorm:"uniqueIndex;type:varchar(254)" json:"email"`
	Username  string    `gorm:"uniqueIndex;type:varchar(150)" json:"username"`
	FirstName string    `gorm:"type:varchar(150)" json:"first_name"`
	LastName  string    `gorm:"type:varchar(150)" json:"last_name"`
	Password  string    `gorm:"type:varchar(255)" json:"-"`
	Role      string    `gorm:"type:varchar(20);default:user" json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`

	Recipes []*Recipe `gorm:"foreignKey:AuthorID"`
	Timestamp
}

// Subscription links a follower to a recipe author. The pair is unique and a
// user can never follow themselves (enforced at the service layer).
type Subscription struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FollowerID  uuid.UUID `gorm:"uniqueIndex:idx_follower_publisher" json:"follower_id"`
	PublisherID uuid.UUID `gorm:"uniqueIndex:idx_follower_publisher" json:"publisher_id"`
	CreatedAt   time.Time `gorm:"type:timestamp" json:"created_at"`

	Follower  *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Publisher *User `gorm:"foreignKey:PublisherID;constraint:OnDelete:CASCADE"`
}
