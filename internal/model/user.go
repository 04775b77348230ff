package model

import "time"

// User roles
const (
	RoleAdmin = "admin"
	RoleRater = "rater"
)

// User is an evaluator or administrator account
type User struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserName  string    `json:"username" bson:"user_name"`
	Password  string    `json:"-" bson:"password"`
	Role      string    `json:"role" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// IsAdmin reports whether the user may manage topics and view the dashboard
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserTopicMapping assigns one topic set to one rater.
// One mapping per user: re-assignment replaces the previous topic.
type UserTopicMapping struct {
	UserID    string    `json:"userId" bson:"user_id"`
	UserName  string    `json:"username" bson:"user_name"`
	TopicID   int       `json:"topicId" bson:"topic_id"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}
