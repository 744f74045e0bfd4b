package models

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

type User struct {
	BaseModel
	Username     string   `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string   `json:"email,omitempty" gorm:"type:varchar(255)"`
	PasswordHash string   `json:"-" gorm:"type:text;not null"`
	FirstName    string   `json:"firstName" gorm:"type:varchar(150)"`
	LastName     string   `json:"lastName" gorm:"type:varchar(150)"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	Posts        []Post   `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// DisplayName falls back to the username when no full name is set.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
