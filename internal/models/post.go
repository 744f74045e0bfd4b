package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	BaseModel
	Text     string     `json:"text" gorm:"type:text;not null"`
	PubDate  time.Time  `json:"pubDate" gorm:"<-:create;not null;index"`
	AuthorID uuid.UUID  `json:"authorID" gorm:"type:uuid;not null;index"`
	Author   User       `json:"author" gorm:"foreignKey:AuthorID"`
	GroupID  *uuid.UUID `json:"groupID,omitempty" gorm:"type:uuid;index"`
	Group    *Group     `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}

func (p Post) TableName() string {
	return "posts"
}

// Excerpt returns the first 15 characters of the text.
func (p Post) Excerpt() string {
	runes := []rune(p.Text)
	if len(runes) <= 15 {
		return p.Text
	}
	return string(runes[:15])
}
