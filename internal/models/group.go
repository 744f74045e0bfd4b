package models

const GroupDescriptionMaxLength = 400

type Group struct {
	BaseModel
	Title       string `json:"title" gorm:"type:varchar(200);not null"`
	Slug        string `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:varchar(400)"`
	Posts       []Post `json:"-" gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
}

func (g Group) String() string {
	return g.Title
}
