package models

type Category struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"not null;size:256;index"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null;size:50"`

	// association
	Titles []Title `json:"-" gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string {
	return "categories"
}
