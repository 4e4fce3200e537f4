package models

import "time"

type Title struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" gorm:"not null;size:256;index"`
	Year        int        `json:"year" gorm:"not null;index"`
	Description *string    `json:"description,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty" gorm:"index"`
	CreatedAt   *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`

	// Rating is the query-time average of review scores. It is filled by the
	// repository's AVG subquery and never persisted (null when no reviews).
	Rating *float64 `json:"rating,omitempty" gorm:"->;-:migration"`

	// associations
	// A category in use must not be deletable, so the FK restricts instead of cascading.
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT;"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
	Reviews  []Review  `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
