package models

// Comment is a reader comment on a BlogPost. Comments are removed with their post.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   *User     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"author,omitempty"`
	PostID   uint      `gorm:"not null;index" json:"post_id"`
	Post     *BlogPost `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}
