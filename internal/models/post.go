package models

// DateLayout is the layout used for BlogPost.Date, e.g. "August 24, 2025".
const DateLayout = "January 02, 2006"

// BlogPost is a post authored by an admin. Date is captured as display text at
// creation time and is never parsed back.
type BlogPost struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"size:250;uniqueIndex;not null" json:"title"`
	Subtitle string `gorm:"size:250;not null" json:"subtitle"`
	Date     string `gorm:"size:250;not null" json:"date"`
	Body     string `gorm:"type:text;not null" json:"body"`
	ImgURL   string `gorm:"column:img_url;size:250;not null" json:"img_url"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"author,omitempty"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}
