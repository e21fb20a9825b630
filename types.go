package soopify

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inquiry is a contact form submission. Inquiries are only ever inserted.
type Inquiry struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Contact   string    `gorm:"not null" json:"contact"`
	Org       string    `json:"org,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Inquiry) TableName() string {
	return "contact_inquiries"
}

func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Attachment is a file uploaded to object storage and referenced by a Post.
type Attachment struct {
	ID   string `json:"id" validate:"max=64"`
	Name string `json:"name" validate:"required,max=255"`
	URL  string `json:"url" validate:"required,max=2048"`
	Size int64  `json:"size" validate:"gte=0"`
	Type string `json:"type" validate:"max=255"`
}

// Post is an announcement on the board. Content is stored as raw HTML.
type Post struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	Title       string       `gorm:"not null" json:"title"`
	Content     string       `gorm:"type:text;not null" json:"content"`
	Author      string       `gorm:"not null" json:"author"`
	Attachments []Attachment `gorm:"serializer:json;type:text" json:"attachments"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Attachments == nil {
		p.Attachments = []Attachment{}
	}
	return nil
}

// Category belongs to the external blog platform.
type Category struct {
	ID   string `gorm:"primaryKey;size:36" json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (Category) TableName() string {
	return "sn_categories"
}

// BlogPost is a post owned by the external blog platform. Only IsFeatured is
// written from this site.
type BlogPost struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	Title            string     `json:"title"`
	Excerpt          string     `json:"excerpt"`
	Content          string     `gorm:"type:text" json:"content,omitempty"`
	FeaturedImageURL *string    `json:"featured_image_url"`
	PublishedDate    *time.Time `gorm:"index" json:"published_date"`
	Status           string     `gorm:"index" json:"status"`
	Slug             string     `json:"slug"`
	IsFeatured       bool       `gorm:"not null;default:false" json:"is_featured"`
	CategoryID       *string    `gorm:"size:36" json:"category_id"`
	Category         *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (BlogPost) TableName() string {
	return "sn_posts"
}

// Page is one window of an ordered, paginated listing.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

// TotalPages returns the number of pages needed to show Total items.
func (p Page[T]) TotalPages() int {
	if p.Limit <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages() }
func (p Page[T]) PrevPage() int { return p.Page - 1 }
func (p Page[T]) NextPage() int { return p.Page + 1 }

// PageMeta carries per-page metadata into the layout template.
type PageMeta struct {
	Title       string
	Description string
	URL         string
}
