package models

// Shop is a seller storefront. A user owns at most one shop.
type Shop struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"type:varchar(50);not null" json:"name" validate:"required"`
	URL    string `gorm:"type:varchar(200)" json:"url" validate:"omitempty,url"`
	UserID *uint  `gorm:"uniqueIndex" json:"user_id"`
	State  bool   `gorm:"not null" json:"state"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Shop
func (Shop) TableName() string {
	return "shops"
}

// Category groups products; a category may be offered by many shops
type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"type:varchar(40);not null" json:"name" validate:"required"`
	Shops []Shop `gorm:"many2many:category_shops" json:"shops,omitempty" validate:"-"`
}

// TableName returns the table name for Category
func (Category) TableName() string {
	return "categories"
}
