package models

// Product is a catalog item independent of the shop selling it
type Product struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"type:varchar(80);not null" json:"name" validate:"required"`
	CategoryID uint   `gorm:"not null;index" json:"category_id" validate:"required"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Product
func (Product) TableName() string {
	return "products"
}

// ProductInfo is a shop offer of a product: price, stock and the shop's own id for it
type ProductInfo struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Model      string `gorm:"type:varchar(80)" json:"model"`
	ExternalID uint   `gorm:"not null;uniqueIndex:idx_product_infos_unique" json:"external_id"`
	ProductID  uint   `gorm:"not null;uniqueIndex:idx_product_infos_unique" json:"product_id" validate:"required"`
	ShopID     uint   `gorm:"not null;uniqueIndex:idx_product_infos_unique" json:"shop_id" validate:"required"`
	Quantity   uint   `gorm:"not null" json:"quantity"`
	Price      uint   `gorm:"not null" json:"price"`
	PriceRRC   uint   `gorm:"not null" json:"price_rrc"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Shop    *Shop    `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for ProductInfo
func (ProductInfo) TableName() string {
	return "product_infos"
}

// Parameter is a named product characteristic, e.g. "Color"
type Parameter struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(40);not null" json:"name" validate:"required"`
}

// TableName returns the table name for Parameter
func (Parameter) TableName() string {
	return "parameters"
}

// ProductParameter is the value of one parameter for one offer
type ProductParameter struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ProductInfoID uint   `gorm:"not null;uniqueIndex:idx_product_parameters_unique" json:"product_info_id" validate:"required"`
	ParameterID   uint   `gorm:"not null;uniqueIndex:idx_product_parameters_unique" json:"parameter_id" validate:"required"`
	Value         string `gorm:"type:varchar(100);not null" json:"value" validate:"required"`

	ProductInfo *ProductInfo `gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE" json:"-"`
	Parameter   *Parameter   `gorm:"foreignKey:ParameterID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for ProductParameter
func (ProductParameter) TableName() string {
	return "product_parameters"
}
