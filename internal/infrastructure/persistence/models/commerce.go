package models

import "github.com/google/uuid"

// Table names follow the commerce platform schema
const (
	TableAdministrator  = "administrator"
	TableChannel        = "channel"
	TableGlobalSettings = "global_settings"
	TableZone           = "zone"
	TableCountry        = "country"
	TableTaxRate        = "tax_rate"
	TableShippingMethod = "shipping_method"
	TablePaymentMethod  = "payment_method"
	TableProduct        = "product"
	TableProductVariant = "product_variant"
	TableCollection     = "collection"
	TableFacet          = "facet"
	TableAsset          = "asset"
)

// Administrator is a platform admin account. Its table marks an initialised schema.
type Administrator struct {
	BaseModel
	Identifier   string `gorm:"type:varchar(255);not null;uniqueIndex"`
	EmailAddress string `gorm:"type:varchar(255);not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	SuperAdmin   bool   `gorm:"not null;default:false"`
	Verified     bool   `gorm:"not null;default:false"`
}

// TableName returns the table name
func (Administrator) TableName() string { return TableAdministrator }

// Channel is a sales channel
type Channel struct {
	BaseModel
	Code             string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Token            string     `gorm:"type:varchar(100);not null"`
	DefaultLanguage  string     `gorm:"type:varchar(20);not null"`
	CurrencyCode     string     `gorm:"type:varchar(3);not null"`
	PricesIncludeTax bool       `gorm:"not null;default:false"`
	DefaultZoneID    *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name
func (Channel) TableName() string { return TableChannel }

// GlobalSettings holds platform-wide options
type GlobalSettings struct {
	BaseModel
	AvailableLanguages  string `gorm:"type:varchar(255);not null"`
	RequireVerification bool   `gorm:"not null;default:true"`
}

// TableName returns the table name
func (GlobalSettings) TableName() string { return TableGlobalSettings }

// Zone groups countries for tax and shipping
type Zone struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null;uniqueIndex"`
}

// TableName returns the table name
func (Zone) TableName() string { return TableZone }

// Country is a shippable country
type Country struct {
	BaseModel
	Code    string    `gorm:"type:varchar(2);not null;uniqueIndex"`
	Name    string    `gorm:"type:varchar(255);not null"`
	ZoneID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Enabled bool      `gorm:"not null;default:true"`
}

// TableName returns the table name
func (Country) TableName() string { return TableCountry }

// TaxRate is a tax rate applied in a zone
type TaxRate struct {
	BaseModel
	Name       string    `gorm:"type:varchar(255);not null"`
	Percentage float64   `gorm:"not null"`
	ZoneID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Enabled    bool      `gorm:"not null;default:true"`
}

// TableName returns the table name
func (TaxRate) TableName() string { return TableTaxRate }

// ShippingMethod is a flat-rate shipping option. Price is in minor units.
type ShippingMethod struct {
	BaseModel
	Code  string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name  string `gorm:"type:varchar(255);not null"`
	Price int64  `gorm:"not null"`
}

// TableName returns the table name
func (ShippingMethod) TableName() string { return TableShippingMethod }

// PaymentMethod binds a payment handler code to a storefront method
type PaymentMethod struct {
	BaseModel
	Code        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name        string `gorm:"type:varchar(255);not null"`
	HandlerCode string `gorm:"type:varchar(100);not null"`
	Arguments   string `gorm:"type:text"`
	Enabled     bool   `gorm:"not null;default:true"`
}

// TableName returns the table name
func (PaymentMethod) TableName() string { return TablePaymentMethod }

// Product is a catalog product
type Product struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null"`
	Slug string `gorm:"type:varchar(255);not null;uniqueIndex"`
}

// TableName returns the table name
func (Product) TableName() string { return TableProduct }

// ProductVariant is a purchasable SKU of a product
type ProductVariant struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	SKU       string    `gorm:"column:sku;type:varchar(255);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Price     int64     `gorm:"not null"`
}

// TableName returns the table name
func (ProductVariant) TableName() string { return TableProductVariant }

// Collection is a catalog collection
type Collection struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null"`
	Slug string `gorm:"type:varchar(255);not null;uniqueIndex"`
}

// TableName returns the table name
func (Collection) TableName() string { return TableCollection }

// Facet is a catalog facet
type Facet struct {
	BaseModel
	Code string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name
func (Facet) TableName() string { return TableFacet }

// Asset is an uploaded media file
type Asset struct {
	BaseModel
	Name   string `gorm:"type:varchar(255);not null"`
	Source string `gorm:"type:varchar(1024);not null"`
}

// TableName returns the table name
func (Asset) TableName() string { return TableAsset }

// CoreSchema lists every model created on first run, in creation order
func CoreSchema() []any {
	return []any{
		&Administrator{},
		&Zone{},
		&Channel{},
		&GlobalSettings{},
		&Country{},
		&TaxRate{},
		&ShippingMethod{},
		&PaymentMethod{},
		&Product{},
		&ProductVariant{},
		&Collection{},
		&Facet{},
		&Asset{},
	}
}
