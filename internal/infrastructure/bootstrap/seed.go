package bootstrap

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// Seed errors
var (
	ErrInvalidSeed     = errors.New("invalid seed data")
	ErrInvalidLanguage = errors.New("invalid default language")
)

//go:embed initial-data.json
var defaultSeed []byte

// CatalogKeys are the seed sections dropped before populating. Catalog data is
// managed by the storefront team, not the initial seed.
var CatalogKeys = []string{"products", "productVariants", "collections", "facets", "assets", "assetPaths"}

// SeedData is the initial-data payload used on a fresh database
type SeedData struct {
	DefaultLanguage string               `json:"defaultLanguage"`
	DefaultZone     string               `json:"defaultZone"`
	DefaultCurrency string               `json:"defaultCurrency,omitempty"`
	Countries       []SeedCountry        `json:"countries"`
	TaxRates        []SeedTaxRate        `json:"taxRates"`
	ShippingMethods []SeedShippingMethod `json:"shippingMethods"`
	PaymentMethods  []SeedPaymentMethod  `json:"paymentMethods"`

	Products        []SeedProduct    `json:"products"`
	ProductVariants []SeedVariant    `json:"productVariants"`
	Collections     []SeedCollection `json:"collections"`
	Facets          []SeedFacet      `json:"facets"`
	Assets          []SeedAsset      `json:"assets"`
	AssetPaths      []string         `json:"assetPaths"`
}

type SeedCountry struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Zone string `json:"zone"`
}

type SeedTaxRate struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

type SeedShippingMethod struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type SeedPaymentMethod struct {
	Name    string      `json:"name"`
	Handler SeedHandler `json:"handler"`
}

type SeedHandler struct {
	Code      string            `json:"code"`
	Arguments []SeedHandlerArgs `json:"arguments"`
}

type SeedHandlerArgs struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type SeedProduct struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type SeedVariant struct {
	Product string `json:"product"`
	SKU     string `json:"sku"`
	Name    string `json:"name"`
	Price   int64  `json:"price"`
}

type SeedCollection struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type SeedFacet struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type SeedAsset struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// LoadSeed reads the seed payload from path, falling back to the built-in
// payload when path does not exist, and strips catalog sections
func LoadSeed(path string) (*SeedData, bool, error) {
	raw, err := os.ReadFile(path)
	builtin := false
	if errors.Is(err, fs.ErrNotExist) {
		raw, builtin = defaultSeed, true
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to read seed file: %w", err)
	}

	data, err := ParseSeed(raw)
	if err != nil {
		return nil, builtin, err
	}
	return data, builtin, nil
}

// ParseSeed decodes a seed payload with catalog sections stripped
func ParseSeed(raw []byte) (*SeedData, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	StripCatalog(sections)

	stripped, err := json.Marshal(sections)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	var data SeedData
	if err := json.Unmarshal(stripped, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return &data, nil
}

// StripCatalog replaces every catalog section present in sections with an empty list.
// Other sections are left untouched.
func StripCatalog(sections map[string]json.RawMessage) {
	for _, key := range CatalogKeys {
		if _, ok := sections[key]; ok {
			sections[key] = json.RawMessage("[]")
		}
	}
}

// PopulateOptions control a seed run
type PopulateOptions struct {
	SuperadminIdentifier string
	SuperadminPassword   string
	RequireVerification  bool
	AutoMigrate          bool
	PasswordCost         int
}

// Populate creates the core schema (when AutoMigrate is set) and writes the seed
// data in a single transaction
func Populate(db *gorm.DB, data *SeedData, opts PopulateOptions) error {
	tag, err := language.Parse(data.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidLanguage, data.DefaultLanguage, err)
	}
	if opts.SuperadminIdentifier == "" || opts.SuperadminPassword == "" {
		return fmt.Errorf("%w: superadmin credentials are required", ErrInvalidSeed)
	}

	cost := opts.PasswordCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.SuperadminPassword), cost)
	if err != nil {
		return fmt.Errorf("failed to hash superadmin password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if opts.AutoMigrate {
			if err := tx.AutoMigrate(models.CoreSchema()...); err != nil {
				return fmt.Errorf("failed to create core schema: %w", err)
			}
		}

		zones, err := createZones(tx, data)
		if err != nil {
			return err
		}

		admin := models.Administrator{
			Identifier:   opts.SuperadminIdentifier,
			EmailAddress: opts.SuperadminIdentifier,
			PasswordHash: string(hash),
			SuperAdmin:   true,
			Verified:     !opts.RequireVerification,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to create superadmin: %w", err)
		}

		settings := models.GlobalSettings{
			AvailableLanguages:  tag.String(),
			RequireVerification: opts.RequireVerification,
		}
		if err := tx.Create(&settings).Error; err != nil {
			return fmt.Errorf("failed to create global settings: %w", err)
		}

		channel := models.Channel{
			Code:            "__default_channel__",
			Token:           uuid.NewString(),
			DefaultLanguage: tag.String(),
			CurrencyCode:    valueobject.CurrencyCode(strings.ToUpper(data.DefaultCurrency)).OrDefault().String(),
		}
		if id, ok := zones[data.DefaultZone]; ok {
			channel.DefaultZoneID = &id
		}
		if err := tx.Create(&channel).Error; err != nil {
			return fmt.Errorf("failed to create default channel: %w", err)
		}

		defaultZone, hasDefault := zones[data.DefaultZone]
		for _, rate := range data.TaxRates {
			if !hasDefault {
				return fmt.Errorf("%w: tax rates require a default zone", ErrInvalidSeed)
			}
			row := models.TaxRate{Name: rate.Name, Percentage: rate.Percentage, ZoneID: defaultZone, Enabled: true}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create tax rate %s: %w", rate.Name, err)
			}
		}

		for _, sm := range data.ShippingMethods {
			row := models.ShippingMethod{Code: slugify(sm.Name), Name: sm.Name, Price: sm.Price}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create shipping method %s: %w", sm.Name, err)
			}
		}

		for _, pm := range data.PaymentMethods {
			args, err := json.Marshal(pm.Handler.Arguments)
			if err != nil {
				return fmt.Errorf("%w: payment method %s: %v", ErrInvalidSeed, pm.Name, err)
			}
			row := models.PaymentMethod{
				Code:        slugify(pm.Name),
				Name:        pm.Name,
				HandlerCode: pm.Handler.Code,
				Arguments:   string(args),
				Enabled:     true,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create payment method %s: %w", pm.Name, err)
			}
		}

		return createCatalog(tx, data)
	})
}

// createZones creates every zone referenced by the seed and its countries
func createZones(tx *gorm.DB, data *SeedData) (map[string]uuid.UUID, error) {
	zones := make(map[string]uuid.UUID)
	ensure := func(name string) (uuid.UUID, error) {
		if id, ok := zones[name]; ok {
			return id, nil
		}
		zone := models.Zone{Name: name}
		if err := tx.Create(&zone).Error; err != nil {
			return uuid.Nil, fmt.Errorf("failed to create zone %s: %w", name, err)
		}
		zones[name] = zone.ID
		return zone.ID, nil
	}

	for _, c := range data.Countries {
		zoneID, err := ensure(c.Zone)
		if err != nil {
			return nil, err
		}
		country := models.Country{Code: c.Code, Name: c.Name, ZoneID: zoneID, Enabled: true}
		if err := tx.Create(&country).Error; err != nil {
			return nil, fmt.Errorf("failed to create country %s: %w", c.Code, err)
		}
	}
	if data.DefaultZone != "" {
		if _, err := ensure(data.DefaultZone); err != nil {
			return nil, err
		}
	}
	return zones, nil
}

func createCatalog(tx *gorm.DB, data *SeedData) error {
	products := make(map[string]uuid.UUID, len(data.Products))
	for _, p := range data.Products {
		row := models.Product{Name: p.Name, Slug: p.Slug}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create product %s: %w", p.Slug, err)
		}
		products[p.Slug] = row.ID
	}
	for _, v := range data.ProductVariants {
		productID, ok := products[v.Product]
		if !ok {
			return fmt.Errorf("%w: variant %s references unknown product %s", ErrInvalidSeed, v.SKU, v.Product)
		}
		row := models.ProductVariant{ProductID: productID, SKU: v.SKU, Name: v.Name, Price: v.Price}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create variant %s: %w", v.SKU, err)
		}
	}
	for _, c := range data.Collections {
		if err := tx.Create(&models.Collection{Name: c.Name, Slug: c.Slug}).Error; err != nil {
			return fmt.Errorf("failed to create collection %s: %w", c.Slug, err)
		}
	}
	for _, f := range data.Facets {
		if err := tx.Create(&models.Facet{Code: f.Code, Name: f.Name}).Error; err != nil {
			return fmt.Errorf("failed to create facet %s: %w", f.Code, err)
		}
	}
	for _, a := range data.Assets {
		if err := tx.Create(&models.Asset{Name: a.Name, Source: a.Source}).Error; err != nil {
			return fmt.Errorf("failed to create asset %s: %w", a.Name, err)
		}
	}
	return nil
}

func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
