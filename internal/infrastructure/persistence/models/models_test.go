package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCoreSchema_AutoMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(CoreSchema()...))

	for _, table := range []string{
		TableAdministrator, TableChannel, TableGlobalSettings, TableZone, TableCountry,
		TableTaxRate, TableShippingMethod, TablePaymentMethod, TableProduct,
		TableProductVariant, TableCollection, TableFacet, TableAsset,
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestBaseModel_BeforeCreate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Zone{}))

	zone := Zone{Name: "Europe"}
	require.NoError(t, db.Create(&zone).Error)
	assert.NotEqual(t, uuid.Nil, zone.ID)

	fixed := uuid.New()
	other := Zone{BaseModel: BaseModel{ID: fixed}, Name: "Asia"}
	require.NoError(t, db.Create(&other).Error)
	assert.Equal(t, fixed, other.ID)
}
