package model

import (
	"testing"
	"time"

	"github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewLicense_Defaults(t *testing.T) {
	l := NewLicense()

	assert.Equal(t, uuid.Nil, l.ID)
	assert.Equal(t, Trial, l.Type)
	assert.Zero(t, l.Quantity)
	assert.Equal(t, constant.MaxExpiration, l.Expiration)
	assert.Nil(t, l.Customer)
	assert.False(t, l.IsSigned())
}

func TestLicenseBuilder_ValueSemantics(t *testing.T) {
	base := NewLicenseBuilder().
		As(Standard).
		WithProductFeatures(Attribute{"Sales", "yes"})

	a := base.WithMaximumUtilization(3).Build()
	b := base.WithProductFeatures(Attribute{"Billing", "no"}).Build()
	c := base.Build()

	assert.Equal(t, 3, a.Quantity)
	assert.Zero(t, c.Quantity)
	assert.Equal(t, 1, a.ProductFeatures.Len())
	assert.Equal(t, 2, b.ProductFeatures.Len())
	assert.Equal(t, 1, c.ProductFeatures.Len())
}

func TestLicenseBuilder_Fields(t *testing.T) {
	id := uuid.New()
	exp := time.Date(2031, 5, 6, 7, 8, 9, 123456789, time.FixedZone("X", 3600))

	l := NewLicenseBuilder().
		WithUniqueIdentifier(id).
		ExpiresAt(exp).
		WithMaximumUtilization(-4).
		LicensedTo("Jane", "jane@example.com", func(c *Customer) { c.Company = "Example" }).
		WithAdditionalAttributes(Attribute{"Region", "EU"}).
		Build()

	assert.Equal(t, id, l.ID)
	assert.Equal(t, time.Date(2031, 5, 6, 6, 8, 9, 0, time.UTC), l.Expiration)
	assert.Zero(t, l.Quantity)
	assert.Equal(t, &Customer{Name: "Jane", Email: "jane@example.com", Company: "Example"}, l.Customer)
	assert.Equal(t, "EU", l.AdditionalAttributes.Get("Region"))

	var zero LicenseBuilder
	assert.Equal(t, Trial, zero.Build().Type)
}

func TestLicense_Clone(t *testing.T) {
	l := NewLicenseBuilder().LicensedTo("a", "b").WithProductFeatures(Attribute{"f", "1"}).Build()
	l.Signature = []byte{1}

	c := l.Clone()
	c.Customer.Name = "changed"
	c.ProductFeatures.Add("g", "2")
	c.Signature[0] = 2

	assert.Equal(t, "a", l.Customer.Name)
	assert.Equal(t, 1, l.ProductFeatures.Len())
	assert.Equal(t, byte(1), l.Signature[0])

	v, ok := l.Feature("f")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestParseLicenseType(t *testing.T) {
	typ, err := ParseLicenseType("Enterprise")
	assert.NoError(t, err)
	assert.Equal(t, Enterprise, typ)

	for _, s := range []string{"enterprise", " Enterprise", "Gold", ""} {
		_, err = ParseLicenseType(s)
		assert.Error(t, err, s)
	}

	typ, err = LookupLicenseType(" enterprise ")
	assert.NoError(t, err)
	assert.Equal(t, Enterprise, typ)

	_, err = LookupLicenseType("Gold")
	assert.Error(t, err)

	assert.True(t, Free.IsValid())
	assert.False(t, LicenseType("").IsValid())
	assert.False(t, LicenseType("free").IsValid())
}
