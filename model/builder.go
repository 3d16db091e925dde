package model

import (
	"time"

	"github.com/google/uuid"
)

// LicenseBuilder assembles a License. Each method returns a new builder and
// leaves the receiver untouched, so a partially configured builder can be
// reused as a template.
type LicenseBuilder struct {
	license *License
}

// NewLicenseBuilder starts from NewLicense defaults.
func NewLicenseBuilder() LicenseBuilder {
	return LicenseBuilder{license: NewLicense()}
}

func (b LicenseBuilder) with(fn func(l *License)) LicenseBuilder {
	var l *License
	if b.license == nil {
		l = NewLicense()
	} else {
		l = b.license.Clone()
	}

	fn(l)

	return LicenseBuilder{license: l}
}

// WithUniqueIdentifier sets the license ID.
func (b LicenseBuilder) WithUniqueIdentifier(id uuid.UUID) LicenseBuilder {
	return b.with(func(l *License) { l.ID = id })
}

// As sets the license type.
func (b LicenseBuilder) As(t LicenseType) LicenseBuilder {
	return b.with(func(l *License) { l.Type = t })
}

// ExpiresAt sets the expiration, normalized to UTC seconds.
func (b LicenseBuilder) ExpiresAt(t time.Time) LicenseBuilder {
	return b.with(func(l *License) { l.Expiration = NormalizeExpiration(t) })
}

// WithMaximumUtilization sets the licensed quantity. Negative values are clamped to zero.
func (b LicenseBuilder) WithMaximumUtilization(n int) LicenseBuilder {
	return b.with(func(l *License) { l.Quantity = max(n, 0) })
}

// LicensedTo sets the customer. Optional configure funcs may fill in the remaining fields.
func (b LicenseBuilder) LicensedTo(name, email string, configure ...func(c *Customer)) LicenseBuilder {
	return b.with(func(l *License) {
		c := &Customer{Name: name, Email: email}
		for _, fn := range configure {
			fn(c)
		}

		l.Customer = c
	})
}

// WithProductFeatures appends features in the given order.
func (b LicenseBuilder) WithProductFeatures(features ...Attribute) LicenseBuilder {
	return b.with(func(l *License) {
		if l.ProductFeatures == nil {
			l.ProductFeatures = &Attributes{}
		}

		l.ProductFeatures.AddAll(features)
	})
}

// WithAdditionalAttributes appends attributes in the given order.
func (b LicenseBuilder) WithAdditionalAttributes(attrs ...Attribute) LicenseBuilder {
	return b.with(func(l *License) {
		if l.AdditionalAttributes == nil {
			l.AdditionalAttributes = &Attributes{}
		}

		l.AdditionalAttributes.AddAll(attrs)
	})
}

// Build returns an unsigned copy of the configured license.
func (b LicenseBuilder) Build() *License {
	if b.license == nil {
		return NewLicense()
	}

	l := b.license.Clone()
	l.Signature = nil

	return l
}
