package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/google/uuid"
)

// LicenseType is the commercial kind of a license.
type LicenseType string

const (
	Trial      LicenseType = "Trial"
	Standard   LicenseType = "Standard"
	Enterprise LicenseType = "Enterprise"
	Free       LicenseType = "Free"
)

var licenseTypes = []LicenseType{Trial, Standard, Enterprise, Free}

// ParseLicenseType returns the LicenseType named exactly s.
func ParseLicenseType(s string) (LicenseType, error) {
	for _, t := range licenseTypes {
		if string(t) == s {
			return t, nil
		}
	}

	return "", fmt.Errorf("unknown license type %q", s)
}

// LookupLicenseType maps a type name typed by a person, ignoring case and
// surrounding spaces. Documents use ParseLicenseType.
func LookupLicenseType(s string) (LicenseType, error) {
	for _, t := range licenseTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}

	return "", fmt.Errorf("unknown license type %q", s)
}

// IsValid reports whether t is one of the defined license types.
func (t LicenseType) IsValid() bool {
	_, err := ParseLicenseType(string(t))
	return err == nil
}

func (t LicenseType) String() string {
	return string(t)
}

// MarshalText implements encoding.TextMarshaler.
func (t LicenseType) MarshalText() ([]byte, error) {
	return []byte(t), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *LicenseType) UnmarshalText(b []byte) error {
	parsed, err := ParseLicenseType(string(b))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// Customer identifies the licensee.
type Customer struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty"`
}

// License is the tree form of a license credential.
// Signature is empty until the license is signed.
type License struct {
	ID                   uuid.UUID
	Type                 LicenseType
	Quantity             int
	Expiration           time.Time
	Customer             *Customer
	ProductFeatures      *Attributes
	AdditionalAttributes *Attributes
	Signature            []byte
}

// NewLicense returns a License with every field at its default.
func NewLicense() *License {
	return &License{
		ID:         uuid.Nil,
		Type:       Trial,
		Expiration: constant.MaxExpiration,
	}
}

// NormalizeExpiration converts t to UTC and drops sub-second precision.
func NormalizeExpiration(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// IsSigned reports whether a signature is attached.
func (l *License) IsSigned() bool {
	return l != nil && len(l.Signature) > 0
}

// Feature returns the value of a product feature and whether it is present.
func (l *License) Feature(name string) (string, bool) {
	if l == nil || l.ProductFeatures == nil {
		return "", false
	}

	return l.ProductFeatures.Lookup(name)
}

// Clone returns a deep copy.
func (l *License) Clone() *License {
	if l == nil {
		return nil
	}

	c := *l

	if l.Customer != nil {
		cust := *l.Customer
		c.Customer = &cust
	}

	c.ProductFeatures = l.ProductFeatures.Clone()
	c.AdditionalAttributes = l.AdditionalAttributes.Clone()

	if l.Signature != nil {
		c.Signature = append([]byte(nil), l.Signature...)
	}

	return &c
}
