// Package document converts a License to and from its canonical XML form,
// the exact bytes covered by a signature.
package document

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	"github.com/google/uuid"
)

const rootElement = "License"

var (
	errNilLicense       = errors.New("license is nil")
	errNegativeQuantity = errors.New("quantity must not be negative")
	errInvalidUTF8      = errors.New("text is not valid UTF-8")
	errNotCanonical     = errors.New("value is not in canonical form")
)

type licenseXML struct {
	XMLName           xml.Name
	ID                *string        `xml:"Id"`
	Type              *string        `xml:"Type"`
	Expiration        *string        `xml:"Expiration"`
	Quantity          *string        `xml:"Quantity"`
	Customer          *customerXML   `xml:"Customer"`
	LicenseAttributes *attributesXML `xml:"LicenseAttributes"`
	ProductFeatures   *featuresXML   `xml:"ProductFeatures"`
	Signature         *string        `xml:"Signature"`
}

type customerXML struct {
	Name    string `xml:"Name"`
	Email   string `xml:"Email,omitempty"`
	Company string `xml:"Company,omitempty"`
}

type entryXML struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type attributesXML struct {
	Entries []entryXML `xml:"Attribute"`
}

type featuresXML struct {
	Entries []entryXML `xml:"Feature"`
}

// Canonical returns the canonical XML of l. The signature element is written
// only when includeSignature is true and a signature is present. Equal field
// values always produce identical bytes, and different values never share
// them: a license that Load could not read back, or text XML cannot carry,
// is a MalformedDocumentError.
func Canonical(l *model.License, includeSignature bool) ([]byte, error) {
	if err := check(l); err != nil {
		return nil, err
	}

	return xml.Marshal(toXML(l, includeSignature))
}

// Marshal returns the canonical XML including the signature.
func Marshal(l *model.License) ([]byte, error) {
	return Canonical(l, true)
}

// MarshalIndent is Marshal with indentation, for display only. Signatures are
// never computed over this form.
func MarshalIndent(l *model.License) ([]byte, error) {
	if err := check(l); err != nil {
		return nil, err
	}

	return xml.MarshalIndent(toXML(l, true), "", "  ")
}

// check rejects field values that have no exact canonical form.
func check(l *model.License) error {
	if l == nil {
		return errNilLicense
	}

	if !l.Type.IsValid() {
		return pkg.NewMalformedDocumentError("Type", fmt.Errorf("unknown license type %q", l.Type))
	}

	if l.Quantity < 0 {
		return pkg.NewMalformedDocumentError("Quantity", errNegativeQuantity)
	}

	if c := l.Customer; c != nil {
		for _, f := range [][2]string{{"Name", c.Name}, {"Email", c.Email}, {"Company", c.Company}} {
			if err := checkText("Customer/"+f[0], f[1]); err != nil {
				return err
			}
		}
	}

	if err := checkEntries("LicenseAttributes", l.AdditionalAttributes); err != nil {
		return err
	}

	return checkEntries("ProductFeatures", l.ProductFeatures)
}

func checkEntries(section string, a *model.Attributes) error {
	if a == nil {
		return nil
	}

	for _, e := range a.GetAll() {
		if err := checkText(section+"/"+e.Key, e.Key); err != nil {
			return err
		}

		if err := checkText(section+"/"+e.Key, e.Value); err != nil {
			return err
		}
	}

	return nil
}

// checkText fails for text that encoding/xml would silently replace.
func checkText(field, s string) error {
	if !utf8.ValidString(s) {
		return pkg.NewMalformedDocumentError(field, errInvalidUTF8)
	}

	for _, r := range s {
		if !isXMLChar(r) {
			return pkg.NewMalformedDocumentError(field, fmt.Errorf("character %U is not allowed in XML", r))
		}
	}

	return nil
}

// isXMLChar implements the Char production of XML 1.0.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

func toXML(l *model.License, includeSignature bool) licenseXML {
	id := l.ID.String()
	typ := l.Type.String()
	exp := model.NormalizeExpiration(l.Expiration).Format(constant.ExpirationLayout)
	qty := strconv.Itoa(l.Quantity)

	doc := licenseXML{
		XMLName:    xml.Name{Local: rootElement},
		ID:         &id,
		Type:       &typ,
		Expiration: &exp,
		Quantity:   &qty,
	}

	if l.Customer != nil {
		doc.Customer = &customerXML{
			Name:    l.Customer.Name,
			Email:   l.Customer.Email,
			Company: l.Customer.Company,
		}
	}

	if l.AdditionalAttributes != nil {
		doc.LicenseAttributes = &attributesXML{Entries: toEntries(l.AdditionalAttributes)}
	}

	if l.ProductFeatures != nil {
		doc.ProductFeatures = &featuresXML{Entries: toEntries(l.ProductFeatures)}
	}

	if includeSignature && len(l.Signature) > 0 {
		sig := base64.StdEncoding.EncodeToString(l.Signature)
		doc.Signature = &sig
	}

	return doc
}

func toEntries(a *model.Attributes) []entryXML {
	all := a.GetAll()
	out := make([]entryXML, 0, len(all))

	for _, e := range all {
		out = append(out, entryXML{Name: e.Key, Value: e.Value})
	}

	return out
}

// Load parses a license document. Missing optional sections come back as nil
// fields or defaults. The root element name is not checked. Id, Type,
// Expiration, Quantity and Signature must be written exactly as Canonical
// writes them.
func Load(b []byte) (*model.License, error) {
	var doc licenseXML
	if err := xml.Unmarshal(b, &doc); err != nil {
		return nil, pkg.NewMalformedDocumentError("", err)
	}

	l := model.NewLicense()

	if doc.ID != nil {
		id, err := uuid.Parse(*doc.ID)
		if err != nil {
			return nil, pkg.NewMalformedDocumentError("Id", err)
		}

		if id.String() != *doc.ID {
			return nil, pkg.NewMalformedDocumentError("Id", errNotCanonical)
		}

		l.ID = id
	}

	if doc.Type != nil {
		t, err := model.ParseLicenseType(*doc.Type)
		if err != nil {
			return nil, pkg.NewMalformedDocumentError("Type", err)
		}

		l.Type = t
	}

	if doc.Expiration != nil {
		exp, err := time.Parse(constant.ExpirationLayout, *doc.Expiration)
		if err != nil {
			return nil, pkg.NewMalformedDocumentError("Expiration", err)
		}

		exp = model.NormalizeExpiration(exp)
		if exp.Format(constant.ExpirationLayout) != *doc.Expiration {
			return nil, pkg.NewMalformedDocumentError("Expiration", errNotCanonical)
		}

		l.Expiration = exp
	}

	if doc.Quantity != nil {
		qty, err := strconv.Atoi(*doc.Quantity)
		if err != nil {
			return nil, pkg.NewMalformedDocumentError("Quantity", err)
		}

		if qty < 0 {
			return nil, pkg.NewMalformedDocumentError("Quantity", errNegativeQuantity)
		}

		if strconv.Itoa(qty) != *doc.Quantity {
			return nil, pkg.NewMalformedDocumentError("Quantity", errNotCanonical)
		}

		l.Quantity = qty
	}

	if doc.Customer != nil {
		l.Customer = &model.Customer{
			Name:    doc.Customer.Name,
			Email:   doc.Customer.Email,
			Company: doc.Customer.Company,
		}
	}

	if doc.LicenseAttributes != nil {
		l.AdditionalAttributes = fromEntries(doc.LicenseAttributes.Entries)
	}

	if doc.ProductFeatures != nil {
		l.ProductFeatures = fromEntries(doc.ProductFeatures.Entries)
	}

	if doc.Signature != nil && *doc.Signature != "" {
		sig, err := base64.StdEncoding.DecodeString(*doc.Signature)
		if err != nil {
			return nil, pkg.NewMalformedDocumentError("Signature", err)
		}

		if base64.StdEncoding.EncodeToString(sig) != *doc.Signature {
			return nil, pkg.NewMalformedDocumentError("Signature", errNotCanonical)
		}

		l.Signature = sig
	}

	return l, nil
}

func fromEntries(entries []entryXML) *model.Attributes {
	a := &model.Attributes{}
	for _, e := range entries {
		a.Add(e.Name, e.Value)
	}

	return a
}
