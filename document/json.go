package document

import (
	"encoding/json"
	"time"

	"github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	"github.com/google/uuid"
)

type licenseJSON struct {
	ID                   uuid.UUID         `json:"id"`
	Type                 model.LicenseType `json:"type"`
	Quantity             int               `json:"quantity"`
	Expiration           time.Time         `json:"expiration"`
	Customer             *model.Customer   `json:"customer,omitempty"`
	ProductFeatures      *model.Attributes `json:"productFeatures,omitempty"`
	AdditionalAttributes *model.Attributes `json:"additionalAttributes,omitempty"`
	Signature            []byte            `json:"signature,omitempty"`
}

// ToJSON returns the JSON projection of l. Attribute objects keep insertion order.
func ToJSON(l *model.License) ([]byte, error) {
	if l == nil {
		return nil, errNilLicense
	}

	return json.Marshal(licenseJSON{
		ID:                   l.ID,
		Type:                 l.Type,
		Quantity:             l.Quantity,
		Expiration:           model.NormalizeExpiration(l.Expiration),
		Customer:             l.Customer,
		ProductFeatures:      l.ProductFeatures,
		AdditionalAttributes: l.AdditionalAttributes,
		Signature:            l.Signature,
	})
}

// FromJSON parses the JSON projection. Absent fields take NewLicense defaults.
// Values without a canonical XML form are a MalformedDocumentError.
func FromJSON(b []byte) (*model.License, error) {
	doc := licenseJSON{
		Type:       model.Trial,
		Expiration: constant.MaxExpiration,
	}

	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, pkg.NewMalformedDocumentError("", err)
	}

	l := &model.License{
		ID:                   doc.ID,
		Type:                 doc.Type,
		Quantity:             doc.Quantity,
		Expiration:           model.NormalizeExpiration(doc.Expiration),
		Customer:             doc.Customer,
		ProductFeatures:      doc.ProductFeatures,
		AdditionalAttributes: doc.AdditionalAttributes,
		Signature:            doc.Signature,
	}

	if err := check(l); err != nil {
		return nil, err
	}

	return l, nil
}
