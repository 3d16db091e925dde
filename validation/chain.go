// Package validation evaluates business rules against a loaded license.
//
// Chains are values: every call returns a new chain and leaves the receiver
// as it was, so a partially configured chain can branch. Each check runs when
// it is added and never stops later checks from running.
package validation

import (
	"crypto"
	"fmt"
	"time"

	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/signing"
)

// VerifyFunc checks the signature of a license.
type VerifyFunc func(l *model.License) (bool, error)

// Chain accumulates validation failures for a License.
type Chain struct {
	license *model.License
	errs    []model.ValidationFailure
}

// For starts a chain over l.
func For(l *model.License) Chain {
	return Chain{license: l}
}

func (c Chain) add(f model.ValidationFailure) Chain {
	errs := make([]model.ValidationFailure, len(c.errs), len(c.errs)+1)
	copy(errs, c.errs)

	return Chain{license: c.license, errs: append(errs, f)}
}

// Signature fails with InvalidSignature unless l verifies against pub.
// An unusable key counts as a failed verification.
func (c Chain) Signature(pub crypto.PublicKey) Chain {
	return c.SignatureWith(func(l *model.License) (bool, error) {
		return signing.Verify(l, pub)
	})
}

// SignatureString is Signature with a base64 PKIX public key.
func (c Chain) SignatureString(encoded string) Chain {
	pub, err := keys.FromPublicKeyString(encoded)
	if err != nil {
		return c.add(invalidSignature(err))
	}

	return c.Signature(pub)
}

// SignatureWith fails with InvalidSignature unless verify accepts the license.
func (c Chain) SignatureWith(verify VerifyFunc) Chain {
	if c.license == nil {
		return c.add(invalidSignature(errMissingLicense))
	}

	ok, err := verify(c.license)
	if err != nil {
		return c.add(invalidSignature(err))
	}

	if !ok {
		return c.add(invalidSignature(nil))
	}

	return c
}

// Expiration is ExpirationAt(time.Now()).
func (c Chain) Expiration() Chain {
	return c.ExpirationAt(time.Now())
}

// ExpirationAt fails with LicenseExpired when now is after the expiration.
// A license is still valid at the exact expiration instant.
func (c Chain) ExpirationAt(now time.Time) Chain {
	if c.license == nil || now.After(c.license.Expiration) {
		return c.add(model.ValidationFailure{
			Code:         model.LicenseExpired,
			Message:      "Licensing for this product has expired!",
			HowToResolve: "Your license is expired. Please contact your distributor or vendor to renew the license.",
		})
	}

	return c
}

// TypeIs fails with TypeMismatch unless the license type is t.
func (c Chain) TypeIs(t model.LicenseType, message ...string) Chain {
	got := c.licenseType()
	if got == t {
		return c
	}

	return c.add(model.ValidationFailure{
		Code:    model.TypeMismatch,
		Message: messageOr(message, fmt.Sprintf("license requires %s, got %s", t, got)),
	})
}

// TypeNot fails with TypeMismatch when the license type is t.
func (c Chain) TypeNot(t model.LicenseType, message ...string) Chain {
	if c.license != nil && c.license.Type != t {
		return c
	}

	return c.add(model.ValidationFailure{
		Code:    model.TypeMismatch,
		Message: messageOr(message, fmt.Sprintf("license cannot be %s", t)),
	})
}

// NameIs fails with NameMismatch unless the customer name is name.
func (c Chain) NameIs(name string, message ...string) Chain {
	got := c.customerName()
	if c.license != nil && got == name {
		return c
	}

	return c.add(model.ValidationFailure{
		Code:    model.NameMismatch,
		Message: messageOr(message, fmt.Sprintf("license name %q does not match %s", got, name)),
	})
}

// NameNot fails with NameMismatch when the customer name is name.
func (c Chain) NameNot(name string, message ...string) Chain {
	got := c.customerName()
	if c.license != nil && got != name {
		return c
	}

	return c.add(model.ValidationFailure{
		Code:    model.NameMismatch,
		Message: messageOr(message, fmt.Sprintf("license name should not be %q", got)),
	})
}

// AssertThat records failure exactly as given unless pred holds.
// CustomFailure builds a descriptor with the CustomAssertionFailed code.
func (c Chain) AssertThat(pred func(l *model.License) bool, failure model.ValidationFailure) Chain {
	if pred(c.license) {
		return c
	}

	return c.add(failure)
}

// When runs action once, right now, if pred holds. It never records a failure.
func (c Chain) When(pred func(l *model.License) bool, action func(l *model.License)) Chain {
	if pred(c.license) {
		action(c.license)
	}

	return c
}

// Evaluate returns every recorded failure in check order. Calling it again
// returns an equal result and runs nothing.
func (c Chain) Evaluate() model.ValidationResult[*model.License] {
	errs := make([]model.ValidationFailure, len(c.errs))
	copy(errs, c.errs)

	return model.ValidationResult[*model.License]{Errors: errs, Subject: c.license}
}

func (c Chain) licenseType() model.LicenseType {
	if c.license == nil {
		return ""
	}

	return c.license.Type
}

func (c Chain) customerName() string {
	if c.license == nil || c.license.Customer == nil {
		return ""
	}

	return c.license.Customer.Name
}
