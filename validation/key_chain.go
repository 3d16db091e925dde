package validation

import (
	"fmt"
	"time"

	"github.com/LerianStudio/lib-offline-license-go/model"
)

// KeyChain accumulates validation failures for a token LicenseKey.
// Like Chain it is a value and evaluates each check when it is added.
type KeyChain[T any] struct {
	key  *model.LicenseKey[T]
	errs []model.ValidationFailure
}

// ForKey starts a chain over k. With a nil key every check fails and no
// conditional action runs.
func ForKey[T any](k *model.LicenseKey[T]) KeyChain[T] {
	return KeyChain[T]{key: k}
}

func (c KeyChain[T]) add(code model.FailureCode, message []string, fallback string) KeyChain[T] {
	errs := make([]model.ValidationFailure, len(c.errs), len(c.errs)+1)
	copy(errs, c.errs)

	errs = append(errs, model.ValidationFailure{Code: code, Message: messageOr(message, fallback)})

	return KeyChain[T]{key: c.key, errs: errs}
}

// missing records a failure for a check that has no key to look at.
func (c KeyChain[T]) missing(code model.FailureCode, message []string) KeyChain[T] {
	return c.add(code, message, errMissingLicenseKey.Error())
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ActivatesBefore passes when the activation date is at or before d.
func (c KeyChain[T]) ActivatesBefore(d time.Time, message ...string) KeyChain[T] {
	if c.key == nil {
		return c.missing(model.LicenseNotActive, message)
	}

	if !c.key.ActivationDate().After(d) {
		return c
	}

	return c.add(model.LicenseNotActive, message,
		fmt.Sprintf("activation date %s after %s", stamp(c.key.ActivationDate()), stamp(d)))
}

// ActivatesAfter passes when the activation date is at or after d.
func (c KeyChain[T]) ActivatesAfter(d time.Time, message ...string) KeyChain[T] {
	if c.key == nil {
		return c.missing(model.LicenseNotActive, message)
	}

	if !c.key.ActivationDate().Before(d) {
		return c
	}

	return c.add(model.LicenseNotActive, message,
		fmt.Sprintf("activation date %s before %s", stamp(c.key.ActivationDate()), stamp(d)))
}

// Activation is ActivatesBefore(time.Now()): the license must already be active.
func (c KeyChain[T]) Activation(message ...string) KeyChain[T] {
	return c.ActivatesBefore(time.Now(), message...)
}

// ExpiresBefore passes when the expiration date is at or before d.
func (c KeyChain[T]) ExpiresBefore(d time.Time, message ...string) KeyChain[T] {
	if c.key == nil {
		return c.missing(model.ExpirationOutOfRange, message)
	}

	if !c.key.ExpirationDate().After(d) {
		return c
	}

	return c.add(model.ExpirationOutOfRange, message,
		fmt.Sprintf("expiration date %s after %s", stamp(c.key.ExpirationDate()), stamp(d)))
}

// ExpiresAfter passes when the expiration date is at or after d.
func (c KeyChain[T]) ExpiresAfter(d time.Time, message ...string) KeyChain[T] {
	if c.key == nil {
		return c.missing(model.LicenseExpired, message)
	}

	if !c.key.ExpirationDate().Before(d) {
		return c
	}

	return c.add(model.LicenseExpired, message,
		fmt.Sprintf("expiration date %s before %s", stamp(c.key.ExpirationDate()), stamp(d)))
}

// ExpirationAt fails with LicenseExpired when now is after the expiration date.
func (c KeyChain[T]) ExpirationAt(now time.Time) KeyChain[T] {
	return c.ExpiresAfter(now, "Licensing for this product has expired!")
}

// Expiration is ExpirationAt(time.Now()).
func (c KeyChain[T]) Expiration() KeyChain[T] {
	return c.ExpirationAt(time.Now())
}

func (c KeyChain[T]) TypeIs(t model.LicenseType, message ...string) KeyChain[T] {
	if c.key == nil {
		return c.missing(model.TypeMismatch, message)
	}

	if c.key.LicenseType == t {
		return c
	}

	return c.add(model.TypeMismatch, message, fmt.Sprintf("license requires %s, got %s", t, c.key.LicenseType))
}

func (c KeyChain[T]) TypeNot(t model.LicenseType, message ...string) KeyChain[T] {
	if c.key == nil {
		return c.missing(model.TypeMismatch, message)
	}

	if c.key.LicenseType != t {
		return c
	}

	return c.add(model.TypeMismatch, message, fmt.Sprintf("license cannot be %s", t))
}

func (c KeyChain[T]) NameIs(name string, message ...string) KeyChain[T] {
	if c.key == nil {
		return c.missing(model.NameMismatch, message)
	}

	if c.key.LicenseName == name {
		return c
	}

	return c.add(model.NameMismatch, message, fmt.Sprintf("license name %q does not match %s", c.key.LicenseName, name))
}

func (c KeyChain[T]) NameNot(name string, message ...string) KeyChain[T] {
	if c.key == nil {
		return c.missing(model.NameMismatch, message)
	}

	if c.key.LicenseName != name {
		return c
	}

	return c.add(model.NameMismatch, message, fmt.Sprintf("license name should not be %q", c.key.LicenseName))
}

// MeetsCondition fails with CustomAssertionFailed unless cond holds.
func (c KeyChain[T]) MeetsCondition(cond func(k *model.LicenseKey[T]) bool, message ...string) KeyChain[T] {
	if c.key == nil {
		return c.missing(model.CustomAssertionFailed, message)
	}

	if cond(c.key) {
		return c
	}

	return c.add(model.CustomAssertionFailed, message, "check failed custom condition")
}

// IfActivatesBefore calls action with the activation date when it is at or before d.
func (c KeyChain[T]) IfActivatesBefore(d time.Time, action func(activation time.Time)) KeyChain[T] {
	if c.key == nil {
		return c
	}

	if !c.key.ActivationDate().After(d) {
		action(c.key.ActivationDate())
	}

	return c
}

// IfActivatesAfter calls action with the activation date when it is at or after d.
func (c KeyChain[T]) IfActivatesAfter(d time.Time, action func(activation time.Time)) KeyChain[T] {
	if c.key == nil {
		return c
	}

	if !c.key.ActivationDate().Before(d) {
		action(c.key.ActivationDate())
	}

	return c
}

// IfExpiresBefore calls action with the expiration date when it is at or before d.
func (c KeyChain[T]) IfExpiresBefore(d time.Time, action func(expiration time.Time)) KeyChain[T] {
	if c.key == nil {
		return c
	}

	if !c.key.ExpirationDate().After(d) {
		action(c.key.ExpirationDate())
	}

	return c
}

// IfExpiresAfter calls action with the expiration date when it is at or after d.
func (c KeyChain[T]) IfExpiresAfter(d time.Time, action func(expiration time.Time)) KeyChain[T] {
	if c.key == nil {
		return c
	}

	if !c.key.ExpirationDate().Before(d) {
		action(c.key.ExpirationDate())
	}

	return c
}

func (c KeyChain[T]) IfTypeIs(t model.LicenseType, action func(model.LicenseType)) KeyChain[T] {
	if c.key == nil {
		return c
	}

	if c.key.LicenseType == t {
		action(c.key.LicenseType)
	}

	return c
}

func (c KeyChain[T]) IfTypeNot(t model.LicenseType, action func(model.LicenseType)) KeyChain[T] {
	if c.key == nil {
		return c
	}

	if c.key.LicenseType != t {
		action(c.key.LicenseType)
	}

	return c
}

func (c KeyChain[T]) IfNameIs(name string, action func(string)) KeyChain[T] {
	if c.key == nil {
		return c
	}

	if c.key.LicenseName == name {
		action(c.key.LicenseName)
	}

	return c
}

func (c KeyChain[T]) IfNameNot(name string, action func(string)) KeyChain[T] {
	if c.key == nil {
		return c
	}

	if c.key.LicenseName != name {
		action(c.key.LicenseName)
	}

	return c
}

func (c KeyChain[T]) IfConditionMet(cond func(k *model.LicenseKey[T]) bool, action func(k *model.LicenseKey[T])) KeyChain[T] {
	if c.key == nil {
		return c
	}

	if cond(c.key) {
		action(c.key)
	}

	return c
}

// Evaluate returns every recorded failure in check order together with the key.
func (c KeyChain[T]) Evaluate() model.ValidationResult[*model.LicenseKey[T]] {
	errs := make([]model.ValidationFailure, len(c.errs))
	copy(errs, c.errs)

	return model.ValidationResult[*model.LicenseKey[T]]{Errors: errs, Subject: c.key}
}
