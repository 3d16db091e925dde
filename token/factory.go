package token

import (
	"time"

	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
)

// Factory configures a LicenseKey. Every method returns a new Factory.
type Factory[T any] struct {
	key *model.LicenseKey[T]
}

// NewFactory starts from NewLicenseKey defaults with data as payload.
func NewFactory[T any](data T) Factory[T] {
	return Factory[T]{key: model.NewLicenseKey(data)}
}

func (f Factory[T]) with(fn func(k *model.LicenseKey[T])) Factory[T] {
	var k *model.LicenseKey[T]
	if f.key == nil {
		k = model.NewLicenseKey(*new(T))
	} else {
		k = f.key.Clone()
	}

	fn(k)

	return Factory[T]{key: k}
}

func (f Factory[T]) WithActivationDate(t time.Time) Factory[T] {
	return f.with(func(k *model.LicenseKey[T]) { k.SetActivationDate(t) })
}

func (f Factory[T]) WithExpirationDate(t time.Time) Factory[T] {
	return f.with(func(k *model.LicenseKey[T]) { k.SetExpirationDate(t) })
}

func (f Factory[T]) WithType(t model.LicenseType) Factory[T] {
	return f.with(func(k *model.LicenseKey[T]) { k.LicenseType = t })
}

func (f Factory[T]) WithName(name string) Factory[T] {
	return f.with(func(k *model.LicenseKey[T]) { k.LicenseName = name })
}

// WithCodec sets the payload codec used when the key is signed.
func (f Factory[T]) WithCodec(c model.PayloadCodec[T]) Factory[T] {
	return f.with(func(k *model.LicenseKey[T]) { k.UseCodec(c) })
}

// CreateLicense returns a copy of the configured key.
func (f Factory[T]) CreateLicense() *model.LicenseKey[T] {
	if f.key == nil {
		return model.NewLicenseKey(*new(T))
	}

	return f.key.Clone()
}

// CreateAndSign signs the configured key with params.
func (f Factory[T]) CreateAndSign(params *keys.SigningParameters) (*SignedLicense, error) {
	return Sign(f.CreateLicense(), params)
}
