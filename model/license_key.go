package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// MaxTime is the latest instant a LicenseKey can expire at.
var MaxTime = time.Date(9999, time.December, 31, 23, 59, 59, 999999900, time.UTC)

// PayloadCodec turns the opaque payload of a LicenseKey into bytes and back.
type PayloadCodec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(b []byte) (T, error)
}

// JSONCodec is the default PayloadCodec.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec[T]) Decode(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)

	return v, err
}

// LicenseKey is the claims body of a license token. Dates are kept in UTC.
type LicenseKey[T any] struct {
	activationDate time.Time
	expirationDate time.Time
	codec          PayloadCodec[T]

	LicenseType LicenseType
	LicenseName string
	KeyData     T
}

// NewLicenseKey returns a key with default dates, Standard type and the given payload.
func NewLicenseKey[T any](data T) *LicenseKey[T] {
	return &LicenseKey[T]{
		activationDate: time.Unix(0, 0).UTC(),
		expirationDate: MaxTime,
		LicenseType:    Standard,
		KeyData:        data,
	}
}

func (k *LicenseKey[T]) ActivationDate() time.Time { return k.activationDate }

func (k *LicenseKey[T]) ExpirationDate() time.Time { return k.expirationDate }

func (k *LicenseKey[T]) SetActivationDate(t time.Time) {
	k.activationDate = t.UTC()
}

func (k *LicenseKey[T]) SetExpirationDate(t time.Time) {
	k.expirationDate = t.UTC()
}

// UseCodec replaces the JSON payload codec. Set it before decoding.
func (k *LicenseKey[T]) UseCodec(c PayloadCodec[T]) {
	k.codec = c
}

func (k *LicenseKey[T]) payloadCodec() PayloadCodec[T] {
	if k.codec == nil {
		return JSONCodec[T]{}
	}

	return k.codec
}

// Clone returns a copy that shares KeyData.
func (k *LicenseKey[T]) Clone() *LicenseKey[T] {
	c := *k
	return &c
}

type licenseKeyWire struct {
	ActivationDate time.Time   `json:"ad"`
	ExpirationDate time.Time   `json:"ed"`
	LicenseType    LicenseType `json:"lt"`
	LicenseName    string      `json:"ln"`
	KeyData        string      `json:"ekd"`
}

// MarshalJSON encodes the key with the payload as base64(JSON(payload)).
func (k LicenseKey[T]) MarshalJSON() ([]byte, error) {
	payload, err := k.payloadCodec().Encode(k.KeyData)
	if err != nil {
		return nil, fmt.Errorf("encode key data: %w", err)
	}

	return json.Marshal(licenseKeyWire{
		ActivationDate: k.activationDate.UTC(),
		ExpirationDate: k.expirationDate.UTC(),
		LicenseType:    k.LicenseType,
		LicenseName:    k.LicenseName,
		KeyData:        base64.StdEncoding.EncodeToString(payload),
	})
}

// UnmarshalJSON decodes the wire form and normalizes dates to UTC. Absent
// fields take the NewLicenseKey defaults.
func (k *LicenseKey[T]) UnmarshalJSON(b []byte) error {
	w := licenseKeyWire{
		ActivationDate: time.Unix(0, 0).UTC(),
		ExpirationDate: MaxTime,
		LicenseType:    Standard,
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	var data T

	if w.KeyData != "" {
		raw, err := base64.StdEncoding.DecodeString(w.KeyData)
		if err != nil {
			return fmt.Errorf("decode key data: %w", err)
		}

		if data, err = k.payloadCodec().Decode(raw); err != nil {
			return fmt.Errorf("decode key data: %w", err)
		}
	}

	k.activationDate = w.ActivationDate.UTC()
	k.expirationDate = w.ExpirationDate.UTC()
	k.LicenseType = w.LicenseType
	k.LicenseName = w.LicenseName
	k.KeyData = data

	return nil
}
