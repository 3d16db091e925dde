package model

// FailureCode classifies a failed validation check.
type FailureCode string

const (
	InvalidSignature      FailureCode = "InvalidSignature"
	LicenseExpired        FailureCode = "LicenseExpired"
	LicenseNotActive      FailureCode = "LicenseNotActive"
	ExpirationOutOfRange  FailureCode = "ExpirationOutOfRange"
	TypeMismatch          FailureCode = "TypeMismatch"
	NameMismatch          FailureCode = "NameMismatch"
	CustomAssertionFailed FailureCode = "CustomAssertionFailed"
)

// ValidationFailure describes one failed check.
type ValidationFailure struct {
	Code         FailureCode `json:"code"`
	Message      string      `json:"message"`
	HowToResolve string      `json:"howToResolve,omitempty"`
}

func (f ValidationFailure) Error() string {
	return f.Message
}

// ValidationResult holds every failure of a validation run in check order.
// Subject is the validated value and is present whether or not checks failed.
type ValidationResult[S any] struct {
	Errors  []ValidationFailure `json:"errors"`
	Subject S                   `json:"-"`
}

// HasErrors reports whether any check failed.
func (r ValidationResult[S]) HasErrors() bool {
	return len(r.Errors) > 0
}

// Messages returns the failure messages in order.
func (r ValidationResult[S]) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Message)
	}

	return out
}

// Codes returns the failure codes in order.
func (r ValidationResult[S]) Codes() []FailureCode {
	out := make([]FailureCode, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Code)
	}

	return out
}

// Verdict is the status reported for a license by long-lived clients.
type Verdict struct {
	Valid          bool                `json:"valid"`
	LicenseID      string              `json:"licenseId,omitempty"`
	Type           LicenseType         `json:"type,omitempty"`
	ExpiryDaysLeft int                 `json:"expiryDaysLeft,omitempty"`
	IsTrial        bool                `json:"isTrial,omitempty"`
	Errors         []ValidationFailure `json:"errors,omitempty"`
}
