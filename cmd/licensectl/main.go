// Command licensectl issues, signs and verifies offline licenses.
package main

import (
	"errors"
	"os"

	libErr "github.com/LerianStudio/lib-offline-license-go/error"
)

const (
	exitFailure = 1
	exitInvalid = 2
	exitBadFile = 3
	exitBadKey  = 4
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode lets scripts tell a rejected license from an unreadable one.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errLicenseInvalid):
		return exitInvalid
	case libErr.IsStructuralError(err):
		return exitBadFile
	case libErr.IsDecryptionError(err), libErr.IsKeyError(err):
		return exitBadKey
	default:
		return exitFailure
	}
}
