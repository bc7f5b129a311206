// Package testing prepares the process environment for packages whose tests
// construct the application. Import it for side effects.
package testing

import (
	"os"
	stdtesting "testing"
)

var testDefaults = map[string]string{
	"REPDESK_TEST_MODE": "1",
	"SESSION_SECRET":    "test-session-secret",
	"PDF_RENDERER":      "local",
	"GOTENBERG_URL":     "http://127.0.0.1:0",
	"LOG_FORMAT":        "json",
}

// applyDefaults sets every variable the caller has not set already.
func applyDefaults() {
	for key, value := range testDefaults {
		if _, ok := os.LookupEnv(key); !ok {
			_ = os.Setenv(key, value)
		}
	}
}

func init() {
	applyDefaults()
}

// Main runs the suite with the test environment in place. Packages call it
// from their own TestMain.
func Main(m *stdtesting.M) {
	applyDefaults()
	os.Exit(m.Run())
}
