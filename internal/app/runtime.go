package app

import (
	"os"
	"strconv"
	"sync/atomic"
)

// TestModeEnv disables process side effects when truthy.
const TestModeEnv = "REPDESK_TEST_MODE"

var testMode atomic.Pointer[bool]

func readTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	return err == nil && on
}

// InTestMode reports whether the binaries should exit before touching
// Postgres or Redis. The environment is read on first use.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	on := readTestMode()
	testMode.CompareAndSwap(nil, &on)
	return *testMode.Load()
}

// RefreshTestMode re-reads the environment.
func RefreshTestMode() {
	on := readTestMode()
	testMode.Store(&on)
}
