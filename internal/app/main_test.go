package app

import (
	"testing"

	apptest "github.com/repdesk/repdesk/testing"
)

func TestMain(m *testing.M) {
	apptest.Main(m)
}
