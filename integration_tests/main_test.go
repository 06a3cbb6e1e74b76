package integration

import (
	"fmt"
	"os"
	"testing"

	"github.com/maxkimambo/windmill/integration_tests/internal/testutil"
)

func TestMain(m *testing.M) {
	if testutil.BinaryPath() == "" {
		fmt.Println("windmill binary not found. Please build the project first with 'go build -o windmill main.go'")
		os.Exit(1)
	}
	os.Exit(m.Run())
}
