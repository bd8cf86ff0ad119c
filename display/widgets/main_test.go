package widgets

import (
	"os"
	"testing"

	"gitlab.com/tinyland/lab/load-pulse/display/color"
)

func TestMain(m *testing.M) {
	color.ForceDisable()
	os.Exit(m.Run())
}
