package modals

import (
	"os"
	"testing"

	"github.com/zhubert/messly/internal/logger"
)

func TestMain(m *testing.M) {
	// Keep test runs out of /tmp/messly-debug.log
	logger.Reset()
	logger.Init(os.DevNull)

	ModalWidth = 60
	ModalWidthWide = 80
	ModalInputWidth = 50
	ModalInputCharLimit = 256

	code := m.Run()

	logger.Reset()
	os.Exit(code)
}
