// Package desktop dispatches OS-level notifications and owns the
// notification permission tri-state that gates them.
package desktop

import (
	"runtime"

	"github.com/gen2brain/beeep"
)

// Notifier delivers a desktop notification.
type Notifier interface {
	Notify(title, message string) error
}

type notifier struct {
	appName string
}

func NewNotifier(appName string) Notifier {
	beeep.AppName = appName
	return &notifier{appName: appName}
}

func (n *notifier) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Supported reports whether the host has a desktop notification surface at
// all. Headless platforms degrade the feature to a permanent no-op.
func Supported() bool {
	switch runtime.GOOS {
	case "linux", "darwin", "windows", "freebsd", "netbsd", "openbsd":
		return true
	default:
		return false
	}
}
