package popup

import (
	"log"
	"runtime"

	"screen-capper/src/notification"
)

// Warn reports a recoverable problem to the user without blocking the caller.
func Warn(title, text string) {
	// Get caller information for debugging
	if _, file, line, ok := runtime.Caller(1); ok {
		log.Printf("Popup.Warn called from %s:%d: %s: %q", file, line, title, truncateForLog(text, 80))
	} else {
		log.Printf("Popup.Warn: %s: %q", title, truncateForLog(text, 80))
	}
	notification.ShowWarning(title, text)
}

// Fatal reports an error the application cannot continue after and waits
// for the user to dismiss it.
func Fatal(title, text string) {
	log.Printf("Popup.Fatal: %s: %s", title, text)
	notification.ShowBlockingError(title, text)
}

func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
