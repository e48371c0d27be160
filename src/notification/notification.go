package notification

import "log"

const maxMessageLen = 400

// ShowWarning displays a non-blocking warning. On Windows this is a topmost
// message box; elsewhere the text is logged.
func ShowWarning(title, message string) {
	message = truncate(message)
	go func() {
		if err := showMessageBox(title, message, false); err != nil {
			log.Printf("Failed to show notification: %v", err)
		}
	}()
}

// ShowBlockingError displays an error and returns once it is dismissed.
func ShowBlockingError(title, message string) {
	if err := showMessageBox(title, truncate(message), true); err != nil {
		log.Printf("Failed to show error: %v", err)
	}
}

func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	return s[:maxMessageLen] + "..."
}
