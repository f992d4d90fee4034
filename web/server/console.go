package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by forwarding to the server log and
// copying each message to a per-render console channel
type WebLogger struct {
	renderID    string
	server      core.Logger
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, server core.Logger, consoleChan chan<- ConsoleMessage) *WebLogger {
	if server == nil {
		server = core.NopLogger
	}
	return &WebLogger{
		renderID:    renderID,
		server:      server,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	wl.server.Printf("[%s] %s", wl.renderID, message)

	if wl.consoleChan == nil {
		return
	}

	level := "info"
	switch {
	case strings.HasPrefix(message, "Warning"):
		level = "warning"
	case strings.HasPrefix(message, "Error"):
		level = "error"
	}

	// Never block the render on a full console
	select {
	case wl.consoleChan <- ConsoleMessage{Message: message, Timestamp: time.Now(), Level: level}:
	default:
	}
}

// drainConsole collects the messages buffered so far
func drainConsole(consoleChan <-chan ConsoleMessage) []ConsoleMessage {
	var messages []ConsoleMessage
	for {
		select {
		case msg := <-consoleChan:
			messages = append(messages, msg)
		default:
			return messages
		}
	}
}
