package singleinstance

// This file defines the API for single-instance ownership and action delegation.

import (
	"context"
	"errors"
)

// ErrResidentRefused is returned by Client.Send when the resident answered
// with an error.
var ErrResidentRefused = errors.New("resident refused request")

// Server owns the TCP endpoint and answers delegated action requests.
type Server interface {
	// Start begins listening on the first port of the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess reports the outcome of the action as a short text.
	RespondSuccess(outcome string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Request is one delegated action, named as on the command line
// ("capture", "lock", ...).
type Request struct {
	Action string
}

// Client delegates actions to a resident server.
type Client interface {
	// Send scans the port range, performs the PING handshake and delivers
	// action. If no resident is found it returns delegated=false, err=nil.
	Send(ctx context.Context, action string) (delegated bool, outcome string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
