package reader

import "errors"

var (
	// ErrNoDialer is returned when a Reader is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order
	// to establish a connection to the device.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotConnected is returned when a command is sent while no
	// connection to the device is established.
	ErrNotConnected = errors.New("reader not connected")

	// ErrLoopRunning is returned when Run is called while a previous Run
	// is still active.
	ErrLoopRunning = errors.New("reader loop already running")

	// ErrEmptyCommand is returned when Send is called with a command that
	// is empty after trimming.
	ErrEmptyCommand = errors.New("empty command")
)
