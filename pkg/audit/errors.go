package audit

import "errors"

var (
	// ErrEmptySubsystem is returned when a recorder is created without a subsystem name.
	ErrEmptySubsystem = errors.New("audit: subsystem name is required")

	// ErrInvalidCapacity is returned when the ring buffer capacity is below 1.
	ErrInvalidCapacity = errors.New("audit: invalid buffer capacity")

	// ErrSinkDelivery wraps any failure to hand an event to the analytics sink.
	ErrSinkDelivery = errors.New("audit: sink delivery failed")

	// ErrBufferFull is returned by an AsyncSink whose queue is full.
	ErrBufferFull = errors.New("audit: async sink buffer is full")

	// ErrSinkClosed is returned by an AsyncSink after Close.
	ErrSinkClosed = errors.New("audit: sink is closed")
)
