package core

import (
	"errors"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrLoadFailed        = errors.New("resource load failed")
	ErrDuplicate         = errors.New("resource already exists")
	ErrDeviceFailure     = errors.New("graphics device object creation failed")
	ErrDeviceLost        = errors.New("graphics device lost")
	ErrPipelineState     = errors.New("render pipeline is not in a renderable state")
	ErrInvalidDescriptor = errors.New("invalid resource descriptor")
	ErrEmptyID           = errors.New("empty identifier")
)
