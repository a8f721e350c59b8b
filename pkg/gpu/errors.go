package gpu

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCapability is returned when the driver lacks a required feature.
	ErrMissingCapability = errors.New("missing graphics capability")
	// ErrObjectCreation is returned when the driver refuses to allocate an object.
	ErrObjectCreation = errors.New("gpu object creation failed")
)

// CompileError reports a shader that failed to compile.
type CompileError struct {
	Stage ShaderStage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s shader compile failed: %s", e.Stage, strings.TrimSpace(e.Log))
}

// LinkError reports a program that failed to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("program link failed: %s", strings.TrimSpace(e.Log))
}

// GL error codes.
const (
	ErrCodeInvalidEnum                 uint32 = 0x0500
	ErrCodeInvalidValue                uint32 = 0x0501
	ErrCodeInvalidOperation            uint32 = 0x0502
	ErrCodeOutOfMemory                 uint32 = 0x0505
	ErrCodeInvalidFramebufferOperation uint32 = 0x0506
)

// Error is a driver error code surfaced by GetError.
type Error uint32

func (e Error) Error() string {
	switch uint32(e) {
	case ErrCodeInvalidEnum:
		return "GL_INVALID_ENUM"
	case ErrCodeInvalidValue:
		return "GL_INVALID_VALUE"
	case ErrCodeInvalidOperation:
		return "GL_INVALID_OPERATION"
	case ErrCodeOutOfMemory:
		return "GL_OUT_OF_MEMORY"
	case ErrCodeInvalidFramebufferOperation:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	default:
		return fmt.Sprintf("GL error 0x%04x", uint32(e))
	}
}

// maxDrain bounds DrainErrors; a lost context can report errors forever.
const maxDrain = 32

// DrainErrors collects every pending driver error.
func DrainErrors(dev Device) []error {
	var errs []error
	for i := 0; i < maxDrain; i++ {
		code := dev.GetError()
		if code == 0 {
			break
		}
		errs = append(errs, Error(code))
	}
	return errs
}

// Require fails with ErrMissingCapability unless dev has every capability.
func Require(dev Device, caps ...Capability) error {
	for _, c := range caps {
		if !dev.HasCapability(c) {
			return fmt.Errorf("%w: %s", ErrMissingCapability, c)
		}
	}
	return nil
}
