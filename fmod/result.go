// Package fmod binds the FMOD Studio and Core C API at runtime and implements audio.Native
package fmod

import "fmt"

// Result is an FMOD_RESULT code
type Result int32

const (
	OK                Result = 0
	ErrFileNotFound   Result = 18
	ErrHeaderMismatch Result = 20
	ErrInitialization Result = 26
	ErrInvalidHandle  Result = 30
	ErrInvalidParam   Result = 31
	ErrMemory         Result = 38
	ErrNotReady       Result = 46
	ErrOutputInit     Result = 51
	ErrOutputNoDriver Result = 52
	ErrVersion        Result = 69
	ErrEventNotFound  Result = 74
)

var resultNames = [...]string{
	"OK", "ERR_BADCOMMAND", "ERR_CHANNEL_ALLOC", "ERR_CHANNEL_STOLEN", "ERR_DMA",
	"ERR_DSP_CONNECTION", "ERR_DSP_DONTPROCESS", "ERR_DSP_FORMAT", "ERR_DSP_INUSE", "ERR_DSP_NOTFOUND",
	"ERR_DSP_RESERVED", "ERR_DSP_SILENCE", "ERR_DSP_TYPE", "ERR_FILE_BAD", "ERR_FILE_COULDNOTSEEK",
	"ERR_FILE_DISKEJECTED", "ERR_FILE_EOF", "ERR_FILE_ENDOFDATA", "ERR_FILE_NOTFOUND", "ERR_FORMAT",
	"ERR_HEADER_MISMATCH", "ERR_HTTP", "ERR_HTTP_ACCESS", "ERR_HTTP_PROXY_AUTH", "ERR_HTTP_SERVER_ERROR",
	"ERR_HTTP_TIMEOUT", "ERR_INITIALIZATION", "ERR_INITIALIZED", "ERR_INTERNAL", "ERR_INVALID_FLOAT",
	"ERR_INVALID_HANDLE", "ERR_INVALID_PARAM", "ERR_INVALID_POSITION", "ERR_INVALID_SPEAKER", "ERR_INVALID_SYNCPOINT",
	"ERR_INVALID_THREAD", "ERR_INVALID_VECTOR", "ERR_MAXAUDIBLE", "ERR_MEMORY", "ERR_MEMORY_CANTPOINT",
	"ERR_NEEDS3D", "ERR_NEEDSHARDWARE", "ERR_NET_CONNECT", "ERR_NET_SOCKET_ERROR", "ERR_NET_URL",
	"ERR_NET_WOULD_BLOCK", "ERR_NOTREADY", "ERR_OUTPUT_ALLOCATED", "ERR_OUTPUT_CREATEBUFFER", "ERR_OUTPUT_DRIVERCALL",
	"ERR_OUTPUT_FORMAT", "ERR_OUTPUT_INIT", "ERR_OUTPUT_NODRIVERS", "ERR_PLUGIN", "ERR_PLUGIN_MISSING",
	"ERR_PLUGIN_RESOURCE", "ERR_PLUGIN_VERSION", "ERR_RECORD", "ERR_REVERB_CHANNELGROUP", "ERR_REVERB_INSTANCE",
	"ERR_SUBSOUNDS", "ERR_SUBSOUND_ALLOCATED", "ERR_SUBSOUND_CANTMOVE", "ERR_TAGNOTFOUND", "ERR_TOOMANYCHANNELS",
	"ERR_TRUNCATED", "ERR_UNIMPLEMENTED", "ERR_UNINITIALIZED", "ERR_UNSUPPORTED", "ERR_VERSION",
	"ERR_EVENT_ALREADY_LOADED", "ERR_EVENT_LIVEUPDATE_BUSY", "ERR_EVENT_LIVEUPDATE_MISMATCH", "ERR_EVENT_LIVEUPDATE_TIMEOUT", "ERR_EVENT_NOTFOUND",
	"ERR_STUDIO_UNINITIALIZED", "ERR_STUDIO_NOT_LOADED", "ERR_INVALID_STRING", "ERR_ALREADY_LOCKED", "ERR_NOT_LOCKED",
	"ERR_RECORD_DISCONNECTED", "ERR_TOOMANYSAMPLES",
}

// Name returns the FMOD_RESULT identifier without the FMOD_ prefix
func (r Result) Name() string {
	if r >= 0 && int(r) < len(resultNames) {
		return resultNames[r]
	}
	return fmt.Sprintf("RESULT_%d", int32(r))
}

// Error implements error
func (r Result) Error() string {
	return fmt.Sprintf("fmod %s (%d)", r.Name(), int32(r))
}

// Code implements audio.Coder
func (r Result) Code() int {
	return int(r)
}

// check converts a raw result to an error, nil for OK
func check(r int32) error {
	if Result(r) == OK {
		return nil
	}
	return Result(r)
}
