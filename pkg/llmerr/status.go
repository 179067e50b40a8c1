package llmerr

import "strconv"

// Status is a status code returned by the engine call interface.
type Status int32

const (
	StatusSuccess                Status = 0
	StatusOutOfMemory            Status = 1
	StatusIOError                Status = 2
	StatusInvalidArgument        Status = 3
	StatusStopIteration          Status = 4
	StatusKeyError               Status = 5
	StatusInvalidState           Status = 6
	StatusRuntimeError           Status = 7
	StatusActivationError        Status = 8
	StatusActivationLimitReached Status = 9
	StatusActivationThrottled    Status = 10
	StatusActivationRefused      Status = 11
)

var statusNames = map[Status]string{
	StatusSuccess:                "SUCCESS",
	StatusOutOfMemory:            "OUT_OF_MEMORY",
	StatusIOError:                "IO_ERROR",
	StatusInvalidArgument:        "INVALID_ARGUMENT",
	StatusStopIteration:          "STOP_ITERATION",
	StatusKeyError:               "KEY_ERROR",
	StatusInvalidState:           "INVALID_STATE",
	StatusRuntimeError:           "RUNTIME_ERROR",
	StatusActivationError:        "ACTIVATION_ERROR",
	StatusActivationLimitReached: "ACTIVATION_LIMIT_REACHED",
	StatusActivationThrottled:    "ACTIVATION_THROTTLED",
	StatusActivationRefused:      "ACTIVATION_REFUSED",
}

// String returns the engine's name for the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return "UNKNOWN_STATUS(" + strconv.Itoa(int(s)) + ")"
}

// Known reports whether s is one of the enumerated statuses.
func (s Status) Known() bool {
	_, ok := statusNames[s]
	return ok
}
