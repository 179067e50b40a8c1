package llmerr

// Kind identifies which error variant an *Error represents.
// A Kind is itself an error so it can be used as an errors.Is target.
type Kind int

const (
	KindBase Kind = iota
	KindOutOfMemory
	KindIO
	KindInvalidArgument
	KindStopIteration
	KindKey
	KindInvalidState
	KindRuntime
	KindActivation
	KindActivationLimitReached
	KindActivationThrottled
	KindActivationRefused
)

var kindNames = [...]string{
	KindBase:                   "LLMError",
	KindOutOfMemory:            "LLMOutOfMemoryError",
	KindIO:                     "LLMIOError",
	KindInvalidArgument:        "LLMInvalidArgumentError",
	KindStopIteration:          "LLMStopIterationError",
	KindKey:                    "LLMKeyError",
	KindInvalidState:           "LLMInvalidStateError",
	KindRuntime:                "LLMRuntimeError",
	KindActivation:             "LLMActivationError",
	KindActivationLimitReached: "LLMActivationLimitReachedError",
	KindActivationThrottled:    "LLMActivationThrottledError",
	KindActivationRefused:      "LLMActivationRefusedError",
}

// statusKinds is the status to variant table. SUCCESS is deliberately absent.
var statusKinds = map[Status]Kind{
	StatusOutOfMemory:            KindOutOfMemory,
	StatusIOError:                KindIO,
	StatusInvalidArgument:        KindInvalidArgument,
	StatusStopIteration:          KindStopIteration,
	StatusKeyError:               KindKey,
	StatusInvalidState:           KindInvalidState,
	StatusRuntimeError:           KindRuntime,
	StatusActivationError:        KindActivation,
	StatusActivationLimitReached: KindActivationLimitReached,
	StatusActivationThrottled:    KindActivationThrottled,
	StatusActivationRefused:      KindActivationRefused,
}

// Name returns the discriminant name of the kind.
func (k Kind) Name() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindBase]
	}

	return kindNames[k]
}

func (k Kind) String() string { return k.Name() }

func (k Kind) Error() string { return k.Name() }

// KindOf returns the variant for status. ok is false when the status has no
// dedicated variant, in which case KindBase is returned.
func KindOf(status Status) (kind Kind, ok bool) {
	kind, ok = statusKinds[status]
	if !ok {
		return KindBase, false
	}

	return kind, true
}
