package errors

// ErrorCode is the stable, machine-facing identifier of an application failure.
// Packages declare their own codes next to the code that returns them.
type ErrorCode string

// Coder is implemented by any error that carries an ErrorCode.
type Coder interface {
	Code() ErrorCode
}

// Error is an application failure: a code, an optional message override,
// optional structured data and an optional cause.
type Error interface {
	error
	Coder
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory builds Error values. Every constructor returns a fresh value.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
