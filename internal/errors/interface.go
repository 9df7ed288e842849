package errors

// ErrorCode represents a unique identifier for each error type
type ErrorCode string

// Error is a coded failure from a fan control cycle, carrying optional
// data such as the failed ipmitool command line or the invalid config field
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory defines methods for creating domain errors
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
