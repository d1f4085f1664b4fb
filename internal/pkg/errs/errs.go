package errs

import "errors"

// Category sentinels for the retrieval subsystem. Call sites wrap these with
// fmt.Errorf("...: %w", ...) so errors.Is keeps working across layers.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrProvider          = errors.New("provider error")
	ErrStorage           = errors.New("storage error")
	ErrInvalid           = errors.New("invalid")
	ErrNotFound          = errors.New("not found")
)

func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsUnsupportedFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat)
}

func IsProvider(err error) bool {
	return errors.Is(err, ErrProvider)
}

func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
