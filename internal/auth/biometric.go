package auth

import "context"

// Biometric abstracts the platform biometric facility. Real hardware
// integration lives outside this module; consumers inject their platform
// binding.
type Biometric interface {
	// HasHardware reports whether the device has a biometric sensor.
	HasHardware(ctx context.Context) (bool, error)

	// IsEnrolled reports whether the user has enrolled biometrics.
	IsEnrolled(ctx context.Context) (bool, error)

	// Authenticate shows the platform prompt and reports the outcome.
	Authenticate(ctx context.Context, prompt string) (bool, error)
}

// Unavailable is the default Biometric: no hardware, every prompt fails.
type Unavailable struct{}

func (Unavailable) HasHardware(context.Context) (bool, error) { return false, nil }
func (Unavailable) IsEnrolled(context.Context) (bool, error)  { return false, nil }
func (Unavailable) Authenticate(context.Context, string) (bool, error) {
	return false, nil
}
