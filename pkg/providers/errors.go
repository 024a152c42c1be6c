package providers

import "github.com/vtcode/vtcode/pkg/vterr"

// AuthenticationError reports a rejected or missing credential.
func AuthenticationError(message string, cause error) *vterr.Error {
	return vterr.Wrap(vterr.KindAuthentication, message, cause)
}

// RateLimitError reports a provider-side throttle response.
func RateLimitError(message string, cause error) *vterr.Error {
	return vterr.Wrap(vterr.KindRateLimit, message, cause)
}

// NetworkError reports a transport-level failure reaching the provider.
func NetworkError(message string, cause error) *vterr.Error {
	return vterr.Wrap(vterr.KindNetwork, message, cause)
}

// ProviderError reports a provider-reported application error.
func ProviderError(message string, cause error) *vterr.Error {
	return vterr.Wrap(vterr.KindProvider, message, cause)
}

// StreamTimeoutError reports that a stream's deadline elapsed before
// Completed was observed.
func StreamTimeoutError(message string) *vterr.Error {
	return vterr.New(vterr.KindStreamTimeout, message)
}
