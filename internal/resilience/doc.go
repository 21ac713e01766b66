// Package resilience provides reliability and fault tolerance patterns for the application.
//
// The package supports circuit breakers for the outbound World Bank API
// client. Failed requests are never retried automatically; a fetch failure
// always degrades to a "no data" sentinel record, and the circuit breaker
// only prevents hammering an API that is already failing.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.WorldBankConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callExternalService()
//	})
package resilience
