// Package explain drives a single explanation: cache lookup, redaction,
// prompt construction, the provider call and the optional cache write.
//
// The provider is created lazily through a factory so that cache hits work
// without credentials.
package explain
