// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by the server, the editor sessions
// and the SDK client while keeping configuration details separate from
// business logic.
package config
