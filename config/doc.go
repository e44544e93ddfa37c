// Package config loads the process configuration from defaults, an optional
// YAML file and environment variables. The result is validated once at
// startup and passed by pointer to the components that need it; nothing
// mutates it afterwards.
package config
