// Package config resolves Parley settings from a YAML file, a .env file and
// PARLEY_* environment variables.
package config
