// Package config loads and validates YAML configuration for the
// notification client.
//
// Config files support ${VAR} environment expansion so tokens and URLs can
// stay out of version control.
package config
