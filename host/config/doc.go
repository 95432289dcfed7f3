// Package config defines the YAML/JSON configuration model of the node host
// together with helpers to load it from a local path or URL, apply
// environment overrides and validate it.
package config
