// Package config loads the sigrelay process configuration.
//
// Configuration comes from an optional YAML file (with ${VAR} expansion),
// then SIGRELAY_* environment overrides, then defaults for anything left
// unset. Validate rejects values no node can run with.
package config
