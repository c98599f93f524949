// Package config defines the relay's YAML configuration tree.
//
// Loading follows a fixed sequence: read the file, apply defaults,
// apply CHORDLAB_* environment overrides, validate. Environment
// variables always win over file values.
//
// Example:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("relay.yaml")
//	if err != nil {
//	    return err
//	}
package config
