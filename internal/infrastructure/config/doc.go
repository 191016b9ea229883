// Package config handles loading and validating runits configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (RUNITS_SECTION_KEY)
//   - Validation of required fields
//   - Default value handling
//
// Secrets (MQTT password, InfluxDB token) should be set through the
// environment rather than the file.
//
// Usage:
//
//	cfg, err := config.Resolve("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Registry.Policy)
package config
