// Package config handles loading and validating Switchboard configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with SWITCHBOARD_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (MQTT password, JWT secret, InfluxDB token) should be
//     set via environment variables rather than committed to the YAML file
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTT.TopicPrefix)
package config
