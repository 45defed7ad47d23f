// Package config handles loading and validation of Lumen Core configuration.
//
// Configuration is loaded from a YAML file with environment variable overrides:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Loading order (later overrides earlier):
//  1. Hardcoded defaults
//  2. YAML file values
//  3. Environment variables (LUMEN_SECTION_KEY pattern)
//
// Environment variable examples:
//
//	LUMEN_ENGINE_OWNER_ID=alice
//	LUMEN_DATABASE_PATH=/var/lib/lumen/lumen.db
//	LUMEN_MQTT_HOST=broker.local
//	LUMEN_MQTT_USERNAME=lumen
//	LUMEN_MQTT_PASSWORD=secret
//	LUMEN_INFLUXDB_TOKEN=xyz
//
// Secrets (passwords, tokens) should be provided via environment variables
// rather than committed to the YAML file.
//
// Timing values for the reconciliation engine are stored as integers
// (seconds or milliseconds, noted per field) and exposed as time.Duration
// via the Get* accessor methods.
package config
