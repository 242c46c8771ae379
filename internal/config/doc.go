// Package config provides configuration management for the pattern demos and the router worker.
//
// Configuration is read from an optional .env file in the working directory and then
// from environment variables, and validated on startup. All options except the model
// API key have defaults suitable for development; temperature defaults to 0 so every
// flow runs deterministic-leaning.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
package config
