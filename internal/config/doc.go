// Package config loads spotrip settings.
//
// Values are layered: DefaultSettings, then the TOML file at DefaultPath
// (or --config), then SPOTRIP_* environment variables via ApplyEnv. The
// command line applies its flags last and calls Validate.
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	settings.ApplyEnv(os.Getenv)
//
// A missing file is not an error; Load returns the defaults.
package config
