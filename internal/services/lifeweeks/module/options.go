package module

import "stride/internal/platform/config"

// Options configures the life weeks module
type Options struct {
	Enabled bool
}

// FromConfig reads options from config.Conf
func FromConfig(cfg config.Conf) Options {
	lf := cfg.Prefix("CORE_LIFEWEEKS_")
	return Options{
		Enabled: lf.MayBool("ENABLED", true),
	}
}
