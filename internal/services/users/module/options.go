package module

import (
	"stride/internal/platform/config"
)

// Options configures the users module
type Options struct {
	DefaultLocale            string
	DefaultStruggleThreshold int
	DefaultRetention         string
}

// FromConfig reads options from config.Conf
func FromConfig(cfg config.Conf) Options {
	uf := cfg.Prefix("CORE_USERS_")
	return Options{
		DefaultLocale:            uf.MayString("DEFAULT_LOCALE", "en"),
		DefaultStruggleThreshold: uf.MayInt("STRUGGLE_THRESHOLD", 3),
		DefaultRetention:         uf.MayEnum("RETENTION", "1_year", "1_month", "6_months", "1_year", "forever"),
	}
}
