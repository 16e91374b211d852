package module

import (
	"stride/internal/platform/config"
)

// Options configures the chat log module
type Options struct {
	HardLimit    int
	BodyMaxRunes int
}

// FromConfig reads options from config.Conf
func FromConfig(cfg config.Conf) Options {
	cl := cfg.Prefix("CORE_CHATLOG_")
	return Options{
		HardLimit:    cl.MayInt("HARD_LIMIT", 1000),
		BodyMaxRunes: cl.MayInt("BODY_MAX_RUNES", 4096),
	}
}
