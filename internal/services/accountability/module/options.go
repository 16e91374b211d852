package module

import (
	"stride/internal/platform/clock"
	"stride/internal/platform/config"
	perr "stride/internal/platform/errors"
	"stride/internal/services/accountability/domain"
)

// envPrefix scopes the module's env keys
const envPrefix = "CORE_ACCOUNTABILITY_"

// Options configures the accountability module
type Options struct {
	Quiet            domain.QuietHours
	DefaultCheckTime clock.TimeOfDay
}

// FromConfig reads options from config.Conf; a malformed HH:MM value is a
// startup config error naming the offending key
func FromConfig(cfg config.Conf) (Options, error) {
	af := cfg.Prefix(envPrefix)
	start, err := timeOfDay(af, "QUIET_START", "22:00")
	if err != nil {
		return Options{}, err
	}
	end, err := timeOfDay(af, "QUIET_END", "07:00")
	if err != nil {
		return Options{}, err
	}
	check, err := timeOfDay(af, "CHECK_TIME", "19:00")
	if err != nil {
		return Options{}, err
	}
	return Options{
		Quiet:            domain.QuietHours{Start: start, End: end},
		DefaultCheckTime: check,
	}, nil
}

func timeOfDay(cfg config.Conf, key, def string) (clock.TimeOfDay, error) {
	s := cfg.MayString(key, def)
	t, err := clock.ParseTimeOfDay(s)
	if err != nil {
		return clock.TimeOfDay{}, perr.Configf("%s%s: %q is not an HH:MM time", envPrefix, key, s)
	}
	return t, nil
}
