package module

import (
	"stride/internal/platform/clock"
	"stride/internal/platform/config"
	perr "stride/internal/platform/errors"
)

// envPrefix scopes the module's env keys
const envPrefix = "CORE_SRS_"

// Options configures the SRS module
type Options struct {
	BatchSize   int
	BatchMax    int
	MorningTime clock.TimeOfDay
	RecomputeAt clock.TimeOfDay
	SeedMaxDays int
	Watch       bool
}

// FromConfig reads options from config.Conf; a malformed HH:MM value is a
// startup config error naming the offending key
func FromConfig(cfg config.Conf) (Options, error) {
	sf := cfg.Prefix(envPrefix)
	morning, err := timeOfDay(sf, "MORNING_TIME", "09:00")
	if err != nil {
		return Options{}, err
	}
	recompute, err := timeOfDay(sf, "RECOMPUTE_AT", "00:05")
	if err != nil {
		return Options{}, err
	}
	return Options{
		BatchSize:   sf.MayInt("BATCH_SIZE", 5),
		BatchMax:    sf.MayInt("BATCH_MAX", 20),
		MorningTime: morning,
		RecomputeAt: recompute,
		SeedMaxDays: sf.MayInt("SEED_MAX_DAYS", 30),
		Watch:       sf.MayBool("WATCH", true),
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
