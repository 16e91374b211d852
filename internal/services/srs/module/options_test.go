package module

import (
	"strings"
	"testing"

	"stride/internal/platform/clock"
	"stride/internal/platform/config"
	perr "stride/internal/platform/errors"
)

func TestFromConfigDefaults(t *testing.T) {
	opts, err := FromConfig(config.New())
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	if opts.BatchSize != 5 || opts.BatchMax != 20 {
		t.Errorf("batch = %d/%d, want 5/20", opts.BatchSize, opts.BatchMax)
	}
	if opts.MorningTime != (clock.TimeOfDay{Hour: 9}) {
		t.Errorf("morning time = %v, want 09:00", opts.MorningTime)
	}
	if !opts.Watch {
		t.Error("watcher should default to on")
	}
}

func TestFromConfigReadsBatchMax(t *testing.T) {
	t.Setenv("CORE_SRS_BATCH_MAX", "10")
	opts, err := FromConfig(config.New())
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	if opts.BatchMax != 10 {
		t.Errorf("batch max = %d, want 10", opts.BatchMax)
	}
}

func TestFromConfigMalformedMorningTime(t *testing.T) {
	t.Setenv("CORE_SRS_MORNING_TIME", "9am")
	_, err := FromConfig(config.New())
	if !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("got %v, want a config error", err)
	}
	if !strings.Contains(err.Error(), "CORE_SRS_MORNING_TIME") {
		t.Errorf("error %q does not name the offending key", err)
	}
}
