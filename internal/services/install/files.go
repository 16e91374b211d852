package install

import (
	"os"
	"path/filepath"
	"time"

	"stride/internal/platform/clock"
	perr "stride/internal/platform/errors"
)

// BuiltinPlans returns the jobs operators may hand to an OS scheduler;
// binPath is the stride-core binary the unit invokes
func BuiltinPlans(binPath string) map[string]Plan {
	return map[string]Plan{
		"retention_sweep": {
			Name:     "retention_sweep",
			Command:  []string{binPath, "--oneshot", "retention_sweep"},
			Kind:     KindInterval,
			Interval: 24 * time.Hour,
		},
		"srs_recompute": {
			Name:    "srs_recompute",
			Command: []string{binPath, "--oneshot", "srs_recompute"},
			Kind:    KindDaily,
			Times:   []clock.TimeOfDay{{Hour: 0, Minute: 5}},
		},
		"vault_sync": {
			Name:     "vault_sync",
			Command:  []string{binPath, "--oneshot", "vault_sync"},
			Kind:     KindInterval,
			Interval: time.Hour,
		},
		"life_weeks": {
			Name:    "life_weeks",
			Command: []string{binPath, "--oneshot", "life_weeks"},
			Kind:    KindDaily,
			Times:   []clock.TimeOfDay{{Hour: 6}, {Hour: 9}, {Hour: 12}, {Hour: 18}},
		},
	}
}

// Files returns the file set a backend writes for the plan, keyed by file name
func Files(p Plan, backend Backend) (map[string]string, error) {
	switch backend {
	case BackendLaunchd:
		plist, err := Launchd(p)
		if err != nil {
			return nil, err
		}
		return map[string]string{p.label() + ".plist": plist}, nil
	case BackendSystemd:
		svc, timer, err := Systemd(p)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			p.label() + ".service": svc,
			p.label() + ".timer":   timer,
		}, nil
	case BackendCron:
		line, err := Cron(p)
		if err != nil {
			return nil, err
		}
		return map[string]string{"stride-" + p.Name + ".cron": line}, nil
	}
	return nil, perr.InvalidArgf("unknown backend %q", backend)
}

// Write materialises the plan's files under dir
func Write(p Plan, backend Backend, dir string) ([]string, error) {
	files, err := Files(p, backend)
	if err != nil {
		return nil, err
	}
	var written []string
	for name, contents := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			return written, perr.Unavailablef("write %s: %v", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// Remove deletes the plan's files under dir; missing files are not an error
func Remove(p Plan, backend Backend, dir string) ([]string, error) {
	files, err := Files(p, backend)
	if err != nil {
		return nil, err
	}
	var removed []string
	for name := range files {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, perr.Unavailablef("remove %s: %v", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
