// Package install emits OS scheduler definitions for deployments that prefer
// launchd, systemd or cron over the in-process scheduler
package install

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"stride/internal/platform/clock"
	perr "stride/internal/platform/errors"
)

// Backend names an OS scheduler
type Backend string

// Supported backends
const (
	BackendLaunchd Backend = "launchd"
	BackendSystemd Backend = "systemd"
	BackendCron    Backend = "cron"
)

// ParseBackend validates a backend name
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendLaunchd, BackendSystemd, BackendCron:
		return Backend(s), nil
	}
	return "", perr.InvalidArgf("unknown backend %q", s)
}

// PlanKind discriminates interval from daily plans
type PlanKind int

// Plan kinds
const (
	KindInterval PlanKind = iota
	KindDaily
)

// Plan describes one job for the OS scheduler
type Plan struct {
	Name     string
	Command  []string
	Kind     PlanKind
	Interval time.Duration
	Times    []clock.TimeOfDay
}

// Validate checks the plan is emittable
func (p Plan) Validate() error {
	if p.Name == "" || len(p.Command) == 0 {
		return perr.InvalidSchedulef("plan needs a name and a command")
	}
	switch p.Kind {
	case KindInterval:
		if p.Interval <= 0 {
			return perr.InvalidSchedulef("interval plan %q needs a positive interval", p.Name)
		}
	case KindDaily:
		if len(p.Times) == 0 {
			return perr.InvalidSchedulef("daily plan %q needs at least one time", p.Name)
		}
	default:
		return perr.InvalidSchedulef("plan %q has an unknown kind", p.Name)
	}
	return nil
}

// label is the reverse-DNS identifier used for launchd and systemd units
func (p Plan) label() string { return "io.stride." + p.Name }

// Launchd renders the plan as a launchd property list
func Launchd(p Plan) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	sb.WriteString("<plist version=\"1.0\">\n<dict>\n")
	fmt.Fprintf(&sb, "\t<key>Label</key>\n\t<string>%s</string>\n", p.label())

	sb.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n")
	for _, arg := range p.Command {
		fmt.Fprintf(&sb, "\t\t<string>%s</string>\n", xmlEscape(arg))
	}
	sb.WriteString("\t</array>\n")

	switch p.Kind {
	case KindInterval:
		fmt.Fprintf(&sb, "\t<key>StartInterval</key>\n\t<integer>%d</integer>\n", int(p.Interval.Seconds()))
	case KindDaily:
		if len(p.Times) == 1 {
			sb.WriteString("\t<key>StartCalendarInterval</key>\n")
			writeCalendarDict(&sb, p.Times[0], "\t")
		} else {
			sb.WriteString("\t<key>StartCalendarInterval</key>\n\t<array>\n")
			for _, t := range p.Times {
				writeCalendarDict(&sb, t, "\t\t")
			}
			sb.WriteString("\t</array>\n")
		}
	}

	sb.WriteString("</dict>\n</plist>\n")
	return sb.String(), nil
}

func writeCalendarDict(sb *strings.Builder, t clock.TimeOfDay, indent string) {
	fmt.Fprintf(sb, "%s<dict>\n", indent)
	fmt.Fprintf(sb, "%s\t<key>Hour</key>\n%s\t<integer>%d</integer>\n", indent, indent, t.Hour)
	fmt.Fprintf(sb, "%s\t<key>Minute</key>\n%s\t<integer>%d</integer>\n", indent, indent, t.Minute)
	fmt.Fprintf(sb, "%s</dict>\n", indent)
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// Systemd renders the plan as a service and timer unit pair
func Systemd(p Plan) (service, timer string, err error) {
	if err := p.Validate(); err != nil {
		return "", "", err
	}

	var svc strings.Builder
	fmt.Fprintf(&svc, "[Unit]\nDescription=stride job %s\n\n", p.Name)
	svc.WriteString("[Service]\nType=oneshot\n")
	fmt.Fprintf(&svc, "ExecStart=%s\n", strings.Join(p.Command, " "))

	var tm strings.Builder
	fmt.Fprintf(&tm, "[Unit]\nDescription=stride timer %s\n\n", p.Name)
	tm.WriteString("[Timer]\n")
	switch p.Kind {
	case KindInterval:
		fmt.Fprintf(&tm, "OnUnitActiveSec=%ds\n", int(p.Interval.Seconds()))
		tm.WriteString("OnActiveSec=0\n")
	case KindDaily:
		for _, t := range p.Times {
			fmt.Fprintf(&tm, "OnCalendar=*-*-* %02d:%02d:00\n", t.Hour, t.Minute)
		}
	}
	fmt.Fprintf(&tm, "Unit=%s.service\n\n", p.label())
	tm.WriteString("[Install]\nWantedBy=timers.target\n")

	return svc.String(), tm.String(), nil
}

// Cron renders the plan as crontab lines
func Cron(p Plan) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	cmd := strings.Join(p.Command, " ")
	switch p.Kind {
	case KindInterval:
		minutes := int(p.Interval.Seconds()) / 60
		if minutes < 1 {
			minutes = 1
		}
		return fmt.Sprintf("*/%d * * * * %s\n", minutes, cmd), nil
	default:
		var sb strings.Builder
		for _, t := range p.Times {
			fmt.Fprintf(&sb, "%d %d * * * %s\n", t.Minute, t.Hour, cmd)
		}
		return sb.String(), nil
	}
}

// Names lists the installable jobs in stable order
func Names(plans map[string]Plan) []string {
	out := make([]string, 0, len(plans))
	for n := range plans {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
