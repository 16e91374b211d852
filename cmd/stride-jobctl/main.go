// Command stride-jobctl installs or removes OS scheduler definitions for
// stride jobs, for deployments that run sweeps under launchd, systemd or cron
// instead of the in-process scheduler
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"stride/internal/services/install"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  stride-jobctl install <job> --backend {launchd|systemd|cron} [--dir DIR] [--bin PATH]
  stride-jobctl uninstall <job> --backend {launchd|systemd|cron} [--dir DIR] [--bin PATH]
  stride-jobctl list
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	verb := os.Args[1]

	fs := flag.NewFlagSet("stride-jobctl", flag.ExitOnError)
	backend := fs.String("backend", "", "target scheduler: launchd, systemd or cron")
	dir := fs.String("dir", ".", "directory to write unit files into")
	bin := fs.String("bin", "/usr/local/bin/stride-core", "path to the stride-core binary")

	switch verb {
	case "list":
		plans := install.BuiltinPlans(*bin)
		fmt.Println(strings.Join(install.Names(plans), "\n"))
		return
	case "install", "uninstall":
	default:
		usage()
		os.Exit(1)
	}

	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}
	jobName := os.Args[2]
	_ = fs.Parse(os.Args[3:])

	be, err := install.ParseBackend(*backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stride-jobctl: %v\n", err)
		os.Exit(1)
	}

	plans := install.BuiltinPlans(*bin)
	plan, ok := plans[jobName]
	if !ok {
		fmt.Fprintf(os.Stderr, "stride-jobctl: unknown job %q (known: %s)\n",
			jobName, strings.Join(install.Names(plans), ", "))
		os.Exit(1)
	}

	switch verb {
	case "install":
		written, err := install.Write(plan, be, *dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stride-jobctl: %v\n", err)
			os.Exit(1)
		}
		for _, f := range written {
			fmt.Println("wrote", f)
		}
	case "uninstall":
		removed, err := install.Remove(plan, be, *dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stride-jobctl: %v\n", err)
			os.Exit(1)
		}
		for _, f := range removed {
			fmt.Println("removed", f)
		}
	}
}
