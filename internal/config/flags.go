package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmribeiro/recibox/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path to the local database file
//	-p string   primary store base URL
//	-s string   secondary store base URL
//	-t int      remote request timeout in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-p", "-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database file")
	fs.StringVar(&cfg.PrimaryBaseURL, "p", cfg.PrimaryBaseURL, "primary store base URL")
	fs.StringVar(&cfg.SecondaryBaseURL, "s", cfg.SecondaryBaseURL, "secondary store base URL")
	remoteTimeout := fs.Int("t", int(cfg.RemoteTimeout.Seconds()), "remote request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RemoteTimeout = time.Duration(*remoteTimeout) * time.Second
}
