package main

import (
	"os"
	"strings"
)

// config holds the environment-variable-driven knobs spec.md §6 lists
// ("Environment variables"), read once at startup into a plain struct
// rather than consulted ad hoc, the CLI env-var-parsing idiom used across
// the retrieval pack's interpreter cmd/ entries (SPEC_FULL.md §1
// "Configuration").
type config struct {
	path       []string // RUNTIME_PATH, colon-separated, prepended to defaults
	startup    string   // RUNTIME_STARTUP
	noColor    bool     // RUNTIME_NO_COLOR
	threadDiag bool     // RUNTIME_THREAD_DIAG
	envDiag    bool     // RUNTIME_ENV_DIAG
}

func loadConfig() config {
	var c config
	if v := os.Getenv("RUNTIME_PATH"); v != "" {
		c.path = strings.Split(v, ":")
	}
	c.startup = os.Getenv("RUNTIME_STARTUP")
	c.noColor = envBool("RUNTIME_NO_COLOR")
	c.threadDiag = envBool("RUNTIME_THREAD_DIAG")
	c.envDiag = envBool("RUNTIME_ENV_DIAG")
	return c
}

func envBool(name string) bool {
	v := os.Getenv(name)
	return v != "" && v != "0" && strings.ToLower(v) != "false"
}
