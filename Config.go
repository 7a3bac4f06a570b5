package mvc

import "os"

// Config defines a set of configuration values that dictate how the router
// and the contexts it creates behave at a global level.
type Config struct {
	Addr                     string
	DatabaseURL              string
	ProblemDetailsTypePrefix string
	DebuggingEnabled         bool
	JSONContentLengthLimit   int64
}

// ConfigFromEnv builds a Config from the process environment.  PORT defaults
// to 8080 when unset.
func ConfigFromEnv() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		Addr:                     ":" + port,
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		ProblemDetailsTypePrefix: os.Getenv("PROBLEM_TYPE_PREFIX"),
		DebuggingEnabled:         os.Getenv("DEBUG") != "",
		JSONContentLengthLimit:   1 << 20,
	}
}
