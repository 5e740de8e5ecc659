package config

import (
	"github.com/getsentry/sentry-go"
	"github.com/urfave/cli/v3"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/types"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string
	Env string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN (error reporting disabled when empty)",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("TEMPLATEBOT_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment tag",
			Value:       "production",
			Destination: &c.Env,
			Sources:     cli.EnvVars("TEMPLATEBOT_SENTRY_ENV"),
		},
	}
}

// Configure initializes the Sentry SDK. A no-op when no DSN is set.
func (c *Sentry) Configure() (bool, error) {
	if c.DSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     types.ServiceName + "@" + types.Version,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
