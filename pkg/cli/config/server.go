package config

import (
	"fmt"

	"github.com/urfave/cli/v3"
)

// Server holds the liveness HTTP surface configuration
type Server struct {
	Port int64
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "port",
			Usage:       "Port for the liveness HTTP server",
			Value:       8080,
			Destination: &c.Port,
			Sources:     cli.EnvVars("TEMPLATEBOT_PORT"),
		},
	}
}

// Addr returns the listen address
func (c *Server) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
