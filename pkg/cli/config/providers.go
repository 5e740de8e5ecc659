package config

import "github.com/urfave/cli/v3"

// GitHub holds bot credentials for the source-hosting API
type GitHub struct {
	Token    string
	Username string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token for the bot account",
			Required:    true,
			Destination: &c.Token,
			Sources:     cli.EnvVars("TEMPLATEBOT_GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-user",
			Usage:       "GitHub username of the bot account",
			Required:    true,
			Destination: &c.Username,
			Sources:     cli.EnvVars("TEMPLATEBOT_GITHUB_USER"),
		},
	}
}

// Slack holds the chat bot token
type Slack struct {
	Token string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-token",
			Usage:       "Slack bot token",
			Required:    true,
			Destination: &c.Token,
			Sources:     cli.EnvVars("SLACK_TOKEN"),
		},
	}
}

// LTD holds LSST the Docs credentials: the interactive API pair plus the
// embeddable pair that gets encrypted into CI configurations.
type LTD struct {
	Username       string
	Password       string
	EmbedAWSID     string
	EmbedAWSSecret string
	EmbedUsername  string
	EmbedPassword  string
}

// Flags returns CLI flags for LTD configuration
func (c *LTD) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "ltd-username",
			Usage:       "LSST the Docs API username",
			Required:    true,
			Destination: &c.Username,
			Sources:     cli.EnvVars("TEMPLATEBOT_LTD_USERNAME"),
		},
		&cli.StringFlag{
			Name:        "ltd-password",
			Usage:       "LSST the Docs API password",
			Required:    true,
			Destination: &c.Password,
			Sources:     cli.EnvVars("TEMPLATEBOT_LTD_PASSWORD"),
		},
		&cli.StringFlag{
			Name:        "ltd-aws-id",
			Usage:       "AWS access key ID embeddable in CI configs",
			Destination: &c.EmbedAWSID,
			Sources:     cli.EnvVars("TEMPLATEBOT_LTD_AWS_ID"),
		},
		&cli.StringFlag{
			Name:        "ltd-aws-secret",
			Usage:       "AWS secret key embeddable in CI configs",
			Destination: &c.EmbedAWSSecret,
			Sources:     cli.EnvVars("TEMPLATEBOT_LTD_AWS_SECRET"),
		},
		&cli.StringFlag{
			Name:        "ltd-username-embed",
			Usage:       "LTD username embeddable in CI configs",
			Destination: &c.EmbedUsername,
			Sources:     cli.EnvVars("TEMPLATEBOT_LTD_USERNAME_EMBED"),
		},
		&cli.StringFlag{
			Name:        "ltd-password-embed",
			Usage:       "LTD password embeddable in CI configs",
			Destination: &c.EmbedPassword,
			Sources:     cli.EnvVars("TEMPLATEBOT_LTD_PASSWORD_EMBED"),
		},
	}
}

// Travis holds CI tokens for both API endpoints
type Travis struct {
	TokenCom string
	TokenOrg string
}

// Flags returns CLI flags for Travis configuration
func (c *Travis) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "travis-token-com",
			Usage:       "Travis CI token for the .com endpoint",
			Destination: &c.TokenCom,
			Sources:     cli.EnvVars("TEMPLATEBOT_TRAVIS_TOKEN_COM"),
		},
		&cli.StringFlag{
			Name:        "travis-token-org",
			Usage:       "Travis CI token for the .org endpoint",
			Destination: &c.TokenOrg,
			Sources:     cli.EnvVars("TEMPLATEBOT_TRAVIS_TOKEN_ORG"),
		},
	}
}
