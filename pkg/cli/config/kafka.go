package config

import (
	"crypto/tls"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
	"github.com/lsst-sqre/templatebot-aide/pkg/domain/types"
	infrakafka "github.com/lsst-sqre/templatebot-aide/pkg/infra/kafka"
)

// Kafka holds message bus and schema registry configuration
type Kafka struct {
	Broker        string
	RegistryURL   string
	Protocol      string
	ClusterCA     string
	ClientCert    string
	ClientKey     string
	TopicsVersion string
	GroupID       string
}

// Flags returns CLI flags for Kafka configuration. Env names match the
// deployed service so existing manifests keep working.
func (c *Kafka) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "kafka-broker",
			Usage:       "Kafka bootstrap broker (host:port)",
			Required:    true,
			Destination: &c.Broker,
			Sources:     cli.EnvVars("KAFKA_BROKER"),
		},
		&cli.StringFlag{
			Name:        "registry-url",
			Usage:       "Schema registry URL",
			Required:    true,
			Destination: &c.RegistryURL,
			Sources:     cli.EnvVars("REGISTRY_URL"),
		},
		&cli.StringFlag{
			Name:        "kafka-protocol",
			Usage:       "Broker protocol (plaintext or ssl)",
			Value:       "plaintext",
			Destination: &c.Protocol,
			Sources:     cli.EnvVars("KAFKA_PROTOCOL"),
		},
		&cli.StringFlag{
			Name:        "kafka-cluster-ca",
			Usage:       "Path to the cluster CA certificate (ssl protocol)",
			Destination: &c.ClusterCA,
			Sources:     cli.EnvVars("KAFKA_CLUSTER_CA"),
		},
		&cli.StringFlag{
			Name:        "kafka-client-cert",
			Usage:       "Path to the client certificate (ssl protocol)",
			Destination: &c.ClientCert,
			Sources:     cli.EnvVars("KAFKA_CLIENT_CERT"),
		},
		&cli.StringFlag{
			Name:        "kafka-client-key",
			Usage:       "Path to the client key (ssl protocol)",
			Destination: &c.ClientKey,
			Sources:     cli.EnvVars("KAFKA_CLIENT_KEY"),
		},
		&cli.StringFlag{
			Name:        "topics-version",
			Usage:       "Version suffix for topic names in staging environments",
			Destination: &c.TopicsVersion,
			Sources:     cli.EnvVars("TEMPLATEBOT_TOPICS_VERSION"),
		},
		&cli.StringFlag{
			Name:        "group-id",
			Usage:       "Consumer group ID override",
			Destination: &c.GroupID,
			Sources:     cli.EnvVars("TEMPLATEBOT_GROUP_ID"),
		},
	}
}

// Topics resolves the deployment's topic names, applying the version suffix
func (c *Kafka) Topics() model.Topics {
	suffix := ""
	if c.TopicsVersion != "" {
		suffix = "-" + c.TopicsVersion
	}
	return model.Topics{
		Prerender:   "templatebot-prerender" + suffix,
		Postrender:  "templatebot-postrender" + suffix,
		RenderReady: "templatebot-render_ready" + suffix,
	}
}

// ConsumerGroup resolves the consumer group ID
func (c *Kafka) ConsumerGroup() string {
	if c.GroupID != "" {
		return c.GroupID
	}
	if c.TopicsVersion != "" {
		return types.ServiceName + "_" + c.TopicsVersion
	}
	return types.ServiceName
}

// TLSConfig loads the broker TLS configuration. With the ssl protocol,
// missing material is a fatal configuration error; with plaintext it
// returns nil.
func (c *Kafka) TLSConfig() (*tls.Config, error) {
	if !strings.EqualFold(c.Protocol, "ssl") {
		return nil, nil
	}
	material := infrakafka.TLSMaterial{
		ClusterCAPath:  c.ClusterCA,
		ClientCertPath: c.ClientCert,
		ClientKeyPath:  c.ClientKey,
	}
	return material.Load()
}
