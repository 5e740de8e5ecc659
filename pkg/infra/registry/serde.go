// Package registry implements Confluent wire-format serialization against
// a schema registry: a zero magic byte, a big-endian schema ID, then the
// Avro binary encoding.
package registry

import (
	"encoding/binary"

	"github.com/m-mizutani/goerr/v2"
	"github.com/riferrei/srclient"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

const (
	wireMagicByte  = byte(0)
	wireHeaderSize = 5
)

// Serializer encodes render_ready events against the schema fetched once at
// startup for the configured subject.
type Serializer struct {
	schema *srclient.Schema
}

// NewSerializer fetches the latest schema for the subject. A missing schema
// is fatal at startup.
func NewSerializer(client srclient.ISchemaRegistryClient, subject string) (*Serializer, error) {
	schema, err := client.GetLatestSchema(subject)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch schema for subject",
			goerr.V("subject", subject))
	}
	return &Serializer{schema: schema}, nil
}

// SchemaID returns the registry ID of the serializer's schema
func (s *Serializer) SchemaID() int {
	return s.schema.ID()
}

// Serialize encodes an event into the wire format
func (s *Serializer) Serialize(event *model.TemplateEvent) ([]byte, error) {
	native := encodeEvent(event)

	avroData, err := s.schema.Codec().BinaryFromNative(nil, native)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode event",
			goerr.V("schema_id", s.schema.ID()),
			goerr.V("template_name", event.TemplateName))
	}

	wire := make([]byte, wireHeaderSize, wireHeaderSize+len(avroData))
	wire[0] = wireMagicByte
	binary.BigEndian.PutUint32(wire[1:wireHeaderSize], uint32(s.schema.ID()))
	return append(wire, avroData...), nil
}

// Deserializer decodes schema-identified messages, resolving schemas by ID
// through the registry client's cache.
type Deserializer struct {
	client srclient.ISchemaRegistryClient
}

// NewDeserializer creates a Deserializer
func NewDeserializer(client srclient.ISchemaRegistryClient) *Deserializer {
	return &Deserializer{client: client}
}

// Deserialize decodes a wire-format payload into an event, returning the
// schema ID for logging.
func (d *Deserializer) Deserialize(data []byte) (*model.TemplateEvent, int, error) {
	if len(data) < wireHeaderSize {
		return nil, 0, goerr.New("message shorter than wire header",
			goerr.V("size", len(data)))
	}
	if data[0] != wireMagicByte {
		return nil, 0, goerr.New("unexpected magic byte",
			goerr.V("magic", data[0]))
	}

	schemaID := int(binary.BigEndian.Uint32(data[1:wireHeaderSize]))
	schema, err := d.client.GetSchema(schemaID)
	if err != nil {
		return nil, schemaID, goerr.Wrap(err, "failed to resolve schema",
			goerr.V("schema_id", schemaID))
	}

	native, _, err := schema.Codec().NativeFromBinary(data[wireHeaderSize:])
	if err != nil {
		return nil, schemaID, goerr.Wrap(err, "failed to decode event",
			goerr.V("schema_id", schemaID))
	}

	event, err := decodeEvent(native)
	if err != nil {
		return nil, schemaID, err
	}
	return event, schemaID, nil
}
