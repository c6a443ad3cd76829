package wire

import "github.com/invopop/jsonschema"

// Schema publishes the JSON Schema for one of the wire payload types so the
// surrounding application can validate messages on its side of the channel.
func Schema(payload any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(payload)
}

// EnvelopeSchema publishes the schema of the outer message frame.
func EnvelopeSchema() *jsonschema.Schema {
	return Schema(Envelope{})
}
