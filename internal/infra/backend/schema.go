package backend

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Response-shape contracts for artifact payloads. Polled endpoints stay
// schema-free: a malformed body there counts as "not ready" for that attempt.

const transcriptSchemaJSON = `{
  "type": "object",
  "required": ["transcript", "metadata"],
  "properties": {
    "transcript": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["role", "message"],
        "properties": {
          "role": {"type": "string"},
          "message": {"type": "string"},
          "timestamp": {"type": "number"}
        }
      }
    },
    "metadata": {
      "type": "object",
      "properties": {
        "duration": {"type": "number"},
        "agentId": {"type": "string"}
      }
    }
  }
}`

const authResultSchemaJSON = `{
  "type": "object",
  "required": ["success", "isNewUser", "profile"],
  "properties": {
    "success": {"type": "boolean"},
    "isNewUser": {"type": "boolean"},
    "profile": {
      "type": "object",
      "required": ["uid", "email", "name"],
      "properties": {
        "uid": {"type": "string"},
        "email": {"type": "string"},
        "name": {"type": "string"}
      }
    }
  }
}`

var (
	transcriptSchema = jsonschema.MustCompileString("transcript.json", transcriptSchemaJSON)
	authResultSchema = jsonschema.MustCompileString("auth_result.json", authResultSchemaJSON)
)

func validateTranscript(raw []byte) error {
	return validateRaw(transcriptSchema, raw)
}

func validateAuthResult(raw []byte) error {
	return validateRaw(authResultSchema, raw)
}

func validateRaw(schema *jsonschema.Schema, raw []byte) error {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return schema.Validate(payload)
}
