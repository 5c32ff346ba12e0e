package cli

import (
	"encoding/json"
	"strings"

	"github.com/vburojevic/obcall/internal/domain"
)

// SchemaCmd outputs JSON Schema for obcall NDJSON output types
type SchemaCmd struct {
	Type []string `short:"t" help:"Output types to include (record,contact,error,info,export,artifacts,deploy,session_state). Default: all"`
}

var schemaTypes = []string{"record", "contact", "error", "info", "export", "artifacts", "deploy", "session_state"}

// Run executes the schema command
func (c *SchemaCmd) Run(globals *Globals) error {
	schemas := map[string]map[string]interface{}{
		"record":        recordSchema(),
		"contact":       contactSchema(),
		"error":         errorSchema(),
		"info":          messageSchema(),
		"export":        exportSchema(),
		"artifacts":     artifactsSchema(),
		"deploy":        deploySchema(),
		"session_state": sessionStateSchema(),
	}

	typesToOutput := c.Type
	if len(typesToOutput) == 0 {
		typesToOutput = schemaTypes
	}

	defs := map[string]interface{}{}
	for _, t := range typesToOutput {
		t = strings.ToLower(strings.TrimSpace(t))
		if schema, ok := schemas[t]; ok {
			defs[t] = schema
		}
	}

	encoder := json.NewEncoder(globals.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "obcall Output Schemas",
		"description": "JSON Schema definitions for all obcall NDJSON output types",
		"definitions": defs,
	})
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func constProp(value string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "const": value}
}

func objectSchema(title, description string, props map[string]interface{}, required ...string) map[string]interface{} {
	props["schemaVersion"] = prop("integer", "Output schema version")
	return map[string]interface{}{
		"type":        "object",
		"title":       title,
		"description": description,
		"properties":  props,
		"required":    required,
	}
}

func fieldsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Status fields in canonical order",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name":  map[string]interface{}{"type": "string", "enum": domain.FieldOrder()},
				"value": prop("string", "Timestamp formatted as YYYY-MM-DD HH:MM:SS, or a verbatim provider value"),
			},
			"required": []string{"name", "value"},
		},
	}
}

func recordSchema() map[string]interface{} {
	return objectSchema("Session Record", "Snapshot of the active call session", map[string]interface{}{
		"type": constProp("record"),
		"event": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"call", "refresh", "show", "watch"},
			"description": "Command that produced the snapshot",
		},
		"contact_id":  prop("string", "Provider contact ID"),
		"instance_id": prop("string", "Contact-center instance ID"),
		"fields":      fieldsSchema(),
		"terminal":    prop("boolean", "True once the call has disconnected"),
	}, "type", "event", "contact_id", "fields", "terminal")
}

func contactSchema() map[string]interface{} {
	stamp := func(description string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "format": "date-time", "description": description}
	}
	return objectSchema("Provider Contact", "Contact detail as reported by the provider (show --remote)", map[string]interface{}{
		"type":                          constProp("contact"),
		"contact_id":                    prop("string", "Provider contact ID"),
		"initiation_timestamp":          stamp("When the contact was initiated"),
		"connected_to_system_timestamp": stamp("When the call reached the system"),
		"connected_to_agent_timestamp":  stamp("When the call reached an agent"),
		"disconnect_timestamp":          stamp("When the call ended"),
		"disconnect_reason":             prop("string", "Provider disconnect reason"),
		"detection_result":              prop("string", "Answering machine detection attribute"),
	}, "type", "contact_id")
}

func errorSchema() map[string]interface{} {
	return objectSchema("Error", "Error message from obcall", map[string]interface{}{
		"type": constProp("error"),
		"code": map[string]interface{}{
			"type":        "string",
			"description": "Error code",
			"enum": []string{
				"VALIDATION_ERROR",
				"NO_SESSION",
				"STATE_ERROR",
				"PROVIDER_ERROR",
				"PROVIDER_RETRYABLE",
				"PROVIDER_TIMEOUT",
				"INVALID_FLAGS",
				"EXPORT_FAILED",
				"PROMPT_READ_FAILED",
				"PROMPT_UPDATE_FAILED",
				"DEPLOY_FAILED",
				"INTERNAL_ERROR",
			},
		},
		"message":   prop("string", "Human-readable error description"),
		"hint":      prop("string", "Suggested next step"),
		"retryable": prop("boolean", "True if resubmitting may succeed"),
	}, "type", "code", "message")
}

func messageSchema() map[string]interface{} {
	return objectSchema("Message", "Informational or warning line", map[string]interface{}{
		"type": map[string]interface{}{
			"type": "string",
			"enum": []string{"info", "warning"},
		},
		"message": prop("string", "Message text"),
	}, "type", "message")
}

func exportSchema() map[string]interface{} {
	return objectSchema("Export", "A CSV file written by the export command", map[string]interface{}{
		"type": constProp("export"),
		"path": prop("string", "Written file path"),
		"rows": prop("integer", "Number of status rows, excluding the header"),
	}, "type", "path", "rows")
}

func artifactsSchema() map[string]interface{} {
	return objectSchema("Artifacts", "Deployment artifact presence", map[string]interface{}{
		"type": constProp("artifacts"),
		"artifacts": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":   prop("string", "Artifact file name"),
					"path":   prop("string", "Checked path"),
					"exists": prop("boolean", "True if the file exists"),
				},
			},
		},
		"all_present": prop("boolean", "True if every artifact exists"),
	}, "type", "artifacts", "all_present")
}

func deploySchema() map[string]interface{} {
	return objectSchema("Deploy", "Outcome of a stack deployment", map[string]interface{}{
		"type":    constProp("deploy"),
		"success": prop("boolean", "True if bootstrap and deploy both succeeded"),
		"stdout":  prop("string", "Captured standard output"),
		"stderr":  prop("string", "Captured standard error"),
	}, "type", "success")
}

func sessionStateSchema() map[string]interface{} {
	return objectSchema("Session State", "On-disk session state file", map[string]interface{}{
		"type":       constProp("session_state"),
		"generation": prop("integer", "Store generation, bumped on every write"),
		"record": map[string]interface{}{
			"type":        "object",
			"description": "Active session record, absent before the first call",
			"properties": map[string]interface{}{
				"contact_id":  prop("string", "Provider contact ID"),
				"instance_id": prop("string", "Contact-center instance ID"),
				"start_time":  map[string]interface{}{"type": "string", "format": "date-time"},
				"fields":      fieldsSchema(),
			},
		},
	}, "type", "generation")
}
