package report

// Schema is the JSON Schema (Draft 2020-12) for the generation run
// JSON output. It documents the structure returned by WriteJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/testgen/generate-report.schema.json",
  "title": "testgen Generation Report",
  "description": "Output schema for testgen generate --format=json",
  "type": "object",
  "required": ["version", "dry_run", "classes", "inconsistencies", "summary"],
  "additionalProperties": false,
  "properties": {
    "version": {
      "type": "string",
      "description": "testgen version"
    },
    "dry_run": {
      "type": "boolean",
      "description": "Whether the run computed output without writing it"
    },
    "classes": {
      "type": "array",
      "items": { "$ref": "#/$defs/Class" }
    },
    "inconsistencies": {
      "type": "array",
      "description": "Generated files whose content differs from the generator output (dry run only)",
      "items": { "type": "string" }
    },
    "summary": { "$ref": "#/$defs/Summary" }
  },
  "$defs": {
    "Class": {
      "type": "object",
      "required": ["class", "path", "changed", "status"],
      "additionalProperties": false,
      "properties": {
        "class": {
          "type": "string",
          "description": "Fully qualified suite test class name"
        },
        "path": {
          "type": "string",
          "description": "Output file path"
        },
        "changed": { "type": "boolean" },
        "status": {
          "type": "string",
          "enum": ["written", "out of date", "up to date"]
        }
      }
    },
    "Summary": {
      "type": "object",
      "required": ["classes", "changed", "up_to_date"],
      "additionalProperties": false,
      "properties": {
        "classes": { "type": "integer", "minimum": 0 },
        "changed": { "type": "integer", "minimum": 0 },
        "up_to_date": { "type": "boolean" }
      }
    }
  }
}`

// CFGSchema is the JSON Schema (Draft 2020-12) for the output of
// WriteCFGJSON.
const CFGSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/testgen/cfgcheck-report.schema.json",
  "title": "testgen CFG Check Report",
  "description": "Output schema for testgen cfgcheck --format=json",
  "type": "object",
  "required": ["version", "packages", "files", "functions"],
  "properties": {
    "version": { "type": "string" },
    "packages": { "type": "integer", "minimum": 0 },
    "files": { "type": "integer", "minimum": 0 },
    "functions": {
      "type": "array",
      "items": { "$ref": "#/$defs/Function" }
    }
  },
  "$defs": {
    "Function": {
      "type": "object",
      "required": ["package", "function", "location", "blocks", "live_blocks", "complexity"],
      "properties": {
        "package": { "type": "string" },
        "function": { "type": "string" },
        "location": {
          "type": "string",
          "description": "file:line:column of the function"
        },
        "blocks": { "type": "integer", "minimum": 1 },
        "live_blocks": { "type": "integer", "minimum": 0 },
        "complexity": { "type": "integer", "minimum": 1 }
      }
    }
  }
}`
