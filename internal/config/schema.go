package config

// Schema is the JSON Schema (Draft 2020-12) of the suite file. Load
// validates every file against it before decoding.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/testgen/suite.schema.json",
  "title": "testgen suite",
  "description": "Declares the test groups, classes and models to generate",
  "type": "object",
  "required": ["groups"],
  "additionalProperties": false,
  "properties": {
    "groups": {
      "type": "array",
      "items": { "$ref": "#/$defs/Group" }
    }
  },
  "$defs": {
    "Annotation": {
      "type": "object",
      "required": ["type"],
      "additionalProperties": false,
      "properties": {
        "type": { "type": "string", "minLength": 1 },
        "arguments": { "type": "array", "items": { "type": "string" } }
      }
    },
    "Group": {
      "type": "object",
      "required": ["testsRoot", "testDataRoot", "classes"],
      "additionalProperties": false,
      "properties": {
        "testsRoot": { "type": "string", "minLength": 1 },
        "testDataRoot": { "type": "string", "minLength": 1 },
        "testRunnerMethod": { "type": "string" },
        "additionalRunnerArguments": { "type": "array", "items": { "type": "string" } },
        "annotations": { "type": "array", "items": { "$ref": "#/$defs/Annotation" } },
        "classes": { "type": "array", "items": { "$ref": "#/$defs/Class" } }
      }
    },
    "Class": {
      "type": "object",
      "required": ["base", "models"],
      "additionalProperties": false,
      "properties": {
        "base": {
          "type": "string",
          "minLength": 1,
          "description": "Fully qualified name of the base test class"
        },
        "suiteTestClassName": { "type": "string" },
        "useJunit4": { "type": "boolean" },
        "annotations": { "type": "array", "items": { "$ref": "#/$defs/Annotation" } },
        "models": {
          "type": "array",
          "minItems": 1,
          "items": { "$ref": "#/$defs/Model" }
        }
      }
    },
    "Model": {
      "type": "object",
      "required": ["path"],
      "additionalProperties": false,
      "properties": {
        "path": { "type": "string" },
        "recursive": { "type": "boolean" },
        "excludeParentDirs": { "type": "boolean" },
        "extension": { "type": "string" },
        "directories": { "type": "boolean" },
        "pattern": { "type": "string" },
        "excludedPattern": { "type": "string" },
        "filenameStartsLowerCase": { "type": "boolean" },
        "testMethod": { "type": "string" },
        "singleClass": { "type": "boolean" },
        "excludeDirs": { "type": "array", "items": { "type": "string" } },
        "testClassName": { "type": "string" },
        "targetBackend": {
          "type": "string",
          "enum": ["ANY", "JVM", "JVM_IR", "JS", "JS_IR", "NATIVE", "WASM"]
        },
        "skipIgnored": { "type": "boolean" },
        "deep": { "type": "integer", "minimum": 0 },
        "skipTestsForExperimentalCoroutines": { "type": "boolean" }
      }
    }
  }
}`
