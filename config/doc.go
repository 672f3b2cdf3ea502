// Package config loads the textopsd YAML configuration.
//
// Parse starts from Default, overlays the document (unknown keys are
// rejected) and validates the result. Resolve then expands ${ENV}
// references and secretref values in the fields that may carry secrets.
package config
