// Package resources embeds the default prompt library, response schemas and a
// sample report so the binary runs without a resources directory on disk.
package resources

import "embed"

//go:embed prompts schemas samples
var FS embed.FS

// SampleReportPath is a complete report that satisfies the schema. The stub
// provider serves it and tests use it as a fixture.
const SampleReportPath = "samples/property_report.json"
