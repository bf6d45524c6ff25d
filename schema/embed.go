package schema

import _ "embed"

// ConfigV1Schema contains the JSON schema for uvcview configuration files.
//
//go:embed config.v1.json
var ConfigV1Schema []byte
