// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package exchange

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var payloadSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jschema.Schema
	schemaErr      error
)

func compiledPayloadSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		var schemaData any
		if err := json.Unmarshal(payloadSchema, &schemaData); err != nil {
			schemaErr = oops.Code("SCHEMA_INVALID").Wrap(err)
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource("exchange-payload.json", schemaData); err != nil {
			schemaErr = oops.Code("SCHEMA_INVALID").Wrap(err)
			return
		}
		compiledSchema, schemaErr = c.Compile("exchange-payload.json")
		if schemaErr != nil {
			schemaErr = oops.Code("SCHEMA_INVALID").Wrap(schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// Decode validates raw JSON against the payload schema and unmarshals it.
// Schema failures are structural validation errors; nothing downstream
// runs on an invalid payload.
func Decode(raw []byte) (*Payload, error) {
	sch, err := compiledPayloadSchema()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, oops.Code("PAYLOAD_INVALID").Wrap(err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, oops.Code("PAYLOAD_INVALID").Wrap(err)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, oops.Code("PAYLOAD_INVALID").Wrap(err)
	}
	return &p, nil
}
