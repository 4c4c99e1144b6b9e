// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

// Package seed loads development fixtures: a YAML file of services, keys,
// and translations inserted with fixed ids so repeated runs are
// idempotent.
package seed

import (
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// Fixture is the root of a seed file.
type Fixture struct {
	Services []FixtureService `yaml:"services" json:"services" jsonschema:"required"`
}

// FixtureService seeds one service with its keys.
type FixtureService struct {
	ID     string       `yaml:"id" json:"id" jsonschema:"required,minLength=1"`
	Code   string       `yaml:"code" json:"code" jsonschema:"required,pattern=^[a-z0-9]+(-[a-z0-9]+)*$"`
	Name   string       `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	Owners []string     `yaml:"owners" json:"owners"`
	Keys   []FixtureKey `yaml:"keys" json:"keys"`
}

// FixtureKey seeds one key with its translations.
type FixtureKey struct {
	ID           string               `yaml:"id" json:"id" jsonschema:"required,minLength=1"`
	KeyName      string               `yaml:"keyName" json:"keyName" jsonschema:"required,minLength=1,maxLength=200"`
	Tags         []string             `yaml:"tags" json:"tags"`
	Status       string               `yaml:"status" json:"status" jsonschema:"enum=draft,enum=active,enum=archived"`
	Translations []FixtureTranslation `yaml:"translations" json:"translations"`
}

// FixtureTranslation seeds one locale value.
type FixtureTranslation struct {
	ID     string `yaml:"id" json:"id" jsonschema:"required,minLength=1"`
	Locale string `yaml:"locale" json:"locale" jsonschema:"required,minLength=2"`
	Value  string `yaml:"value" json:"value" jsonschema:"required"`
	Status string `yaml:"status" json:"status" jsonschema:"enum=draft,enum=active,enum=archived"`
}

// LoadFixture reads and schema-validates a seed file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, oops.Code("SEED_FAILED").With("path", path).Wrap(err)
	}
	if err := ValidateSchema(data); err != nil {
		return nil, oops.Code("SEED_INVALID").With("path", path).Wrap(err)
	}

	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, oops.Code("SEED_INVALID").With("path", path).Wrap(err)
	}
	return &f, nil
}
