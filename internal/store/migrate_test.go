// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMigrate implements migrateIface for unit tests.
type fakeMigrate struct {
	upErr      error
	downErr    error
	stepsErr   error
	version    uint
	dirty      bool
	versionErr error
	forceErr   error
	forcedTo   int
	steps      int
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return f.downErr }
func (f *fakeMigrate) Steps(n int) error {
	f.steps = n
	return f.stepsErr
}
func (f *fakeMigrate) Version() (uint, bool, error) { return f.version, f.dirty, f.versionErr }
func (f *fakeMigrate) Force(v int) error {
	f.forcedTo = v
	return f.forceErr
}
func (f *fakeMigrate) Close() (error, error) { return nil, nil }

func TestMigratorUp(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "success", err: nil},
		{name: "no change is not an error", err: migrate.ErrNoChange},
		{name: "failure propagates", err: errors.New("syntax error"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &fakeMigrate{upErr: tt.err}}
			err := m.Up()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMigratorVersion(t *testing.T) {
	t.Run("nil version means zero", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
		assert.False(t, dirty)
	})

	t.Run("reports dirty state", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 3, dirty: true}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(3), version)
		assert.True(t, dirty)
	})
}

func TestMigratorForceRejectsNegative(t *testing.T) {
	fake := &fakeMigrate{}
	m := &Migrator{m: fake}
	err := m.Force(-1)
	require.Error(t, err)
	assert.Zero(t, fake.forcedTo, "Force must not reach the driver on invalid input")
}

func TestMigrationName(t *testing.T) {
	name, err := MigrationName(1)
	require.NoError(t, err)
	assert.Equal(t, "000001_initial", name)

	name, err = MigrationName(999)
	require.NoError(t, err)
	assert.Empty(t, name)
}
