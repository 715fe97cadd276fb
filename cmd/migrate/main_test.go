package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	upErr      error
	steps      int
	forced     int
	version    uint
	dirty      bool
	versionErr error
}

func (f *fakeMigrator) Up() error               { return f.upErr }
func (f *fakeMigrator) Steps(n int) error       { f.steps = n; return nil }
func (f *fakeMigrator) Force(version int) error { f.forced = version; return nil }
func (f *fakeMigrator) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}

func TestRunUpTreatsNoChangeAsSuccess(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, &fakeMigrator{upErr: migrate.ErrNoChange}, &out))
	assert.Contains(t, out.String(), "migrations complete")

	err := run([]string{"up"}, &fakeMigrator{upErr: errors.New("boom")}, &out)
	assert.ErrorContains(t, err, "migrate up")
}

func TestRunDownStepsBackwards(t *testing.T) {
	m := &fakeMigrator{}
	var out bytes.Buffer
	require.NoError(t, run([]string{"down", "2"}, m, &out))
	assert.Equal(t, -2, m.steps)

	assert.Error(t, run([]string{"down"}, m, &out))
	assert.Error(t, run([]string{"down", "0"}, m, &out))
	assert.Error(t, run([]string{"down", "two"}, m, &out))
}

func TestRunForceAndVersion(t *testing.T) {
	m := &fakeMigrator{version: 8, dirty: true}
	var out bytes.Buffer
	require.NoError(t, run([]string{"force", "7"}, m, &out))
	assert.Equal(t, 7, m.forced)

	out.Reset()
	require.NoError(t, run([]string{"version"}, m, &out))
	assert.Equal(t, "version 8 (dirty: true)\n", out.String())

	out.Reset()
	require.NoError(t, run([]string{"version"}, &fakeMigrator{versionErr: migrate.ErrNilVersion}, &out))
	assert.Contains(t, out.String(), "no migrations applied")
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	assert.ErrorContains(t, run([]string{"sideways"}, &fakeMigrator{}, &bytes.Buffer{}), "unknown command")
}
