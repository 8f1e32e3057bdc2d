/*
 * store_test.go, part of loopbench.
 *
 * Copyright 2016 The loopbench authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 */

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortemmelab/loopbench/settings"
)

func TestDSN(t *testing.T) {
	d := &settings.Database{
		Name:            "bench",
		User:            "kortemmelab",
		Host:            "db.example.org",
		Port:            3307,
		PasswordCommand: "echo hunter2",
	}
	dsn, err := DSN(d)
	require.NoError(t, err)
	assert.Contains(t, dsn, "kortemmelab:hunter2@tcp(db.example.org:3307)/bench")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestDSNPasswordCommandFailure(t *testing.T) {
	d := &settings.Database{Name: "bench", PasswordCommand: "exit 1"}
	_, err := DSN(d)
	assert.Error(t, err)
}
