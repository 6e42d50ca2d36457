// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package env

//go:generate mockgen -source=env.go -destination=mocks/mock_reader.go -package=mocks Reader

import "os"

// Reader defines an interface for environment variable access.
type Reader interface {
	// Getenv returns the value of the environment variable named by the key,
	// or the empty string if it is unset.
	Getenv(key string) string

	// LookupEnv returns the value of the environment variable named by the
	// key and whether it was set at all.
	LookupEnv(key string) (string, bool)
}

// OSReader implements Reader using the standard os package.
type OSReader struct{}

// Getenv returns the value of the environment variable named by the key.
func (*OSReader) Getenv(key string) string {
	return os.Getenv(key)
}

// LookupEnv reports the value of the environment variable and whether it is set.
func (*OSReader) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}
