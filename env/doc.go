// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package env provides an interface-based abstraction for environment variable
access, enabling dependency injection and testing isolation.

# Basic Usage

Use OSReader to read environment variables via the standard os package:

	reader := &env.OSReader{}
	value := reader.Getenv("MY_VAR")
	value, set := reader.LookupEnv("MY_VAR")

# Testing

The Reader interface allows injecting a mock in tests instead of mutating the
real process environment. A generated mock is available in the mocks
sub-package:

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockReader(ctrl)
	mock.EXPECT().Getenv("MY_VAR").Return("test-value")

	result := myFunc(mock)

# Design

Production code accepts an env.Reader and tests substitute the generated
mock. This is the dependency injection pattern used throughout
pipewright-core; the logger and the pack packager both consume this
interface rather than calling os.Getenv directly.
*/
package env
