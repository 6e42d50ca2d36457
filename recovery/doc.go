// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

// Package recovery provides panic recovery middleware for HTTP handlers.
//
// The middleware recovers from panics in HTTP handlers and returns a
// 500 Internal Server Error response to the client. This prevents a single
// panicking request from crashing the entire server. The docs server wraps
// its mux with the logging variant so that panics end up in the server log
// with a stack trace.
//
// # Basic Usage
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("/", handler)
//	wrapped := recovery.MiddlewareWithLogger(logger)(mux)
//	http.ListenAndServe(":8080", wrapped)
package recovery
