// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package httperr carries HTTP status codes through error chains.

The remote catalog fetcher and the docs server both return coded errors, so
a single function at the handler boundary maps any error to a response:

	err := httperr.Newf(http.StatusBadGateway, "fetching catalog from %s: %w", url, cause)

	func writeError(w http.ResponseWriter, err error) {
		http.Error(w, err.Error(), httperr.Code(err))
	}

Code returns 500 for errors with no CodedError in their chain and 200 for
nil. CodedError supports errors.Is and errors.As through Unwrap:

	var coded *httperr.CodedError
	if errors.As(err, &coded) {
		log.Printf("HTTP %d: %s", coded.HTTPCode(), coded.Error())
	}
*/
package httperr
