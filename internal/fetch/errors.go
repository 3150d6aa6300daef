// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"errors"
	"fmt"

	"github.com/pdiddy/bibwatch/pkg/types"
)

// TransientSourceError marks a failure that was retried and still did not
// succeed: timeouts, connection resets, HTTP 429, and 5xx responses.
type TransientSourceError struct {
	Source types.Source
	Status int
	Err    error
}

func (e *TransientSourceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: transient failure after retries (HTTP %d)", e.Source, e.Status)
	}
	return fmt.Sprintf("%s: transient failure after retries: %v", e.Source, e.Err)
}

func (e *TransientSourceError) Unwrap() error { return e.Err }

// PermanentSourceError marks a failure retrying cannot fix: malformed
// requests, 4xx responses other than 429, and unparseable payloads.
type PermanentSourceError struct {
	Source types.Source
	Status int
	Err    error
}

func (e *PermanentSourceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: HTTP %d", e.Source, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *PermanentSourceError) Unwrap() error { return e.Err }

// IsPermanent reports whether err is a PermanentSourceError.
func IsPermanent(err error) bool {
	var pe *PermanentSourceError
	return errors.As(err, &pe)
}
