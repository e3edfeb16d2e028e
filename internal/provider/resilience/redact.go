package resilience

import (
	"errors"
	"net/url"
	"strings"
)

const redacted = "REDACTED"

// RedactURL replaces the query values in the URL quoted by a transport
// error. Upstream keys travel in the query string, and *url.Error prints
// the full URL.
func RedactURL(err error) error {
	if err == nil {
		return nil
	}
	var ue *url.Error
	if !errors.As(err, &ue) || !strings.Contains(ue.URL, "?") {
		return err
	}

	clean := redactQuery(ue.URL)
	if err == error(ue) {
		return &url.Error{Op: ue.Op, URL: clean, Err: ue.Err}
	}
	return &redactedError{
		msg: strings.ReplaceAll(err.Error(), ue.URL, clean),
		err: ue.Err,
	}
}

func redactQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		base, _, _ := strings.Cut(raw, "?")
		return base + "?" + redacted
	}
	q := u.Query()
	for k := range q {
		q[k] = []string{redacted}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// redactedError keeps the cause for errors.Is while hiding the URL.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
