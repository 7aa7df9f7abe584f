package engine

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoLocation is returned when a redirect response carries no Location.
var ErrNoLocation = errors.New("engine: redirect without Location header")

// CleanRedirect resolves location against base and drops any path
// parameters (everything after ';' in the path), which is where the portal
// leaks ";jsessionid=..." into redirect targets. Query and fragment are kept.
func CleanRedirect(base *url.URL, location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", ErrNoLocation
	}

	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("engine: parse location %q: %w", location, err)
	}

	abs := base.ResolveReference(ref)
	if i := strings.IndexByte(abs.Path, ';'); i >= 0 {
		abs.Path = abs.Path[:i]
		abs.RawPath = ""
	}
	return abs.String(), nil
}
