package pipeline

import (
	"fmt"
	"net/url"
	"time"

	"github.com/airndlab/support-qna/internal/core/ports"
)

// BuildRoutes turns the configured name→URL table into pipeline
// backends. The table is validated here, at startup, so a broken route
// fails the process instead of the first unlucky request.
func BuildRoutes(serviceURLs map[string]string, timeout time.Duration) (map[string]ports.PipelineBackend, error) {
	if len(serviceURLs) == 0 {
		return nil, fmt.Errorf("pipeline route table is empty")
	}

	routes := make(map[string]ports.PipelineBackend, len(serviceURLs))
	for name, rawURL := range serviceURLs {
		if name == "" {
			return nil, fmt.Errorf("pipeline route with empty name")
		}
		parsed, err := url.Parse(rawURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("pipeline %s: invalid service url %q", name, rawURL)
		}
		routes[name] = NewClient(name, rawURL, timeout)
	}
	return routes, nil
}
