package recon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	wappalyzer "github.com/projectdiscovery/wappalyzergo"
)

// Response bodies beyond this are not needed to fingerprint a page
const maxBodySize = 2 << 20

type Fingerprinter struct {
	httpClient *http.Client
	wappalyzer *wappalyzer.Wappalyze
}

func NewFingerprinter(timeout time.Duration) (*Fingerprinter, error) {
	wappalyzerClient, err := wappalyzer.New()
	if err != nil {
		return nil, fmt.Errorf("Failed to start wappalyzer client: %w", err)
	}

	return &Fingerprinter{
		httpClient: &http.Client{Timeout: timeout},
		wappalyzer: wappalyzerClient,
	}, nil
}

// Technologies fetches the target and returns the detected technologies, lowercased and sorted.
func (f *Fingerprinter) Technologies(ctx context.Context, target string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, TargetURL(target), nil)
	if err != nil {
		return nil, fmt.Errorf("Failed to build request for %s: %w", target, err)
	}

	res, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Failed to make request to %s: %w", target, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("Failed to read response body for %s: %w", target, err)
	}

	technologies := make([]string, 0)
	fingerprints := f.wappalyzer.Fingerprint(res.Header, data)
	for fingerprintKey := range fingerprints {
		technologies = append(technologies, strings.ToLower(fingerprintKey))
	}
	sort.Strings(technologies)

	return technologies, nil
}

// TechStack renders technologies the way they are stored on a target.
func TechStack(technologies []string) string {
	return strings.Join(technologies, ", ")
}
