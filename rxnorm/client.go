// Package rxnorm implements a read-only client for the RxNav REST API.
// Every call site gets an explicit Outcome so that "the service had no
// data" and "the call failed" stay distinguishable for diagnostics,
// even though the extraction treats both as empty.
package rxnorm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
	"github.com/Andeeli/MedicalCodeRetrieval/logging"
	"github.com/Andeeli/MedicalCodeRetrieval/metrics"
)

// DefaultBaseURL is the public RxNav host.
const DefaultBaseURL = "https://rxnav.nlm.nih.gov/REST"

// Outcome classifies a remote call at its boundary.
type Outcome int

const (
	// OutcomeOK means the call succeeded and yielded data.
	OutcomeOK Outcome = iota
	// OutcomeEmpty means the call succeeded but the response carried
	// no usable data (empty body or missing field).
	OutcomeEmpty
	// OutcomeFailed means the call did not produce a usable response:
	// transport error, non-2xx status or unparseable body.
	OutcomeFailed
)

// String returns the outcome label used in logs and metric labels.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Client talks to the RxNav REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. An empty baseURL
// selects the public RxNav host.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// getJSON fetches a URL and decodes the JSON body into v. All failure
// modes are absorbed into the returned Outcome; the caller never sees
// an error value.
func (c *Client) getJSON(ctx context.Context, endpoint string, rawURL string, v any) Outcome {
	outcome := c.doGetJSON(ctx, rawURL, v)

	metrics.RxNavRequestsTotal.WithLabelValues(endpoint, outcome.String()).Inc()
	if outcome == OutcomeFailed {
		logging.Debug("RxNav request failed", "endpoint", endpoint, "url", rawURL)
	}

	return outcome
}

func (c *Client) doGetJSON(ctx context.Context, rawURL string, v any) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return OutcomeFailed
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return OutcomeFailed
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return OutcomeFailed
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return OutcomeFailed
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return OutcomeEmpty
	}

	if err := json.Unmarshal(body, v); err != nil {
		return OutcomeFailed
	}

	return OutcomeOK
}

// FindRxCUIsByName resolves an ingredient name to its RxNorm concept
// identifiers via GET /rxcui.json?name=<name>.
func (c *Client) FindRxCUIsByName(ctx context.Context, name string) ([]string, Outcome) {
	rawURL := fmt.Sprintf("%s/rxcui.json?name=%s", c.baseURL, url.QueryEscape(name))

	var parsed rxcuiResponse
	outcome := c.getJSON(ctx, "rxcui", rawURL, &parsed)
	if outcome != OutcomeOK {
		return nil, outcome
	}

	ids := parsed.IDGroup.RxNormID
	if len(ids) == 0 {
		return nil, OutcomeEmpty
	}
	return ids, OutcomeOK
}

// AllRelated fetches every concept related to the given identifier via
// GET /rxcui/<id>/allrelated.json, flattening the concept groups into
// a single list in response order.
func (c *Client) AllRelated(ctx context.Context, rxcui string) ([]entities.Concept, Outcome) {
	rawURL := fmt.Sprintf("%s/rxcui/%s/allrelated.json", c.baseURL, url.PathEscape(rxcui))

	var parsed allRelatedResponse
	outcome := c.getJSON(ctx, "allrelated", rawURL, &parsed)
	if outcome != OutcomeOK {
		return nil, outcome
	}

	var concepts []entities.Concept
	for _, group := range parsed.AllRelatedGroup.ConceptGroup {
		for _, cp := range group.ConceptProperties {
			concepts = append(concepts, entities.Concept{
				RxCUI: cp.RxCUI,
				Name:  cp.Name,
				TTY:   cp.TTY,
			})
		}
	}

	if len(concepts) == 0 {
		return nil, OutcomeEmpty
	}
	return concepts, OutcomeOK
}

// NDCs fetches the product codes associated with a concept via
// GET /rxcui/<id>/ndcs.json.
func (c *Client) NDCs(ctx context.Context, rxcui string) ([]string, Outcome) {
	rawURL := fmt.Sprintf("%s/rxcui/%s/ndcs.json", c.baseURL, url.PathEscape(rxcui))

	var parsed ndcsResponse
	outcome := c.getJSON(ctx, "ndcs", rawURL, &parsed)
	if outcome != OutcomeOK {
		return nil, outcome
	}

	codes := parsed.NDCGroup.NDCList.NDC
	if len(codes) == 0 {
		return nil, OutcomeEmpty
	}
	return codes, OutcomeOK
}

// NDCDescription fetches the descriptive name for a product code via
// GET /ndcproperties.json?ndc=<code>. The property payload may be a
// single object or a list; the first entry's name is used. A nil
// description with OutcomeOK never happens, the outcome degrades to
// empty instead.
func (c *Client) NDCDescription(ctx context.Context, ndc string) (*string, Outcome) {
	rawURL := fmt.Sprintf("%s/ndcproperties.json?ndc=%s", c.baseURL, url.QueryEscape(ndc))

	var parsed ndcPropertiesResponse
	outcome := c.getJSON(ctx, "ndcproperties", rawURL, &parsed)
	if outcome != OutcomeOK {
		return nil, outcome
	}

	properties := parsed.NDCPropertyGroup.NDCProperty
	if len(properties) == 0 || properties[0].Name == "" {
		return nil, OutcomeEmpty
	}

	name := properties[0].Name
	return &name, OutcomeOK
}
