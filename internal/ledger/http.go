package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docket/internal/platform/config"
	dErrors "docket/pkg/domain-errors"
)

var tracer = otel.Tracer("docket/internal/ledger")

// HTTPClient anchors fingerprints through the ledger gateway's REST surface.
// Every call is bounded by the configured timeout; expiry surfaces as a
// Timeout error so callers treat it as a creation failure.
type HTTPClient struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewHTTPClient builds the adapter from config.
func NewHTTPClient(cfg config.LedgerConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

type anchorResponse struct {
	AnchorID string `json:"anchor_id"`
	TxRef    string `json:"tx_ref"`
}

// Anchor submits the fingerprint and returns the ledger reference.
func (c *HTTPClient) Anchor(ctx context.Context, req Request) (Anchor, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "ledger.Anchor", trace.WithAttributes(
		attribute.String("ledger.case_number", req.CaseNumber),
		attribute.Bool("ledger.linked", req.LinkedAnchorID != ""),
	))
	defer span.End()

	body, err := json.Marshal(req)
	if err != nil {
		return Anchor{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode anchor request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/anchors", bytes.NewReader(body))
	if err != nil {
		return Anchor{}, dErrors.Wrap(err, dErrors.CodeInternal, "build anchor request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, context.DeadlineExceeded) {
			return Anchor{}, dErrors.Wrap(err, dErrors.CodeTimeout, "ledger anchoring timed out")
		}
		return Anchor{}, dErrors.Wrap(err, dErrors.CodeExternalFailure, "ledger unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		span.SetStatus(codes.Error, resp.Status)
		return Anchor{}, dErrors.Wrap(fmt.Errorf("ledger returned %s", resp.Status), dErrors.CodeExternalFailure, "ledger rejected anchor")
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Anchor{}, dErrors.Wrap(err, dErrors.CodeExternalFailure, "read ledger response")
	}
	var decoded anchorResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Anchor{}, dErrors.Wrap(err, dErrors.CodeExternalFailure, "decode ledger response")
	}
	if decoded.AnchorID == "" || decoded.TxRef == "" {
		return Anchor{}, dErrors.New(dErrors.CodeExternalFailure, "ledger response missing anchor reference")
	}

	span.SetAttributes(attribute.String("ledger.tx_ref", decoded.TxRef))
	return Anchor{ID: decoded.AnchorID, TxRef: decoded.TxRef}, nil
}
