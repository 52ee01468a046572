// Package ledger talks to the external immutable ledger that anchors content
// fingerprints. The client is injected as a capability into the services
// that create anchored records; there is no package-level singleton.
package ledger

import "context"

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks

// Anchor is the reference returned by the ledger proving a fingerprint was
// recorded at a point in time, bound to a case number. It is assigned once,
// atomically with record creation, and never changes.
type Anchor struct {
	ID    string `json:"anchor_id"` // record id assigned by the ledger
	TxRef string `json:"tx_ref"`    // ledger transaction reference
}

// Request carries one anchoring submission. LinkedAnchorID is optional and
// used by corrections to chain to the original evidence's anchor.
type Request struct {
	CaseNumber     string `json:"case_number"`
	Fingerprint    string `json:"fingerprint"`
	LinkedAnchorID string `json:"linked_anchor_id,omitempty"`
}

// Client submits fingerprints to the ledger. One invocation, one anchor: the
// caller never retries, and a failed call must abort the enclosing record
// creation (except the role-grant soft-failure path, which logs and
// continues).
type Client interface {
	Anchor(ctx context.Context, req Request) (Anchor, error)
}
