// Package domain holds the validator and epoch statistics returned by the
// upstream stats API.
package domain

import "strings"

// ValidatorStatus is the lifecycle state reported upstream for a validator.
type ValidatorStatus string

const (
	StatusActive ValidatorStatus = "active"
	StatusExited ValidatorStatus = "exited"
)

// Normalize maps the raw upstream status onto a known status. Upstream may send
// prefixed values such as VALIDATOR_STATUS_ACTIVE, so matching is by substring.
// Unrecognised values are returned lower-cased.
func (s ValidatorStatus) Normalize() ValidatorStatus {
	lowered := strings.ToLower(strings.TrimSpace(string(s)))
	switch {
	case strings.Contains(lowered, string(StatusExited)):
		return StatusExited
	case strings.Contains(lowered, string(StatusActive)) && !strings.Contains(lowered, "inactive"):
		return StatusActive
	default:
		return ValidatorStatus(lowered)
	}
}

// ValidatorStats is one validator's lifetime record.
type ValidatorStats struct {
	Index                      string          `json:"index"`
	Address                    string          `json:"address"`
	Status                     ValidatorStatus `json:"status"`
	Balance                    string          `json:"balance"`
	AttestationSuccess         string          `json:"attestationSuccess"`
	ProposerAddress            string          `json:"proposerAddress"`
	WithdrawalCredentials      string          `json:"withdrawalCredentials"`
	TotalAttestationsSucceeded uint64          `json:"totalAttestationsSucceeded"`
	TotalAttestationsMissed    uint64          `json:"totalAttestationsMissed"`
	TotalBlocksProposed        uint64          `json:"totalBlocksProposed"`
	TotalBlocksMined           uint64          `json:"totalBlocksMined"`
	TotalBlocksMissed          uint64          `json:"totalBlocksMissed"`
	TotalParticipatingEpochs   uint64          `json:"totalParticipatingEpochs"`

	// CurrentEpochStats is attached by the stats client after the validator
	// lookup; it is nil when the epoch lookup failed.
	CurrentEpochStats *EpochStats `json:"-"`
}

// BlocksSucceeded counts proposals that made it on chain.
func (v ValidatorStats) BlocksSucceeded() uint64 {
	return v.TotalBlocksProposed + v.TotalBlocksMined
}

// TopValidator is a ranked validator summary. Rank is implied by position in
// TopValidators.Validators (index 0 is rank 1).
type TopValidator struct {
	Index            string          `json:"index"`
	Address          string          `json:"address"`
	Status           ValidatorStatus `json:"status"`
	Balance          string          `json:"balance"`
	PerformanceScore float64         `json:"performanceScore"`
	ProposalSuccess  string          `json:"proposalSuccess"`
	LastProposed     string          `json:"lastProposed"`
	Name             string          `json:"name,omitempty"`
	XHandle          string          `json:"x_handle,omitempty"`
}

// TopValidators is the top validators response body.
type TopValidators struct {
	Validators []TopValidator `json:"validators"`
}
