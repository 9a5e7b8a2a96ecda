package domain

// EpochMetrics are the network-wide counters for the current epoch.
type EpochMetrics struct {
	EpochNumber              uint64  `json:"epochNumber"`
	SuccessCount             uint64  `json:"successCount"`
	MissCount                uint64  `json:"missCount"`
	TotalAttestations        uint64  `json:"totalAttestations"`
	EpochBlockProducedVolume uint64  `json:"epochBlockProducedVolume"`
	EpochBlockMissedVolume   uint64  `json:"epochBlockMissedVolume"`
	AttestationRate          float64 `json:"attestationRate"`
	BlockProductionRate      float64 `json:"blockProductionRate"`
}

// EpochStats is the current epoch snapshot. It is fetched fresh for every
// request.
type EpochStats struct {
	TotalActiveValidators   uint64       `json:"totalActiveValidators"`
	TotalInactiveValidators uint64       `json:"totalInactiveValidators"`
	CurrentEpochMetrics     EpochMetrics `json:"currentEpochMetrics"`
}

// HasNetworkInfo reports whether both validator counts are present and
// non-zero. A legitimate zero count is treated as absent.
func (e *EpochStats) HasNetworkInfo() bool {
	return e != nil && e.TotalActiveValidators != 0 && e.TotalInactiveValidators != 0
}
