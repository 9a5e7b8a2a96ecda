// Package render turns stats into Telegram MarkdownV2 messages. Every function
// is pure.
package render

import (
	"math"
	"strconv"
	"strings"

	"validator_stats_bot/internal/domain"
)

// NotAvailable is rendered in place of a rate whose denominator is zero.
const NotAvailable = "N/A"

// emptyValue stands in for a field the API left blank; an empty code span
// does not parse.
const emptyValue = "-"

const (
	validatorDecimals = 1
	epochDecimals     = 2
)

// Rate returns the success and miss percentages of success/(success+miss),
// formatted with the given number of decimals. Ties round half up. The miss
// rate is derived from the rounded success rate so the pair always adds up to
// 100. Both are NotAvailable when there were no attempts.
func Rate(success, miss uint64, decimals int) (string, string) {
	total := success + miss
	if total == 0 {
		return NotAvailable, NotAvailable
	}

	scale := uint64(100)
	for i := 0; i < decimals; i++ {
		scale *= 10
	}

	successScaled := roundedShare(success, total, scale)
	return formatScaled(successScaled, scale, decimals), formatScaled(scale-successScaled, scale, decimals)
}

// roundedShare returns round(part/total*scale) with ties rounded up, using
// integer arithmetic while it cannot overflow.
func roundedShare(part, total, scale uint64) uint64 {
	if part <= (math.MaxUint64-total)/(2*scale) {
		return (2*part*scale + total) / (2 * total)
	}
	return uint64(math.Floor(float64(part)/float64(total)*float64(scale) + 0.5))
}

func formatScaled(scaled, scale uint64, decimals int) string {
	return strconv.FormatFloat(float64(scaled)/float64(scale/100), 'f', decimals, 64)
}

func percent(rate string) string {
	if rate == NotAvailable {
		return rate
	}
	return rate + "%"
}

// StatusLabel maps a validator status to its display string.
func StatusLabel(status domain.ValidatorStatus) string {
	switch status.Normalize() {
	case domain.StatusActive:
		return "🟢 ACTIVE"
	case domain.StatusExited:
		return "🔴 EXITED"
	default:
		return "⚪ UNKNOWN"
	}
}

type card struct {
	lines []string
}

func (c *card) line(text string) {
	c.lines = append(c.lines, text)
}

func (c *card) blank() {
	c.lines = append(c.lines, "")
}

func (c *card) heading(icon, title string) {
	c.line(icon + " " + Bold(title) + " " + icon)
}

func (c *card) field(icon, label, value string) {
	prefix := ""
	if icon != "" {
		prefix = icon + " "
	}
	c.line(prefix + Bold(label) + " " + codeValue(value))
}

func codeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		value = emptyValue
	}
	return Code(value)
}

func (c *card) performance(success, miss uint64, decimals int, successLabel string) {
	successRate, missRate := Rate(success, miss, decimals)
	c.field("✅", successLabel, strconv.FormatUint(success, 10))
	c.field("❌", "Missed:", strconv.FormatUint(miss, 10))
	c.field("📈", "Success Rate:", percent(successRate))
	c.field("📉", "Miss Rate:", percent(missRate))
}

func (c *card) networkInfo(active, inactive uint64) {
	c.heading("🌐", "NETWORK INFO")
	c.field("🟢", "Total Active Validators:", strconv.FormatUint(active, 10))
	c.field("🔴", "Total Inactive Validators:", strconv.FormatUint(inactive, 10))
}

func (c *card) String() string {
	return Blockquote(strings.Join(c.lines, "\n"))
}

// ValidatorStats renders the validator card. The network block only appears
// when an epoch snapshot with non-zero active and inactive counts is attached.
func ValidatorStats(stats domain.ValidatorStats) string {
	var c card

	c.heading("🔷", "VALIDATOR DETAILS")
	c.blank()
	c.line(Bold("Status:") + " " + Escape(StatusLabel(stats.Status)))
	c.blank()
	c.heading("📋", "BASIC INFO")
	c.field("🔑", "Address:", stats.Address)
	c.field("💰", "Staked Amount:", stats.Balance)
	c.field("👤", "Proposer Address:", stats.ProposerAddress)
	c.field("💼", "Withdrawer Address:", stats.WithdrawalCredentials)
	c.blank()
	c.heading("📊", "ATTESTATION PERFORMANCE")
	c.performance(stats.TotalAttestationsSucceeded, stats.TotalAttestationsMissed, validatorDecimals, "Successful:")
	c.blank()
	c.heading("📊", "PROPOSAL PERFORMANCE")
	c.performance(stats.BlocksSucceeded(), stats.TotalBlocksMissed, validatorDecimals, "Successful (Proposed/Mined):")

	if stats.CurrentEpochStats.HasNetworkInfo() {
		c.blank()
		c.networkInfo(stats.CurrentEpochStats.TotalActiveValidators, stats.CurrentEpochStats.TotalInactiveValidators)
	}

	return c.String()
}

// EpochStats renders the current epoch card.
func EpochStats(stats domain.EpochStats) string {
	var c card
	metrics := stats.CurrentEpochMetrics

	c.heading("🔷", "EPOCH DETAILS")
	c.blank()
	c.field("", "Current Epoch:", strconv.FormatUint(metrics.EpochNumber, 10))
	c.blank()
	c.heading("📊", "ATTESTATION PERFORMANCE")
	c.performance(metrics.SuccessCount, metrics.MissCount, epochDecimals, "Successful:")
	c.blank()
	c.heading("📊", "PROPOSAL PERFORMANCE")
	c.performance(metrics.EpochBlockProducedVolume, metrics.EpochBlockMissedVolume, epochDecimals, "Successful (Proposed/Mined):")
	c.blank()
	c.networkInfo(stats.TotalActiveValidators, stats.TotalInactiveValidators)

	return c.String()
}

// RankMarker returns the glyph shown before the entry at zero-based position.
func RankMarker(position int) string {
	switch position {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return "🔹"
	}
}

// TopValidators renders the ranking in input order.
func TopValidators(validators []domain.TopValidator) string {
	var c card

	c.heading("🏆", "TOP 10 VALIDATORS ALL TIME")
	c.blank()

	if len(validators) == 0 {
		c.line(Escape(emptyTopValidators))
	}

	for i, validator := range validators {
		c.line(RankMarker(i) + " " + codeValue(validator.Address))
	}

	return c.String()
}
