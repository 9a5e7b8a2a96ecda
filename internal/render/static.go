package render

import (
	"fmt"
	"strings"
)

// Command describes one entry of the bot's command menu.
type Command struct {
	Name        string
	Usage       string
	Description string
	Help        string
}

// Commands is the full command surface, in menu order.
var Commands = []Command{
	{Name: "validator", Usage: "/validator <wallet_address>", Description: "<wallet_address> - Validator stats", Help: "to receive validator stats"},
	{Name: "top10", Usage: "/top10", Description: "Top 10 validators all time", Help: "to receive top 10 validators all time"},
	{Name: "epoch", Usage: "/epoch", Description: "Current epoch stats", Help: "to receive current epoch stats"},
	{Name: "start", Usage: "/start", Description: "Start the bot", Help: "to start the bot"},
	{Name: "help", Usage: "/help", Description: "Show list of available commands", Help: "to receive this message"},
}

// Criterion is one weighted input of the validator rank score.
type Criterion struct {
	Name   string
	Weight int
}

// RankCriteria lists the rank score weights. They add up to 100.
var RankCriteria = []Criterion{
	{Name: "Attestation Success Rate", Weight: 35},
	{Name: "Attestation Volume", Weight: 25},
	{Name: "Proposal Success Rate", Weight: 20},
	{Name: "Proposal Volume", Weight: 20},
}

const (
	botName            = "Aztec Bot 🤖"
	signature          = "gAztec 💜"
	validationMessage  = "Please enter a valid wallet address."
	contactDiscord     = "@vegeta (Discord)"
	contactTelegram    = "@m1keehrmantraut (Telegram)"
	contactXURL        = "https://x.com/developervegeta"
	contactGitHubURL   = "https://github.com/miketester10/"
	rankCriteriaIntro  = "Ranks are based on a score that considers the following metrics:"
	rankButtonText     = "Rank score calculation Criteria"
	emptyTopValidators = "No ranked validators yet."
)

// RankCriteriaButton is the label of the inline button attached to /top10.
func RankCriteriaButton() string {
	return rankButtonText
}

// RankCriteriaText is the plain-text alert shown for the rank criteria
// callback. Callback alerts do not support markup.
func RankCriteriaText() string {
	var b strings.Builder
	b.WriteString(rankCriteriaIntro)
	b.WriteString("\n")
	for _, criterion := range RankCriteria {
		fmt.Fprintf(&b, "\n- %s (%d%%)", criterion.Name, criterion.Weight)
	}
	return b.String()
}

// ValidationMessage is sent when /validator is missing its address.
func ValidationMessage() string {
	return Code(validationMessage)
}

// Error renders a user-facing error as a single code span.
func Error(message string) string {
	return Code(strings.ReplaceAll(message, "\n", " "))
}

// Start renders the welcome text. name may be empty.
func Start(name string) string {
	greeting := "Hi"
	if strings.TrimSpace(name) != "" {
		greeting += " " + strings.TrimSpace(name)
	}

	lines := []string{
		Escape(greeting) + " 👋🏻",
		"I am " + Bold(botName),
		"",
	}

	for _, cmd := range Commands {
		if cmd.Name == "start" {
			continue
		}
		lines = append(lines,
			Escape(startHint(cmd)),
			Blockquote(Code(cmd.Usage)),
			"",
		)
	}

	lines = append(lines,
		Bold(signature),
		"",
		Blockquote(strings.Join([]string{
			Escape("⚠️ For more information contact the developer:"),
			Escape(contactDiscord),
			Escape(contactTelegram),
		}, "\n")),
		"",
		"🌐 "+Link("X (Formerly Twitter)", contactXURL)+" "+Escape("|")+" 👨🏻‍💻 "+Link("GitHub", contactGitHubURL),
	)

	return strings.Join(lines, "\n")
}

func startHint(cmd Command) string {
	if cmd.Name == "help" {
		return "To display complete list of commands, use:"
	}
	return "To" + strings.TrimPrefix(cmd.Help, "to") + ", use:"
}

// Help renders the command list.
func Help() string {
	entries := make([]string, 0, len(Commands))
	for _, cmd := range Commands {
		entries = append(entries, "🔹"+Code(cmd.Usage)+Escape(" - "+cmd.Help))
	}

	return Bold("📚 LIST OF COMMANDS 📚") + "\n\n" + Blockquote(strings.Join(entries, "\n"))
}
