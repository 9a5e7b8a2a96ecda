package render

import (
	"strings"
	"testing"
)

func TestRankCriteriaText(t *testing.T) {
	text := RankCriteriaText()

	for _, want := range []string{
		"- Attestation Success Rate (35%)",
		"- Attestation Volume (25%)",
		"- Proposal Success Rate (20%)",
		"- Proposal Volume (20%)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in criteria text:\n%s", want, text)
		}
	}

	// Telegram rejects callback alerts longer than 200 characters.
	if n := len([]rune(text)); n > 200 {
		t.Fatalf("criteria text is %d characters, limit is 200", n)
	}

	total := 0
	for _, criterion := range RankCriteria {
		total += criterion.Weight
	}
	if total != 100 {
		t.Fatalf("expected weights to add up to 100, got %d", total)
	}
}

func TestStartGreetsByName(t *testing.T) {
	withName := Start("Alice")
	if !strings.HasPrefix(withName, "Hi Alice 👋🏻") {
		t.Fatalf("expected greeting with name, got:\n%s", withName)
	}

	anonymous := Start("  ")
	if !strings.HasPrefix(anonymous, "Hi 👋🏻") {
		t.Fatalf("expected bare greeting, got:\n%s", anonymous)
	}

	for _, want := range []string{
		Code("/validator <wallet_address>"),
		Code("/top10"),
		Code("/epoch"),
		Code("/help"),
		"(" + contactXURL + ")",
		"(" + contactGitHubURL + ")",
	} {
		if !strings.Contains(withName, want) {
			t.Fatalf("expected %q in start text:\n%s", want, withName)
		}
	}

	if strings.Contains(withName, Code("/start")) {
		t.Fatalf("start text should not advertise /start:\n%s", withName)
	}
}

func TestHelpListsEveryCommand(t *testing.T) {
	help := Help()

	for _, cmd := range Commands {
		if !strings.Contains(help, "🔹"+Code(cmd.Usage)) {
			t.Fatalf("expected %s in help:\n%s", cmd.Usage, help)
		}
	}
}

func TestMarkupHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "code escapes backticks", got: Code("a`b\\c"), want: "`a\\`b\\\\c`"},
		{name: "code keeps dots", got: Code("12.5%"), want: "`12.5%`"},
		{name: "link escapes paren", got: Link("site", "https://x.org/a)b"), want: "[site](https://x.org/a\\)b)"},
		{name: "blockquote", got: Blockquote("a\n\nb"), want: ">a\n>\n>b"},
		{name: "error single line", got: Error("bad\nthing"), want: "`bad thing`"},
		{name: "validation", got: ValidationMessage(), want: "`Please enter a valid wallet address.`"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
