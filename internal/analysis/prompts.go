package analysis

import (
	"fmt"
	"strings"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// DefaultMode is the strategy used when a request names none or an unknown one.
const DefaultMode = "The Balanced"

// Strategies maps each portfolio mode to the goal given to the model.
var Strategies = map[string]string{
	"The Defensive":                   "Prioritize capital preservation and low volatility. Criticize high-risk speculative assets. Favor blue chips, bonds, and consumer staples.",
	"The Income Portfolio":            "Focus on maximizing stable cash flow via dividends and REITs. Criticize low-yield growth stocks.",
	"The Balanced":                    "Seek a mix of growth and stability. Ensure moderate risk exposure with decent potential returns.",
	"The Growth Portfolio":            "Prioritize capital appreciation. Tolerate higher volatility for higher returns. Favor tech and expanding sectors.",
	"The Aggressive Growth Portfolio": "Maximize potential returns with high risk tolerance. Look for moonshots and high-beta assets. Criticize overly safe/low-return allocations.",
}

const (
	portfolioSystem = "You are an expert financial advisor using Warren Buffett and Ray Dalio principles. You strictly output Markdown tables for data comparisons."
	newsSystem      = "You are a senior markets analyst. You read financial headlines and explain what they mean for investors in clear, neutral Markdown."
	articleSystem   = "You are a senior markets analyst. You explain a single financial news article for an investor, citing only what the article supports."
	chatSystem      = "You are a helpful financial markets assistant. Answer questions about markets, assets and investing concisely in Markdown. You do not give personalised investment advice."
)

var languages = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ja": "Japanese",
	"zh": "Chinese",
}

// LanguageName resolves a language code to the name used in prompts.
// Unknown values are passed through; empty means English.
func LanguageName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "English"
	}
	if name, ok := languages[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

func withLanguage(system, lang string) string {
	return fmt.Sprintf("%s Always respond in %s.", system, LanguageName(lang))
}

// StrategyFor returns the mode name actually applied and its instruction.
func StrategyFor(mode string) (string, string) {
	if s, ok := Strategies[mode]; ok {
		return mode, s
	}
	return DefaultMode, Strategies[DefaultMode]
}

func portfolioPrompt(req models.PortfolioAnalysisRequest) string {
	var lines strings.Builder
	total := 0.0
	for _, it := range req.Portfolio {
		total += it.Value
		fmt.Fprintf(&lines, "- %s (%s): %g shares @ $%.2f (Total: $%.2f). Sector: %s, Industry: %s\n",
			it.Symbol, it.Name, it.Quantity, it.CurrentPrice, it.Value, orUnknown(it.Sector), orUnknown(it.Industry))
	}

	mode := req.Mode
	if mode == "" {
		mode = DefaultMode
	}
	_, instruction := StrategyFor(req.Mode)

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this investment portfolio (Total Value: $%.2f) based on the '%s' strategy:\n", total, mode)
	fmt.Fprintf(&b, "Strategy Goal: %s\n\n", instruction)
	b.WriteString(lines.String())
	b.WriteString("\n\nPlease provide a comprehensive financial analysis covering the following aspects:\n")
	b.WriteString("1. **Diversification & Risk Assessment**: Assess sector/industry concentration and overall risk.\n")
	b.WriteString("2. **Performance Measurement**: Evaluate potential return drivers and risks.\n")
	b.WriteString("3. **Correlation Analysis**: Identify if assets are highly correlated (e.g., all tech).\n")
	b.WriteString("4. **Attribution Analysis**: What is driving the value? (Sector allocation vs Stock selection)\n")
	b.WriteString("5. **Stress Testing & Scenario Analysis**: How might this portfolio perform in a market crash or high-interest rate environment?\n")
	b.WriteString("6. **Rebalancing Analysis**: Suggestions for buying/selling to optimize the portfolio.\n\n")
	b.WriteString("IMPORTANT FORMATTING INSTRUCTIONS:\n")
	b.WriteString("- Use Markdown tables for any structured data (e.g., 'Category | Current Allocation | Recommended Allocation').\n")
	b.WriteString("- Do NOT use simple lists for data comparison. ALWAYS use tables.\n")
	b.WriteString("- Format the response in clear Markdown.")
	return b.String()
}

func newsPrompt(items []models.NewsBrief) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are %d recent market headlines:\n\n", len(items))
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s", i+1, strings.TrimSpace(it.Title))
		if it.Publisher != "" {
			fmt.Fprintf(&b, " (%s)", it.Publisher)
		}
		b.WriteString("\n")
		if s := strings.TrimSpace(it.Summary); s != "" {
			fmt.Fprintf(&b, "   %s\n", s)
		}
	}
	fmt.Fprintf(&b, "\nKeyword tone across these headlines: %s.\n\n", ScoreBriefs(items))
	b.WriteString("Provide:\n")
	b.WriteString("1. **Key Themes**: the main stories and how they connect.\n")
	b.WriteString("2. **Market Sentiment**: overall tone, and whether you agree with the keyword tone above.\n")
	b.WriteString("3. **Affected Assets**: a Markdown table of 'Asset | Direction | Reason'.\n")
	b.WriteString("4. **What to Watch**: upcoming catalysts implied by the news.")
	return b.String()
}

func articlePrompt(article models.NewsBrief, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", strings.TrimSpace(article.Title))
	if article.Publisher != "" {
		fmt.Fprintf(&b, "Publisher: %s\n", article.Publisher)
	}
	if article.Link != "" {
		fmt.Fprintf(&b, "Link: %s\n", article.Link)
	}
	fmt.Fprintf(&b, "\nContent:\n%s\n\n", body)
	b.WriteString("Explain this article for an investor:\n")
	b.WriteString("1. **Summary**: what happened, in three or four sentences.\n")
	b.WriteString("2. **Why It Matters**: the likely market impact.\n")
	b.WriteString("3. **Affected Assets**: a Markdown table of 'Asset | Likely Impact | Reason'.\n")
	b.WriteString("4. **Risks & Unknowns**: what the article does not settle.")
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
