package usecase

// Instructions sent to the summarizer.
const (
	promptRecommendation = `You are a Chief Investment Officer AI. Given the following multi-agent signals for a stock, provide a buy/sell/hold recommendation, a confidence score (1-5), and a 2-3 sentence explanation referencing the most important signals. Format: {"recommendation":..., "confidence":..., "explanation":...}`

	promptMarketData = "You are a financial analyst. Given the following market data, provide a 2-3 sentence summary of the overall trend and any actionable insights for an equity investor."
	promptNews       = "You are a financial news and filings summarizer. Summarize the following text in 2-3 crisp sentences for an investor."
	promptSocial     = "You are a financial social sentiment analyst. Given the following Reddit/social mentions, summarize the overall sentiment and highlight any actionable signals for equity investors in 2-3 sentences."
	promptMacro      = "You are a macroeconomic analyst. Given the following macro indicators, summarize the current macroeconomic environment and any implications for equity investors in 2-3 sentences."
	promptCompany    = "You are a company events analyst. Given the following press releases, job postings, and GitHub activity, summarize any key company events or signals relevant to equity investors in 2-3 sentences."
	promptStartup    = "You are a startup signals analyst. Given the following GitHub stars, funding news, and job postings, summarize any key startup signals or trends relevant to equity investors in 2-3 sentences."
	promptNLP        = "You are an NLP event extraction expert. Given the following text, extract and summarize any key events relevant to equity investors in 2-3 sentences."
)

// Fixed insight strings.
const (
	insightStrong       = "Strong technicals and positive signals."
	insightNeedsMore    = "Needs more confirmation."
	insightSummarizerKO = "AI error: fallback to Watch."
)
