package usecase

import "MarketPulse/internal/domain/models"

// Fixture payloads served for ?mock=1 requests. Every call returns fresh values.

func mockInsights() models.AgentInsights {
	return models.AgentInsights{
		MarketData:      "AAPL is trending upward with strong momentum.",
		News:            "Recent news highlights innovation at Apple.",
		SECFilings:      "Apple's latest 10-K shows strong financials.",
		SocialSentiment: "Reddit sentiment is bullish on AAPL.",
		Macro:           "GDP growth remains robust.",
		CompanyEvents:   "Upcoming Apple event may impact stock.",
		StartupSignals:  "OpenAI's repo is gaining traction.",
		NLPEvent:        "Detected product launch event.",
	}
}

func MockInsightsResponse() *models.InsightsResponse {
	return &models.InsightsResponse{
		Status: models.StatusSuccess,
		Result: []models.Recommendation{
			{Ticker: "AAPL", Score: 95, Recommendation: models.VerdictBuy, Insight: "AAPL is a strong buy."},
			{Ticker: "MSFT", Score: 88, Recommendation: models.VerdictWatch, Insight: "MSFT is stable."},
		},
		AgentInsights: mockInsights(),
	}
}

func MockMarketData() *models.MarketDataResponse {
	return &models.MarketDataResponse{
		Status:   models.StatusSuccess,
		Result:   []models.MarketRecord{{Ticker: "AAPL", Date: "2025-09-05", Close: models.Num(190.0)}},
		Insights: mockInsights().MarketData,
	}
}

func MockNews() *models.NewsResponse {
	return &models.NewsResponse{
		Status:   models.StatusSuccess,
		Result:   []models.NewsArticle{{Title: "Apple launches new product", URL: "https://news.com/apple"}},
		Insights: mockInsights().News,
	}
}

func MockSECFilings() *models.SECFilingsResponse {
	return &models.SECFilingsResponse{
		Status:   models.StatusSuccess,
		Result:   []models.Filing{{Type: "10-K", Title: "10-K for CIK 0000320193", Date: "2025-08-01"}},
		Insights: mockInsights().SECFilings,
	}
}

func MockSocialSentiment() *models.SocialSentimentResponse {
	return &models.SocialSentimentResponse{
		Status:   models.StatusSuccess,
		Result:   []models.SentimentPost{{Platform: "reddit", Subreddit: "stocks", Title: "AAPL to the moon!"}},
		Insights: mockInsights().SocialSentiment,
	}
}

func MockMacro() *models.MacroResponse {
	return &models.MacroResponse{
		Status: models.StatusSuccess,
		Result: models.MacroSnapshot{
			"GDP": {{Date: "2025-07-01", Value: models.Num(3.2)}},
		},
		Insights: mockInsights().Macro,
	}
}

func MockCompanyEvents() *models.CompanyEventResponse {
	return &models.CompanyEventResponse{
		Status: models.StatusSuccess,
		Result: models.CompanyEvents{
			Pressroom:      []string{"Apple event next week."},
			Jobs:           []string{},
			GithubActivity: []string{},
		},
		Insights: mockInsights().CompanyEvents,
	}
}

func MockStartupSignals() *models.StartupSignalsResponse {
	stars := 5000
	return &models.StartupSignalsResponse{
		Status: models.StatusSuccess,
		Result: models.StartupSignals{
			GithubStars: models.RepoStars{Repo: "openai/gym", Stars: &stars},
			FundingNews: []string{},
			JobPostings: []string{},
		},
		Insights: mockInsights().StartupSignals,
	}
}

func MockNLPEvent() *models.NLPEventResponse {
	return &models.NLPEventResponse{
		Status: models.StatusSuccess,
		Result: models.ExtractedEvents{
			Entities:   []models.Entity{{Text: "Apple", Label: "ORG"}},
			KeyPhrases: []string{"product launch"},
		},
		Insights: mockInsights().NLPEvent,
	}
}

func MockCombinedSentiment() *models.CombinedSentimentResponse {
	return &models.CombinedSentimentResponse{
		Status: models.StatusSuccess,
		Result: map[string]models.CombinedSentiment{
			"AAPL": {
				StockTwits: []models.SentimentPost{{Platform: "stocktwits", Symbol: "AAPL", Body: "AAPL to the moon!"}},
				News:       []models.NewsArticle{{Title: "Apple launches new product", URL: "https://news.com/apple"}},
			},
		},
	}
}
