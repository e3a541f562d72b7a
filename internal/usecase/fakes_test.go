package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
)

var errUpstream = errors.New("upstream down")

type fakeMarket struct {
	rows []models.MarketRecord
	err  error
	got  models.MarketDataRequest
}

func (f *fakeMarket) Fetch(_ context.Context, req models.MarketDataRequest) ([]models.MarketRecord, error) {
	f.got = req
	return f.rows, f.err
}

type fakeNews struct {
	mu       sync.Mutex
	articles []models.NewsArticle
	err      error
	reqs     []models.NewsRequest
}

func (f *fakeNews) Fetch(_ context.Context, req models.NewsRequest) ([]models.NewsArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.articles, f.err
}

type fakeFilings struct {
	filings []models.Filing
	err     error
	got     models.SECFilingsRequest
}

func (f *fakeFilings) Fetch(_ context.Context, req models.SECFilingsRequest) ([]models.Filing, error) {
	f.got = req
	return f.filings, f.err
}

type fakeSocial struct {
	mu        sync.Mutex
	posts     []models.SentimentPost
	stream    map[string][]models.SentimentPost
	err       error
	streamErr error
	got       models.SocialSentimentRequest
}

func (f *fakeSocial) Fetch(_ context.Context, req models.SocialSentimentRequest) ([]models.SentimentPost, error) {
	f.got = req
	return f.posts, f.err
}

func (f *fakeSocial) Stream(_ context.Context, symbol string) ([]models.SentimentPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stream[symbol], f.streamErr
}

type fakeMacro struct {
	snap models.MacroSnapshot
	err  error
}

func (f *fakeMacro) Fetch(context.Context, models.MacroRequest) (models.MacroSnapshot, error) {
	return f.snap, f.err
}

type fakeCompany struct {
	ev  models.CompanyEvents
	err error
}

func (f *fakeCompany) Fetch(context.Context, models.CompanyEventRequest) (models.CompanyEvents, error) {
	return f.ev, f.err
}

type fakeStartup struct {
	sig models.StartupSignals
	err error
}

func (f *fakeStartup) Fetch(context.Context, models.StartupSignalsRequest) (models.StartupSignals, error) {
	return f.sig, f.err
}

type fakeExtractor struct {
	mu   sync.Mutex
	ev   models.ExtractedEvents
	err  error
	text string
}

func (f *fakeExtractor) Extract(_ context.Context, text string) (models.ExtractedEvents, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	return f.ev, f.err
}

// echoSummarizer is safe for concurrent stages and records every prompt it sees.
type echoSummarizer struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (s *echoSummarizer) Summarize(_ context.Context, instructions, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, instructions)
	return s.reply, s.err
}

type fakeSources struct {
	market  *fakeMarket
	news    *fakeNews
	filings *fakeFilings
	social  *fakeSocial
	macro   *fakeMacro
	company *fakeCompany
	startup *fakeStartup
	nlp     *fakeExtractor
}

func newFakeSources() *fakeSources {
	return &fakeSources{
		market: &fakeMarket{rows: []models.MarketRecord{
			{Ticker: "AAPL", Date: "2025-09-05", Close: models.Num(190), SMA20: models.Num(180), RSI14: models.Num(35)},
		}},
		news:    &fakeNews{articles: []models.NewsArticle{{Title: "Apple launches new product", URL: "https://news.com/apple", Sentiment: 0.4}}},
		filings: &fakeFilings{filings: []models.Filing{{Type: "10-K", Title: "Annual report", Date: "2025-08-01"}}},
		social:  &fakeSocial{posts: []models.SentimentPost{{Platform: "reddit", Subreddit: "stocks", Title: "AAPL to the moon!", Sentiment: 0.6}}},
		macro:   &fakeMacro{snap: models.MacroSnapshot{"GDP": {{Date: "2025-07-01", Value: models.Num(3.2)}}}},
		company: &fakeCompany{ev: models.CompanyEvents{Pressroom: []string{"Apple event next week."}}},
		startup: &fakeStartup{sig: models.StartupSignals{GithubStars: models.RepoStars{Repo: "openai/gym"}}},
		nlp:     &fakeExtractor{ev: models.ExtractedEvents{KeyPhrases: []string{"product launch"}}},
	}
}

func (f *fakeSources) Sources() Sources {
	return Sources{
		Market:  f.market,
		News:    f.news,
		Filings: f.filings,
		Social:  f.social,
		Macro:   f.macro,
		Company: f.company,
		Startup: f.startup,
		NLP:     f.nlp,
	}
}

type recordingMetrics struct {
	mu       sync.Mutex
	stages   map[string]bool // stage -> failed
	errors   []string
	verdicts []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{stages: map[string]bool{}}
}

func (m *recordingMetrics) RecordStage(stage string, _ float64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages[stage] = err != nil
}

func (m *recordingMetrics) RecordSummarizer(string, string, float64) {}

func (m *recordingMetrics) RecordVerdict(v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts = append(m.verdicts, v)
}

func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

type memJobStore struct {
	mu      sync.Mutex
	jobs    map[string]models.Job
	history []models.JobState
	err     error
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: map[string]models.Job{}}
}

func (s *memJobStore) Save(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.jobs[job.ID] = *job
	s.history = append(s.history, job.State)
	return nil
}

func (s *memJobStore) Get(_ context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, errors.New("job not found")
	}
	return &job, nil
}

func (s *memJobStore) states() []models.JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.JobState(nil), s.history...)
}

func fixedNow() time.Time {
	return time.Date(2025, 9, 5, 12, 0, 0, 0, time.UTC)
}
