package startup

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/feed"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"

	"github.com/google/go-github/v57/github"
)

const (
	newsSearchURL = "https://news.google.com/rss/search"
	greenhouseURL = "https://boards-api.greenhouse.io/v1/boards/"
	maxItems      = 10
)

var fundingTerms = []string{"raise", "raised", "funding", "series", "valuation", "investment", "invests", "round"}

type greenhouseJobs struct {
	Jobs []struct {
		Title    string `json:"title"`
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
	} `json:"jobs"`
}

// Service reads repository traction, funding headlines and open roles.
type Service struct {
	client        *xhttp.Client
	gh            *github.Client
	newsURL       string
	greenhouseURL string
	logger        *applogger.Logger
}

type Option func(*Service)

func WithNewsURL(u string) Option { return func(s *Service) { s.newsURL = u } }

func WithGreenhouseURL(u string) Option { return func(s *Service) { s.greenhouseURL = u } }

func NewService(client *xhttp.Client, gh *github.Client, logger *applogger.Logger, opts ...Option) *Service {
	s := &Service{
		client:        client,
		gh:            gh,
		newsURL:       newsSearchURL,
		greenhouseURL: greenhouseURL,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch never fails on a single source: unknown stars stay nil and lists stay empty.
func (s *Service) Fetch(ctx context.Context, req models.StartupSignalsRequest) (models.StartupSignals, error) {
	out := models.StartupSignals{
		GithubStars: models.RepoStars{Repo: req.Repo},
		FundingNews: []string{},
		JobPostings: []string{},
	}

	if stars, err := s.stars(ctx, req.Repo); err != nil {
		s.logger.Warn("github repo lookup failed", applogger.String("repo", req.Repo), applogger.Error(err))
	} else {
		out.GithubStars.Stars = &stars
	}

	if req.Company == "" {
		return out, nil
	}
	if news, err := s.funding(ctx, req.Company); err != nil {
		s.logger.Warn("funding news failed", applogger.String("company", req.Company), applogger.Error(err))
	} else {
		out.FundingNews = news
	}
	if jobs, err := s.jobs(ctx, req.Company); err != nil {
		s.logger.Warn("job postings failed", applogger.String("company", req.Company), applogger.Error(err))
	} else {
		out.JobPostings = jobs
	}
	return out, nil
}

func (s *Service) stars(ctx context.Context, repo string) (int, error) {
	if s.gh == nil {
		return 0, fmt.Errorf("github client not configured")
	}
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return 0, fmt.Errorf("invalid repo %q", repo)
	}
	r, _, err := s.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return 0, err
	}
	return r.GetStargazersCount(), nil
}

// funding returns news headlines about the company that mention a funding term.
func (s *Service) funding(ctx context.Context, company string) ([]string, error) {
	var raw []byte
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.newsURL,
		QueryParams: map[string][]string{
			"q":    {company + " funding"},
			"hl":   {"en-US"},
			"gl":   {"US"},
			"ceid": {"US:en"},
		},
	}, &raw)
	if err != nil {
		return nil, err
	}
	items, err := feed.Parse(raw)
	if err != nil {
		return nil, err
	}

	out := []string{}
	for _, it := range items {
		if len(out) >= maxItems {
			break
		}
		if isFunding(it.Title) {
			out = append(out, it.Title)
		}
	}
	return out, nil
}

func isFunding(title string) bool {
	lower := strings.ToLower(title)
	for _, term := range fundingTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// jobs lists open roles from the company's Greenhouse board.
func (s *Service) jobs(ctx context.Context, company string) ([]string, error) {
	board := strings.ToLower(strings.ReplaceAll(company, " ", ""))
	var resp greenhouseJobs
	if err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.greenhouseURL + url.PathEscape(board) + "/jobs",
	}, &resp); err != nil {
		return nil, err
	}

	out := []string{}
	for _, j := range resp.Jobs {
		if len(out) >= maxItems {
			break
		}
		title := fmt.Sprintf("%s is hiring %s", company, j.Title)
		if j.Location.Name != "" {
			title += " (" + j.Location.Name + ")"
		}
		out = append(out, title)
	}
	return out, nil
}
