package company

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"MarketPulse/internal/domain/models"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-github/v57/github"
)

const maxEvents = 10

// Service scans a pressroom, a job board and a GitHub organisation.
type Service struct {
	client *xhttp.Client
	gh     *github.Client
	logger *applogger.Logger
}

func NewService(client *xhttp.Client, gh *github.Client, logger *applogger.Logger) *Service {
	return &Service{client: client, gh: gh, logger: logger}
}

// Fetch collects pressroom headlines, job links and recent GitHub event types.
// Each part degrades to an empty list on failure.
func (s *Service) Fetch(ctx context.Context, req models.CompanyEventRequest) (models.CompanyEvents, error) {
	out := models.CompanyEvents{Pressroom: []string{}, Jobs: []string{}, GithubActivity: []string{}}
	var failed int

	if req.PressroomURL != "" {
		doc, err := s.page(ctx, req.PressroomURL)
		if err != nil {
			failed++
			s.logger.Warn("pressroom fetch failed", applogger.String("url", req.PressroomURL), applogger.Error(err))
		} else {
			out.Pressroom = Headlines(doc)
		}
	}

	if req.JobBoardURL != "" {
		doc, err := s.page(ctx, req.JobBoardURL)
		if err != nil {
			failed++
			s.logger.Warn("job board fetch failed", applogger.String("url", req.JobBoardURL), applogger.Error(err))
		} else {
			out.Jobs = JobLinks(doc)
		}
	}

	if req.GithubOrg != "" && s.gh != nil {
		types, err := s.orgEvents(ctx, req.GithubOrg)
		if err != nil {
			failed++
			s.logger.Warn("github events failed", applogger.String("org", req.GithubOrg), applogger.Error(err))
		} else {
			out.GithubActivity = types
		}
	}

	if failed == 3 {
		return out, fmt.Errorf("company events: all sources failed")
	}
	return out, nil
}

func (s *Service) page(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var raw []byte
	if err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     pageURL,
		Headers: map[string]string{"Accept": "text/html"},
	}, &raw); err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(raw))
}

func (s *Service) orgEvents(ctx context.Context, org string) ([]string, error) {
	events, _, err := s.gh.Activity.ListEventsForOrganization(ctx, org, &github.ListOptions{PerPage: maxEvents})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, maxEvents)
	for _, e := range events {
		if len(out) >= maxEvents {
			break
		}
		out = append(out, e.GetType())
	}
	return out, nil
}

// Headlines returns the text of every h2 on the page.
func Headlines(doc *goquery.Document) []string {
	out := []string{}
	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// JobLinks returns anchor texts mentioning "job".
func JobLinks(doc *goquery.Document) []string {
	out := []string{}
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if strings.Contains(strings.ToLower(t), "job") {
			out = append(out, t)
		}
	})
	return out
}
