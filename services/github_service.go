// services/github_service.go - GitHub OAuth + repository activity proxy
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gorm.io/gorm"

	"github.com/Prem30-jr/Hack-Tracker/apperr"
	"github.com/Prem30-jr/Hack-Tracker/models"
)

const githubUserAgent = "HackTracker-App"

type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	// Overridable endpoints, used by tests.
	OAuthBaseURL string
	APIBaseURL   string
}

type GitHubService struct {
	db     *gorm.DB
	cfg    GitHubConfig
	client *http.Client
}

func NewGitHubService(db *gorm.DB, cfg GitHubConfig) *GitHubService {
	if cfg.OAuthBaseURL == "" {
		cfg.OAuthBaseURL = "https://github.com"
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.github.com"
	}
	return &GitHubService{
		db:     db,
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// AuthorizeURL builds the GitHub OAuth redirect, carrying the team id
// in the state parameter so the callback can attribute the token.
func (s *GitHubService) AuthorizeURL(teamID uint) string {
	q := url.Values{}
	q.Set("client_id", s.cfg.ClientID)
	q.Set("redirect_uri", s.cfg.CallbackURL)
	q.Set("scope", "repo")
	q.Set("state", fmt.Sprintf("%d", teamID))
	return s.cfg.OAuthBaseURL + "/login/oauth/authorize?" + q.Encode()
}

// ExchangeCode trades the OAuth code for an access token and stores it
// on the team.
func (s *GitHubService) ExchangeCode(ctx context.Context, teamID uint, code string) error {
	if code == "" {
		return apperr.Validation("No code provided")
	}

	payload, err := json.Marshal(map[string]string{
		"client_id":     s.cfg.ClientID,
		"client_secret": s.cfg.ClientSecret,
		"code":          code,
		"redirect_uri":  s.cfg.CallbackURL,
	})
	if err != nil {
		return apperr.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.OAuthBaseURL+"/login/oauth/access_token", bytes.NewReader(payload))
	if err != nil {
		return apperr.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", githubUserAgent)

	body, err := s.do(req)
	if err != nil {
		return err
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return apperr.Dependency("Failed to obtain access token", err)
	}
	if tokenResp.AccessToken == "" {
		return apperr.Validation("Failed to obtain access token")
	}

	result := s.db.Model(&models.Team{}).Where("id = ?", teamID).Updates(map[string]interface{}{
		"github_access_token": tokenResp.AccessToken,
		"github_connected":    true,
	})
	if result.Error != nil {
		return apperr.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Team not found")
	}
	return nil
}

// ConnectRepo verifies the repository exists under the stored token
// and records it on the team.
func (s *GitHubService) ConnectRepo(ctx context.Context, teamID uint, owner, repo string) (*models.Team, error) {
	team, err := s.loadTeam(teamID)
	if err != nil {
		return nil, err
	}
	if team.GithubAccessToken == "" {
		return nil, apperr.Validation("GitHub not authorized. Please authenticate first.")
	}

	var repoInfo struct {
		ID      int64  `json:"id"`
		HTMLURL string `json:"html_url"`
	}
	status, err := s.apiGet(ctx, team.GithubAccessToken,
		fmt.Sprintf("/repos/%s/%s", owner, repo), &repoInfo)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, apperr.Validation("Repository not found. Check owner/repo names and permissions.")
	}
	if status != http.StatusOK {
		return nil, apperr.Dependency("Failed to connect repository. GitHub API error.", nil)
	}

	updates := map[string]interface{}{
		"github_repo_owner": owner,
		"github_repo_name":  repo,
		"github_repo_id":    repoInfo.ID,
		"github_repo_url":   repoInfo.HTMLURL,
	}
	if err := s.db.Model(&models.Team{}).Where("id = ?", teamID).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return s.loadTeam(teamID)
}

// RepoStats is the activity snapshot shown on the team dashboard.
type RepoStats struct {
	Commits      json.RawMessage `json:"commits"`
	PullRequests json.RawMessage `json:"pullRequests"`
	Contributors json.RawMessage `json:"contributors"`
}

// Stats fetches recent commits, pull requests and contributors for the
// team's connected repository.
func (s *GitHubService) Stats(ctx context.Context, teamID uint) (*RepoStats, error) {
	team, err := s.loadTeam(teamID)
	if err != nil {
		return nil, err
	}
	if team.GithubAccessToken == "" || team.GithubRepoName == "" {
		return nil, apperr.Validation("GitHub not connected")
	}

	base := fmt.Sprintf("/repos/%s/%s", team.GithubRepoOwner, team.GithubRepoName)
	stats := &RepoStats{}

	paths := []struct {
		path string
		dest *json.RawMessage
	}{
		{base + "/commits?per_page=30", &stats.Commits},
		{base + "/pulls?state=all&per_page=10", &stats.PullRequests},
		{base + "/contributors", &stats.Contributors},
	}
	for _, p := range paths {
		var raw json.RawMessage
		status, err := s.apiGet(ctx, team.GithubAccessToken, p.path, &raw)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, apperr.Dependency("Failed to fetch GitHub stats", nil)
		}
		*p.dest = raw
	}
	return stats, nil
}

func (s *GitHubService) loadTeam(teamID uint) (*models.Team, error) {
	var team models.Team
	if err := s.db.Where("id = ?", teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Team not found")
		}
		return nil, apperr.Internal(err)
	}
	return &team, nil
}

// apiGet performs an authenticated GitHub API request and decodes the
// body into dest when the status is 200. Non-200 statuses are returned
// to the caller for mapping.
func (s *GitHubService) apiGet(ctx context.Context, token, path string, dest interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.APIBaseURL+path, nil)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", githubUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return 0, apperr.DependencyTimeout("GitHub API request timed out")
		}
		return 0, apperr.Dependency("GitHub API request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, apperr.Dependency("GitHub API request failed", err)
	}
	if resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(body, dest); err != nil {
			return 0, apperr.Dependency("GitHub API returned an unreadable response", err)
		}
	}
	return resp.StatusCode, nil
}

func (s *GitHubService) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || req.Context().Err() != nil {
			return nil, apperr.DependencyTimeout("GitHub request timed out")
		}
		return nil, apperr.Dependency("GitHub request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.Dependency("GitHub request failed", err)
	}
	return body, nil
}
