// Package bangumi talks to the bgm.tv catalog API and maps its subjects
// onto subscriptions.
package bangumi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pders01/anirss/internal/debuglog"
	"github.com/pders01/anirss/internal/storage"
)

const (
	defaultBaseURL = "https://api.bgm.tv"
	subjectPageURL = "https://bgm.tv/subject/"

	// subjectTypeAnime is the bgm.tv subject type for animation.
	subjectTypeAnime = 2
)

// ErrNotFound is returned when neither an id nor a keyword search finds a
// subject.
var ErrNotFound = errors.New("bangumi subject not found")

var subjectIDPattern = regexp.MustCompile(`subject/(\d+)`)

// Subject is the part of a bgm.tv subject the resolver consumes.
type Subject struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	NameCN        string `json:"name_cn"`
	Date          string `json:"date"`
	Platform      string `json:"platform"`
	Eps           int    `json:"eps"`
	TotalEpisodes int    `json:"total_episodes"`
	Images        Images `json:"images"`
	Rating        Rating `json:"rating"`
}

type Images struct {
	Large  string `json:"large"`
	Common string `json:"common"`
	Medium string `json:"medium"`
}

type Rating struct {
	Score float64 `json:"score"`
}

// DisplayName prefers the Chinese name.
func (s *Subject) DisplayName() string {
	if name := strings.TrimSpace(s.NameCN); name != "" {
		return name
	}
	return strings.TrimSpace(s.Name)
}

// AirDate parses Date, returning the zero time when it is missing or
// malformed.
func (s *Subject) AirDate() time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s.Date))
	if err != nil {
		return time.Time{}
	}
	return t
}

type searchRequest struct {
	Keyword string       `json:"keyword"`
	Filter  searchFilter `json:"filter"`
}

type searchFilter struct {
	Type []int `json:"type"`
}

type searchResponse struct {
	Total int       `json:"total"`
	Data  []Subject `json:"data"`
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      *storage.Cache
	cacheTTL   time.Duration
	titleYear  bool
	tmdbID     bool
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithCache stores lookups in cache for ttl. A non-positive ttl never
// expires entries.
func WithCache(cache *storage.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithNaming controls the suffixes Name appends.
func WithNaming(titleYear, tmdbID bool) Option {
	return func(c *Client) {
		c.titleYear = titleYear
		c.tmdbID = tmdbID
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "anirss/1.0",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubjectID extracts the numeric id from a bgm.tv or bangumi.tv subject URL.
func SubjectID(bgmURL string) (int64, bool) {
	m := subjectIDPattern.FindStringSubmatch(bgmURL)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// SubjectURL is the public page of a subject.
func SubjectURL(id int64) string {
	return subjectPageURL + strconv.FormatInt(id, 10)
}

// Lookup finds the subject for sub, by the id in BgmURL when present and by
// searching the title otherwise.
func (c *Client) Lookup(ctx context.Context, sub *storage.Subscription) (*Subject, error) {
	if id, ok := SubjectID(sub.BgmURL); ok {
		return c.Get(ctx, id)
	}
	keyword := StripSeason(sub.Title)
	if keyword == "" {
		keyword = strings.TrimSpace(sub.Title)
	}
	if keyword == "" {
		return nil, ErrNotFound
	}
	return c.Search(ctx, keyword)
}

// Get fetches a subject by id.
func (c *Client) Get(ctx context.Context, id int64) (*Subject, error) {
	key := "subject:" + strconv.FormatInt(id, 10)
	var subject Subject
	if c.fromCache(key, &subject) {
		return &subject, nil
	}

	endpoint := fmt.Sprintf("%s/v0/subjects/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if err := c.do(req, &subject); err != nil {
		return nil, errors.Wrapf(err, "get subject %d", id)
	}
	c.toCache(key, &subject)
	return &subject, nil
}

// Search returns the best anime match for keyword.
func (c *Client) Search(ctx context.Context, keyword string) (*Subject, error) {
	key := "search:" + keyword
	var subject Subject
	if c.fromCache(key, &subject) {
		return &subject, nil
	}

	body, err := json.Marshal(searchRequest{
		Keyword: keyword,
		Filter:  searchFilter{Type: []int{subjectTypeAnime}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode search")
	}
	endpoint := c.baseURL + "/v0/search/subjects?limit=10"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	var payload searchResponse
	if err := c.do(req, &payload); err != nil {
		return nil, errors.Wrapf(err, "search %q", keyword)
	}
	if len(payload.Data) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "search %q", keyword)
	}
	subject = payload.Data[0]
	c.toCache(key, &subject)
	return &subject, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("bangumi returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func (c *Client) fromCache(key string, out any) bool {
	if c.cache == nil {
		return false
	}
	return c.cache.Get(storage.BangumiBucket, key, c.cacheTTL, out)
}

func (c *Client) toCache(key string, v any) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(storage.BangumiBucket, key, v); err != nil {
		debuglog.Warnf("bangumi cache write %s: %v", key, err)
	}
}

// Name is the folder title for subject: its display name without season
// markers, optionally suffixed with the air year and the TMDB id.
func (c *Client) Name(subject *Subject, tmdb *storage.TMDBInfo) string {
	if subject == nil {
		return ""
	}
	name := StripSeason(subject.DisplayName())
	if name == "" {
		name = subject.DisplayName()
	}
	if c.titleYear {
		if year := subject.AirDate().Year(); year > 1 {
			name = fmt.Sprintf("%s (%d)", name, year)
		}
	}
	if c.tmdbID && tmdb != nil && tmdb.ID > 0 {
		name = fmt.Sprintf("%s [tmdbid=%d]", name, tmdb.ID)
	}
	return name
}
