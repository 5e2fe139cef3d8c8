package storage

const (
	TypeMikan = "mikan"
	TypeOther = "other"

	// UnknownSubgroup labels releases whose group cannot be resolved.
	UnknownSubgroup = "未知字幕组"
)

// Subscription is one followed show. Season and Offset are pointers so a
// record decoded with an explicit null can be told apart from zero.
type Subscription struct {
	URL              string       `json:"url"`
	Type             string       `json:"type"`
	BangumiFeedID    string       `json:"bangumiFeedId"`
	BangumiID        string       `json:"bangumiId"`
	Title            string       `json:"title"`
	ThemoviedbName   string       `json:"themoviedbName"`
	TMDB             *TMDBInfo    `json:"tmdb"`
	Subgroup         string       `json:"subgroup"`
	Season           *int         `json:"season"`
	Offset           *int         `json:"offset"`
	Exclude          []string     `json:"exclude"`
	GlobalExclude    bool         `json:"globalExclude"`
	DownloadNew      bool         `json:"downloadNew"`
	DownloadPath     string       `json:"downloadPath"`
	Ova              bool         `json:"ova"`
	BackupFeeds      []BackupFeed `json:"backRssList"`
	LegacyBackupURLs []string     `json:"backRss"`
	Enable           bool         `json:"enable"`
	BgmURL           string       `json:"bgmUrl"`
	Cover            string       `json:"cover"`
	Image            string       `json:"image"`
	Year             int          `json:"year"`
	Month            int          `json:"month"`
	Week             int          `json:"week"`
	Score            float64      `json:"score"`
	TotalEpisodes    int          `json:"totalEpisodeNumber"`
}

// BackupFeed is an alternate RSS source for the same show. A nil Offset
// inherits the parent subscription's offset on load.
type BackupFeed struct {
	Label  string `json:"label"`
	URL    string `json:"url"`
	Offset *int   `json:"offset"`
}

type TMDBInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// NewSubscription returns a record populated with every default a freshly
// created or legacy-decoded subscription should carry.
func NewSubscription() *Subscription {
	return &Subscription{
		Type:             TypeMikan,
		Season:           IntPtr(1),
		Offset:           IntPtr(0),
		Exclude:          []string{},
		BackupFeeds:      []BackupFeed{},
		LegacyBackupURLs: []string{},
		Enable:           true,
	}
}

// SeasonNumber returns the season, or 0 when unset.
func (s *Subscription) SeasonNumber() int {
	if s.Season == nil {
		return 0
	}
	return *s.Season
}

// EpisodeOffset returns the offset, or 0 when unset.
func (s *Subscription) EpisodeOffset() int {
	if s.Offset == nil {
		return 0
	}
	return *s.Offset
}

// Clone returns a deep copy safe to mutate independently.
func (s *Subscription) Clone() *Subscription {
	c := *s
	if s.Season != nil {
		c.Season = IntPtr(*s.Season)
	}
	if s.Offset != nil {
		c.Offset = IntPtr(*s.Offset)
	}
	if s.TMDB != nil {
		t := *s.TMDB
		c.TMDB = &t
	}
	if s.Exclude != nil {
		c.Exclude = append([]string{}, s.Exclude...)
	}
	if s.LegacyBackupURLs != nil {
		c.LegacyBackupURLs = append([]string{}, s.LegacyBackupURLs...)
	}
	if s.BackupFeeds != nil {
		c.BackupFeeds = make([]BackupFeed, len(s.BackupFeeds))
		for i, b := range s.BackupFeeds {
			c.BackupFeeds[i] = b
			if b.Offset != nil {
				c.BackupFeeds[i].Offset = IntPtr(*b.Offset)
			}
		}
	}
	return &c
}

func IntPtr(v int) *int {
	return &v
}
