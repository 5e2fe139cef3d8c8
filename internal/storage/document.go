package storage

// rawSubscription is the on-disk shape as decoded, with every field a
// pointer so an absent or null value never clobbers a default.
type rawSubscription struct {
	URL              *string       `json:"url"`
	Type             *string       `json:"type"`
	BangumiFeedID    *string       `json:"bangumiFeedId"`
	BangumiID        *string       `json:"bangumiId"`
	Title            *string       `json:"title"`
	ThemoviedbName   *string       `json:"themoviedbName"`
	TMDB             *TMDBInfo     `json:"tmdb"`
	Subgroup         *string       `json:"subgroup"`
	Season           *int          `json:"season"`
	Offset           *int          `json:"offset"`
	Exclude          *[]string     `json:"exclude"`
	GlobalExclude    *bool         `json:"globalExclude"`
	DownloadNew      *bool         `json:"downloadNew"`
	DownloadPath     *string       `json:"downloadPath"`
	Ova              *bool         `json:"ova"`
	BackupFeeds      *[]BackupFeed `json:"backRssList"`
	LegacyBackupURLs *[]string     `json:"backRss"`
	Enable           *bool         `json:"enable"`
	BgmURL           *string       `json:"bgmUrl"`
	Cover            *string       `json:"cover"`
	Image            *string       `json:"image"`
	Year             *int          `json:"year"`
	Month            *int          `json:"month"`
	Week             *int          `json:"week"`
	Score            *float64      `json:"score"`
	TotalEpisodes    *int          `json:"totalEpisodeNumber"`
}

// overlay copies every non-null decoded field onto dst.
func overlay(dst *Subscription, raw *rawSubscription) {
	setString(&dst.URL, raw.URL)
	setString(&dst.Type, raw.Type)
	setString(&dst.BangumiFeedID, raw.BangumiFeedID)
	setString(&dst.BangumiID, raw.BangumiID)
	setString(&dst.Title, raw.Title)
	setString(&dst.ThemoviedbName, raw.ThemoviedbName)
	if raw.TMDB != nil {
		t := *raw.TMDB
		dst.TMDB = &t
	}
	setString(&dst.Subgroup, raw.Subgroup)
	if raw.Season != nil {
		dst.Season = IntPtr(*raw.Season)
	}
	if raw.Offset != nil {
		dst.Offset = IntPtr(*raw.Offset)
	}
	if raw.Exclude != nil && *raw.Exclude != nil {
		dst.Exclude = append([]string{}, (*raw.Exclude)...)
	}
	setBool(&dst.GlobalExclude, raw.GlobalExclude)
	setBool(&dst.DownloadNew, raw.DownloadNew)
	setString(&dst.DownloadPath, raw.DownloadPath)
	setBool(&dst.Ova, raw.Ova)
	if raw.BackupFeeds != nil && *raw.BackupFeeds != nil {
		dst.BackupFeeds = append([]BackupFeed{}, (*raw.BackupFeeds)...)
	}
	if raw.LegacyBackupURLs != nil && *raw.LegacyBackupURLs != nil {
		dst.LegacyBackupURLs = append([]string{}, (*raw.LegacyBackupURLs)...)
	}
	setBool(&dst.Enable, raw.Enable)
	setString(&dst.BgmURL, raw.BgmURL)
	setString(&dst.Cover, raw.Cover)
	setString(&dst.Image, raw.Image)
	setInt(&dst.Year, raw.Year)
	setInt(&dst.Month, raw.Month)
	setInt(&dst.Week, raw.Week)
	if raw.Score != nil {
		dst.Score = *raw.Score
	}
	setInt(&dst.TotalEpisodes, raw.TotalEpisodes)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// migrate upgrades records written by older versions. Running it more than
// once leaves the record unchanged.
func migrate(sub *Subscription) {
	if len(sub.BackupFeeds) == 0 && len(sub.LegacyBackupURLs) > 0 {
		feeds := make([]BackupFeed, 0, len(sub.LegacyBackupURLs))
		for _, u := range sub.LegacyBackupURLs {
			feeds = append(feeds, BackupFeed{Label: UnknownSubgroup, URL: u})
		}
		sub.BackupFeeds = feeds
	}

	for i := range sub.BackupFeeds {
		if sub.BackupFeeds[i].Offset == nil && sub.Offset != nil {
			sub.BackupFeeds[i].Offset = IntPtr(*sub.Offset)
		}
	}
}

// decodeRecord builds a migrated subscription from its decoded form.
func decodeRecord(raw *rawSubscription) *Subscription {
	sub := NewSubscription()
	overlay(sub, raw)
	migrate(sub)
	return sub
}
