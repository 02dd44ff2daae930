package youtube

// Wire types for the three Data API v3 endpoints the adapter uses.

type pageInfo struct {
	TotalResults int `json:"totalResults"`
}

type thumbnail struct {
	URL string `json:"url"`
}

type thumbnails struct {
	High     thumbnail `json:"high"`
	Standard thumbnail `json:"standard"`
}

type channelSnippet struct {
	Title       string     `json:"title"`
	CustomURL   string     `json:"customUrl"`
	PublishedAt string     `json:"publishedAt"`
	Country     string     `json:"country"`
	Thumbnails  thumbnails `json:"thumbnails"`
}

type channelItem struct {
	ID         string            `json:"id"`
	Snippet    channelSnippet    `json:"snippet"`
	Statistics map[string]string `json:"statistics"`
}

// channelListResponse covers both the forHandle id lookup and the full
// statistics/status/snippet fetch.
type channelListResponse struct {
	PageInfo pageInfo      `json:"pageInfo"`
	Items    []channelItem `json:"items"`
}

type searchItemID struct {
	VideoID string `json:"videoId"`
}

type searchItem struct {
	ID searchItemID `json:"id"`
}

type searchListResponse struct {
	Items []searchItem `json:"items"`
}

type videoSnippet struct {
	Title       string     `json:"title"`
	PublishedAt string     `json:"publishedAt"`
	Thumbnails  thumbnails `json:"thumbnails"`
}

type videoItem struct {
	ID         string            `json:"id"`
	Snippet    videoSnippet      `json:"snippet"`
	Statistics map[string]string `json:"statistics"`
}

type videoListResponse struct {
	Items []videoItem `json:"items"`
}
