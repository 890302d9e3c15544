package models

// Content карточка тайтла каталога.
type Content struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Genre       string   `json:"genre,omitempty"`
	Year        int      `json:"year,omitempty"`
	Language    string   `json:"language,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	StreamURL   string   `json:"stream_url,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ContentDetails подробная информация о тайтле для конкретного пользователя.
type ContentDetails struct {
	Content
	InWatchlist bool     `json:"in_watchlist"`
	MyReview    *Review  `json:"my_review,omitempty"`
	Reviews     []Review `json:"reviews,omitempty"`
}

// HomeSections подборки главной страницы.
type HomeSections struct {
	Trending    []Content `json:"trending"`
	Latest      []Content `json:"latest"`
	Originals   []Content `json:"originals"`
	Recommended []Content `json:"recommended"`
}

// SearchQuery параметры поиска по каталогу.
type SearchQuery struct {
	Q        string
	Genre    string
	Language string
	Year     int
}

// SearchResult ответ GET /content/search.
type SearchResult struct {
	Results []Content `json:"results"`
}

// Review оценка и отзыв пользователя.
type Review struct {
	UserID string `json:"user_id,omitempty"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
	Text   string `json:"text,omitempty" validate:"max=2000"`
}

// WatchlistItem элемент списка «смотреть позже».
type WatchlistItem struct {
	ID      string  `json:"id"`
	Content Content `json:"content"`
}

// Watchlist ответ GET /watchlist.
type Watchlist struct {
	Items []WatchlistItem `json:"items"`
}
