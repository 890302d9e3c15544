package models

// ContentInput данные тайтла для создания и обновления через админку.
type ContentInput struct {
	Title     string `json:"title" validate:"required"`
	Year      int    `json:"year,omitempty" validate:"omitempty,min=1888,max=2100"`
	Genre     string `json:"genre,omitempty"`
	Language  string `json:"language,omitempty"`
	StreamURL string `json:"stream_url,omitempty" validate:"omitempty,url"`
	Thumbnail string `json:"thumbnail,omitempty" validate:"omitempty,url"`
}

// ContentPatch частичное обновление тайтла.
type ContentPatch struct {
	Title     *string `json:"title,omitempty"`
	Year      *int    `json:"year,omitempty"`
	Genre     *string `json:"genre,omitempty"`
	Language  *string `json:"language,omitempty"`
	StreamURL *string `json:"stream_url,omitempty"`
	Thumbnail *string `json:"thumbnail,omitempty"`
}

// AdminContentList ответ GET /admin/content.
type AdminContentList struct {
	Items []Content `json:"items"`
	Total int       `json:"total"`
}

// AdminUserList ответ GET /admin/users.
type AdminUserList struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// Analytics ответ GET /admin/analytics.
type Analytics struct {
	DAU            int     `json:"dau"`
	MonthlyStreams int     `json:"monthly_streams"`
	ChurnRate      float64 `json:"churn_rate"`
	Subscribers    int     `json:"subscribers"`
}

// Page параметры пагинации для списков админки.
type Page struct {
	Limit  int
	Offset int
}
