package dto

type DownloadResponse struct {
	URL       string `json:"url"`
	BookTitle string `json:"book_title,omitempty"`
	Remaining int    `json:"remaining_downloads,omitempty"`
}
