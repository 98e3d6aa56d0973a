package response

import "github.com/user/linkcard/internal/entity"

// MetadataResponse is a DTO for a resolved link, mirroring entity.Metadata
type MetadataResponse struct {
	URL      string           `json:"url"`
	Metadata *entity.Metadata `json:"metadata"`
}

type RenderResponse struct {
	HTML string `json:"html"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
