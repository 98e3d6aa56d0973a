package request

type RenderRequest struct {
	Markdown    string `json:"markdown"`
	Target      string `json:"target,omitempty"`
	ClassPrefix string `json:"class_prefix,omitempty"`
}
