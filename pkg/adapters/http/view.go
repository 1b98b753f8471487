package http

import "github.com/aretw0/onboard/pkg/domain"

type fileView struct {
	Name       string         `json:"name"`
	Size       int64          `json:"size"`
	MediaType  string         `json:"media_type"`
	Display    domain.Display `json:"display"`
	Icon       string         `json:"icon,omitempty"`
	PreviewURL string         `json:"preview_url,omitempty"`
}

type fieldView struct {
	domain.Field
	Value string    `json:"value,omitempty"`
	File  *fileView `json:"file,omitempty"`
}

type stateView struct {
	SessionID  string                 `json:"session_id"`
	Instance   string                 `json:"instance"`
	Step       domain.StepID          `json:"step"`
	Title      string                 `json:"title"`
	Status     domain.ExecutionStatus `json:"status"`
	Error      string                 `json:"error,omitempty"`
	Submitting bool                   `json:"submitting"`
	Fields     []fieldView            `json:"fields"`
	History    []domain.StepID        `json:"history"`
}

// newStateView renders the current step of an already redacted state.
func newStateView(s *domain.State) stateView {
	v := stateView{
		SessionID:  s.SessionID,
		Instance:   s.Instance,
		Step:       s.CurrentStep,
		Title:      s.CurrentStep.Title(),
		Status:     s.Status,
		Error:      s.Error,
		Submitting: s.Submitting(),
		Fields:     []fieldView{},
		History:    s.History,
	}
	for _, f := range domain.FieldsOf(s.CurrentStep) {
		fv := fieldView{Field: f}
		if f.Kind != domain.KindFile {
			fv.Value = s.Answers.Text(f.Name)
		} else if att := s.Answers.Attachment(f.Name); att != nil {
			fv.File = &fileView{
				Name:      att.Name,
				Size:      att.Size,
				MediaType: att.MediaType,
				Display:   att.Display(),
				Icon:      att.Icon(),
			}
			if att.Preview != nil {
				fv.File.PreviewURL = att.Preview.URL
			}
		}
		v.Fields = append(v.Fields, fv)
	}
	return v
}
