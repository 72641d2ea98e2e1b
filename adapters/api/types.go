package api

import (
	"time"

	"godrift/app"
	"godrift/domain/anomaly"
	"godrift/domain/series"
	"godrift/domain/text"
	"godrift/internal/errors"
)

// SeriesPayload is one numeric column as delivered by the data
// processor: already cleaned, timestamps strictly increasing.
type SeriesPayload struct {
	Name   string         `json:"name"`
	Points []series.Point `json:"points"`
}

// DatasetPayload is the wire form of a detection request. Parameters
// are optional; server defaults apply when omitted.
type DatasetPayload struct {
	Series     []SeriesPayload              `json:"series,omitempty"`
	Text       map[string][]text.Bucket     `json:"text,omitempty"`
	Parameters *anomaly.DetectionParameters `json:"parameters,omitempty"`
}

// ToRequest validates the payload into a run request.
func (p DatasetPayload) ToRequest(defaults anomaly.DetectionParameters, timeout time.Duration) (app.Request, error) {
	req := app.Request{
		Text:    p.Text,
		Params:  defaults,
		Timeout: timeout,
	}
	if p.Parameters != nil {
		req.Params = *p.Parameters
	}

	for _, sp := range p.Series {
		s, err := series.New(sp.Name, sp.Points)
		if err != nil {
			return app.Request{}, errors.Wrapf(err, "series %q", sp.Name)
		}
		req.Series = append(req.Series, s)
	}
	return req, nil
}
