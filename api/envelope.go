package api

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ResultSuccessful is the resultStatus of an accepted request
const ResultSuccessful = "SUCCESSFUL"

// Text accepts a JSON string or number. The backend sends status and
// httpCode as either.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

// Envelope wraps every backend response. User endpoints carry their data in
// payload, catalogue endpoints in payloadDto.
type Envelope[T any] struct {
	Payload      *T     `json:"payload,omitempty"`
	PayloadDTO   *T     `json:"payloadDto,omitempty"`
	Message      string `json:"message,omitempty"`
	Status       Text   `json:"status,omitempty"`
	Success      *bool  `json:"success,omitempty"`
	IsSuccess    *bool  `json:"isSuccess,omitempty"`
	ResultStatus string `json:"resultStatus,omitempty"`
	HTTPStatus   string `json:"httpStatus,omitempty"`
	HTTPCode     Text   `json:"httpCode,omitempty"`

	TotalPages       int  `json:"totalPages,omitempty"`
	TotalElements    int  `json:"totalElements,omitempty"`
	Last             bool `json:"last,omitempty"`
	Size             int  `json:"size,omitempty"`
	Number           int  `json:"number,omitempty"`
	NumberOfElements int  `json:"numberOfElements,omitempty"`
}

// Data returns whichever payload field the backend filled in
func (e *Envelope[T]) Data() (T, bool) {
	switch {
	case e.Payload != nil:
		return *e.Payload, true
	case e.PayloadDTO != nil:
		return *e.PayloadDTO, true
	default:
		var zero T
		return zero, false
	}
}

// Succeeded applies the backend's success indicators. Any explicit failure
// indicator wins; with no indicator at all, a payload means success.
func (e *Envelope[T]) Succeeded() bool {
	if (e.Success != nil && !*e.Success) || (e.IsSuccess != nil && !*e.IsSuccess) {
		return false
	}
	if e.ResultStatus != "" && !strings.EqualFold(e.ResultStatus, ResultSuccessful) {
		return false
	}

	switch {
	case e.Success != nil, e.IsSuccess != nil:
		return true
	case e.ResultStatus != "":
		return true
	case strings.EqualFold(string(e.Status), "OK"):
		return true
	}
	_, ok := e.Data()
	return ok
}

// Err returns nil for a successful envelope and an *ApplicationError otherwise
func (e *Envelope[T]) Err() error {
	if e.Succeeded() {
		return nil
	}
	return &ApplicationError{
		Message:      e.Message,
		ResultStatus: e.ResultStatus,
		HTTPCode:     string(e.HTTPCode),
	}
}
