package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Remote calls an external model server that exposes POST /predict.
type Remote struct {
	baseURL string
	client  *http.Client
}

// NewRemote returns a client for the model server at baseURL.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Text string `json:"text"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Predict posts text to the model server and decodes its prediction.
func (r *Remote) Predict(ctx context.Context, text string) (*Prediction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Op: "predict", Err: ErrEmptyInput}
	}

	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return nil, &Error{Op: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &Error{Op: "call model server", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var e errorBody
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			return nil, &Error{Op: "call model server", Err: fmt.Errorf("status %d: %s", resp.StatusCode, e.Error)}
		}
		return nil, &Error{Op: "call model server", Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))}
	}

	var p Prediction
	if err := json.Unmarshal(respBody, &p); err != nil {
		return nil, &Error{Op: "unmarshal response", Err: err}
	}
	if p.Label == "" || len(p.Probabilities) == 0 {
		return nil, &Error{Op: "unmarshal response", Err: errors.New("missing prediction or probabilities")}
	}
	return &p, nil
}
