package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ServingModel calls a TensorFlow Serving REST endpoint hosting the trained
// sequence classifier.
type ServingModel struct {
	endpoint string
	client   *http.Client
}

type predictRequest struct {
	Instances [][]int `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error"`
}

// NewServingModel targets {baseURL}/v1/models/{name}:predict.
func NewServingModel(baseURL, name string, timeout time.Duration) *ServingModel {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ServingModel{
		endpoint: fmt.Sprintf("%s/v1/models/%s:predict", strings.TrimRight(baseURL, "/"), name),
		client:   &http.Client{Timeout: timeout},
	}
}

// Name implements Model.
func (m *ServingModel) Name() string {
	return "serving"
}

// Predict sends the padded sequence as a single instance.
func (m *ServingModel) Predict(ctx context.Context, in Input) ([]float64, error) {
	body, err := json.Marshal(predictRequest{Instances: [][]int{in.Sequence}})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read predict response: %w", err)
	}

	var decoded predictResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode predict response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("predict endpoint returned %d: %s", resp.StatusCode, decoded.Error)
	}
	if len(decoded.Predictions) != 1 || len(decoded.Predictions[0]) == 0 {
		return nil, fmt.Errorf("%w: expected one prediction row, got %d", ErrModelOutput, len(decoded.Predictions))
	}
	return decoded.Predictions[0], nil
}
