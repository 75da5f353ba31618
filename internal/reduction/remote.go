package reduction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"gonum.org/v1/gonum/mat"
)

// RemoteReducer calls an HTTP t-SNE service.
type RemoteReducer struct {
	client       *resty.Client
	endpoint     string
	learningRate float64
	maxIter      int
	init         string
	method       string
}

type reduceRequest struct {
	Data         [][]float64 `json:"data"`
	Components   int         `json:"n_components"`
	Perplexity   int         `json:"perplexity"`
	LearningRate float64     `json:"learning_rate"`
	MaxIter      int         `json:"max_iter"`
	Init         string      `json:"init"`
	Method       string      `json:"method"`
}

type reduceResponse struct {
	Embedding [][]float64 `json:"embedding"`
	Detail    string      `json:"detail,omitempty"`
}

// NewRemoteReducer creates a reducer backed by the service at cfg.BaseURL.
func NewRemoteReducer(cfg *Config) *RemoteReducer {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	client.SetTimeout(timeout)

	learningRate := cfg.LearningRate
	if learningRate <= 0 {
		learningRate = 200
	}
	maxIter := cfg.MaxIter
	if maxIter <= 0 {
		maxIter = 2000
	}
	initMode := cfg.Init
	if initMode == "" {
		initMode = "pca"
	}
	method := cfg.TSNEMethod
	if method == "" {
		method = "barnes_hut"
	}

	return &RemoteReducer{
		client:       client,
		endpoint:     strings.TrimSuffix(cfg.BaseURL, "/") + "/v1/reduce",
		learningRate: learningRate,
		maxIter:      maxIter,
		init:         initMode,
		method:       method,
	}
}

// Reduce sends the matrix to the service and returns its embedding.
func (r *RemoteReducer) Reduce(ctx context.Context, data *mat.Dense, neighbors int) (*mat.Dense, error) {
	if err := Validate(data, neighbors); err != nil {
		return nil, err
	}

	rows, cols := data.Dims()
	payload := make([][]float64, rows)
	for i := range payload {
		payload[i] = mat.Row(make([]float64, cols), i, data)
	}

	req := reduceRequest{
		Data:         payload,
		Components:   Dimensions,
		Perplexity:   neighbors,
		LearningRate: r.learningRate,
		MaxIter:      r.maxIter,
		Init:         r.init,
		Method:       r.method,
	}

	var resp reduceResponse
	httpResp, err := r.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(r.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to call reduction service: %w", err)
	}

	if httpResp.StatusCode() != 200 {
		if resp.Detail != "" {
			return nil, fmt.Errorf("reduction service error: %s", resp.Detail)
		}
		return nil, fmt.Errorf("reduction service error: status %d", httpResp.StatusCode())
	}

	if len(resp.Embedding) != rows {
		return nil, fmt.Errorf("unexpected number of embedded rows: got %d, expected %d", len(resp.Embedding), rows)
	}

	out := mat.NewDense(rows, Dimensions, nil)
	for i, point := range resp.Embedding {
		if len(point) != Dimensions {
			return nil, fmt.Errorf("row %d has %d components, expected %d", i, len(point), Dimensions)
		}
		out.SetRow(i, point)
	}
	return out, nil
}
