package embedding

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Sentinel errors for encoder failures.
var (
	ErrEncoderUnreachable = errors.New("embedding service unreachable")
	ErrEncoderTimeout     = errors.New("embedding request timeout")
	ErrEncoderResponse    = errors.New("embedding service returned invalid response")
)

// Encoder maps images and text prompts into a shared embedding space.
type Encoder interface {
	EncodeImage(ctx context.Context, img []byte) ([]float32, error)
	EncodeText(ctx context.Context, texts []string) ([][]float32, error)
}

// HTTPEncoder implements Encoder against a CLIP-style embedding service.
type HTTPEncoder struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEncoder creates an encoder client for the given base URL.
func NewHTTPEncoder(baseURL string, timeout time.Duration) *HTTPEncoder {
	return &HTTPEncoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (e *HTTPEncoder) EncodeImage(ctx context.Context, img []byte) ([]float32, error) {
	body, err := json.Marshal(imageRequest{ImageB64: base64.StdEncoding.EncodeToString(img)})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	var resp imageResponse
	if err := e.post(ctx, "/v1/embeddings/image", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty image embedding", ErrEncoderResponse)
	}
	return resp.Embedding, nil
}

func (e *HTTPEncoder) EncodeText(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(textRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	var resp textResponse
	if err := e.post(ctx, "/v1/embeddings/text", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			ErrEncoderResponse, len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

func (e *HTTPEncoder) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrEncoderResponse, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoderResponse, err)
	}
	return nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrEncoderTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrEncoderTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrEncoderUnreachable, err)
}

// --- wire types ---

type imageRequest struct {
	ImageB64 string `json:"image_b64"`
}

type imageResponse struct {
	Embedding []float32 `json:"embedding"`
}

type textRequest struct {
	Texts []string `json:"texts"`
}

type textResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Compile-time check that HTTPEncoder implements Encoder.
var _ Encoder = (*HTTPEncoder)(nil)
