package nickelphot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultSolveTimeout bounds a single plate-solving request.
const DefaultSolveTimeout = 120 * time.Second

// SolveRequest carries the detected sources and image dimensions a
// plate-solving service needs.
type SolveRequest struct {
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Sources []SourceRecord `json:"sources"`
}

// PlateSolver produces an astrometric solution for a frame. Implementations
// are external services; failures and timeouts are fatal for the frame being
// processed, never retried silently.
type PlateSolver interface {
	Solve(ctx context.Context, req SolveRequest) (*TanWCS, error)
}

// HTTPPlateSolver submits source lists to an astrometry service as a single
// blocking POST. One shot per frame: a timeout surfaces as a PlateSolveError
// with Timeout set.
type HTTPPlateSolver struct {
	URL     string
	Timeout time.Duration // zero means DefaultSolveTimeout
	Client  *http.Client
}

func NewHTTPPlateSolver(url string) *HTTPPlateSolver {
	return &HTTPPlateSolver{URL: url, Timeout: DefaultSolveTimeout, Client: &http.Client{}}
}

type solveResponse struct {
	Status string `json:"status"`
	CRVal1 float64 `json:"crval1"`
	CRVal2 float64 `json:"crval2"`
	CRPix1 float64 `json:"crpix1"`
	CRPix2 float64 `json:"crpix2"`
	CD11   float64 `json:"cd1_1"`
	CD12   float64 `json:"cd1_2"`
	CD21   float64 `json:"cd2_1"`
	CD22   float64 `json:"cd2_2"`
}

func (s *HTTPPlateSolver) Solve(ctx context.Context, req SolveRequest) (*TanWCS, error) {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = DefaultSolveTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &PlateSolveError{Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return nil, &PlateSolveError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(httpReq)
	if err != nil {
		return nil, &PlateSolveError{Timeout: errors.Is(err, context.DeadlineExceeded), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &PlateSolveError{Err: fmt.Errorf("status %d: %s", resp.StatusCode, msg)}
	}

	var solved solveResponse
	if err := json.NewDecoder(resp.Body).Decode(&solved); err != nil {
		return nil, &PlateSolveError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	if solved.Status != "" && solved.Status != "success" {
		return nil, &PlateSolveError{Err: fmt.Errorf("solver status %q", solved.Status)}
	}

	wcs := &TanWCS{
		CRVal1: solved.CRVal1,
		CRVal2: solved.CRVal2,
		CRPix1: solved.CRPix1,
		CRPix2: solved.CRPix2,
		CD:     [2][2]float64{{solved.CD11, solved.CD12}, {solved.CD21, solved.CD22}},
	}
	if wcs.cdDet() == 0 {
		return nil, &PlateSolveError{Err: fmt.Errorf("solver returned a singular CD matrix")}
	}
	return wcs, nil
}
