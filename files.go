package mimecast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/gh-tking/mimecast-sdk/internal/fileutil"
)

// defaultUploadWorkers bounds concurrent presigned-URL uploads.
const defaultUploadWorkers = 4

// UploadTicket holds the presigned URLs issued for one file by the
// file-upload endpoint.
type UploadTicket struct {
	Path   string
	FileID string   `json:"id"`
	URLs   []string `json:"urls"`
}

// UploadResult describes one completed upload.
type UploadResult struct {
	Path   string
	FileID string
	Size   int64
	SHA256 string
}

// GetUploadTickets requests presigned upload URLs for the given files. Each
// file is hashed locally so the server can verify the content.
func (c *Client) GetUploadTickets(ctx context.Context, paths []string) ([]UploadTicket, error) {
	if len(paths) == 0 {
		return nil, &ValidationError{Errors: []string{"at least one file path is required"}}
	}

	type fileEntry struct {
		SHA256   string `json:"sha256"`
		FileSize int64  `json:"fileSize"`
	}

	entries := make([]fileEntry, 0, len(paths))
	for _, path := range paths {
		digest, size, err := fileutil.SHA256File(path)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", path, err)
		}
		entries = append(entries, fileEntry{SHA256: digest, FileSize: size})
	}

	var tickets []UploadTicket
	body := map[string]interface{}{"data": entries}
	if err := c.Post(ctx, "/api/file/file-upload", body, &tickets); err != nil {
		return nil, err
	}
	if len(tickets) != len(paths) {
		return nil, fmt.Errorf("file-upload returned %d tickets for %d files", len(tickets), len(paths))
	}
	for i := range tickets {
		tickets[i].Path = paths[i]
	}
	return tickets, nil
}

// UploadFile uploads one file through a presigned URL and returns its
// server-side file ID for use in other API calls.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResult, error) {
	results, err := c.UploadFiles(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// UploadFiles uploads multiple files concurrently, bounded by a small
// worker pool. The returned results are in the same order as paths. The
// first failure cancels the remaining uploads.
func (c *Client) UploadFiles(ctx context.Context, paths []string) ([]UploadResult, error) {
	tickets, err := c.GetUploadTickets(ctx, paths)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]UploadResult, len(tickets))
	errs := make([]error, len(tickets))

	sem := make(chan struct{}, defaultUploadWorkers)
	var wg sync.WaitGroup
	for i, ticket := range tickets {
		wg.Add(1)
		go func(i int, ticket UploadTicket) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}

			result, err := c.uploadTicket(ctx, ticket)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			results[i] = *result
		}(i, ticket)
	}
	wg.Wait()

	// Workers that lost the race to the cancel record context.Canceled;
	// report the failure that triggered it instead.
	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
		if !errors.Is(err, context.Canceled) {
			return nil, err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (c *Client) uploadTicket(ctx context.Context, ticket UploadTicket) (*UploadResult, error) {
	if len(ticket.URLs) == 0 {
		return nil, fmt.Errorf("no upload URL issued for %s", ticket.Path)
	}

	data, err := os.ReadFile(ticket.Path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, ticket.URLs[0], bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err, URL: ticket.URLs[0], Attempts: 1}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("uploading %s", ticket.Path),
		}
	}

	return &UploadResult{
		Path:   ticket.Path,
		FileID: ticket.FileID,
		Size:   int64(len(data)),
		SHA256: fileutil.SHA256Bytes(data),
	}, nil
}
