package mimecast

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gh-tking/mimecast-sdk/internal/fileutil"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestGetUploadTickets(t *testing.T) {
	path := writeTempFile(t, "report.csv", "a,b,c\n1,2,3\n")
	wantDigest := fileutil.SHA256Bytes([]byte("a,b,c\n1,2,3\n"))

	var captured []byte
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/file/file-upload" {
			t.Errorf("path = %s", r.URL.Path)
		}
		captured, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"meta":{"status":200},"data":[{"id":"f1","urls":["https://upload.example/f1"]}]}`))
	})
	client := newTestClientFor(t, server)

	tickets, err := client.GetUploadTickets(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("GetUploadTickets() error = %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("tickets = %d, want 1", len(tickets))
	}
	if tickets[0].FileID != "f1" || tickets[0].Path != path {
		t.Errorf("ticket = %+v", tickets[0])
	}

	var payload struct {
		Data []struct {
			SHA256   string `json:"sha256"`
			FileSize int64  `json:"fileSize"`
		} `json:"data"`
	}
	if err := json.Unmarshal(captured, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Data[0].SHA256 != wantDigest {
		t.Errorf("sha256 = %s, want %s", payload.Data[0].SHA256, wantDigest)
	}
	if payload.Data[0].FileSize != 12 {
		t.Errorf("fileSize = %d, want 12", payload.Data[0].FileSize)
	}
}

func TestGetUploadTickets_Validation(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	})
	client := newTestClientFor(t, server)

	_, err := client.GetUploadTickets(context.Background(), nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}

func TestGetUploadTickets_CountMismatch(t *testing.T) {
	path := writeTempFile(t, "a.txt", "one")
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"status":200},"data":[]}`))
	})
	client := newTestClientFor(t, server)

	if _, err := client.GetUploadTickets(context.Background(), []string{path}); err == nil {
		t.Fatal("GetUploadTickets() error = nil, want count mismatch error")
	}
}

func TestUploadFile(t *testing.T) {
	content := "file body"
	path := writeTempFile(t, "doc.txt", content)

	var uploaded []byte
	uploadServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("Content-Type = %s", ct)
		}
		uploaded, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer uploadServer.Close()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"status":200},"data":[{"id":"f1","urls":["` + uploadServer.URL + `/f1"]}]}`))
	})
	client := newTestClientFor(t, server)

	result, err := client.UploadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadFile() error = %v", err)
	}
	if result.FileID != "f1" {
		t.Errorf("FileID = %s, want f1", result.FileID)
	}
	if result.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", result.Size, len(content))
	}
	if result.SHA256 != fileutil.SHA256Bytes([]byte(content)) {
		t.Errorf("SHA256 = %s", result.SHA256)
	}
	if string(uploaded) != content {
		t.Errorf("uploaded = %q, want %q", uploaded, content)
	}
}

func TestUploadFiles_Concurrent(t *testing.T) {
	paths := []string{
		writeTempFile(t, "a.txt", "aaa"),
		writeTempFile(t, "b.txt", "bbbb"),
		writeTempFile(t, "c.txt", "ccccc"),
	}

	var uploads int64
	uploadServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&uploads, 1)
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer uploadServer.Close()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"status":200},"data":[
			{"id":"f1","urls":["` + uploadServer.URL + `/f1"]},
			{"id":"f2","urls":["` + uploadServer.URL + `/f2"]},
			{"id":"f3","urls":["` + uploadServer.URL + `/f3"]}]}`))
	})
	client := newTestClientFor(t, server)

	results, err := client.UploadFiles(context.Background(), paths)
	if err != nil {
		t.Fatalf("UploadFiles() error = %v", err)
	}
	if atomic.LoadInt64(&uploads) != 3 {
		t.Errorf("uploads = %d, want 3", uploads)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, result := range results {
		if result.Path != paths[i] {
			t.Errorf("result %d path = %s, want %s", i, result.Path, paths[i])
		}
	}
	if results[1].Size != 4 {
		t.Errorf("result 1 size = %d, want 4", results[1].Size)
	}
}

func TestUploadFiles_ReportsTriggeringError(t *testing.T) {
	paths := []string{
		writeTempFile(t, "a.txt", "aaa"),
		writeTempFile(t, "b.txt", "bbb"),
		writeTempFile(t, "c.txt", "ccc"),
	}

	// The third upload fails immediately while the others stall until the
	// group is cancelled; the caller must see the failure, not the
	// cancellation recorded by the stalled workers.
	uploadServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/f3") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer uploadServer.Close()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"status":200},"data":[
			{"id":"f1","urls":["` + uploadServer.URL + `/f1"]},
			{"id":"f2","urls":["` + uploadServer.URL + `/f2"]},
			{"id":"f3","urls":["` + uploadServer.URL + `/f3"]}]}`))
	})
	client := newTestClientFor(t, server)

	_, err := client.UploadFiles(context.Background(), paths)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	if errors.Is(err, context.Canceled) {
		t.Error("caller saw the cancellation instead of the root cause")
	}
}

func TestUploadFiles_PresignedFailure(t *testing.T) {
	path := writeTempFile(t, "a.txt", "aaa")

	uploadServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer uploadServer.Close()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"status":200},"data":[{"id":"f1","urls":["` + uploadServer.URL + `/f1"]}]}`))
	})
	client := newTestClientFor(t, server)

	_, err := client.UploadFiles(context.Background(), []string{path})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
}
