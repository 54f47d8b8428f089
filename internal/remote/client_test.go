package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchObjects_DecodesListing(t *testing.T) {
	// Given: a catalog endpoint returning a two-object listing
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "title": "Water Lilies", "artist": "Claude Monet", "image": "https://img.example/1.jpg", "description": "Pond series."},
			{"id": 2, "title": "Irises", "artist": "Vincent van Gogh"}
		]`))
	}))
	defer srv.Close()

	// When: the client fetches
	c := NewClient(srv.URL)
	objects, err := c.FetchObjects(context.Background())

	// Then: both objects are decoded in order
	if err != nil {
		t.Fatalf("FetchObjects: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("got %d objects, want 2", len(objects))
	}
	if objects[0].ID != 1 || objects[0].Title != "Water Lilies" {
		t.Errorf("objects[0] = %+v, want id 1 Water Lilies", objects[0])
	}
	if objects[0].ImageURL != "https://img.example/1.jpg" {
		t.Errorf("objects[0].ImageURL = %q", objects[0].ImageURL)
	}
	if objects[1].Artist != "Vincent van Gogh" {
		t.Errorf("objects[1].Artist = %q", objects[1].Artist)
	}
}

func TestFetchObjects_EmptyListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	objects, err := NewClient(srv.URL).FetchObjects(context.Background())
	if err != nil {
		t.Fatalf("FetchObjects: %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("got %d objects, want 0", len(objects))
	}
}

func TestFetchObjects_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchObjects(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestFetchObjects_TransportFailureIsUnavailable(t *testing.T) {
	// Given: a server that is already gone
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL).FetchObjects(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestFetchObjects_MalformedPayloadIsBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchObjects(context.Background())
	if !errors.Is(err, ErrBadPayload) {
		t.Errorf("err = %v, want ErrBadPayload", err)
	}
}

func TestFetchObjects_CancelledContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := NewClient(srv.URL).FetchObjects(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Error("expected an error after cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not return after context cancel")
	}
}
