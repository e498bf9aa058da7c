package midpass

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClient_GetStatus(t *testing.T) {
	ctx := context.Background()
	uid := "2000381012023090500007421"

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/request/"+uid {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			fmt.Fprint(w, `{
				"sourceUid": "src-1",
				"receptionDate": "2023-09-05",
				"passportStatus": {"passportStatusId": 102, "name": "Оформление", "description": "desc", "color": "blue", "subscription": true},
				"internalStatus": {"name": "Документы в обработке", "percent": 40}
			}`)
		}))
		defer srv.Close()

		client := NewHTTPClient(time.Second)
		status, err := client.GetStatus(ctx, srv.URL+"/api/request", uid)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status.SourceUID != "src-1" {
			t.Errorf("SourceUID = %q", status.SourceUID)
		}
		if status.PassportStatus.ID != 102 || status.PassportStatus.Name != "Оформление" {
			t.Errorf("unexpected passport status: %+v", status.PassportStatus)
		}
		if status.InternalStatus.Percent != 40 {
			t.Errorf("percent = %d, want 40", status.InternalStatus.Percent)
		}
	})

	t.Run("empty body means not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		client := NewHTTPClient(time.Second)
		if _, err := client.GetStatus(ctx, srv.URL, uid); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("null body means not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "null")
		}))
		defer srv.Close()

		client := NewHTTPClient(time.Second)
		if _, err := client.GetStatus(ctx, srv.URL, uid); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		client := NewHTTPClient(20 * time.Millisecond)
		if _, err := client.GetStatus(ctx, srv.URL, uid); !errors.Is(err, ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewHTTPClient(time.Second)
		_, err := client.GetStatus(ctx, srv.URL, uid)
		if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrTimeout) {
			t.Fatalf("expected generic request error, got %v", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "{not json")
		}))
		defer srv.Close()

		client := NewHTTPClient(time.Second)
		if _, err := client.GetStatus(ctx, srv.URL, uid); err == nil {
			t.Fatal("expected decode error")
		}
	})
}

func TestRotator_Next(t *testing.T) {
	t.Run("round robin over three endpoints", func(t *testing.T) {
		endpoints := []string{"a", "b", "c"}
		r := NewRotator(endpoints)

		want := []string{"a", "b", "c", "a", "b", "c", "a"}
		for i, w := range want {
			if got := r.Next(); got != w {
				t.Fatalf("call %d: got %q, want %q", i, got, w)
			}
		}
	})

	t.Run("single endpoint", func(t *testing.T) {
		r := NewRotator([]string{"only"})
		for i := 0; i < 5; i++ {
			if got := r.Next(); got != "only" {
				t.Fatalf("call %d: got %q", i, got)
			}
		}
	})

	t.Run("defaults on empty list", func(t *testing.T) {
		r := NewRotator(nil)
		if got := r.Next(); got != DefaultEndpoints[0] {
			t.Fatalf("got %q, want default endpoint", got)
		}
	})
}
