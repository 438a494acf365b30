package driver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/alorle/m3u8-editor/internal/application"
	"github.com/alorle/m3u8-editor/internal/schedule"
)

var scheduleNow = time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC)

func sampleGuide(t *testing.T) schedule.Guide {
	t.Helper()
	news, err := schedule.NewProgramme("Новости", scheduleNow.Add(-15*time.Minute), scheduleNow.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("NewProgramme() unexpected error = %v", err)
	}
	film, err := schedule.NewProgramme("Фильм", scheduleNow.Add(15*time.Minute), scheduleNow.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("NewProgramme() unexpected error = %v", err)
	}
	return schedule.NewGuide([]schedule.Entry{{Name: "Первый канал", Programmes: []schedule.Programme{news, film}}})
}

func newTestScheduleHandler(t *testing.T, svc *application.ScheduleService) *ScheduleHTTPHandler {
	t.Helper()
	h := NewScheduleHTTPHandler(svc, newTestLogger())
	h.now = func() time.Time { return scheduleNow }
	return h
}

func TestScheduleHTTPHandler_Lookup(t *testing.T) {
	fetcher := &mockGuideFetcher{fetchGuideFunc: func(ctx context.Context) (schedule.Guide, error) {
		return sampleGuide(t), nil
	}}
	svc := newTestScheduleService(fetcher, &memoryGuideCache{})
	handler := newTestScheduleHandler(t, svc)

	if rec := serve(handler, http.MethodGet, "/schedule?"+url.Values{"name": {"Первый канал"}}.Encode(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("before refresh: expected status 404, got %d", rec.Code)
	}

	if _, err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Refresh() unexpected error = %v", err)
	}

	rec := serve(handler, http.MethodGet, "/schedule?"+url.Values{"name": {" первый КАНАЛ "}}.Encode(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp scheduleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Current.Title != "Новости" || !resp.Current.End.Equal(scheduleNow.Add(15*time.Minute)) {
		t.Errorf("current = %+v", resp.Current)
	}
	if resp.Next == nil || resp.Next.Title != "Фильм" {
		t.Errorf("next = %+v", resp.Next)
	}

	if rec := serve(handler, http.MethodGet, "/schedule?"+url.Values{"name": {"Другой"}}.Encode(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown channel: expected status 404, got %d", rec.Code)
	}
	if rec := serve(handler, http.MethodGet, "/schedule", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing name: expected status 400, got %d", rec.Code)
	}
}

func TestScheduleHTTPHandler_Refresh(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		fetchErr   error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "forced", query: "?force=true", wantStatus: http.StatusOK},
		{name: "bad force", query: "?force=maybe", wantStatus: http.StatusBadRequest},
		{name: "upstream failure", fetchErr: errors.New("connection refused"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &mockGuideFetcher{fetchGuideFunc: func(ctx context.Context) (schedule.Guide, error) {
				if tt.fetchErr != nil {
					return schedule.Guide{}, tt.fetchErr
				}
				return sampleGuide(t), nil
			}}
			handler := newTestScheduleHandler(t, newTestScheduleService(fetcher, &memoryGuideCache{}))

			rec := serve(handler, http.MethodPost, "/schedule/refresh"+tt.query, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp refreshResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Source != application.SourceUpstream || resp.Channels != 1 {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestScheduleHTTPHandler_Cache(t *testing.T) {
	cache := &memoryGuideCache{snapshot: &schedule.Snapshot{Guide: sampleGuide(t), FetchedAt: time.Now()}}
	handler := newTestScheduleHandler(t, newTestScheduleService(&mockGuideFetcher{}, cache))

	rec := serve(handler, http.MethodGet, "/schedule/cache", "")
	var info cacheInfoResponse
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !info.HasCache || info.LastUpdated == nil || info.ExpiresAt == nil {
		t.Errorf("cache info = %+v", info)
	}

	if rec := serve(handler, http.MethodDelete, "/schedule/cache", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("clear: expected status 204, got %d", rec.Code)
	}

	rec = serve(handler, http.MethodGet, "/schedule/cache", "")
	info = cacheInfoResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if info.HasCache || info.LastUpdated != nil {
		t.Errorf("cache info after clear = %+v", info)
	}

	cache.deleteErr = errors.New("read-only")
	if rec := serve(handler, http.MethodDelete, "/schedule/cache", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("failed clear: expected status 500, got %d", rec.Code)
	}
}
