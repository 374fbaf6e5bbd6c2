package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/pitch.report/internal/db"
	"github.com/banshee-data/pitch.report/internal/intensity"
	"github.com/banshee-data/pitch.report/internal/possession"
	"github.com/banshee-data/pitch.report/internal/testutil"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	database, err := db.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	return NewServer(database, nil)
}

// analyzeBody builds a minimal valid request: 25 frames where player 10
// shadows the ball and player 11 jogs elsewhere.
func analyzeBody(t *testing.T) []byte {
	t.Helper()

	frames := make([]map[string]interface{}, 0, 25)
	for i := 0; i < 25; i++ {
		ts := float64(i) * 0.04
		frames = append(frames, map[string]interface{}{
			"frame_id":   i,
			"period_id":  1,
			"timestamp":  ts,
			"ball_state": "alive",
			"ball":       map[string]interface{}{"x": 50 + 1.5*ts, "y": 30.0, "z": 0.2},
			"entities": map[string]interface{}{
				"10": map[string]interface{}{"x": 50.3 + 1.5*ts, "y": 30.0},
				"11": map[string]interface{}{"x": 20 + 2.5*ts, "y": 60.0},
			},
		})
	}

	body, err := json.Marshal(map[string]interface{}{
		"source": "fixture.jsonl",
		"frames": frames,
		"roster": []map[string]interface{}{
			{"id": 10, "name": "A. Carrier", "jersey_no": 9, "team_id": 1, "team_name": "Home"},
			{"id": 11, "name": "B. Runner", "jersey_no": 4, "team_id": 2, "team_name": "Away"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

// postRun submits a fixture feed and returns the created run id.
func postRun(t *testing.T, mux *http.ServeMux) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/runs", bytes.NewReader(analyzeBody(t)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/runs status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("POST /api/runs Content-Type = %q, want application/json", ct)
	}

	var resp struct {
		Run db.Run `json:"run"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if !strings.HasPrefix(resp.Run.RunID, "run_") {
		t.Fatalf("run id = %q, want run_ prefix", resp.Run.RunID)
	}
	return resp.Run.RunID
}

func TestHealthz(t *testing.T) {
	mux := setupTestServer(t).ServeMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
}

func TestCreateRunAndFetch(t *testing.T) {
	mux := setupTestServer(t).ServeMux()
	runID := postRun(t, mux)

	t.Run("show run", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+runID, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var run db.Run
		if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
			t.Fatal(err)
		}
		if run.Source != "fixture.jsonl" || run.FrameCount != 25 {
			t.Errorf("run = %+v, want fixture.jsonl with 25 frames", run)
		}
	})

	t.Run("list runs", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var runs []db.Run
		if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 || runs[0].RunID != runID {
			t.Errorf("runs = %+v, want single run %s", runs, runID)
		}
	})

	t.Run("player metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/runs/%s/players", runID), nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var metrics []intensity.PlayerMetrics
		if err := json.Unmarshal(rec.Body.Bytes(), &metrics); err != nil {
			t.Fatal(err)
		}
		if len(metrics) != 2 {
			t.Fatalf("got %d metric rows, want 2", len(metrics))
		}
		if metrics[0].PlayerID != 10 || metrics[1].PlayerID != 11 {
			t.Errorf("player order = %d,%d, want 10,11", metrics[0].PlayerID, metrics[1].PlayerID)
		}
		if metrics[0].TotalDistance <= 0 {
			t.Errorf("player 10 total distance = %v, want > 0", metrics[0].TotalDistance)
		}
	})

	t.Run("player metrics in mph", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/runs/%s/players", runID), nil))
		var kmh []intensity.PlayerMetrics
		if err := json.Unmarshal(rec.Body.Bytes(), &kmh); err != nil {
			t.Fatal(err)
		}

		rec = httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/runs/%s/players?units=mph", runID), nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var mph []intensity.PlayerMetrics
		if err := json.Unmarshal(rec.Body.Bytes(), &mph); err != nil {
			t.Fatal(err)
		}
		if len(mph) != len(kmh) {
			t.Fatalf("got %d rows in mph, want %d", len(mph), len(kmh))
		}
		for i := range kmh {
			want := kmh[i].MaxSpeedKmh / 3.6 * 2.23694
			if math.Abs(mph[i].MaxSpeedKmh-want) > 0.001 {
				t.Errorf("player %d max speed = %v mph, want %v", kmh[i].PlayerID, mph[i].MaxSpeedKmh, want)
			}
			// Distances are unit-independent.
			if mph[i].TotalDistance != kmh[i].TotalDistance {
				t.Errorf("player %d total distance changed under unit conversion", kmh[i].PlayerID)
			}
		}
	})

	t.Run("invalid units rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/runs/%s/players?units=furlongs", runID), nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "mps, mph, kmph, kph") {
			t.Errorf("error body %q does not list valid units", rec.Body.String())
		}
	})

	t.Run("possession", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/runs/%s/possession", runID), nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var shares []possession.PlayerShare
		if err := json.Unmarshal(rec.Body.Bytes(), &shares); err != nil {
			t.Fatal(err)
		}
		if len(shares) != 1 || shares[0].PlayerID != 10 {
			t.Errorf("shares = %+v, want player 10 only", shares)
		}
	})

	t.Run("sprints", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/runs/%s/sprints", runID), nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("zones chart", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/runs/%s/charts/zones", runID), nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
			t.Errorf("Content-Type = %q, want text/html", ct)
		}
		if !strings.Contains(rec.Body.String(), "echarts") {
			t.Error("chart body does not reference echarts")
		}
	})
}

func TestRunNotFound(t *testing.T) {
	mux := setupTestServer(t).ServeMux()

	paths := []string{
		"/api/runs/run_missing",
		"/api/runs/run_missing/players",
		"/api/runs/run_missing/sprints",
		"/api/runs/run_missing/possession",
		"/api/runs/run_missing/charts/zones",
	}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestCreateRunRejectsBadInput(t *testing.T) {
	mux := setupTestServer(t).ServeMux()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed JSON", `{"frames": [`, http.StatusBadRequest},
		{"no frames", `{"source": "x", "frames": []}`, http.StatusBadRequest},
		{"bad ball state", `{"frames": [{"frame_id": 1, "period_id": 1, "timestamp": 0, "ball_state": "paused"}]}`, http.StatusBadRequest},
		{"bad entity id", `{"frames": [{"frame_id": 1, "period_id": 1, "timestamp": 0, "ball_state": "alive", "entities": {"goalkeeper": {"x": 1, "y": 2}}}]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
