package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/replens/internal/analysis"
	"github.com/claude/replens/internal/ingest"
	"github.com/claude/replens/internal/models"
	"github.com/claude/replens/internal/resegment"
	"github.com/claude/replens/internal/storage"
	"github.com/google/uuid"
)

type fakeStore struct {
	analyses   []models.AnalysisRow
	setRows    []models.SetFatigueRow
	importLogs []storage.ImportLog
	exercise   string
	users      map[string]int
}

func (f *fakeStore) InsertAnalysis(_ context.Context, row models.AnalysisRow) (bool, error) {
	f.analyses = append(f.analyses, row)
	return true, nil
}

func (f *fakeStore) InsertSetFatigue(_ context.Context, rows []models.SetFatigueRow) (int64, error) {
	f.setRows = append(f.setRows, rows...)
	return int64(len(rows)), nil
}

func (f *fakeStore) QueryAnalyses(_ context.Context, _, _ time.Time, exercise string, userID int) ([]models.AnalysisRow, error) {
	f.exercise = exercise
	var out []models.AnalysisRow
	for _, a := range f.analyses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAnalysis(_ context.Context, id uuid.UUID, userID int) (*models.AnalysisRow, error) {
	for _, a := range f.analyses {
		if a.ID == id && a.UserID == userID {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("analysis: %w", storage.ErrNotFound)
}

func (f *fakeStore) QuerySetFatigue(_ context.Context, id uuid.UUID, _ int) ([]models.SetFatigueRow, error) {
	var out []models.SetFatigueRow
	for _, r := range f.setRows {
		if r.AnalysisID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) QueryFatigueTrend(_ context.Context, _, _ time.Time, exercise string, _ int) ([]models.SetFatigueRow, error) {
	f.exercise = exercise
	return f.setRows, nil
}

func (f *fakeStore) GetDataStats(_ context.Context, _ int) (*storage.DataStats, error) {
	return &storage.DataStats{TotalAnalyses: int64(len(f.analyses))}, nil
}

func (f *fakeStore) InsertImportLog(_ context.Context, log storage.ImportLog) (int64, error) {
	f.importLogs = append(f.importLogs, log)
	return int64(len(f.importLogs)), nil
}

func (f *fakeStore) QueryImportLogs(_ context.Context, _, _ int) ([]storage.ImportLog, error) {
	return f.importLogs, nil
}

func (f *fakeStore) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	if f.users == nil {
		f.users = map[string]int{}
	}
	if id, ok := f.users[login]; ok {
		return id, nil
	}
	f.users[login] = len(f.users) + 2
	return f.users[login], nil
}

func newTestServer(store *fakeStore) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, analysis.New(analysis.DefaultOptions(), log), "secret", log)
}

func ptr(v float64) *float64 { return &v }

func halfSineRep(set, rep, n int) models.RawRep {
	s, r := set, rep
	rr := models.RawRep{Set: &s, Rep: &r}
	for i := 0; i < n; i++ {
		phase := math.Sin(math.Pi * float64(i) / float64(n-1))
		rr.Samples = append(rr.Samples, models.RawSample{
			TimestampMs: ptr(float64(rep*2000 + i*50)),
			AccelZ:      ptr(9.8 + 3*phase),
			GyroX:       ptr(2 * phase),
			Pitch:       ptr(60 * phase),
		})
	}
	return rr
}

func captureJSON(t *testing.T) []byte {
	t.Helper()
	p := models.CapturePayload{Exercise: "Concentration Curls"}
	for r := 1; r <= 5; r++ {
		p.Reps = append(p.Reps, halfSineRep(1, r, 21))
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func do(s *Server, method, target string, body []byte, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// TestIngestRequiresAPIKey verifies the ingest routes reject missing and
// wrong keys with 401 and 403.
func TestIngestRequiresAPIKey(t *testing.T) {
	s := newTestServer(&fakeStore{})
	if rec := do(s, http.MethodPost, "/api/v1/ingest", captureJSON(t), ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key status = %d, want 401", rec.Code)
	}
	if rec := do(s, http.MethodPost, "/api/v1/ingest", captureJSON(t), "wrong"); rec.Code != http.StatusForbidden {
		t.Errorf("wrong key status = %d, want 403", rec.Code)
	}
}

// TestIngestJSON verifies a capture is analyzed, stored and logged, and that
// the stored analysis is then reachable through the query routes.
func TestIngestJSON(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(store)

	rec := do(s, http.MethodPost, "/api/v1/ingest", captureJSON(t), "secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res ingest.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.AnalysesInserted != 1 || res.RepsReceived != 5 {
		t.Errorf("result = %+v", res)
	}
	if len(store.importLogs) != 1 || store.importLogs[0].Status != "success" || store.importLogs[0].Source != "json" {
		t.Errorf("import logs = %+v", store.importLogs)
	}

	rec = do(s, http.MethodGet, "/api/v1/analyses/"+res.AnalysisID.String(), nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var row models.AnalysisRow
	if err := json.NewDecoder(rec.Body).Decode(&row); err != nil {
		t.Fatalf("decode row: %v", err)
	}
	if row.ID != res.AnalysisID || row.UserID != 1 {
		t.Errorf("row = %+v", row)
	}

	rec = do(s, http.MethodGet, "/api/v1/analyses/"+res.AnalysisID.String()+"/sets", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("sets status = %d", rec.Code)
	}
}

// TestIngestEmptyCapture verifies an empty capture is a client error and is
// still recorded in the import log.
func TestIngestEmptyCapture(t *testing.T) {
	store := &fakeStore{}
	rec := do(newTestServer(store), http.MethodPost, "/api/v1/ingest", []byte(`{"sets":[]}`), "secret")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(store.importLogs) != 1 || store.importLogs[0].Status != "error" {
		t.Errorf("import logs = %+v", store.importLogs)
	}
}

// TestIngestInvalidJSON verifies malformed bodies get 400.
func TestIngestInvalidJSON(t *testing.T) {
	rec := do(newTestServer(&fakeStore{}), http.MethodPost, "/api/v1/ingest", []byte(`{`), "secret")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestIngestCSV verifies CSV captures take exercise metadata from the query.
func TestIngestCSV(t *testing.T) {
	var b strings.Builder
	b.WriteString("timestamp_ms,accelX,accelY,accelZ,rep,set\n")
	for rep := 1; rep <= 4; rep++ {
		for i := 0; i < 21; i++ {
			phase := math.Sin(math.Pi * float64(i) / 20)
			fmt.Fprintf(&b, "%d,0,0,%.4f,%d,1\n", rep*2000+i*50, 9.8+3*phase, rep)
		}
	}
	store := &fakeStore{}
	rec := do(newTestServer(store), http.MethodPost,
		"/api/v1/ingest/csv?exercise=bench_press&equipment=barbell&performed_at=2026-03-01",
		[]byte(b.String()), "secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(store.analyses) != 1 {
		t.Fatalf("analyses = %d, want 1", len(store.analyses))
	}
	a := store.analyses[0]
	if a.Exercise != "bench_press" || a.Equipment != "barbell" || a.Source != "csv" {
		t.Errorf("analysis = %+v", a)
	}
	if !a.PerformedAt.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("performed_at = %v", a.PerformedAt)
	}
}

// TestAnalyzeDoesNotStore verifies the stateless endpoint returns a report
// and writes nothing.
func TestAnalyzeDoesNotStore(t *testing.T) {
	store := &fakeStore{}
	rec := do(newTestServer(store), http.MethodPost, "/api/v1/analyze", captureJSON(t), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var wa analysis.WorkoutAnalysis
	if err := json.NewDecoder(rec.Body).Decode(&wa); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if wa.Summary.TotalReps != 5 {
		t.Errorf("total reps = %d, want 5", wa.Summary.TotalReps)
	}
	if len(store.analyses) != 0 || len(store.importLogs) != 0 {
		t.Error("analyze endpoint wrote to the store")
	}
}

// TestResegmentEndpoint verifies a posted set comes back with a
// resegmentation result, and that a bad cap is rejected.
func TestResegmentEndpoint(t *testing.T) {
	s := newTestServer(&fakeStore{})
	set := models.RawSet{Reps: []models.RawRep{halfSineRep(1, 1, 21)}}
	body, _ := json.Marshal(set)

	rec := do(s, http.MethodPost, "/api/v1/resegment?exercise=concentration_curls", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res resegment.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.OriginalCount != 1 {
		t.Errorf("original count = %d, want 1", res.OriginalCount)
	}

	if rec := do(s, http.MethodPost, "/api/v1/resegment?max_reps=-1", body, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("negative cap status = %d, want 400", rec.Code)
	}
}

// TestGetAnalysisErrors verifies malformed and unknown IDs.
func TestGetAnalysisErrors(t *testing.T) {
	s := newTestServer(&fakeStore{})
	if rec := do(s, http.MethodGet, "/api/v1/analyses/not-a-uuid", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/api/v1/analyses/"+uuid.NewString(), nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/api/v1/analyses/"+uuid.NewString()+"/sets", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown sets status = %d, want 404", rec.Code)
	}
}

// TestQueryFiltersByExercise verifies the exercise filter and time range are
// passed through.
func TestQueryFiltersByExercise(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(store)
	if rec := do(s, http.MethodGet, "/api/v1/analyses?exercise=back_squat&start=2026-01-01", nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.exercise != "back_squat" {
		t.Errorf("exercise filter = %q, want back_squat", store.exercise)
	}
	if rec := do(s, http.MethodGet, "/api/v1/fatigue/trend?start=garbage", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad start status = %d, want 400", rec.Code)
	}
}
