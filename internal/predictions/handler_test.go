package predictions

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func silenceLogs(t *testing.T) {
	t.Helper()
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return
	}
	orig := os.Stdout
	os.Stdout = devNull
	t.Cleanup(func() {
		os.Stdout = orig
		_ = devNull.Close()
	})
}

func newTestRouter(t *testing.T, model Model) (*gin.Engine, *Service) {
	t.Helper()
	silenceLogs(t)
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t, model)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(MethodNotAllowed)
	NewHandler(svc).RegisterRoutes(r)
	return r, svc
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func TestPredictJSON(t *testing.T) {
	r, _ := newTestRouter(t, ModelFunc(func(Features) (bool, float64, error) { return true, 0.82, nil }))

	req := httptest.NewRequest(http.MethodPost, PredictRoute, strings.NewReader(`{"glucose":"180","age":52,"bmi":"33.1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	body := decodeBody(t, resp)
	if body["success"] != true || body["prediction"] != true || body["probability"] != 0.82 || body["message"] != "Diabetic" {
		t.Fatalf("unexpected body %v", body)
	}
	if id, _ := body["id"].(string); id == "" {
		t.Fatalf("expected prediction id")
	}
}

func TestPredictFormEncoded(t *testing.T) {
	r, _ := newTestRouter(t, ModelFunc(func(f Features) (bool, float64, error) {
		if f.Glucose != 99 || f.Age != 30 {
			t.Errorf("unexpected features %+v", f)
		}
		return false, 0.12, nil
	}))

	form := url.Values{"glucose": {"99"}, "age": {"30"}}
	req := httptest.NewRequest(http.MethodPost, PredictRoute, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := decodeBody(t, resp); body["message"] != "Non-diabetic" || body["prediction"] != false {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestPredictMultipart(t *testing.T) {
	r, _ := newTestRouter(t, ModelFunc(func(f Features) (bool, float64, error) {
		if f.Glucose != 150 || f.BMI != 31.2 || f.Insulin != 0 {
			t.Errorf("unexpected features %+v", f)
		}
		return true, 0.6, nil
	}))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("glucose", "150")
	_ = mw.WriteField("bmi", "31.2")
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, PredictRoute, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPredictFormBadValue(t *testing.T) {
	r, _ := newTestRouter(t, mustDefaultModel(t))

	form := url.Values{"glucose": {"150"}, "age": {"thirty"}}
	req := httptest.NewRequest(http.MethodPost, PredictRoute, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if body := decodeBody(t, resp); body["error"] != "age must be a number" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestPredictJSONArray(t *testing.T) {
	r, _ := newTestRouter(t, mustDefaultModel(t))

	req := httptest.NewRequest(http.MethodPost, PredictRoute, strings.NewReader(`[1,2]`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if body := decodeBody(t, resp); body["error"] != "body must be a JSON object" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestPredictBadInput(t *testing.T) {
	r, _ := newTestRouter(t, mustDefaultModel(t))

	cases := map[string]string{
		"not a number": `{"glucose":"sweet"}`,
		"out of range": `{"age":-5}`,
		"malformed":    `{"glucose":`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, PredictRoute, strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
			body := decodeBody(t, resp)
			if body["success"] != false {
				t.Fatalf("expected success=false, got %v", body)
			}
			if msg, _ := body["error"].(string); msg == "" {
				t.Fatalf("expected error message, got %v", body)
			}
		})
	}
}

func TestPredictMethodNotAllowed(t *testing.T) {
	r, _ := newTestRouter(t, mustDefaultModel(t))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, PredictRoute, nil))
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
	if body := decodeBody(t, resp); body["error"] != "Method not allowed" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHistoryAndGet(t *testing.T) {
	r, svc := newTestRouter(t, mustDefaultModel(t))
	first, err := svc.Predict(t.Context(), demoFeatures)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	second, err := svc.Predict(t.Context(), demoFeatures)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/history/?limit=1", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var history historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(history.Predictions) != 1 || history.Predictions[0].ID != second.ID {
		t.Fatalf("unexpected history %+v", history)
	}
	if history.Predictions[0].Patient != demoFeatures {
		t.Fatalf("unexpected patient %+v", history.Predictions[0].Patient)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/history/?limit=zero", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/predictions/"+first.ID, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/predictions/00000000-0000-0000-0000-999999999999", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
