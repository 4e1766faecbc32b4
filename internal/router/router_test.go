package router_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pediatric-dosage/internal/ports/ai"
	"pediatric-dosage/internal/router"
)

// fakeAnalyzer devuelve siempre el mismo resultado.
type fakeAnalyzer struct {
	result ai.Result
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req ai.Request) (ai.Result, error) {
	return f.result, nil
}

func TestHTTP_EndToEnd_PatientFlow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	clinicianID := "clin-1"
	otherID := "clin-2"

	// 1) Crear ficha
	patientID := createPatient(t, ts.URL, clinicianID, map[string]any{
		"name":       "Ana",
		"sex":        "female",
		"birth_date": "2024-03-10",
		"weight_kg":  12.5,
		"allergies":  "penicilina",
	})

	// 2) Otro clínico no puede verla
	{
		st, _ := doReq(t, ts.URL, "GET", "/patients/"+patientID, otherID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for other clinician, got %d", st)
		}
	}

	// 3) El dueño la lista
	{
		st, body := doReq(t, ts.URL, "GET", "/patients", clinicianID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list patients, got %d body=%s", st, string(body))
		}
		var list []map[string]any
		_ = json.Unmarshal(body, &list)
		if len(list) != 1 {
			t.Fatalf("expected 1 patient, got %d", len(list))
		}
	}

	// 4) PATCH actualiza peso
	{
		st, body := doReq(t, ts.URL, "PATCH", "/patients/"+patientID, clinicianID, map[string]any{
			"weight_kg": 13.0,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch patient, got %d body=%s", st, string(body))
		}
		var resp struct {
			WeightKg float64 `json:"weight_kg"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.WeightKg != 13.0 {
			t.Fatalf("expected weight 13.0, got %v", resp.WeightKg)
		}
	}

	// 5) Subir documento
	content := []byte("informe de laboratorio")
	docID := ""
	{
		st, body := doReq(t, ts.URL, "POST", "/patients/"+patientID+"/documents", clinicianID, map[string]any{
			"file_name":      "lab.txt",
			"mime_type":      "text/plain",
			"content_base64": base64.StdEncoding.EncodeToString(content),
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 upload document, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID            string `json:"id"`
			ContentBase64 string `json:"content_base64"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ID == "" {
			t.Fatalf("upload document: missing id body=%s", string(body))
		}
		docID = resp.ID
	}

	// 6) Listar documentos => solo metadatos
	{
		st, body := doReq(t, ts.URL, "GET", "/patients/"+patientID+"/documents", clinicianID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list documents, got %d body=%s", st, string(body))
		}
		var list []map[string]any
		_ = json.Unmarshal(body, &list)
		if len(list) != 1 {
			t.Fatalf("expected 1 document, got %d", len(list))
		}
		if _, ok := list[0]["content_base64"]; ok {
			t.Fatalf("expected no content in listing, got %v", list[0])
		}
	}

	// 7) Get por ID trae contenido
	{
		st, body := doReq(t, ts.URL, "GET", "/patients/"+patientID+"/documents/"+docID, clinicianID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get document, got %d body=%s", st, string(body))
		}
		var resp struct {
			ContentBase64 string `json:"content_base64"`
		}
		_ = json.Unmarshal(body, &resp)
		got, _ := base64.StdEncoding.DecodeString(resp.ContentBase64)
		if string(got) != string(content) {
			t.Fatalf("expected content round-trip, got %q", string(got))
		}
	}

	// 8) Recomendación manual fuera de rango => viene con warnings
	recID := ""
	{
		st, body := doReq(t, ts.URL, "POST", "/patients/"+patientID+"/recommendations", clinicianID, map[string]any{
			"medication": "amoxicillin",
			"dose_mg":    600,
			"route":      "oral",
			"frequency":  "cada 8 horas",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create recommendation, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID       string   `json:"id"`
			Warnings []string `json:"warnings"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ID == "" {
			t.Fatalf("create recommendation: missing id body=%s", string(body))
		}
		if len(resp.Warnings) == 0 {
			t.Fatalf("expected dosing warnings for 600mg at 13kg, got none")
		}
		recID = resp.ID
	}

	// 9) Filtro por status
	{
		st, body := doReq(t, ts.URL, "GET", "/patients/"+patientID+"/recommendations?status=active", clinicianID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list recommendations, got %d body=%s", st, string(body))
		}
		var list []map[string]any
		_ = json.Unmarshal(body, &list)
		if len(list) != 1 {
			t.Fatalf("expected 1 active recommendation, got %d", len(list))
		}
	}

	// 10) Void dos veces => idempotente
	for i := 0; i < 2; i++ {
		st, body := doReq(t, ts.URL, "POST", "/patients/"+patientID+"/recommendations/"+recID+"/void", clinicianID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 void (attempt %d), got %d body=%s", i+1, st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/patients/"+patientID+"/recommendations?status=voided", clinicianID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list voided, got %d body=%s", st, string(body))
		}
		var list []map[string]any
		_ = json.Unmarshal(body, &list)
		if len(list) != 1 {
			t.Fatalf("expected 1 voided recommendation, got %d", len(list))
		}
	}

	// 11) Borrar ficha
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/patients/"+patientID, clinicianID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete patient, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/patients/"+patientID, clinicianID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
	}
}

func TestHTTP_Analyze_EndToEnd(t *testing.T) {
	fake := &fakeAnalyzer{result: ai.Result{
		ParseOK: true,
		Summary: "dosis sugerida dentro de rango",
		Recommendations: []ai.DosageItem{
			{
				Medication:  "paracetamol",
				DoseMg:      180,
				DoseUnit:    "mg",
				Route:       "oral",
				Frequency:   "cada 6 horas",
				DosesPerDay: 4,
			},
		},
	}}

	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil, Analyzer: fake}))
	defer ts.Close()

	clinicianID := "clin-1"
	patientID := createPatient(t, ts.URL, clinicianID, map[string]any{
		"name":      "Luis",
		"weight_kg": 14,
	})

	st, body := doReq(t, ts.URL, "POST", "/patients/"+patientID+"/analyze", clinicianID, map[string]any{
		"question": "fiebre de 39, ¿dosis de paracetamol?",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 analyze, got %d body=%s", st, string(body))
	}

	var resp struct {
		ParseOK         bool             `json:"parse_ok"`
		Summary         string           `json:"summary"`
		Recommendations []map[string]any `json:"recommendations"`
	}
	_ = json.Unmarshal(body, &resp)
	if !resp.ParseOK {
		t.Fatalf("expected parse_ok, body=%s", string(body))
	}
	if len(resp.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(resp.Recommendations))
	}

	// Queda persistida como ai_analysis en la historia
	st, body = doReq(t, ts.URL, "GET", "/patients/"+patientID+"/recommendations?source=ai_analysis", clinicianID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list, got %d body=%s", st, string(body))
	}
	var list []map[string]any
	_ = json.Unmarshal(body, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 persisted ai recommendation, got %d", len(list))
	}
}

func TestHTTP_Analyze_UnavailableWithoutAnalyzer(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	patientID := createPatient(t, ts.URL, "clin-1", map[string]any{
		"name":      "Ana",
		"weight_kg": 10,
	})

	st, _ := doReq(t, ts.URL, "POST", "/patients/"+patientID+"/analyze", "clin-1", map[string]any{
		"question": "dosis",
	})
	if st != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without analyzer, got %d", st)
	}
}

func TestHTTP_PatchPatient_RejectsUnknownField(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	patientID := createPatient(t, ts.URL, "clin-1", map[string]any{
		"name":      "Ana",
		"weight_kg": 10,
	})

	// "weight" no existe (es weight_kg) => 400, no un no-op silencioso
	st, body := doReq(t, ts.URL, "PATCH", "/patients/"+patientID, "clin-1", map[string]any{
		"weight": 12,
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d body=%s", st, string(body))
	}
}

func TestHTTP_RequiresAuth(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	// Sin X-Debug-User-ID ni token => 401
	st, _ := doReq(t, ts.URL, "GET", "/patients", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", st)
	}
}

func createPatient(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/patients", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create patient, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create patient: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
