package documents

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]Document
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Document{}}
}

func (r *testRepo) Create(ctx context.Context, d Document) error {
	r.byID[d.ID] = d
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Document, error) {
	d, ok := r.byID[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return d, nil
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string) ([]Document, error) {
	out := make([]Document, 0)
	for _, d := range r.byID {
		if d.PatientID == patientID {
			d.Content = nil
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func TestService_Upload_DecodesAndStores(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	content := []byte("historia clinica del paciente")
	d, err := svc.Upload(context.Background(), "pat-1", "clin-1", UploadInput{
		FileName:      "historia.txt",
		MimeType:      "text/plain",
		ContentBase64: base64.StdEncoding.EncodeToString(content),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if d.SizeBytes != len(content) {
		t.Fatalf("expected size %d, got %d", len(content), d.SizeBytes)
	}
	if string(d.Content) != string(content) {
		t.Fatalf("expected decoded content stored")
	}
	if d.CreatedAt != now {
		t.Fatalf("expected CreatedAt to be now")
	}
}

func TestService_Upload_NormalizesMimeType(t *testing.T) {
	svc := NewService(newTestRepo())

	d, err := svc.Upload(context.Background(), "pat-1", "clin-1", UploadInput{
		FileName:      "scan.pdf",
		MimeType:      " Application/PDF ",
		ContentBase64: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if d.MimeType != "application/pdf" {
		t.Fatalf("expected normalized mime, got %q", d.MimeType)
	}
}

func TestService_Upload_Rejections(t *testing.T) {
	svc := NewService(newTestRepo())
	valid := base64.StdEncoding.EncodeToString([]byte("x"))

	cases := []struct {
		name string
		in   UploadInput
	}{
		{"missing file name", UploadInput{MimeType: "text/plain", ContentBase64: valid}},
		{"unsupported mime", UploadInput{FileName: "a.zip", MimeType: "application/zip", ContentBase64: valid}},
		{"bad base64", UploadInput{FileName: "a.txt", MimeType: "text/plain", ContentBase64: "no-es-base64!!"}},
		{"empty content", UploadInput{FileName: "a.txt", MimeType: "text/plain", ContentBase64: ""}},
		{"oversize", UploadInput{
			FileName: "a.txt", MimeType: "text/plain",
			ContentBase64: base64.StdEncoding.EncodeToString([]byte(strings.Repeat("a", MaxContentBytes+1))),
		}},
	}

	for _, tc := range cases {
		if _, err := svc.Upload(context.Background(), "pat-1", "clin-1", tc.in); err != ErrInvalidInput {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestService_GetForPatient_ChecksPatientMatch(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	d, err := svc.Upload(context.Background(), "pat-1", "clin-1", UploadInput{
		FileName:      "a.txt",
		MimeType:      "text/plain",
		ContentBase64: base64.StdEncoding.EncodeToString([]byte("x")),
	})
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}

	if _, err := svc.GetForPatient(context.Background(), "pat-2", d.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for wrong patient, got %v", err)
	}
	if _, err := svc.GetForPatient(context.Background(), "pat-1", d.ID); err != nil {
		t.Fatalf("GetForPatient error: %v", err)
	}
}
