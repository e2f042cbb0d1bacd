package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jun/gophdrive/gateway/internal/handler"
)

func TestSheetsHandler_Get(t *testing.T) {
	req := makeRequest("GET", "/sheets/ss1", "")
	req.PathParameters["id"] = "ss1"
	body := decode(t, must(handler.NewSheetsHandler(&fakeSheets{}).Get(context.Background(), req)))

	if body["spreadsheetId"] != "ss1" || body["title"] != "Budget" {
		t.Errorf("unexpected body %v", body)
	}
	sheets, _ := body["sheets"].([]any)
	if len(sheets) != 1 {
		t.Fatalf("expected 1 sheet, got %v", body["sheets"])
	}
	first := sheets[0].(map[string]any)
	if first["title"] != "Sheet1" || first["sheetId"] != float64(0) || first["index"] != float64(0) {
		t.Errorf("unexpected sheet %v", first)
	}
}

func TestSheetsHandler_ReadValues(t *testing.T) {
	s := &fakeSheets{values: [][]any{{"a", "b"}, {"c"}}}
	h := handler.NewSheetsHandler(s)

	req := makeRequest("GET", "/sheets/ss1/values", "")
	req.PathParameters["id"] = "ss1"
	body := decode(t, must(h.ReadValues(context.Background(), req)))
	if s.lastRange != "Sheet1" {
		t.Errorf("expected default range Sheet1, got %q", s.lastRange)
	}
	if body["rowCount"] != float64(2) {
		t.Errorf("expected rowCount 2, got %v", body["rowCount"])
	}

	req.QueryStringParameters["range"] = "Q2!A1:B9"
	must(h.ReadValues(context.Background(), req))
	if s.lastRange != "Q2!A1:B9" {
		t.Errorf("expected explicit range, got %q", s.lastRange)
	}
}

func TestSheetsHandler_WriteValues(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"scalars", `{"range":"Sheet1!A1","values":[["x",1.5],[true,"=SUM(A1:A2)"]]}`, http.StatusOK},
		{"jagged rows", `{"range":"Sheet1!A1","values":[["x"],["y","z"]]}`, http.StatusOK},
		{"empty values", `{"range":"Sheet1!A1","values":[]}`, http.StatusOK},
		{"missing range", `{"values":[["x"]]}`, http.StatusBadRequest},
		{"missing values", `{"range":"Sheet1!A1"}`, http.StatusBadRequest},
		{"nested object", `{"range":"Sheet1!A1","values":[[{"a":1}]]}`, http.StatusBadRequest},
		{"null cell", `{"range":"Sheet1!A1","values":[[null]]}`, http.StatusBadRequest},
		{"not 2-D", `{"range":"Sheet1!A1","values":["x"]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSheets{}
			req := makeRequest("PUT", "/sheets/ss1/values", tt.body)
			req.PathParameters["id"] = "ss1"
			resp, _ := handler.NewSheetsHandler(s).WriteValues(context.Background(), req)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, resp.StatusCode, resp.Body)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			body := decode(t, resp)
			for _, k := range []string{"updatedRange", "updatedRows", "updatedColumns", "updatedCells"} {
				if _, ok := body[k]; !ok {
					t.Errorf("missing %s in %v", k, body)
				}
			}
		})
	}
}

func TestSheetsHandler_AppendValues(t *testing.T) {
	s := &fakeSheets{}
	req := makeRequest("POST", "/sheets/ss1/values", `{"range":"Sheet1","values":[["a","b"]]}`)
	req.PathParameters["id"] = "ss1"

	body := decode(t, must(handler.NewSheetsHandler(s).AppendValues(context.Background(), req)))
	if body["spreadsheetId"] != "ss1" || body["tableRange"] != "Sheet1!A1:B2" {
		t.Errorf("unexpected body %v", body)
	}
	updates, _ := body["updates"].(map[string]any)
	if updates["updatedRange"] != "Sheet1!A3:B3" || updates["updatedRows"] != float64(1) || updates["updatedCells"] != float64(2) {
		t.Errorf("unexpected updates %v", updates)
	}
	if len(s.lastValues) != 1 || s.lastValues[0][1] != "b" {
		t.Errorf("values not forwarded: %v", s.lastValues)
	}
}

func TestSheetsHandler_ClearValues(t *testing.T) {
	h := handler.NewSheetsHandler(&fakeSheets{cleared: "Sheet1!A1:Z100"})

	req := makeRequest("DELETE", "/sheets/ss1/values", "")
	req.PathParameters["id"] = "ss1"
	resp, _ := h.ClearValues(context.Background(), req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 without range, got %d", resp.StatusCode)
	}

	req.QueryStringParameters["range"] = "Sheet1"
	body := decode(t, must(h.ClearValues(context.Background(), req)))
	if body["clearedRange"] != "Sheet1!A1:Z100" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestSheetsHandler_Unauthenticated(t *testing.T) {
	req := makeRequest("GET", "/sheets/ss1", "")
	req.PathParameters["id"] = "ss1"
	resp, _ := handler.NewSheetsHandler(&fakeSheets{err: errUnauthenticated}).Get(context.Background(), req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
}
