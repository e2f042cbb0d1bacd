package handler

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jun/gophdrive/gateway/internal/adapter"
)

const defaultRange = "Sheet1"

// SheetsHandler serves /sheets endpoints.
type SheetsHandler struct {
	sheets adapter.SheetsGateway
}

func NewSheetsHandler(sheets adapter.SheetsGateway) *SheetsHandler {
	return &SheetsHandler{sheets: sheets}
}

type valuesRequest struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

// parseValues requires a range and a 2-D array whose cells are strings,
// numbers or booleans.
func parseValues(req events.APIGatewayProxyRequest) (valuesRequest, error) {
	var in valuesRequest
	if err := decodeBody(req, &in); err != nil {
		return in, err
	}
	if in.Range == "" || in.Values == nil {
		return in, adapter.Validationf("range and values are required")
	}
	for i, row := range in.Values {
		for j, cell := range row {
			switch cell.(type) {
			case string, float64, bool:
			default:
				return in, adapter.Validationf("values[%d][%d] must be a string, number or boolean", i, j)
			}
		}
	}
	return in, nil
}

func (h *SheetsHandler) Get(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	ss, err := h.sheets.GetSpreadsheet(ctx, id)
	if err != nil {
		return errorResponse("get spreadsheet "+id, err), nil
	}
	return jsonResponse(http.StatusOK, ss), nil
}

func (h *SheetsHandler) ReadValues(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	rng := req.QueryStringParameters["range"]
	if rng == "" {
		rng = defaultRange
	}
	vr, err := h.sheets.ReadValues(ctx, id, rng)
	if err != nil {
		return errorResponse("read values "+id, err), nil
	}
	return jsonResponse(http.StatusOK, map[string]any{
		"range":    vr.Range,
		"values":   vr.Values,
		"rowCount": len(vr.Values),
	}), nil
}

func (h *SheetsHandler) WriteValues(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	in, err := parseValues(req)
	if err != nil {
		return errorResponse("write values", err), nil
	}
	res, err := h.sheets.WriteValues(ctx, id, in.Range, in.Values)
	if err != nil {
		return errorResponse("write values "+id, err), nil
	}
	return jsonResponse(http.StatusOK, res), nil
}

func (h *SheetsHandler) AppendValues(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	in, err := parseValues(req)
	if err != nil {
		return errorResponse("append values", err), nil
	}
	res, err := h.sheets.AppendValues(ctx, id, in.Range, in.Values)
	if err != nil {
		return errorResponse("append values "+id, err), nil
	}
	return jsonResponse(http.StatusOK, map[string]any{
		"spreadsheetId": res.SpreadsheetID,
		"tableRange":    res.TableRange,
		"updates": map[string]any{
			"updatedRange": res.UpdatedRange,
			"updatedRows":  res.UpdatedRows,
			"updatedCells": res.UpdatedCells,
		},
	}), nil
}

func (h *SheetsHandler) ClearValues(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	rng := req.QueryStringParameters["range"]
	if rng == "" {
		return badRequest("range is required"), nil
	}
	cleared, err := h.sheets.ClearValues(ctx, id, rng)
	if err != nil {
		return errorResponse("clear values "+id, err), nil
	}
	return jsonResponse(http.StatusOK, map[string]string{"clearedRange": cleared}), nil
}
