package app

import (
	"context"
	"log"
	"net/http"
	"slices"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/jun/gophdrive/gateway/internal/handler"
)

type handlerFunc func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

type route struct {
	method   string
	segments []string
	handle   handlerFunc
}

// App holds the dependencies for the Lambda function.
type App struct {
	routes         []route
	allowedOrigins []string
}

// New builds an App from already constructed handlers.
func New(authH *handler.AuthHandler, driveH *handler.DriveHandler, docsH *handler.DocsHandler, sheetsH *handler.SheetsHandler, allowedOrigins []string) *App {
	app := &App{allowedOrigins: allowedOrigins}

	// Literal routes must precede parameterised routes sharing a prefix.
	app.add(http.MethodGet, "/auth/url", authH.URL)
	app.add(http.MethodGet, "/auth/login", authH.Login)
	app.add(http.MethodGet, "/auth/callback", authH.Callback)
	app.add(http.MethodGet, "/auth/status", authH.Status)
	app.add(http.MethodPost, "/auth/logout", authH.Logout)

	app.add(http.MethodGet, "/drive/root", driveH.Root)
	app.add(http.MethodGet, "/drive/files", driveH.ListFiles)
	app.add(http.MethodGet, "/drive/files/{id}", driveH.GetFile)
	app.add(http.MethodGet, "/drive/files/{id}/download", driveH.Download)
	app.add(http.MethodPost, "/drive/upload", driveH.Upload)
	app.add(http.MethodDelete, "/drive/delete/{id}", driveH.Delete)

	app.add(http.MethodPost, "/docs/create", docsH.Create)
	app.add(http.MethodGet, "/docs/{id}", docsH.Get)
	app.add(http.MethodPost, "/docs/{id}/append", docsH.Append)
	app.add(http.MethodPut, "/docs/{id}/replace", docsH.Replace)

	app.add(http.MethodGet, "/sheets/{id}", sheetsH.Get)
	app.add(http.MethodGet, "/sheets/{id}/values", sheetsH.ReadValues)
	app.add(http.MethodPut, "/sheets/{id}/values", sheetsH.WriteValues)
	app.add(http.MethodPost, "/sheets/{id}/values", sheetsH.AppendValues)
	app.add(http.MethodDelete, "/sheets/{id}/values", sheetsH.ClearValues)

	return app
}

func (app *App) add(method, pattern string, h handlerFunc) {
	app.routes = append(app.routes, route{method: method, segments: splitPath(pattern), handle: h})
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// match reports whether segs fits the route and collects {name} parameters.
func (r route) match(method string, segs []string) (map[string]string, bool) {
	if r.method != method || len(r.segments) != len(segs) {
		return nil, false
	}
	params := map[string]string{}
	for i, s := range r.segments {
		if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
			if segs[i] == "" {
				return nil, false
			}
			params[s[1:len(s)-1]] = segs[i]
			continue
		}
		if s != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// HandleRequest routes API Gateway requests to the appropriate handler.
func (app *App) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	method := req.HTTPMethod
	path := req.Path
	// Strip /api prefix if present (for CloudFront proxying)
	if path == "/api" || strings.HasPrefix(path, "/api/") {
		path = strings.TrimPrefix(path, "/api")
	}

	requestID := uuid.NewString()
	log.Printf("[app] %s %s %s", requestID, method, path)

	origin := headerValue(req.Headers, "Origin")

	// CORS Preflight
	if method == http.MethodOptions {
		return app.cors(events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent}, origin), nil
	}

	if req.PathParameters == nil {
		req.PathParameters = make(map[string]string)
	}
	if req.QueryStringParameters == nil {
		req.QueryStringParameters = make(map[string]string)
	}

	segs := splitPath(path)
	for _, rt := range app.routes {
		params, ok := rt.match(method, segs)
		if !ok {
			continue
		}
		for k, v := range params {
			req.PathParameters[k] = v
		}
		resp, err := rt.handle(ctx, req)
		return app.cors(must(requestID, resp, err), origin), nil
	}

	resp := events.APIGatewayProxyResponse{
		StatusCode: http.StatusNotFound,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"error":"not found"}`,
	}
	return app.cors(resp, origin), nil
}

// cors adds CORS headers to an API Gateway response. The request origin is
// echoed only when it appears in the allow list.
func (app *App) cors(resp events.APIGatewayProxyResponse, origin string) events.APIGatewayProxyResponse {
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if origin != "" && slices.Contains(app.allowedOrigins, origin) {
		resp.Headers["Access-Control-Allow-Origin"] = origin
		resp.Headers["Access-Control-Allow-Credentials"] = "true"
	}
	resp.Headers["Vary"] = "Origin"
	resp.Headers["Access-Control-Allow-Methods"] = "GET,POST,PUT,DELETE,OPTIONS"
	resp.Headers["Access-Control-Allow-Headers"] = "Content-Type,Authorization"
	return resp
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// must unwraps a handler response. Handlers render their own errors, so a
// non-nil error here is unexpected.
func must(requestID string, resp events.APIGatewayProxyResponse, err error) events.APIGatewayProxyResponse {
	if err != nil {
		log.Printf("[app] %s handler error: %v", requestID, err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":"internal server error"}`,
		}
	}
	return resp
}
