// Command server runs the gateway as a plain HTTP server for local development.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spf13/cobra"

	"github.com/jun/gophdrive/gateway/internal/app"
	"github.com/jun/gophdrive/gateway/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the Google Workspace gateway locally",
	Long: `Serve the gateway API over HTTP. Requests are translated into API Gateway
proxy events so the same handlers run locally and on Lambda.

Settings come from the TOML file given by --config (or GATEWAY_CONFIG) and
environment variables, which take precedence.

Examples:
  server --addr :8080
  server --config gateway.toml`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().String("addr", ":8080", "listen address")
	rootCmd.Flags().String("config", "", "path to a TOML config file")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("getting config flag: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	application, err := app.NewApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	http.HandleFunc("/", proxy(application))
	log.Printf("[server] listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

// proxy adapts a net/http request to a proxy event and writes back the response.
// Bodies travel base64-encoded so binary uploads survive the round trip.
func proxy(application *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		headers := make(map[string]string)
		for k, v := range r.Header {
			headers[k] = v[0]
		}

		queryParams := make(map[string]string)
		for k, v := range r.URL.Query() {
			queryParams[k] = v[0]
		}

		req := events.APIGatewayProxyRequest{
			Path:                  r.URL.Path,
			HTTPMethod:            r.Method,
			Headers:               headers,
			QueryStringParameters: queryParams,
		}
		if len(body) > 0 {
			req.Body = base64.StdEncoding.EncodeToString(body)
			req.IsBase64Encoded = true
		}

		resp, err := application.HandleRequest(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		out := []byte(resp.Body)
		if resp.IsBase64Encoded {
			if out, err = base64.StdEncoding.DecodeString(resp.Body); err != nil {
				http.Error(w, "invalid response body", http.StatusInternalServerError)
				return
			}
		}
		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := w.Write(out); err != nil {
			log.Printf("[server] write response: %v", err)
		}
	}
}
