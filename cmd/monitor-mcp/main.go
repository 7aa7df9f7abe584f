package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/reissbruno/monitoramento-processual-tjsp/models"
)

func main() {
	apiURL := os.Getenv("MONITOR_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("MONITOR_API_KEY")

	s := newServer(strings.TrimRight(apiURL, "/"), apiKey)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(apiURL, apiKey string) *server.MCPServer {
	s := server.NewMCPServer(
		"monitoramento-processual-tjsp",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	consultaTool := mcp.NewTool("consultar_movimentacoes",
		mcp.WithDescription("Consulta as movimentações de um processo de 1º grau no e-SAJ do TJSP e retorna data, descrição e link do documento de cada movimentação."),
		mcp.WithString("numero_processo",
			mcp.Required(),
			mcp.Description("Número unificado do processo, ex.: 1000000-00.2024.8.26.0100"),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Aceita um resultado em cache com até esta idade, em milissegundos (padrão: 0, sempre consulta o portal)"),
		),
	)
	s.AddTool(consultaTool, handleConsulta(apiURL, apiKey))

	return s
}

// apiGet sends a GET request to the monitor API and returns the status and body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

func handleConsulta(apiURL, apiKey string) server.ToolHandlerFunc {
	// Portal queries can retry for several minutes.
	client := &http.Client{Timeout: 10 * time.Minute}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		numero, err := request.RequireString("numero_processo")
		if err != nil || strings.TrimSpace(numero) == "" {
			return mcp.NewToolResultError("numero_processo is required"), nil
		}

		path := "/api/v1/processos/" + url.PathEscape(strings.TrimSpace(numero)) + "/movimentacoes"
		if maxAge, ok := request.GetArguments()["max_age"].(float64); ok && maxAge > 0 {
			path += "?max_age=" + strconv.Itoa(int(maxAge))
		}

		status, body, err := apiGet(ctx, client, apiURL, apiKey, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var res models.FetchResult
		if err := json.Unmarshal(body, &res); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response (HTTP %d): %v", status, err)), nil
		}
		if !res.OK() {
			return mcp.NewToolResultError(fmt.Sprintf("[%d] %s", res.Code, res.Message)), nil
		}

		return mcp.NewToolResultText(formatMovements(numero, &res)), nil
	}
}

// formatMovements renders a success result as plain text, one movement per line.
func formatMovements(numero string, res *models.FetchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Processo: %s\nConsultado em: %s\nMovimentações: %d\n", numero, res.Datetime, len(res.Results))
	for _, m := range res.Results {
		fmt.Fprintf(&b, "\n%s | %s", m.DateTime, m.Description)
		if m.Documents != "" {
			fmt.Fprintf(&b, " | %s", m.Documents)
		}
	}
	if t := res.Telemetry; t != nil {
		fmt.Fprintf(&b, "\n\n---\nTentativas: %d, bytes: %d, tempo: %.2fs", t.Attempts, t.BytesSent, t.TotalTime)
	}
	return b.String()
}
