package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/12402940/Regional-Sales-Website-AI-based/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{
			Host:               "localhost",
			Port:               0,
			RateLimitPerSecond: 100,
			RateLimitBurst:     200,
			CORSOrigins:        "*",
		},
		Auth: config.AuthConfig{
			JWTSecret:      "e2e-test-secret",
			AccessTokenTTL: time.Hour,
			UserDBPath:     filepath.Join(dir, "users.db"),
		},
		Storage: config.StorageConfig{
			DataDir:     dir,
			UploadDir:   filepath.Join(dir, "uploads"),
			MemoryPath:  filepath.Join(dir, "ai_memory.json"),
			BundlePath:  filepath.Join(dir, "model_bundle.json"),
			ArchivePath: filepath.Join(dir, "sales.db"),
		},
		Training: config.TrainingConfig{DefaultEpochs: 30, DefaultClusters: 3},
		Observability: config.ObservabilityConfig{
			MetricsEnabled: true,
			CronSpec:       "0 3 * * *",
		},
	}
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	deps, err := InitDependencies(context.Background(), testConfig(t), logger)
	require.NoError(t, err)
	t.Cleanup(deps.Cleanup)

	server := httptest.NewServer(NewRouter(deps))
	t.Cleanup(server.Close)
	return server
}

func salesCSV() []byte {
	var buf bytes.Buffer
	buf.WriteString("Region,Product,Quantity,Price,Revenue\n")
	regions := []string{"North", "South", "East", "West"}
	products := []string{"Widget", "Gadget"}
	for i := 0; i < 40; i++ {
		qty := 1 + i%9
		price := 10.0 + float64(i%5)*2.5
		fmt.Fprintf(&buf, "%s,%s,%d,%.2f,%.2f\n",
			regions[i%len(regions)], products[i%len(products)], qty, price, float64(qty)*price)
	}
	return buf.Bytes()
}

func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func uploadCSV(t *testing.T, server *httptest.Server, token, filename string, data []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, server.URL+"/v1/datasets", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

type queryResponse struct {
	Matched bool `json:"matched"`
	Results []struct {
		Intent  string `json:"intent"`
		Text    string `json:"text"`
		Warning string `json:"warning"`
	} `json:"results"`
}

func TestAPI_EndToEnd(t *testing.T) {
	server := startServer(t)

	t.Run("health check is public", func(t *testing.T) {
		resp, err := server.Client().Get(server.URL + "/healthz")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("protected routes reject anonymous requests", func(t *testing.T) {
		resp := doJSON(t, server, http.MethodGet, "/v1/datasets/current", "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var token string
	t.Run("register and login", func(t *testing.T) {
		creds := map[string]string{"username": "analyst", "password": "a long password"}

		var registered struct {
			AccessToken string `json:"access_token"`
		}
		resp := doJSON(t, server, http.MethodPost, "/v1/auth/register", "", creds, &registered)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.NotEmpty(t, registered.AccessToken)

		var loggedIn struct {
			AccessToken string `json:"access_token"`
		}
		resp = doJSON(t, server, http.MethodPost, "/v1/auth/login", "", creds, &loggedIn)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, loggedIn.AccessToken)
		token = loggedIn.AccessToken
	})

	t.Run("query before upload conflicts", func(t *testing.T) {
		resp := doJSON(t, server, http.MethodPost, "/v1/copilot/query", token,
			map[string]string{"query": "summary"}, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("upload activates the dataset", func(t *testing.T) {
		resp := uploadCSV(t, server, token, "sales.csv", salesCSV())
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var info struct {
			Name    string   `json:"name"`
			Rows    int      `json:"rows"`
			Columns []string `json:"columns"`
		}
		resp = doJSON(t, server, http.MethodGet, "/v1/datasets/current", token, nil, &info)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "sales.csv", info.Name)
		assert.Equal(t, 40, info.Rows)
		assert.Contains(t, info.Columns, "Revenue")
	})

	t.Run("raw upload can be listed and downloaded back", func(t *testing.T) {
		var listed struct {
			Uploads []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"uploads"`
		}
		resp := doJSON(t, server, http.MethodGet, "/v1/datasets/uploads", token, nil, &listed)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, listed.Uploads, 1)
		assert.Equal(t, "sales.csv", listed.Uploads[0].Name)

		req, err := http.NewRequest(http.MethodGet, server.URL+"/v1/datasets/uploads/"+listed.Uploads[0].ID, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)

		dl, err := server.Client().Do(req)
		require.NoError(t, err)
		defer dl.Body.Close()

		require.Equal(t, http.StatusOK, dl.StatusCode)
		body, err := io.ReadAll(dl.Body)
		require.NoError(t, err)
		assert.Equal(t, salesCSV(), body)
	})

	t.Run("summary endpoint describes the dataset", func(t *testing.T) {
		var out struct {
			Summary string `json:"summary"`
		}
		resp := doJSON(t, server, http.MethodGet, "/v1/datasets/current/summary", token, nil, &out)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, out.Summary, "Rows: 40")
	})

	t.Run("aggregate queries work before training", func(t *testing.T) {
		var out queryResponse
		resp := doJSON(t, server, http.MethodPost, "/v1/copilot/query", token,
			map[string]string{"query": "total revenue by region"}, &out)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, out.Matched)

		// One aggregate per category column present (Region and Product).
		require.Len(t, out.Results, 2)
		for _, res := range out.Results {
			assert.Equal(t, "aggregate", res.Intent)
		}
	})

	t.Run("training produces scores", func(t *testing.T) {
		var result struct {
			NetR2       float64  `json:"net_r2"`
			LinearR2    float64  `json:"linear_r2"`
			TopFeatures []string `json:"top_features"`
		}
		resp := doJSON(t, server, http.MethodPost, "/v1/copilot/train", token,
			map[string]any{"target": "Revenue", "epochs": 20, "clusters": 2}, &result)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, result.TopFeatures)
	})

	t.Run("prediction works after training", func(t *testing.T) {
		var out queryResponse
		resp := doJSON(t, server, http.MethodPost, "/v1/copilot/query", token,
			map[string]string{"query": "predict revenue for quantity=5 price=12.5"}, &out)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, out.Matched)
		require.Len(t, out.Results, 1)
		assert.Equal(t, "predict", out.Results[0].Intent)
		assert.Empty(t, out.Results[0].Warning)
		assert.Contains(t, out.Results[0].Text, "Predicted Revenue")
	})

	t.Run("top-n query returns a ranking", func(t *testing.T) {
		var out queryResponse
		resp := doJSON(t, server, http.MethodPost, "/v1/copilot/query", token,
			map[string]string{"query": "top 2 product by revenue"}, &out)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, out.Matched)
		assert.Equal(t, "top_n", out.Results[0].Intent)
	})

	t.Run("queries and training leave insights in memory", func(t *testing.T) {
		var out struct {
			Insights []struct {
				Title string `json:"title"`
			} `json:"insights"`
		}
		resp := doJSON(t, server, http.MethodGet, "/v1/copilot/memory", token, nil, &out)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, out.Insights)
	})

	t.Run("reports run against the active dataset", func(t *testing.T) {
		var summary struct {
			Rows []struct {
				Region string  `json:"region"`
				Sales  float64 `json:"sales"`
			} `json:"rows"`
		}
		resp := doJSON(t, server, http.MethodGet, "/v1/reports/summary", token, nil, &summary)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, summary.Rows, 4)

		var trend struct {
			Direction string `json:"direction"`
		}
		resp = doJSON(t, server, http.MethodGet, "/v1/reports/trend", token, nil, &trend)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, []string{"UP", "DOWN"}, trend.Direction)
	})

	t.Run("export serves CSV", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/v1/reports/summary/export", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := server.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "region,quantity,sales")
	})

	t.Run("export serves a PDF report", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/v1/reports/summary/export?format=pdf", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := server.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
	})

	t.Run("clearing memory empties the list", func(t *testing.T) {
		resp := doJSON(t, server, http.MethodDelete, "/v1/copilot/memory", token, nil, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		var out struct {
			Insights []struct{} `json:"insights"`
		}
		resp = doJSON(t, server, http.MethodGet, "/v1/copilot/memory", token, nil, &out)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, out.Insights)
	})

	t.Run("metrics endpoint is exposed", func(t *testing.T) {
		resp, err := server.Client().Get(server.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestAPI_TrainValidation(t *testing.T) {
	server := startServer(t)

	var registered struct {
		AccessToken string `json:"access_token"`
	}
	resp := doJSON(t, server, http.MethodPost, "/v1/auth/register", "",
		map[string]string{"username": "analyst", "password": "a long password"}, &registered)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := registered.AccessToken

	resp = uploadCSV(t, server, token, "sales.csv", salesCSV())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("text target is unprocessable", func(t *testing.T) {
		resp := doJSON(t, server, http.MethodPost, "/v1/copilot/train", token,
			map[string]any{"target": "Region", "epochs": 10, "clusters": 2}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("epochs outside bounds are rejected", func(t *testing.T) {
		resp := doJSON(t, server, http.MethodPost, "/v1/copilot/train", token,
			map[string]any{"target": "Revenue", "epochs": 10000, "clusters": 2}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
