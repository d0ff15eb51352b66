package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/de-tools/claim-audit/pkg/models/api"
	"github.com/de-tools/claim-audit/pkg/models/domain"
	"github.com/de-tools/claim-audit/pkg/models/store"
)

type mockMetricsExplorer struct {
	mock.Mock
}

func (m *mockMetricsExplorer) Metrics(ctx context.Context) (*store.RunInfo, map[string]float64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*store.RunInfo), args.Get(1).(map[string]float64), args.Error(2)
}

func (m *mockMetricsExplorer) Comparison(ctx context.Context) ([]domain.ComparisonRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ComparisonRow), args.Error(1)
}

func (m *mockMetricsExplorer) Tables(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockMetricsExplorer) Table(ctx context.Context, name string) (*store.Table, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Table), args.Error(1)
}

func (m *mockMetricsExplorer) Workbook(ctx context.Context) (*excelize.File, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*excelize.File), args.Error(1)
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	generatedAt := time.Date(2025, 5, 2, 8, 30, 0, 0, time.UTC)

	explorer := new(mockMetricsExplorer)
	explorer.On("Metrics", mock.Anything).Return(
		&store.RunInfo{CreatedAt: generatedAt, SemanticStatus: "ok"},
		map[string]float64{"count_total_orders": 3},
		nil,
	)
	explorer.On("Comparison", mock.Anything).Return(
		[]domain.ComparisonRow{
			{Metric: "count_total_orders", Current: 3, Previous: 2, AbsoluteChange: 1, PercentChange: 50},
		},
		nil,
	)
	explorer.On("Tables", mock.Anything).Return([]string{"scalar_metrics"}, nil)
	explorer.On("Table", mock.Anything, "scalar_metrics").Return(
		&store.Table{
			Name:    "scalar_metrics",
			Columns: []string{"metric", "value"},
			Rows:    [][]any{{"count_total_orders", 3.0}},
		},
		nil,
	)

	webAPI := NewWebAPI(logger, Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies:    Dependencies{Metrics: explorer},
	})
	testServer := httptest.NewServer(webAPI.router)
	defer testServer.Close()

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "GetMetrics",
			path:           "/api/v1/metrics",
			expectedStatus: http.StatusOK,
			expected: api.Metrics{
				GeneratedAt:    generatedAt,
				SemanticStatus: "ok",
				Scalars:        map[string]float64{"count_total_orders": 3},
			},
			parseResponse: unmarshalResponse[api.Metrics](),
		},
		{
			name:           "GetComparison",
			path:           "/api/v1/metrics/comparison",
			expectedStatus: http.StatusOK,
			expected: []api.ComparisonRow{
				{Metric: "count_total_orders", CurrentValue: 3, OldValue: 2, AbsoluteChange: 1, PercentChange: 50},
			},
			parseResponse: unmarshalResponse[[]api.ComparisonRow](),
		},
		{
			name:           "ListTables",
			path:           "/api/v1/tables",
			expectedStatus: http.StatusOK,
			expected:       api.TableList{Tables: []string{"scalar_metrics"}},
			parseResponse:  unmarshalResponse[api.TableList](),
		},
		{
			name:           "GetTable",
			path:           "/api/v1/tables/scalar_metrics",
			expectedStatus: http.StatusOK,
			expected: api.Table{
				Name:    "scalar_metrics",
				Columns: []string{"metric", "value"},
				Rows:    [][]any{{"count_total_orders", 3.0}},
			},
			parseResponse: unmarshalResponse[api.Table](),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(testServer.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestWebAPI_ExportEndpoint(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	explorer := new(mockMetricsExplorer)
	explorer.On("Workbook", mock.Anything).Return(excelize.NewFile(), nil)

	webAPI := NewWebAPI(logger, Config{
		Addr:         ":8080",
		Dependencies: Dependencies{Metrics: explorer},
	})
	testServer := httptest.NewServer(webAPI.router)
	defer testServer.Close()

	resp, err := http.Get(testServer.URL + "/api/v1/export")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
