package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
	_ "github.com/JonMunkholm/ecomrevenue/internal/core/tables"
	"github.com/JonMunkholm/ecomrevenue/internal/ingest"
	"github.com/JonMunkholm/ecomrevenue/internal/store"
	"github.com/JonMunkholm/ecomrevenue/internal/store/duckdb"
)

func rec(kv ...string) core.RawRecord {
	values := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		values[kv[i]] = kv[i+1]
	}
	return core.RawRecord{Values: values}
}

func datasets() map[string][]core.RawRecord {
	return map[string][]core.RawRecord{
		"customers": {
			rec("customer_id", "C1", "full_name", "Asha Rao"),
			rec("customer_id", "C2", "full_name", "Ravi Kumar"),
		},
		"products": {rec("product_id", "P1", "product_name", "Lamp", "price", "100")},
		"orders": {
			rec("order_id", "O1", "customer_id", "C2", "order_date", "2024-01-10", "status", "delivered"),
		},
		"order_items": {
			rec("item_id", "I1", "order_id", "O1", "product_id", "P1", "quantity", "2", "unit_price", "100"),
			rec("item_id", "I2", "order_id", "O999", "product_id", "P1", "quantity", "1", "unit_price", "100"),
		},
		"payments": {},
	}
}

func openStore(t *testing.T, load bool) store.Store {
	t.Helper()
	s, err := duckdb.Open(context.Background(), duckdb.Memory, store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	if load {
		_, err := ingest.New(s, ingest.Options{Audit: true}).Load(context.Background(), datasets())
		require.NoError(t, err)
	}
	return s
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	rr := get(t, NewServer(openStore(t, false), Options{}), "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestListTables(t *testing.T) {
	rr := get(t, NewServer(openStore(t, true), Options{}), "/api/tables")
	require.Equal(t, http.StatusOK, rr.Code)

	var counts []ingest.TableCount
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &counts))
	require.Len(t, counts, 5)
	assert.Equal(t, "customers", counts[0].Entity)
	assert.Equal(t, int64(2), counts[0].Rows)
	assert.Equal(t, "order_items", counts[3].Entity)
	assert.Equal(t, int64(1), counts[3].Rows)
}

func TestReport(t *testing.T) {
	rr := get(t, NewServer(openStore(t, true), Options{TopN: 5}), "/api/report?top=1")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Rows []struct {
			CustomerID   string `json:"customerId"`
			TotalOrders  int64  `json:"totalOrders"`
			TotalRevenue string `json:"totalRevenue"`
		} `json:"rows"`
		Summary struct {
			ActiveCustomers   int `json:"activeCustomers"`
			InactiveCustomers int `json:"inactiveCustomers"`
			TopN              []struct {
				CustomerID string `json:"customerId"`
			} `json:"topN"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	require.Len(t, body.Rows, 2)
	assert.Equal(t, "C2", body.Rows[0].CustomerID)
	assert.Equal(t, "200", body.Rows[0].TotalRevenue)
	assert.Equal(t, "C1", body.Rows[1].CustomerID)
	assert.Zero(t, body.Rows[1].TotalOrders)
	assert.Equal(t, 1, body.Summary.ActiveCustomers)
	assert.Equal(t, 1, body.Summary.InactiveCustomers)
	require.Len(t, body.Summary.TopN, 1)
}

func TestReport_BadTop(t *testing.T) {
	rr := get(t, NewServer(openStore(t, true), Options{}), "/api/report?top=abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var e ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	assert.Equal(t, "CFG001", e.Code)
}

func TestReport_NothingLoaded(t *testing.T) {
	rr := get(t, NewServer(openStore(t, false), Options{}), "/api/report")
	assert.Equal(t, http.StatusConflict, rr.Code)

	var e ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	assert.Equal(t, "RPT001", e.Code)
	assert.NotEmpty(t, e.Action)
}

func TestReportCSV(t *testing.T) {
	rr := get(t, NewServer(openStore(t, true), Options{}), "/api/report.csv")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv"))

	want := "customer_id,full_name,total_orders,total_quantity,total_revenue\n" +
		"C2,Ravi Kumar,1,2,200.00\n" +
		"C1,Asha Rao,0,0,0.00\n"
	assert.Equal(t, want, rr.Body.String())
}

func TestListRuns(t *testing.T) {
	rr := get(t, NewServer(openStore(t, true), Options{}), "/api/runs?limit=500")
	require.Equal(t, http.StatusOK, rr.Code)

	var runs []ingest.RunSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "partial", runs[0].Status)
}

func TestListRuns_NoHistory(t *testing.T) {
	rr := get(t, NewServer(openStore(t, false), Options{}), "/api/runs")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"config", &core.ConfigError{Err: assert.AnError}, http.StatusBadRequest},
		{"missing table", &core.ReportComputeError{Table: "orders"}, http.StatusConflict},
		{"report query", &core.ReportComputeError{Err: &core.StoreAccessError{Op: "query", Err: assert.AnError}}, http.StatusServiceUnavailable},
		{"store", &core.StoreAccessError{Op: "open", Err: assert.AnError}, http.StatusServiceUnavailable},
		{"other", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
