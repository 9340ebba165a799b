package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/dongyar/internal/auth"
	"github.com/mmynk/dongyar/internal/metrics"
	"github.com/mmynk/dongyar/internal/middleware"
	"github.com/mmynk/dongyar/internal/storage"
	"github.com/mmynk/dongyar/internal/storage/sqlite"
)

type testServer struct {
	client  *SettlementClient
	store   *sqlite.SQLiteStore
	metrics *metrics.Metrics
	url     string
}

// setupTestServer creates a test server backed by a temporary SQLite database.
func setupTestServer(t *testing.T, interceptors []connect.Interceptor, opts ...Option) *testServer {
	t.Helper()
	return setupLoggedTestServer(t, nil, interceptors, opts...)
}

// setupLoggedTestServer is setupTestServer with RPC logs written to logger.
func setupLoggedTestServer(t *testing.T, logger *slog.Logger, interceptors []connect.Interceptor, opts ...Option) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	m := metrics.New()
	interceptors = append([]connect.Interceptor{
		middleware.LoggingInterceptor(logger),
		middleware.MetricsInterceptor(m),
	}, interceptors...)

	svc := NewSettlementService(store, append([]Option{WithMetrics(m)}, opts...)...)
	path, handler := NewSettlementServiceHandler(svc, connect.WithInterceptors(interceptors...))

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testServer{
		client:  NewSettlementClient(http.DefaultClient, server.URL),
		store:   store,
		metrics: m,
		url:     server.URL,
	}
}

func settleRequest(rows ...string) *connect.Request[SettleRequest] {
	req := &SettleRequest{}
	for i := 0; i+1 < len(rows); i += 2 {
		req.Participants = append(req.Participants, Participant{Name: rows[i], Amount: rows[i+1]})
	}
	return connect.NewRequest(req)
}

func TestSettle_OneTransfer(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp, err := ts.client.Settle(context.Background(), settleRequest("A", "300", "B", "100", "C", "200"))
	require.NoError(t, err)

	view := resp.Msg.Settlement
	require.Len(t, view.Transfers, 1)
	assert.Equal(t, Transfer{From: "B", To: "A", Amount: 100, Text: "B owes A 100 toman"}, view.Transfers[0])
	assert.Empty(t, view.Message)
	assert.Empty(t, view.SettlementID)
	assert.Equal(t, []string{"A", "B", "C"}, view.Names)
	assert.Equal(t, []int64{300, 100, 200}, view.Amounts)
	assert.Equal(t, int64(600), view.Total)
	assert.Equal(t, "200", view.EqualShare)
	require.Len(t, view.Shares, 3)
	assert.Equal(t, "50.0", view.Shares[0].Percent)
	assert.Equal(t, "16.7", view.Shares[1].Percent)

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.Settlements.WithLabelValues(metrics.OutcomeSettled)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.RPCRequests.WithLabelValues(SettleProcedure, "ok")))
}

func TestSettle_NothingToSettle(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp, err := ts.client.Settle(context.Background(), settleRequest("A", "0", "B", "0"))
	require.NoError(t, err)

	assert.Empty(t, resp.Msg.Settlement.Transfers)
	assert.Equal(t, "Everyone paid an equal share. Nothing to settle.", resp.Msg.Settlement.Message)
}

func TestSettle_GroupedAmounts(t *testing.T) {
	ts := setupTestServer(t, nil, WithPresentation("en", "rial"))

	resp, err := ts.client.Settle(context.Background(), settleRequest("Sara", "1,200,000+800,000", "Ali", "0"))
	require.NoError(t, err)

	require.Len(t, resp.Msg.Settlement.Transfers, 1)
	assert.Equal(t, "Ali owes Sara 1,000,000 rial", resp.Msg.Settlement.Transfers[0].Text)
}

func TestSettle_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t, nil)

	tests := []struct {
		name string
		req  *connect.Request[SettleRequest]
	}{
		{name: "no participants", req: settleRequest()},
		{name: "empty name", req: settleRequest("A", "100", " ", "200")},
		{name: "invalid amount", req: settleRequest("A", "abc", "B", "200")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.client.Settle(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
		})
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(ts.metrics.Settlements.WithLabelValues(metrics.OutcomeInvalid)))
}

func TestSaveAndGetSettlement(t *testing.T) {
	ts := setupTestServer(t, nil)
	ctx := context.Background()

	req := settleRequest("Zahra", "900", "Ali", "0", "Mina", "300")
	req.Msg.Save = true
	req.Msg.Title = "Weekend trip"

	saved, err := ts.client.Settle(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, saved.Msg.Settlement.SettlementID)
	assert.Equal(t, "Weekend trip", saved.Msg.Settlement.Title)
	assert.NotZero(t, saved.Msg.Settlement.CreatedAt)

	got, err := ts.client.GetSettlement(ctx, connect.NewRequest(&GetSettlementRequest{
		SettlementID: saved.Msg.Settlement.SettlementID,
	}))
	require.NoError(t, err)

	assert.Equal(t, saved.Msg.Settlement, got.Msg.Settlement)
	assert.Equal(t, []Transfer{
		{From: "Ali", To: "Zahra", Amount: 400, Text: "Ali owes Zahra 400 toman"},
		{From: "Mina", To: "Zahra", Amount: 100, Text: "Mina owes Zahra 100 toman"},
	}, got.Msg.Settlement.Transfers)

	t.Run("locale override", func(t *testing.T) {
		fa, err := ts.client.GetSettlement(ctx, connect.NewRequest(&GetSettlementRequest{
			SettlementID: saved.Msg.Settlement.SettlementID,
			Locale:       "fa",
		}))
		require.NoError(t, err)
		assert.Equal(t, "fa", fa.Msg.Settlement.Locale)
		assert.Contains(t, fa.Msg.Settlement.Transfers[0].Text, "بدهد")
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.SettlementsSaved))
}

func TestSettle_RequestCurrency(t *testing.T) {
	ts := setupTestServer(t, nil)
	ctx := context.Background()

	req := settleRequest("A", "300", "B", "100", "C", "200")
	req.Msg.Currency = "rial"
	req.Msg.Save = true

	resp, err := ts.client.Settle(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "rial", resp.Msg.Settlement.Currency)
	assert.Equal(t, "B owes A 100 rial", resp.Msg.Settlement.Transfers[0].Text)

	got, err := ts.client.GetSettlement(ctx, connect.NewRequest(&GetSettlementRequest{
		SettlementID: resp.Msg.Settlement.SettlementID,
	}))
	require.NoError(t, err)
	assert.Equal(t, "rial", got.Msg.Settlement.Currency)
	assert.Equal(t, "B owes A 100 rial", got.Msg.Settlement.Transfers[0].Text)

	plain, err := ts.client.Settle(ctx, settleRequest("A", "10", "B", "0"))
	require.NoError(t, err)
	assert.Equal(t, "toman", plain.Msg.Settlement.Currency)
}

func TestGetSettlement_Errors(t *testing.T) {
	ts := setupTestServer(t, nil)
	ctx := context.Background()

	_, err := ts.client.GetSettlement(ctx, connect.NewRequest(&GetSettlementRequest{SettlementID: "missing"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = ts.client.GetSettlement(ctx, connect.NewRequest(&GetSettlementRequest{}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestSettlementService_Auth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	ts := setupTestServer(t,
		[]connect.Interceptor{middleware.OptionalAuth(jwtManager, nil)},
		WithRequiredIdentity(),
	)
	ctx := context.Background()

	token, err := jwtManager.Generate("sara")
	require.NoError(t, err)

	t.Run("anonymous settle without saving", func(t *testing.T) {
		_, err := ts.client.Settle(ctx, settleRequest("A", "10", "B", "0"))
		assert.NoError(t, err)
	})

	t.Run("anonymous save is rejected", func(t *testing.T) {
		req := settleRequest("A", "10", "B", "0")
		req.Msg.Save = true
		_, err := ts.client.Settle(ctx, req)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		req := settleRequest("A", "10", "B", "0")
		req.Header().Set("Authorization", "Bearer not-a-token")
		_, err := ts.client.Settle(ctx, req)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("authenticated save and get", func(t *testing.T) {
		req := settleRequest("A", "10", "B", "0")
		req.Msg.Save = true
		req.Header().Set("Authorization", "Bearer "+token)

		resp, err := ts.client.Settle(ctx, req)
		require.NoError(t, err)
		id := resp.Msg.Settlement.SettlementID

		stored, err := ts.store.GetSettlement(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "sara", stored.CreatedBy)

		_, err = ts.client.GetSettlement(ctx, connect.NewRequest(&GetSettlementRequest{SettlementID: id}))
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

		getReq := connect.NewRequest(&GetSettlementRequest{SettlementID: id})
		getReq.Header().Set("Authorization", "Bearer "+token)
		got, err := ts.client.GetSettlement(ctx, getReq)
		require.NoError(t, err)
		assert.Equal(t, id, got.Msg.Settlement.SettlementID)
	})
}

// lockedBuffer is a bytes.Buffer safe to write from the server goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSettle_LogsAuthenticatedSubject(t *testing.T) {
	var logs lockedBuffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	ts := setupLoggedTestServer(t, logger,
		[]connect.Interceptor{middleware.OptionalAuth(jwtManager, nil)},
		WithRequiredIdentity(),
	)

	token, err := jwtManager.Generate("zahra")
	require.NoError(t, err)

	req := settleRequest("A", "10", "B", "0")
	req.Msg.Save = true
	req.Header().Set("Authorization", "Bearer "+token)
	_, err = ts.client.Settle(context.Background(), req)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(logs.String()), &entry))
	assert.Equal(t, "RPC ok", entry["msg"])
	assert.Equal(t, SettleProcedure, entry["procedure"])
	assert.Equal(t, "zahra", entry["subject"])
}

func TestDeleteSettlement(t *testing.T) {
	ts := setupTestServer(t, nil)
	ctx := context.Background()

	req := settleRequest("A", "10", "B", "0")
	req.Msg.Save = true
	saved, err := ts.client.Settle(ctx, req)
	require.NoError(t, err)
	id := saved.Msg.Settlement.SettlementID

	_, err = ts.client.DeleteSettlement(ctx, connect.NewRequest(&DeleteSettlementRequest{SettlementID: id}))
	require.NoError(t, err)

	_, err = ts.client.GetSettlement(ctx, connect.NewRequest(&GetSettlementRequest{SettlementID: id}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = ts.client.DeleteSettlement(ctx, connect.NewRequest(&DeleteSettlementRequest{SettlementID: id}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = ts.client.DeleteSettlement(ctx, connect.NewRequest(&DeleteSettlementRequest{}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestDeleteSettlement_Owner(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	ts := setupTestServer(t,
		[]connect.Interceptor{middleware.OptionalAuth(jwtManager, nil)},
		WithRequiredIdentity(),
	)
	ctx := context.Background()

	owner, err := jwtManager.Generate("sara")
	require.NoError(t, err)
	other, err := jwtManager.Generate("ali")
	require.NoError(t, err)

	req := settleRequest("A", "10", "B", "0")
	req.Msg.Save = true
	req.Header().Set("Authorization", "Bearer "+owner)
	saved, err := ts.client.Settle(ctx, req)
	require.NoError(t, err)
	id := saved.Msg.Settlement.SettlementID

	deleteAs := func(token string) error {
		del := connect.NewRequest(&DeleteSettlementRequest{SettlementID: id})
		if token != "" {
			del.Header().Set("Authorization", "Bearer "+token)
		}
		_, err := ts.client.DeleteSettlement(ctx, del)
		return err
	}

	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(deleteAs("")))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(deleteAs(other)))
	require.NoError(t, deleteAs(owner))

	_, err = ts.store.GetSettlement(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	m := metrics.New()
	ts := setupTestServer(t, []connect.Interceptor{middleware.RequireAuth(jwtManager, m)})

	_, err := ts.client.Settle(context.Background(), settleRequest("A", "10", "B", "0"))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthFailures.WithLabelValues("missing")))

	token, err := jwtManager.Generate("ali")
	require.NoError(t, err)
	req := settleRequest("A", "10", "B", "0")
	req.Header().Set("Authorization", "Bearer "+token)
	_, err = ts.client.Settle(context.Background(), req)
	assert.NoError(t, err)
}

// TestSettle_PlainJSON exercises the endpoint the way a browser form would,
// with a plain JSON POST and no Connect client.
func TestSettle_PlainJSON(t *testing.T) {
	ts := setupTestServer(t, nil)

	body, err := json.Marshal(map[string]any{
		"participants": []map[string]string{
			{"name": "A", "amount": "300"},
			{"name": "B", "amount": "100"},
			{"name": "C", "amount": "200"},
		},
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.url+SettleProcedure, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out SettleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Settlement.Transfers, 1)
	assert.Equal(t, "B", out.Settlement.Transfers[0].From)
	assert.Equal(t, "A", out.Settlement.Transfers[0].To)
	assert.Equal(t, int64(100), out.Settlement.Transfers[0].Amount)
}
