package grpc

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/investfolio-backend/internal/adapter/repository/memory"
	"github.com/simaogato/investfolio-backend/internal/auth"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/logger"
	"github.com/simaogato/investfolio-backend/internal/usecase/history"
	"github.com/simaogato/investfolio-backend/internal/usecase/ledger"
	"github.com/simaogato/investfolio-backend/internal/usecase/position"
	"github.com/simaogato/investfolio-backend/internal/usecase/valuation"
)

type fixedPrices map[string]decimal.Decimal

func (p fixedPrices) CurrentPrice(_ context.Context, ticker string) (decimal.Decimal, bool, error) {
	price, ok := p[ticker]
	return price, ok, nil
}

func (p fixedPrices) HistoricalPrices(context.Context, string, time.Time, time.Time) (domain.PriceSeries, error) {
	return domain.PriceSeries{}, nil
}

type testEnv struct {
	client      *Client
	ownerID     uuid.UUID
	ownerCtx    context.Context
	strangerCtx context.Context
	holdingID   uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	ownerID := uuid.New()
	ticker := "PETR4"
	holding := &domain.Holding{ID: uuid.New(), OwnerID: ownerID, Name: "Petrobras", Ticker: &ticker, AssetClass: "stock"}
	require.NoError(t, store.Holdings().Create(context.Background(), holding))

	prices := fixedPrices{"PETR4": decimal.NewFromInt(12)}
	server := NewServer(
		ledger.NewLedgerService(store.Holdings(), store.Operations()),
		position.NewPositionService(store.Holdings(), store.Operations()),
		valuation.NewValuationService(store.Holdings(), store.Operations(), prices),
		history.NewHistoryService(store.Holdings(), store.Operations(), prices),
	)

	tokens := auth.NewTokenService(testSecret)
	lis := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer(UnaryInterceptors(tokens))
	RegisterInvestmentServiceServer(grpcServer, server)
	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	bearer := func(id uuid.UUID) context.Context {
		token, err := tokens.Issue(id, time.Hour)
		require.NoError(t, err)
		return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
	}

	return &testEnv{
		client:      NewClient(conn),
		ownerID:     ownerID,
		ownerCtx:    bearer(ownerID),
		strangerCtx: bearer(uuid.New()),
		holdingID:   holding.ID,
	}
}

func request(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return req
}

func str(resp *structpb.Struct, key string) string {
	return resp.GetFields()[key].GetStringValue()
}

func num(resp *structpb.Struct, key string) float64 {
	return resp.GetFields()[key].GetNumberValue()
}

func TestServer_LedgerRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.ownerCtx
	holdingID := env.holdingID.String()

	created, err := env.client.Call(ctx, "CreateOperation", request(t, map[string]any{
		"holding_id":  holdingID,
		"kind":        "BUY",
		"quantity":    "10",
		"unit_price":  10,
		"fees":        "2",
		"executed_at": "2025-01-02",
		"notes":       "first lot",
	}))
	require.NoError(t, err)
	assert.Equal(t, "buy", str(created, "kind"))
	assert.Equal(t, "100", str(created, "gross_amount"))
	assert.Equal(t, "2", str(created, "fees"))
	assert.Equal(t, "2025-01-02", str(created, "executed_at"))
	assert.Equal(t, "first lot", str(created, "notes"))
	operationID := str(created, "id")

	page, err := env.client.Call(ctx, "ListOperations", request(t, map[string]any{"holding_id": holdingID}))
	require.NoError(t, err)
	assert.Equal(t, float64(1), num(page, "total"))
	assert.Equal(t, float64(1), num(page, "page"))
	assert.Equal(t, float64(ledger.DefaultPageSize), num(page, "page_size"))
	require.Len(t, page.GetFields()["items"].GetListValue().GetValues(), 1)

	pos, err := env.client.Call(ctx, "GetPosition", request(t, map[string]any{"holding_id": holdingID}))
	require.NoError(t, err)
	assert.Equal(t, "10", str(pos, "quantity"))
	assert.Equal(t, "102", str(pos, "cost_basis"))
	assert.Equal(t, "10.2", str(pos, "average_cost"))

	v, err := env.client.Call(ctx, "GetInvestmentCurrentValuation", request(t, map[string]any{"holding_id": holdingID}))
	require.NoError(t, err)
	assert.Equal(t, "market_price", str(v, "valuation_source"))
	assert.Equal(t, "120", str(v, "current_value"))
	assert.Equal(t, "18", str(v, "profit_loss_amount"))

	hist, err := env.client.Call(ctx, "GetHistory", request(t, map[string]any{
		"start_date": "2025-01-01",
		"end_date":   "2025-01-03",
	}))
	require.NoError(t, err)
	points := hist.GetFields()["points"].GetListValue().GetValues()
	require.Len(t, points, 3)
	assert.Equal(t, "102", points[1].GetStructValue().GetFields()["buy_amount"].GetStringValue())

	updated, err := env.client.Call(ctx, "UpdateOperation", request(t, map[string]any{
		"holding_id":   holdingID,
		"operation_id": operationID,
		"quantity":     "5",
	}))
	require.NoError(t, err)
	assert.Equal(t, "5", str(updated, "quantity"))
	assert.Equal(t, "50", str(updated, "gross_amount"))

	invested, err := env.client.Call(ctx, "GetInvestedAmountByDate", request(t, map[string]any{
		"holding_id": holdingID,
		"date":       "2025-01-02",
	}))
	require.NoError(t, err)
	assert.Equal(t, "52", str(invested, "net_invested_amount"))

	deleted, err := env.client.Call(ctx, "DeleteOperation", request(t, map[string]any{
		"holding_id":   holdingID,
		"operation_id": operationID,
	}))
	require.NoError(t, err)
	assert.True(t, deleted.GetFields()["deleted"].GetBoolValue())

	summary, err := env.client.Call(ctx, "GetSummary", request(t, map[string]any{"holding_id": holdingID}))
	require.NoError(t, err)
	assert.Equal(t, float64(0), num(summary, "total_operations"))

	portfolio, err := env.client.Call(ctx, "GetPortfolioCurrentValuation", nil)
	require.NoError(t, err)
	totals := portfolio.GetFields()["totals"].GetStructValue()
	assert.Equal(t, float64(1), totals.GetFields()["holdings"].GetNumberValue())
	assert.Equal(t, "12", totals.GetFields()["current_value"].GetStringValue())
}

func TestServer_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		ctx       context.Context
		method    string
		req       map[string]any
		code      codes.Code
		errorCode string
	}{
		{
			name:   "no token",
			ctx:    context.Background(),
			method: "GetPortfolioCurrentValuation",
			code:   codes.Unauthenticated,
		},
		{
			name:      "unknown holding",
			ctx:       env.ownerCtx,
			method:    "GetSummary",
			req:       map[string]any{"holding_id": uuid.NewString()},
			code:      codes.NotFound,
			errorCode: "NOT_FOUND",
		},
		{
			name:      "holding of another owner",
			ctx:       env.strangerCtx,
			method:    "GetPosition",
			req:       map[string]any{"holding_id": env.holdingID.String()},
			code:      codes.PermissionDenied,
			errorCode: "FORBIDDEN",
		},
		{
			name:      "malformed holding id",
			ctx:       env.ownerCtx,
			method:    "GetSummary",
			req:       map[string]any{"holding_id": "abc"},
			code:      codes.InvalidArgument,
			errorCode: "VALIDATION",
		},
		{
			name:   "non-positive quantity",
			ctx:    env.ownerCtx,
			method: "CreateOperation",
			req: map[string]any{
				"holding_id": env.holdingID.String(),
				"kind":       "buy",
				"quantity":   "0",
				"unit_price": "10",
			},
			code:      codes.InvalidArgument,
			errorCode: "VALIDATION",
		},
		{
			name:      "missing date",
			ctx:       env.ownerCtx,
			method:    "GetInvestedAmountByDate",
			req:       map[string]any{"holding_id": env.holdingID.String()},
			code:      codes.InvalidArgument,
			errorCode: "VALIDATION",
		},
		{
			name:      "inverted history window",
			ctx:       env.ownerCtx,
			method:    "GetHistory",
			req:       map[string]any{"start_date": "2025-02-01", "end_date": "2025-01-01"},
			code:      codes.InvalidArgument,
			errorCode: "VALIDATION",
		},
		{
			name:   "unknown operation",
			ctx:    env.ownerCtx,
			method: "DeleteOperation",
			req: map[string]any{
				"holding_id":   env.holdingID.String(),
				"operation_id": uuid.NewString(),
			},
			code:      codes.NotFound,
			errorCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trailer metadata.MD
			_, err := env.client.Call(tt.ctx, tt.method, request(t, tt.req), grpc.Trailer(&trailer))

			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
			if tt.errorCode != "" {
				assert.Equal(t, []string{tt.errorCode}, trailer.Get(ErrorCodeTrailer))
			}
		})
	}
}

func TestMapError(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, mapError(ctx, nil))
	assert.Equal(t, codes.Unavailable, status.Code(mapError(ctx, domain.Unavailable("failed to load holding", assert.AnError))))
	assert.Equal(t, codes.Internal, status.Code(mapError(ctx, assert.AnError)))

	passthrough := status.Error(codes.Unauthenticated, "no")
	assert.Same(t, passthrough, mapError(ctx, passthrough))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServer_CallLogCarriesOwner(t *testing.T) {
	out := &syncBuffer{}
	logger.InitWithWriter("info", out)
	t.Cleanup(func() { logger.InitWithWriter("info", &bytes.Buffer{}) })

	env := newTestEnv(t)
	_, err := env.client.Call(env.ownerCtx, "GetPortfolioCurrentValuation", nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"msg":"rpc completed"`)
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), `"owner_id":"`+env.ownerID.String()+`"`)
}
