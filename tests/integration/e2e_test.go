//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
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
	"google.golang.org/protobuf/types/known/structpb"

	grpcadapter "github.com/simaogato/investfolio-backend/internal/adapter/grpc"
	"github.com/simaogato/investfolio-backend/internal/adapter/repository/sqlrepo"
	"github.com/simaogato/investfolio-backend/internal/auth"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

var (
	db         *sqlrepo.DB
	grpcClient *grpcadapter.Client
	grpcConn   *grpc.ClientConn
	ownerID    uuid.UUID
	holdingID  uuid.UUID
)

// TestMain connects to a running server and its Postgres database
func TestMain(m *testing.M) {
	ctx := context.Background()

	// 1. Connect to Database
	var err error
	db, err = sqlrepo.NewDB(sqlrepo.DriverPostgres, getDBConnectionString())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	if err := db.Migrate(ctx); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	// 2. Connect to gRPC Server
	grpcConn, err = grpc.NewClient(getGRPCAddress(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to gRPC server: %v", err))
	}
	grpcClient = grpcadapter.NewClient(grpcConn)

	// 3. Every run gets its own owner and holding
	ownerID = uuid.New()
	holdingID = uuid.New()
	ticker := "TEST-E2E-NOPRICE"
	qty := decimal.NewFromInt(1)
	if err := sqlrepo.NewHoldingRepository(db).Create(ctx, &domain.Holding{
		ID:         holdingID,
		OwnerID:    ownerID,
		Name:       "E2E Holding",
		Ticker:     &ticker,
		AssetClass: "stock",
		Quantity:   &qty,
	}); err != nil {
		panic(fmt.Sprintf("Failed to create test holding: %v", err))
	}

	code := m.Run()

	_ = grpcConn.Close()
	_ = db.Close()
	os.Exit(code)
}

// getAuthContext returns a context carrying a bearer token for owner
func getAuthContext(t *testing.T, owner uuid.UUID) context.Context {
	t.Helper()
	token, err := auth.NewTokenService(os.Getenv("JWT_SECRET")).Issue(owner, time.Hour)
	require.NoError(t, err)
	md := metadata.New(map[string]string{
		"authorization": "Bearer " + token,
	})
	return metadata.NewOutgoingContext(context.Background(), md)
}

// getDBConnectionString returns the database connection string from environment or defaults
func getDBConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}
	return "host=localhost port=5432 user=postgres password=postgres dbname=investfolio sslmode=disable"
}

// getGRPCAddress returns the gRPC server address from environment or defaults
func getGRPCAddress() string {
	addr := os.Getenv("GRPC_ADDRESS")
	if addr == "" {
		addr = "localhost:8080"
	}
	return addr
}

func call(t *testing.T, ctx context.Context, method string, req map[string]any) *structpb.Struct {
	t.Helper()
	in, err := structpb.NewStruct(req)
	require.NoError(t, err)
	out, err := grpcClient.Call(ctx, method, in)
	require.NoError(t, err, "%s should succeed", method)
	return out
}

// TestEndToEndFlow tests the complete flow: Buy -> Sell -> Position -> Valuation -> History
func TestEndToEndFlow(t *testing.T) {
	ctx := getAuthContext(t, ownerID)
	holding := holdingID.String()

	// Step A: two buys and a sell
	call(t, ctx, "CreateOperation", map[string]any{
		"holding_id": holding, "kind": "buy", "quantity": "10", "unit_price": "10", "executed_at": "2025-01-01",
	})
	call(t, ctx, "CreateOperation", map[string]any{
		"holding_id": holding, "kind": "buy", "quantity": "10", "unit_price": "20", "executed_at": "2025-01-02",
	})
	sell := call(t, ctx, "CreateOperation", map[string]any{
		"holding_id": holding, "kind": "sell", "quantity": "5", "unit_price": "30", "executed_at": "2025-01-03",
	})
	assert.Equal(t, "sell", sell.GetFields()["kind"].GetStringValue())

	// Step B: the operations are persisted
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM investment_operations WHERE holding_id = $1`, holding).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Step C: average-cost position
	pos := call(t, ctx, "GetPosition", map[string]any{"holding_id": holding})
	assert.Equal(t, "15", pos.GetFields()["quantity"].GetStringValue())
	assert.Equal(t, "225", pos.GetFields()["cost_basis"].GetStringValue())

	// Step D: without a market price the valuation falls back to the cost basis
	v := call(t, ctx, "GetInvestmentCurrentValuation", map[string]any{"holding_id": holding})
	assert.Equal(t, string(domain.SourceFallbackCostBasis), v.GetFields()["valuation_source"].GetStringValue())
	assert.Equal(t, "225", v.GetFields()["current_value"].GetStringValue())

	// Step E: history over the three trading days
	hist := call(t, ctx, "GetHistory", map[string]any{"start_date": "2025-01-01", "end_date": "2025-01-03"})
	summary := hist.GetFields()["summary"].GetStructValue().GetFields()
	assert.Equal(t, "150", summary["total_net_invested"].GetStringValue())

	// Step F: paging is newest first
	page := call(t, ctx, "ListOperations", map[string]any{"holding_id": holding, "page_size": 2})
	items := page.GetFields()["items"].GetListValue().GetValues()
	require.Len(t, items, 2)
	assert.Equal(t, "2025-01-03", items[0].GetStructValue().GetFields()["executed_at"].GetStringValue())
	assert.Equal(t, float64(3), page.GetFields()["total"].GetNumberValue())
}

func TestOtherOwnerIsForbidden(t *testing.T) {
	ctx := getAuthContext(t, uuid.New())
	req, err := structpb.NewStruct(map[string]any{"holding_id": holdingID.String()})
	require.NoError(t, err)

	_, err = grpcClient.Call(ctx, "GetSummary", req)

	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}
