package grpc

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/investfolio-backend/internal/auth"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/logger"
	"github.com/simaogato/investfolio-backend/internal/usecase/history"
	"github.com/simaogato/investfolio-backend/internal/usecase/ledger"
	"github.com/simaogato/investfolio-backend/internal/usecase/position"
	"github.com/simaogato/investfolio-backend/internal/usecase/valuation"
)

// ErrorCodeTrailer is the trailing metadata key carrying the domain error code
const ErrorCodeTrailer = "x-error-code"

// Server implements InvestmentServiceServer
type Server struct {
	LedgerService    *ledger.LedgerService
	PositionService  *position.PositionService
	ValuationService *valuation.ValuationService
	HistoryService   *history.HistoryService
}

var _ InvestmentServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	ledgerService *ledger.LedgerService,
	positionService *position.PositionService,
	valuationService *valuation.ValuationService,
	historyService *history.HistoryService,
) *Server {
	return &Server{
		LedgerService:    ledgerService,
		PositionService:  positionService,
		ValuationService: valuationService,
		HistoryService:   historyService,
	}
}

// CreateOperation handles the CreateOperation RPC
func (s *Server) CreateOperation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	f := requestFields(req)
	holdingID, err := f.id("holding_id")
	if err != nil {
		return nil, mapError(ctx, err)
	}
	input, err := operationInput(f)
	if err != nil {
		return nil, mapError(ctx, err)
	}

	op, err := s.LedgerService.CreateOperation(ctx, ownerID, holdingID, input)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return response(operationToMap(op))
}

// ListOperations handles the ListOperations RPC
func (s *Server) ListOperations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	f := requestFields(req)
	holdingID, err := f.id("holding_id")
	if err != nil {
		return nil, mapError(ctx, err)
	}
	page, err := f.optionalInt("page", 1)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	pageSize, err := f.optionalInt("page_size", ledger.DefaultPageSize)
	if err != nil {
		return nil, mapError(ctx, err)
	}

	result, err := s.LedgerService.ListOperations(ctx, ownerID, holdingID, page, pageSize)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return response(operationPageToMap(result))
}

// UpdateOperation handles the UpdateOperation RPC
func (s *Server) UpdateOperation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	f := requestFields(req)
	holdingID, operationID, err := operationKey(f)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	patch, err := operationPatch(f)
	if err != nil {
		return nil, mapError(ctx, err)
	}

	op, err := s.LedgerService.UpdateOperation(ctx, ownerID, holdingID, operationID, patch)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return response(operationToMap(op))
}

// DeleteOperation handles the DeleteOperation RPC
func (s *Server) DeleteOperation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	holdingID, operationID, err := operationKey(requestFields(req))
	if err != nil {
		return nil, mapError(ctx, err)
	}

	if err := s.LedgerService.DeleteOperation(ctx, ownerID, holdingID, operationID); err != nil {
		return nil, mapError(ctx, err)
	}
	return response(map[string]any{
		"id":      operationID.String(),
		"deleted": true,
	})
}

// GetSummary handles the GetSummary RPC
func (s *Server) GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, holdingID, err := holdingRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	summary, err := s.PositionService.GetSummary(ctx, ownerID, holdingID)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return response(summaryToMap(summary))
}

// GetPosition handles the GetPosition RPC
func (s *Server) GetPosition(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, holdingID, err := holdingRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	report, err := s.PositionService.GetPosition(ctx, ownerID, holdingID)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return response(positionToMap(report))
}

// GetInvestedAmountByDate handles the GetInvestedAmountByDate RPC
func (s *Server) GetInvestedAmountByDate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, holdingID, err := holdingRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	date, err := requestFields(req).optionalDate("date")
	if err != nil {
		return nil, mapError(ctx, err)
	}
	if date == nil {
		return nil, mapError(ctx, domain.Validationf("date is required"))
	}

	amount, err := s.PositionService.GetInvestedAmountByDate(ctx, ownerID, holdingID, *date)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return response(investedAmountToMap(amount))
}

// GetInvestmentCurrentValuation handles the GetInvestmentCurrentValuation RPC
func (s *Server) GetInvestmentCurrentValuation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, holdingID, err := holdingRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	v, err := s.ValuationService.GetInvestmentCurrentValuation(ctx, ownerID, holdingID)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return response(valuationToMap(v))
}

// GetPortfolioCurrentValuation handles the GetPortfolioCurrentValuation RPC
func (s *Server) GetPortfolioCurrentValuation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.ValuationService.GetPortfolioCurrentValuation(ctx, ownerID)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return response(portfolioToMap(portfolio))
}

// GetHistory handles the GetHistory RPC. start_date and end_date are optional.
func (s *Server) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	f := requestFields(req)
	start, err := f.optionalDate("start_date")
	if err != nil {
		return nil, mapError(ctx, err)
	}
	end, err := f.optionalDate("end_date")
	if err != nil {
		return nil, mapError(ctx, err)
	}

	h, err := s.HistoryService.GetHistory(ctx, ownerID, start, end)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return response(historyToMap(h))
}

func owner(ctx context.Context) (uuid.UUID, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return uuid.Nil, status.Error(codes.Unauthenticated, err.Error())
	}
	return ownerID, nil
}

func holdingRequest(ctx context.Context, req *structpb.Struct) (uuid.UUID, uuid.UUID, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	holdingID, err := requestFields(req).id("holding_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, mapError(ctx, err)
	}
	return ownerID, holdingID, nil
}

func operationKey(f fields) (uuid.UUID, uuid.UUID, error) {
	holdingID, err := f.id("holding_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	operationID, err := f.id("operation_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return holdingID, operationID, nil
}

func operationInput(f fields) (domain.OperationInput, error) {
	var input domain.OperationInput
	var err error

	if input.Kind, err = f.requiredString("kind"); err != nil {
		return input, err
	}
	if input.Quantity, err = f.requiredDecimal("quantity"); err != nil {
		return input, err
	}
	if input.UnitPrice, err = f.requiredDecimal("unit_price"); err != nil {
		return input, err
	}
	if input.Fees, err = f.optionalDecimal("fees"); err != nil {
		return input, err
	}
	executedAt, err := f.optionalDate("executed_at")
	if err != nil {
		return input, err
	}
	if executedAt != nil {
		input.ExecutedAt = *executedAt
	}
	if input.Notes, err = f.optionalString("notes"); err != nil {
		return input, err
	}
	return input, nil
}

func operationPatch(f fields) (domain.OperationPatch, error) {
	var patch domain.OperationPatch
	var err error

	if patch.Kind, err = f.optionalString("kind"); err != nil {
		return patch, err
	}
	if patch.Quantity, err = f.optionalDecimal("quantity"); err != nil {
		return patch, err
	}
	if patch.UnitPrice, err = f.optionalDecimal("unit_price"); err != nil {
		return patch, err
	}
	if patch.Fees, err = f.optionalDecimal("fees"); err != nil {
		return patch, err
	}
	if patch.ExecutedAt, err = f.optionalDate("executed_at"); err != nil {
		return patch, err
	}
	if patch.Notes, err = f.optionalString("notes"); err != nil {
		return patch, err
	}
	return patch, nil
}

func response(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors and attaches the
// domain code as trailing metadata
func mapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := domain.CodeOf(err)
	if code != "" {
		_ = grpc.SetTrailer(ctx, metadata.Pairs(ErrorCodeTrailer, string(code)))
	}

	switch code {
	case domain.CodeNotFound:
		return status.Error(codes.NotFound, err.Error())
	case domain.CodeForbidden:
		return status.Error(codes.PermissionDenied, err.Error())
	case domain.CodeValidation:
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.CodeUnavailable:
		return status.Error(codes.Unavailable, err.Error())
	default:
		logger.FromContext(ctx).Error("unhandled error", "error", err)
		return status.Error(codes.Internal, err.Error())
	}
}
