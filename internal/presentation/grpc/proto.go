package grpc

// Service descriptor for mlms.v1.EngineService. Messages are the
// application DTOs, encoded with JSONCodec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
)

const serviceName = "mlms.v1.EngineService"

// Full method names, as seen by interceptors.
const (
	MethodSuggestLoan         = "/" + serviceName + "/SuggestLoan"
	MethodGetLoanAlerts       = "/" + serviceName + "/GetLoanAlerts"
	MethodListAlerts          = "/" + serviceName + "/ListAlerts"
	MethodGetDashboardStats   = "/" + serviceName + "/GetDashboardStats"
	MethodMarkInstallmentPaid = "/" + serviceName + "/MarkInstallmentPaid"
)

// WriteMethods mutate state and need a write role.
var WriteMethods = []string{MethodMarkInstallmentPaid}

// Empty is the request of parameterless calls.
type Empty struct{}

// EngineServiceServer is the server API for mlms.v1.EngineService.
type EngineServiceServer interface {
	SuggestLoan(context.Context, *dto.SuggestLoanRequest) (*dto.LoanSuggestionResponse, error)
	GetLoanAlerts(context.Context, *dto.LoanRequest) (*dto.LoanAlertsResponse, error)
	ListAlerts(context.Context, *Empty) (*dto.ListAlertsResponse, error)
	GetDashboardStats(context.Context, *Empty) (*dto.DashboardStatsResponse, error)
	MarkInstallmentPaid(context.Context, *dto.InstallmentRequest) (*dto.MarkPaidResponse, error)
}

// UnimplementedEngineServiceServer answers Unimplemented for every method.
type UnimplementedEngineServiceServer struct{}

func (UnimplementedEngineServiceServer) SuggestLoan(context.Context, *dto.SuggestLoanRequest) (*dto.LoanSuggestionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SuggestLoan not implemented")
}
func (UnimplementedEngineServiceServer) GetLoanAlerts(context.Context, *dto.LoanRequest) (*dto.LoanAlertsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetLoanAlerts not implemented")
}
func (UnimplementedEngineServiceServer) ListAlerts(context.Context, *Empty) (*dto.ListAlertsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAlerts not implemented")
}
func (UnimplementedEngineServiceServer) GetDashboardStats(context.Context, *Empty) (*dto.DashboardStatsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDashboardStats not implemented")
}
func (UnimplementedEngineServiceServer) MarkInstallmentPaid(context.Context, *dto.InstallmentRequest) (*dto.MarkPaidResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method MarkInstallmentPaid not implemented")
}

// RegisterEngineServiceServer registers srv on s.
func RegisterEngineServiceServer(s grpclib.ServiceRegistrar, srv EngineServiceServer) {
	s.RegisterService(&engineServiceDesc, srv)
}

var engineServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*EngineServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "SuggestLoan", Handler: unary(MethodSuggestLoan, EngineServiceServer.SuggestLoan)},
		{MethodName: "GetLoanAlerts", Handler: unary(MethodGetLoanAlerts, EngineServiceServer.GetLoanAlerts)},
		{MethodName: "ListAlerts", Handler: unary(MethodListAlerts, EngineServiceServer.ListAlerts)},
		{MethodName: "GetDashboardStats", Handler: unary(MethodGetDashboardStats, EngineServiceServer.GetDashboardStats)},
		{MethodName: "MarkInstallmentPaid", Handler: unary(MethodMarkInstallmentPaid, EngineServiceServer.MarkInstallmentPaid)},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "mlms/v1/engine.proto",
}

// unary adapts a typed method expression to grpc's untyped method handler.
func unary[Req, Resp any](
	fullMethod string,
	call func(EngineServiceServer, context.Context, *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EngineServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(EngineServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
