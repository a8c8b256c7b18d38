package rpc

import (
	"context"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
)

// NewValidateInterceptor rejects requests whose message fails its
// validate tags with InvalidArgument before the handler runs.
func NewValidateInterceptor() connect.UnaryInterceptorFunc {
	v := validator.New(validator.WithRequiredStructEnabled())
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !req.Spec().IsClient {
				if err := v.StructCtx(ctx, req.Any()); err != nil {
					return nil, connect.NewError(connect.CodeInvalidArgument, err)
				}
			}
			return next(ctx, req)
		}
	}
}
