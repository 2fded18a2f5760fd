// Package mocks holds hand-written mocks shared by tests in several
// packages. Each mock exposes a function field per interface method and
// falls back to its static fields when the function is nil:
//
//	svc := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{Subject: "tray"}, nil
//	    },
//	}
package mocks
