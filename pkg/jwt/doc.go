// Package jwt issues and verifies the gateway's system tokens.
//
// Tokens are HS256 JWTs with a "type" claim of "access" or "refresh". Access
// tokens live 60 minutes and refresh tokens 7 days by default. A refresh
// rotates both tokens.
//
//	svc, err := jwt.New(cfg.JWT.SecretKey,
//	    jwt.WithAccessTTL(time.Hour),
//	    jwt.WithRefreshTTL(7*24*time.Hour),
//	)
//	pair, err := svc.Issue("admin")
//	claims, err := svc.Parse(pair.AccessToken, jwt.TokenAccess)
//	next, err := svc.Refresh(pair.RefreshToken)
//
// Parse failures match [ErrExpiredToken], [ErrInvalidSignature],
// [ErrInvalidToken] or [ErrWrongTokenType] with errors.Is.
package jwt
