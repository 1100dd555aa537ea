package app

import (
	"log/slog"

	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

// InitCodec builds the access token codec from the configured secret. In dev
// an empty secret is replaced by a random one, which invalidates every access
// token on restart.
func InitCodec(cfg Config, logger *slog.Logger) (*jwtx.HS256Codec, error) {
	secret := cfg.SigningSecret
	if secret == "" {
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, err
		}
		secret = generated
		logger.Warn("AUTH_SIGNING_SECRET not set, using an ephemeral signing secret",
			slog.String("env", cfg.Env),
		)
	}

	return jwtx.NewHS256Codec([]byte(secret), cfg.Issuer, cfg.AccessTTL)
}
