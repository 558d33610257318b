package main

import (
	"context"
	"fmt"
	"log/slog"

	"gitlab.bluewillows.net/root/failoverctl/internal/config"
	"gitlab.bluewillows.net/root/failoverctl/pkg/registrar"
	"gitlab.bluewillows.net/root/failoverctl/registrars/cloudflare"
	"gitlab.bluewillows.net/root/failoverctl/registrars/rfc2136"
	"gitlab.bluewillows.net/root/failoverctl/registrars/route53"
	"gitlab.bluewillows.net/root/failoverctl/registrars/selfhosted"
)

// buildRegistrar constructs the concrete registrar driver for inst's
// RegistrarType, converting its RegistrarConfig map via each driver's own
// ConfigFromMap helper. The primary provider's instance is used for this
// (see DESIGN.md): the registrar holds the zone's delegation NS set and
// is a single entity regardless of which provider is currently active.
func buildRegistrar(ctx context.Context, inst *config.ProviderInstanceConfig, zone string, logger *slog.Logger) (registrar.Registrar, error) {
	switch inst.RegistrarType {
	case "cloudflare":
		cfg := cloudflare.ConfigFromMap(inst.RegistrarConfig)
		return cloudflare.New(cfg, cloudflare.WithLogger(logger))
	case "route53":
		cfg := route53.ConfigFromMap(inst.RegistrarConfig)
		return route53.New(cfg, route53.WithLogger(logger))
	case "rfc2136":
		cfg := rfc2136.ConfigFromMap(inst.RegistrarConfig, zone)
		return rfc2136.New(cfg, rfc2136.WithLogger(logger))
	case "selfhosted":
		cfg, err := selfhosted.ConfigFromMap(inst.RegistrarConfig)
		if err != nil {
			return nil, err
		}
		return selfhosted.New(ctx, cfg, selfhosted.WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown registrar type %q", inst.RegistrarType)
	}
}
