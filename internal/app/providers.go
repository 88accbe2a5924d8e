package app

import (
	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/config"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/providers/alpaca"
	"github.com/bobmcallan/vire-tracker/internal/providers/alphavantage"
	"github.com/bobmcallan/vire-tracker/internal/providers/finnhub"
	"github.com/bobmcallan/vire-tracker/internal/providers/yahoo"
)

// newProvider builds the named provider client from config.
// Unknown names return nil.
func newProvider(cfg *config.Config, name string, logger *common.Logger) interface{} {
	switch name {
	case finnhub.Name:
		return finnhub.New(cfg.Providers.Finnhub, logger)
	case alphavantage.Name:
		return alphavantage.New(cfg.Providers.AlphaVantage, logger)
	case yahoo.Name:
		return yahoo.New(cfg.Providers.Yahoo, logger)
	case alpaca.Name:
		return alpaca.New(cfg.Providers.Alpaca, logger)
	}
	return nil
}

// quoteProviders returns the enabled quote providers in fallback order.
func quoteProviders(cfg *config.Config, logger *common.Logger) []interfaces.ProviderClient {
	var out []interfaces.ProviderClient
	for _, name := range cfg.EnabledProviders() {
		if p, ok := newProvider(cfg, name, logger).(interfaces.ProviderClient); ok {
			out = append(out, p)
		} else {
			logger.Warn().Str("provider", name).Msg("Provider does not serve quotes, skipping")
		}
	}
	return out
}

// newsProviders returns the enabled news providers in fallback order.
func newsProviders(cfg *config.Config, logger *common.Logger) []interfaces.NewsProvider {
	var out []interfaces.NewsProvider
	for _, name := range cfg.EnabledNewsProviders() {
		if p, ok := newProvider(cfg, name, logger).(interfaces.NewsProvider); ok {
			out = append(out, p)
		} else {
			logger.Warn().Str("provider", name).Msg("Provider does not serve news, skipping")
		}
	}
	return out
}
