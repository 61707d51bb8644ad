package main

import (
	"fmt"

	"go.uber.org/zap"

	"mediascraper/internal/config"
	"mediascraper/internal/extractor"
	"mediascraper/internal/fetcher"
	"mediascraper/internal/monitoring"
	"mediascraper/internal/proxy"
	"mediascraper/internal/service"
)

// buildScraper wires proxies, the optional browser, the fetcher and the
// extractors into the use case. The returned cleanup releases the browser and
// idle connections.
func buildScraper(cfg *config.Config, m *monitoring.Metrics, logger *zap.Logger) (*service.Scraper, func(), error) {
	proxies := cfg.Proxies()
	transport, err := proxy.NewManager(proxies)
	if err != nil {
		return nil, nil, fmt.Errorf("proxies: %w", err)
	}
	if len(proxies) > 0 {
		logger.Info("outbound proxies configured", zap.Int("count", transport.Len()))
	}

	opts := []fetcher.Option{
		fetcher.WithTimeout(cfg.FetchTimeoutDuration()),
		fetcher.WithMaxBodyBytes(cfg.MaxBodyBytes),
		fetcher.WithMaxRedirects(cfg.MaxRedirects),
		fetcher.WithMetrics(m),
	}

	var browser *fetcher.BrowserRenderer
	if cfg.BrowserRender {
		proxyServer := ""
		if len(proxies) > 0 {
			proxyServer = proxies[0]
		}
		browser = fetcher.NewBrowserRenderer(cfg.BrowserTimeoutDuration(), proxyServer, logger.Named("browser"))
		opts = append(opts, fetcher.WithRenderer(browser))
		logger.Info("browser rendering enabled")
	}

	f := fetcher.New(transport, fetcher.DefaultHeaders(), logger.Named("fetcher"), opts...)
	registry := extractor.NewRegistry(f, extractor.Endpoints{
		InstagramGraphQL: cfg.InstagramGraphQL,
		TwitterGraphQL:   cfg.TwitterGraphQL,
	}, logger.Named("extractor"))

	cleanup := func() {
		if browser != nil {
			browser.Close()
		}
		transport.CloseIdleConnections()
	}
	return service.NewScraper(registry, m, logger.Named("scraper")), cleanup, nil
}
