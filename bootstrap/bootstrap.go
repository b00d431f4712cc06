package bootstrap

import (
	"context"
	"net/http"

	"go.uber.org/dig"

	httpapi "extsort/internal/http"
	"extsort/pkg/config"
	"extsort/pkg/metrics"
	"extsort/pkg/sorter"
)

// Run wires the sort service together and serves it until ctx is done.
func Run(ctx context.Context, cfg config.Config) error {
	container := dig.New()
	constructors := []interface{}{
		func() config.Config { return cfg },
		metrics.NewProm,
		newSorter,
		newServer,
	}
	for _, c := range constructors {
		if err := container.Provide(c); err != nil {
			return err
		}
	}

	return container.Invoke(func(s *httpapi.Server) error {
		if err := s.Start(); err != nil {
			return err
		}
		<-ctx.Done()
		return s.Stop()
	})
}

func newSorter(cfg config.Config, prom *metrics.Prom) *sorter.Sorter {
	return sorter.New(cfg.Sort, prom)
}

func newServer(cfg config.Config, s *sorter.Sorter, prom *metrics.Prom) *httpapi.Server {
	var metricsHandler http.Handler = prom.Handler()
	return httpapi.NewServer(s, cfg.Server, metricsHandler)
}
