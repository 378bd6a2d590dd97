package metrics

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Counter reports how many items a component holds.
type Counter interface {
	Count() (int, error)
}

type archiveMetrics struct {
	sync.Mutex
	metricsByName map[string]prometheus.Gauge
	registry      prometheus.Registerer
	store         Counter
	dataDir       string
	logger        zerolog.Logger
	name          string
}

// ArchiveMetrics reports the size of a template archive: the number of
// stored templates and, for persistent backends, the bytes under dataDir.
func ArchiveMetrics(registry prometheus.Registerer, name string, store Counter, dataDir string,
	logger zerolog.Logger) IMetric {
	return &archiveMetrics{
		registry:      registry,
		store:         store,
		dataDir:       dataDir,
		logger:        logger,
		name:          name,
		metricsByName: make(map[string]prometheus.Gauge),
	}
}

func (s *archiveMetrics) Read() {
	count, err := s.store.Count()
	if err != nil {
		s.logger.Error().Err(err).Msg("can't count archived templates")
	} else {
		s.updateGauge(prometheus.BuildFQName("archive", s.name, "templates"),
			"Number of archived block templates.", float64(count))
	}

	if s.dataDir == "" {
		return
	}
	dSize, err := dirSize(s.dataDir)
	if err != nil {
		s.logger.Error().Err(err).Msg("can't calculate data dir size")
		return
	}
	s.updateGauge(prometheus.BuildFQName("archive", s.name, "data_size"),
		"Bytes used by the archive data directory.", float64(dSize))
}

func (s *archiveMetrics) updateGauge(name, help string, value float64) {
	s.Lock()
	defer s.Unlock()

	m, ok := s.metricsByName[name]
	if !ok {
		m = prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
		if err := s.registry.Register(m); err != nil {
			s.logger.Error().Err(err).Msg("can't register metric")
		}
		s.metricsByName[name] = m
	}
	m.Set(value)
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return err
	})
	return size, err
}
