package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/jaxnet/jaxminer/node/mining"
)

// Recorder receives template processing events.
type Recorder interface {
	TemplateParsed(coin string, err error)
	TemplateHeight(coin string, height uint64)
	HashingBlobBuilt(coin string)
}

// NoopRecorder drops every event.
type NoopRecorder struct{}

func (NoopRecorder) TemplateParsed(string, error)  {}
func (NoopRecorder) TemplateHeight(string, uint64) {}
func (NoopRecorder) HashingBlobBuilt(string)       {}

// PromRecorder exports template events as prometheus metrics.
type PromRecorder struct {
	parsed       *prometheus.CounterVec
	height       *prometheus.GaugeVec
	hashingBlobs *prometheus.CounterVec
}

// NewPromRecorder creates the recorder metrics and registers them on reg.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	r := &PromRecorder{
		parsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jaxminer",
			Subsystem: "template",
			Name:      "parsed_total",
			Help:      "Block templates parsed, by coin and result.",
		}, []string{"coin", "result"}),
		height: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "jaxminer",
			Subsystem: "template",
			Name:      "height",
			Help:      "Height of the last accepted block template.",
		}, []string{"coin"}),
		hashingBlobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jaxminer",
			Subsystem: "job",
			Name:      "hashing_blobs_total",
			Help:      "Hashing blobs handed out to miners.",
		}, []string{"coin"}),
	}

	for _, c := range []prometheus.Collector{r.parsed, r.height, r.hashingBlobs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PromRecorder) TemplateParsed(coin string, err error) {
	r.parsed.WithLabelValues(coin, parseResult(err)).Inc()
}

func (r *PromRecorder) TemplateHeight(coin string, height uint64) {
	r.height.WithLabelValues(coin).Set(float64(height))
}

func (r *PromRecorder) HashingBlobBuilt(coin string) {
	r.hashingBlobs.WithLabelValues(coin).Inc()
}

func parseResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, mining.ErrTruncatedInput):
		return "truncated"
	case errors.Is(err, mining.ErrStructuralViolation):
		return "invalid"
	default:
		return "error"
	}
}
