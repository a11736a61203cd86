package main

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// persistentMetrics creates gauges whose values survive restarts. With a
// nil db the gauges behave like plain ones.
type persistentMetrics struct {
	db  *leveldb.DB
	reg prometheus.Registerer
}

func (p *persistentMetrics) NewGaugeVec(opts prometheus.GaugeOpts, labels []string) *persistentGaugeVec {
	pgv := &persistentGaugeVec{
		pm:   p,
		key:  fmt.Sprintf("%s_%s_%s\x00", opts.Namespace, opts.Subsystem, opts.Name),
		gv:   promauto.With(p.reg).NewGaugeVec(opts, labels),
		vals: make(map[string]float64),
	}
	if p.db == nil {
		return pgv
	}

	it := p.db.NewIterator(util.BytesPrefix([]byte(pgv.key)), nil)
	defer it.Release()
	for it.Next() {
		if len(it.Value()) != 8 {
			continue
		}
		_, labelsPart, _ := strings.Cut(string(it.Key()), "\x00")
		val := math.Float64frombits(binary.BigEndian.Uint64(it.Value()))
		slog.Debug("restoring", "name", opts.Name, "labels", labelsPart, "val", val)
		pgv.vals[labelsPart] = val
		pgv.gv.WithLabelValues(strings.Split(labelsPart, "\x01")...).Set(val)
	}
	return pgv
}

type persistentGaugeVec struct {
	pm  *persistentMetrics
	key string
	gv  *prometheus.GaugeVec

	mut  sync.Mutex
	vals map[string]float64
}

func (p *persistentGaugeVec) Set(value float64, labelValues ...string) {
	p.mut.Lock()
	defer p.mut.Unlock()
	p.setLocked(value, labelValues)
}

func (p *persistentGaugeVec) Add(delta float64, labelValues ...string) float64 {
	p.mut.Lock()
	defer p.mut.Unlock()
	value := p.vals[strings.Join(labelValues, "\x01")] + delta
	p.setLocked(value, labelValues)
	return value
}

func (p *persistentGaugeVec) Value(labelValues ...string) float64 {
	p.mut.Lock()
	defer p.mut.Unlock()
	return p.vals[strings.Join(labelValues, "\x01")]
}

func (p *persistentGaugeVec) setLocked(value float64, labelValues []string) {
	labels := strings.Join(labelValues, "\x01")
	p.vals[labels] = value
	p.gv.WithLabelValues(labelValues...).Set(value)
	if p.pm.db == nil {
		return
	}

	dbKey := p.key + labels
	var valBytes [8]byte
	binary.BigEndian.PutUint64(valBytes[:], math.Float64bits(value))
	slog.Debug("storing", "key", dbKey, "val", value)
	if err := p.pm.db.Put([]byte(dbKey), valBytes[:], nil); err != nil {
		slog.Warn("storing metric", "key", dbKey, "error", err)
	}
}
