package main

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

func TestPersistentGaugeVecRestore(t *testing.T) {
	stor := storage.NewMemStorage()
	db, err := leveldb.Open(stor, nil)
	if err != nil {
		t.Fatal(err)
	}

	opts := prometheus.GaugeOpts{Namespace: "xbee", Name: "remote_frames_received"}
	pm := &persistentMetrics{db: db, reg: prometheus.NewRegistry()}
	gv := pm.NewGaugeVec(opts, []string{"remote"})
	gv.Add(1, "0013A20040A1B2C3")
	gv.Add(1, "0013A20040A1B2C3")
	gv.Set(7, "0002")
	db.Close()

	db, err = leveldb.Open(stor, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	pm = &persistentMetrics{db: db, reg: prometheus.NewRegistry()}
	gv = pm.NewGaugeVec(opts, []string{"remote"})
	if v := gv.Value("0013A20040A1B2C3"); v != 2 {
		t.Error("invalid restored value", v)
	}
	if v := testutil.ToFloat64(gv.gv.WithLabelValues("0002")); v != 7 {
		t.Error("invalid restored gauge", v)
	}
	if v := gv.Add(1, "0002"); v != 8 {
		t.Error("invalid value after add", v)
	}
}

func TestPersistentGaugeVecWithoutDB(t *testing.T) {
	pm := &persistentMetrics{reg: prometheus.NewRegistry()}
	gv := pm.NewGaugeVec(prometheus.GaugeOpts{Name: "test"}, []string{"remote"})
	if v := gv.Add(3, "a"); v != 3 {
		t.Error("invalid value", v)
	}
}
