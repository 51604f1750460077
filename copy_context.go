package copytables

import "sync"

type direction int

const (
	fromSource direction = iota
	toTarget
)

func (d direction) String() string {
	if d == fromSource {
		return "source"
	}
	return "target"
}

// copyContext is the state of one run. Each physical table's entries are
// written once by the stage that owns them and only read afterwards.
type copyContext struct {
	sourceStage      string
	targetStage      string
	overwriteAllData bool
	tables           []TableDescriptor

	mu      sync.RWMutex
	keys    map[string]KeySchema
	records map[string][]Record
	stats   map[string]*TableResult
}

func newCopyContext(req Request) *copyContext {
	cc := &copyContext{
		sourceStage:      req.SourceStage,
		targetStage:      req.TargetStage,
		overwriteAllData: req.OverwriteAllData,
		keys:             make(map[string]KeySchema),
		records:          make(map[string][]Record),
		stats:            make(map[string]*TableResult),
	}
	for _, logical := range req.Tables {
		t := Describe(logical, req.StageToken, req.SourceStage, req.TargetStage)
		if _, dup := cc.stats[t.Logical]; dup {
			continue
		}
		cc.tables = append(cc.tables, t)
		cc.stats[t.Logical] = &TableResult{Table: t}
	}
	return cc
}

func (cc *copyContext) stage(d direction) string {
	if d == fromSource {
		return cc.sourceStage
	}
	return cc.targetStage
}

func (cc *copyContext) physical(t TableDescriptor, d direction) string {
	if d == fromSource {
		return t.Source
	}
	return t.Target
}

func (cc *copyContext) setKeys(t TableDescriptor, d direction, ks KeySchema) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.keys[cc.physical(t, d)] = ks
	if d == fromSource {
		cc.stats[t.Logical].SourceKeys = ks
	} else {
		cc.stats[t.Logical].TargetKeys = ks
	}
}

func (cc *copyContext) keysFor(physical string) (KeySchema, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	ks, ok := cc.keys[physical]
	return ks, ok
}

func (cc *copyContext) setRecords(t TableDescriptor, d direction, records []Record) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.records[cc.physical(t, d)] = records
	if d == fromSource {
		cc.stats[t.Logical].Downloaded = len(records)
	} else {
		cc.stats[t.Logical].TargetExisting = len(records)
	}
}

func (cc *copyContext) recordsFor(physical string) []Record {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return cc.records[physical]
}

func (cc *copyContext) update(t TableDescriptor, fn func(r *TableResult)) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	fn(cc.stats[t.Logical])
}

// results returns a snapshot of per-table counters in table order.
func (cc *copyContext) results() []TableResult {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	out := make([]TableResult, 0, len(cc.tables))
	for _, t := range cc.tables {
		out = append(out, *cc.stats[t.Logical])
	}
	return out
}
