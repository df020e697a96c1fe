package store

// VwapPointRow mirrors engine.VwapRecord for durable storage.
type VwapPointRow struct {
	ID         uint `gorm:"primaryKey"`
	RunID      string `gorm:"index"`
	MinuteTsMs int64
	Symbol     string `gorm:"index"`
	Vwap       float64
}

// TableName overrides GORM's pluralized default.
func (VwapPointRow) TableName() string { return "vwap_points" }

// CorrelationRecordRow mirrors engine.CorrelationRecord for durable
// storage.
type CorrelationRecordRow struct {
	ID                uint `gorm:"primaryKey"`
	RunID             string `gorm:"index"`
	MinuteTsMs        int64
	Symbol            string `gorm:"index"`
	PeerSymbol        string
	R                 float64
	PeerEndMinuteTsMs int64
}

func (CorrelationRecordRow) TableName() string { return "correlation_records" }

// SchedulerTickRow mirrors engine.SchedulerRecord for durable storage.
type SchedulerTickRow struct {
	ID          uint `gorm:"primaryKey"`
	RunID       string `gorm:"index"`
	ScheduledMs int64
	ActualMs    int64
	DriftNs     int64
}

func (SchedulerTickRow) TableName() string { return "scheduler_ticks" }

// LatencyRecordRow mirrors engine.LatencyRecord for durable storage.
type LatencyRecordRow struct {
	ID           uint `gorm:"primaryKey"`
	RunID        string `gorm:"index"`
	Symbol       string `gorm:"index"`
	ExchangeTsMs int64
	ReceiveTsMs  int64
	ProcessTsMs  int64
}

func (LatencyRecordRow) TableName() string { return "latency_records" }
