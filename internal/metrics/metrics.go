package metrics

import "sync/atomic"

var (
	transcriptsProcessed int64
	incidentsExtracted   int64
	transcriptsRejected  int64
	geocodeMisses        int64
	newsDispatched       int64
	newsFailed           int64
)

func IncTranscripts() { atomic.AddInt64(&transcriptsProcessed, 1) }
func IncIncidents()   { atomic.AddInt64(&incidentsExtracted, 1) }
func IncRejected()    { atomic.AddInt64(&transcriptsRejected, 1) }
func IncGeocodeMiss() { atomic.AddInt64(&geocodeMisses, 1) }
func IncNewsSent()    { atomic.AddInt64(&newsDispatched, 1) }
func IncNewsFailed()  { atomic.AddInt64(&newsFailed, 1) }

func Snapshot() map[string]int64 {
	return map[string]int64{
		"transcripts_processed": atomic.LoadInt64(&transcriptsProcessed),
		"incidents_extracted":   atomic.LoadInt64(&incidentsExtracted),
		"transcripts_rejected":  atomic.LoadInt64(&transcriptsRejected),
		"geocode_misses":        atomic.LoadInt64(&geocodeMisses),
		"news_dispatched":       atomic.LoadInt64(&newsDispatched),
		"news_failed":           atomic.LoadInt64(&newsFailed),
	}
}
