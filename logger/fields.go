package logger

import "time"

// Field keys shared by the request pipeline and the bootstrap phases.
const (
	FieldComponent   = "component"
	FieldTraceID     = "trace_id"
	FieldSpanID      = "span_id"
	FieldRequestID   = "request_id"
	FieldCulture     = "culture"
	FieldDomain      = "domain"
	FieldApplication = "application"
	FieldOperation   = "operation"
	FieldPhase       = "phase"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
)

// Fields builds a field map from alternating key-value pairs. Non-string
// keys are skipped; a trailing key without a value is kept with a nil value.
//
//	log.Info("tracer initialized", logger.Fields("endpoint", ep, "sample_rate", 0.5))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, (len(kvs)+1)/2)
	for i := 0; i < len(kvs); i += 2 {
		key, ok := kvs[i].(string)
		if !ok {
			continue
		}
		if i+1 < len(kvs) {
			m[key] = kvs[i+1]
		} else {
			m[key] = nil
		}
	}
	return m
}

// ErrorFields describes a failed operation. A nil err yields only the
// operation.
func ErrorFields(op string, err error) map[string]interface{} {
	m := map[string]interface{}{FieldOperation: op}
	if err != nil {
		m[FieldError] = err.Error()
	}
	return m
}

// PhaseFields describes a completed bootstrap phase.
func PhaseFields(phase string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldPhase:    phase,
		FieldDuration: d.Milliseconds(),
	}
}
