// Package metrics defines how service construction is observed. The
// container hands a BuildRecord to a Recorder after every build attempt.
// Recorders like the Prometheus and InfluxDB implementations in infra/metrics
// register themselves by type name and are combined with NewMultiRecorder
// when several are configured.
package metrics
