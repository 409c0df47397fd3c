// Package metrics records pipeline metrics.
//
// Components receive a Recorder and default to NoopRecorder, so no call site
// needs a nil check. When a textfile path is configured the command wires a
// PrometheusRecorder and writes its registry once the run ends, in the format
// read by the node exporter's textfile collector.
package metrics
