package services

import "github.com/prometheus/client_golang/prometheus"

var (
	submissionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transformation_submissions_total",
			Help: "Total number of transformation submissions by outcome.",
		},
		[]string{"outcome"},
	)
	recordsCreatedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transformation_records_created_total",
			Help: "Records created by the transformation workflow, by table.",
		},
		[]string{"table"},
	)
	exportsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transformation_exports_total",
			Help: "Exports of the transformation view by result.",
		},
		[]string{"result"},
	)
	enrichmentsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citation_enrichments_total",
			Help: "Citation enrichment runs by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(submissionsCounter, recordsCreatedCounter, exportsCounter, enrichmentsCounter)
}
