// Package metrics содержит счётчики Prometheus для загрузки и просмотра документов.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Результаты загрузки документа.
const (
	ResultOK            = "ok"
	ResultInvalid       = "invalid"
	ResultStoreFailed   = "store_failed"
	ResultRecordFailed  = "record_failed"
	ResultSignFailed    = "sign_failed"
	ResultSignForbidden = "forbidden"
)

// Metrics набор счётчиков портала. Методы безопасно вызывать на nil.
type Metrics struct {
	uploads    *prometheus.CounterVec
	orphans    *prometheus.CounterVec
	signedURLs *prometheus.CounterVec
}

// New создаёт счётчики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rental_portal_document_uploads_total",
			Help: "License document uploads by slot and result.",
		}, []string{"slot", "result"}),
		orphans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rental_portal_orphaned_documents_total",
			Help: "Objects written to storage whose profile path update failed.",
		}, []string{"slot"}),
		signedURLs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rental_portal_signed_urls_total",
			Help: "Signed document URL requests by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.uploads, m.orphans, m.signedURLs)
	return m
}

// Upload учитывает попытку загрузки документа.
func (m *Metrics) Upload(slot, result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(slot, result).Inc()
}

// Orphan учитывает объект, оставшийся без ссылки в профиле.
func (m *Metrics) Orphan(slot string) {
	if m == nil {
		return
	}
	m.orphans.WithLabelValues(slot).Inc()
}

// SignedURL учитывает запрос временной ссылки.
func (m *Metrics) SignedURL(result string) {
	if m == nil {
		return
	}
	m.signedURLs.WithLabelValues(result).Inc()
}
